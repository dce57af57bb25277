package weaviate

import (
	"context"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/platformbuilds/weaviate-client-go/internal/fakeweaviate"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/base"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/batch"
)

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrHostRequired)

	_, err = New(Config{Host: "localhost:8080", Scheme: "grpc"})
	assert.Error(t, err)

	c, err := New(Config{Host: "localhost:8080"}, WithAPIKey("secret"), WithHeaders(map[string]string{"X-Test": "1"}))
	require.NoError(t, err)
	assert.Equal(t, DefaultScheme, c.cfg.Scheme)
	assert.Equal(t, DefaultTimeout, c.cfg.Timeout)
	assert.Equal(t, "secret", c.cfg.APIKey)
	assert.Equal(t, "1", c.cfg.Headers["X-Test"])
	assert.NoError(t, c.Close())
}

func TestNew_CABundle(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":"1.24.1"}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	bundle := filepath.Join(dir, "ca.pem")
	require.NoError(t, os.WriteFile(bundle, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw}), 0o600))

	c, err := New(Config{Scheme: "https", Host: strings.TrimPrefix(srv.URL, "https://"), CABundle: bundle})
	require.NoError(t, err)
	assert.Equal(t, "1.24.1", c.ServerVersion(context.Background()))
	assert.NoError(t, c.Close())

	_, err = New(Config{Host: "localhost:8080", CABundle: filepath.Join(dir, "missing.pem")})
	assert.Error(t, err)
}

func TestClient_VersionIsFetchedLazily(t *testing.T) {
	srv := fakeweaviate.New("1.24.1")
	defer srv.Close()

	c, err := New(Config{Host: srv.Host()})
	require.NoError(t, err)
	assert.Zero(t, srv.CallCount(http.MethodGet, "/v1/meta"))

	assert.Equal(t, "1.24.1", c.ServerVersion(context.Background()))
	assert.Equal(t, "1.24.1", c.ServerVersion(context.Background()))
	assert.Equal(t, 1, srv.CallCount(http.MethodGet, "/v1/meta"))
}

func TestClient_DataAndBatchRefreshVersion(t *testing.T) {
	srv := fakeweaviate.New("1.13.0")
	defer srv.Close()
	srv.AddClass(&models.Class{Class: "Pizza"})

	c, err := New(Config{Host: srv.Host()})
	require.NoError(t, err)
	ctx := context.Background()

	require.False(t, c.Data().Creator().WithClassName("Pizza").WithID("97fa5147-bdad-4d74-9a81-f8babc811b09").Run(ctx).HasErrors())
	c.Data().ObjectsGetter().WithClassName("Pizza").WithID("97fa5147-bdad-4d74-9a81-f8babc811b09").Run(ctx)
	assert.Equal(t, 1, srv.CallCount(http.MethodGet, "/v1/objects/97fa5147-bdad-4d74-9a81-f8babc811b09"))

	srv.SetVersion("1.24.1")
	c.Data().ObjectsGetter().WithClassName("Pizza").WithID("97fa5147-bdad-4d74-9a81-f8babc811b09").Run(ctx)
	assert.Equal(t, 1, srv.CallCount(http.MethodGet, "/v1/objects/Pizza/97fa5147-bdad-4d74-9a81-f8babc811b09"))

	before := srv.CallCount(http.MethodGet, "/v1/meta")
	c.Batch()
	assert.Equal(t, before+1, srv.CallCount(http.MethodGet, "/v1/meta"))

	// Schema and Misc never refresh.
	c.Schema()
	c.Misc()
	assert.Equal(t, before+1, srv.CallCount(http.MethodGet, "/v1/meta"))
}

func TestClient_VersionFailureKeepsLastKnown(t *testing.T) {
	srv := fakeweaviate.New("1.24.1")
	defer srv.Close()

	c, err := New(Config{Host: srv.Host()})
	require.NoError(t, err)
	c.Data()
	srv.SetVersion("")
	c.Data()

	v, ok := c.version.Cached()
	assert.True(t, ok)
	assert.Equal(t, "1.24.1", v)
}

func TestClient_LiveRefreshesVersion(t *testing.T) {
	srv := fakeweaviate.New("1.23.0")
	defer srv.Close()

	c, err := New(Config{Host: srv.Host()})
	require.NoError(t, err)
	assert.Equal(t, "1.23.0", c.ServerVersion(context.Background()))

	srv.SetVersion("1.24.0")
	assert.True(t, c.Misc().LiveChecker().Run(context.Background()).Payload)
	v, _ := c.version.Cached()
	assert.Equal(t, "1.24.0", v)
}

func TestClient_BatchOverGRPC(t *testing.T) {
	srv := fakeweaviate.New("1.24.1")
	defer srv.Close()
	g := fakeweaviate.NewGRPC()
	defer g.Stop()

	c, err := New(
		Config{Host: srv.Host(), APIKey: "secret"},
		WithGRPC(g.Target(), false),
		WithGRPCDialOptions(g.DialOptions()...),
		WithVersionRefreshTimeout(time.Second),
	)
	require.NoError(t, err)
	defer c.Close()

	res := c.Batch().ObjectsBatcher().WithObjects(
		&models.Object{Class: "Pizza", Properties: map[string]interface{}{"name": "Hawaii"}},
	).WithConsistencyLevel(base.ConsistencyLevelOne).Run(context.Background())
	require.False(t, res.HasErrors())
	require.Len(t, res.Payload, 1)
	assert.Equal(t, batch.StatusSuccess, res.Payload[0].Result.Status)

	require.Len(t, g.Requests(), 1)
	assert.Zero(t, srv.CallCount(http.MethodPost, "/v1/batch/objects"))
	assert.Equal(t, []string{"Bearer secret"}, g.Metadata()[0].Get("authorization"))
}

func TestClient_SchemaRoundTrip(t *testing.T) {
	srv := fakeweaviate.New("1.24.1")
	defer srv.Close()
	c, err := New(Config{Host: srv.Host()})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Schema().ClassCreator().WithClass(&models.Class{Class: "Pizza"}).Run(ctx).Err())
	res := c.Schema().Getter().Run(ctx)
	require.NoError(t, res.Err())
	require.Len(t, res.Payload.Classes, 1)
}

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(reg))
	require.NoError(t, RegisterMetrics(reg))
}
