package batch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"
	pb "github.com/weaviate/weaviate/grpc/generated/protocol/v1"

	"github.com/platformbuilds/weaviate-client-go/internal/dbversion"
	"github.com/platformbuilds/weaviate-client-go/internal/fakeweaviate"
	"github.com/platformbuilds/weaviate-client-go/internal/monitoring"
	"github.com/platformbuilds/weaviate-client-go/internal/transport"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/base"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/filters"
)

func staticSupport(version string) *dbversion.Support {
	return dbversion.NewSupport(dbversion.NewProvider(func(ctx context.Context) (string, error) {
		return version, nil
	}, nil))
}

func restConn(t *testing.T, host string) *transport.Connection {
	t.Helper()
	conn, err := transport.NewConnection(transport.Config{Host: host})
	require.NoError(t, err)
	return conn
}

func grpcConn(t *testing.T, srv *fakeweaviate.GRPCServer) *transport.GRPCConnection {
	t.Helper()
	conn, err := transport.NewGRPCConnection(transport.GRPCConfig{
		Host:        srv.Target(),
		Timeout:     2 * time.Second,
		DialOptions: srv.DialOptions(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func pizzas() []*models.Object {
	return []*models.Object{
		{Class: "Pizza", ID: "97fa5147-bdad-4d74-9a81-f8babc811b09", Properties: map[string]interface{}{"name": "Hawaii", "price": float32(1.4), "tags": []string{"sweet"}}},
		{Class: "Burger", Properties: map[string]interface{}{"name": "Cheeseburger"}},
	}
}

func TestObjectsBatcher_REST(t *testing.T) {
	srv := fakeweaviate.New("1.24.1")
	defer srv.Close()
	srv.AddClass(&models.Class{Class: "Pizza"})

	api := New(restConn(t, srv.Host()), nil, staticSupport("1.24.1"), nil)
	res := api.ObjectsBatcher().WithObjects(pizzas()...).WithConsistencyLevel(base.ConsistencyLevelAll).Run(context.Background())
	require.False(t, res.HasErrors())
	require.Len(t, res.Payload, 2)

	assert.Equal(t, StatusSuccess, res.Payload[0].Result.Status)
	assert.False(t, res.Payload[0].Failed())
	assert.True(t, res.Payload[1].Failed())
	assert.Contains(t, res.Payload[1].Result.Errors.Error[0].Message, "Burger")

	_, stored := srv.Object("", "Pizza", "97fa5147-bdad-4d74-9a81-f8babc811b09")
	assert.True(t, stored)

	calls := srv.Calls()
	last := calls[len(calls)-1]
	assert.Equal(t, "/v1/batch/objects", last.Path)
	assert.Equal(t, "ALL", last.Query.Get("consistency_level"))
	assert.Contains(t, string(last.Body), `"fields":["ALL"]`)
}

func TestObjectsBatcher_GRPC(t *testing.T) {
	g := fakeweaviate.NewGRPC()
	defer g.Stop()
	g.FailIndexes[1] = "class Burger not found"

	api := New(restConn(t, "localhost:1"), grpcConn(t, g), staticSupport("1.24.1"), nil)
	res := api.ObjectsBatcher().WithObjects(pizzas()...).WithConsistencyLevel(base.ConsistencyLevelQuorum).Run(context.Background())
	require.False(t, res.HasErrors())
	require.Len(t, res.Payload, 2)

	assert.Equal(t, StatusSuccess, res.Payload[0].Result.Status)
	assert.Equal(t, StatusFailed, res.Payload[1].Result.Status)
	assert.Equal(t, "class Burger not found", res.Payload[1].Result.Errors.Error[0].Message)

	reqs := g.Requests()
	require.Len(t, reqs, 1)
	objs := reqs[0].GetObjects()
	require.Len(t, objs, 2)

	assert.Equal(t, "Pizza", objs[0].GetCollection())
	assert.Equal(t, "97fa5147-bdad-4d74-9a81-f8babc811b09", objs[0].GetUuid())
	fields := objs[0].GetProperties().GetNonRefProperties().GetFields()
	assert.Equal(t, "Hawaii", fields["name"].GetStringValue())
	assert.InDelta(t, 1.4, fields["price"].GetNumberValue(), 1e-6)
	require.Len(t, objs[0].GetProperties().GetTextArrayProperties(), 1)

	generated := objs[1].GetUuid()
	require.NoError(t, uuid.Validate(generated))
	assert.Equal(t, generated, string(res.Payload[1].ID))
}

type replyBatchService struct {
	reply *pb.BatchObjectsReply
}

func (s replyBatchService) BatchObjects(context.Context, []*pb.BatchObject, string) (*pb.BatchObjectsReply, error) {
	return s.reply, nil
}

func batchObjectsCount(t *testing.T, reg *prometheus.Registry, result string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "weaviate_client_batch_objects_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["protocol"] == monitoring.ProtocolGRPC && labels["result"] == result {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestObjectsBatcher_GRPCRepeatedErrorIndex(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, monitoring.Register(reg))
	failedBefore := batchObjectsCount(t, reg, "failed")
	successBefore := batchObjectsCount(t, reg, "success")

	svc := replyBatchService{reply: &pb.BatchObjectsReply{Errors: []*pb.BatchObjectsReply_BatchError{
		{Index: 1, Error: "class Burger not found"},
		{Index: 1, Error: "vectorizer unavailable"},
		{Index: 7, Error: "out of range"},
	}}}
	api := New(restConn(t, "localhost:1"), svc, staticSupport("1.24.1"), nil)
	res := api.ObjectsBatcher().WithObjects(pizzas()...).Run(context.Background())
	require.False(t, res.HasErrors())
	require.Len(t, res.Payload, 2)

	assert.False(t, res.Payload[0].Failed())
	require.True(t, res.Payload[1].Failed())
	errs := res.Payload[1].Result.Errors.Error
	require.Len(t, errs, 2)
	assert.Equal(t, "class Burger not found", errs[0].Message)
	assert.Equal(t, "vectorizer unavailable", errs[1].Message)

	assert.Equal(t, failedBefore+1, batchObjectsCount(t, reg, "failed"))
	assert.Equal(t, successBefore+1, batchObjectsCount(t, reg, "success"))
}

func TestObjectsBatcher_OldServerFallsBackToREST(t *testing.T) {
	srv := fakeweaviate.New("1.23.0")
	defer srv.Close()
	srv.AddClass(&models.Class{Class: "Pizza"})
	g := fakeweaviate.NewGRPC()
	defer g.Stop()

	api := New(restConn(t, srv.Host()), grpcConn(t, g), staticSupport("1.23.0"), nil)
	res := api.ObjectsBatcher().WithObjects(pizzas()[0]).Run(context.Background())
	require.False(t, res.HasErrors())

	assert.Empty(t, g.Requests())
	assert.Equal(t, 1, srv.CallCount(http.MethodPost, "/v1/batch/objects"))
}

func TestObjectsBatcher_UnknownVersionUsesREST(t *testing.T) {
	srv := fakeweaviate.New("1.24.1")
	defer srv.Close()
	g := fakeweaviate.NewGRPC()
	defer g.Stop()

	failing := dbversion.NewSupport(dbversion.NewProvider(func(ctx context.Context) (string, error) {
		return "", assert.AnError
	}, nil))
	api := New(restConn(t, srv.Host()), grpcConn(t, g), failing, nil)
	api.ObjectsBatcher().WithObjects(pizzas()[0]).Run(context.Background())

	assert.Empty(t, g.Requests())
	assert.Equal(t, 1, srv.CallCount(http.MethodPost, "/v1/batch/objects"))
}

func TestObjectsBatcher_GRPCFailure(t *testing.T) {
	g := fakeweaviate.NewGRPC()
	conn := grpcConn(t, g)
	g.Stop()

	api := New(restConn(t, "localhost:1"), conn, staticSupport("1.24.1"), nil)
	res := api.ObjectsBatcher().WithObjects(pizzas()...).Run(context.Background())
	require.True(t, res.HasErrors())
	assert.Equal(t, 0, res.StatusCode)
	assert.Nil(t, res.Payload)
}

func TestReferencesBatcher(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/batch/references", r.URL.Path)
		assert.Equal(t, "ONE", r.URL.Query().Get("consistency_level"))
		var refs []map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&refs))
		require.Len(t, refs, 1)
		assert.Equal(t, "weaviate://localhost/Pizza/97fa5147-bdad-4d74-9a81-f8babc811b09/otherFoods", refs[0]["from"])
		assert.Equal(t, "weaviate://localhost/Soup/565da3b6-60b3-40e5-ba21-e6bfe5dbba91", refs[0]["to"])
		_, _ = w.Write([]byte(`[{"from":"` + refs[0]["from"].(string) + `","to":"` + refs[0]["to"].(string) + `","result":{"status":"SUCCESS"}}]`))
	}))
	defer ts.Close()

	api := New(restConn(t, ts.Listener.Addr().String()), nil, nil, nil)
	ref := api.ReferencePayloadBuilder().
		WithFromClassName("Pizza").WithFromID("97fa5147-bdad-4d74-9a81-f8babc811b09").WithFromRefProp("otherFoods").
		WithToClassName("Soup").WithToID("565da3b6-60b3-40e5-ba21-e6bfe5dbba91").
		Payload()

	res := api.ReferencesBatcher().WithReferences(ref).WithConsistencyLevel(base.ConsistencyLevelOne).Run(context.Background())
	require.False(t, res.HasErrors())
	require.Len(t, res.Payload, 1)
	assert.Equal(t, StatusSuccess, res.Payload[0].Result.Status)
}

func TestReferencePayloadBuilder_WithoutToClass(t *testing.T) {
	ref := (&ReferencePayloadBuilder{}).WithFromClassName("Pizza").WithFromID("a").WithFromRefProp("p").WithToID("b").WithTenant("t").Payload()
	assert.Equal(t, "weaviate://localhost/Pizza/a/p", string(ref.From))
	assert.Equal(t, "weaviate://localhost/b", string(ref.To))
	assert.Equal(t, "t", ref.Tenant)
}

func TestObjectsBatchDeleter(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "tenantA", r.URL.Query().Get("tenant"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{
			"match": {"class": "Pizza", "where": {"operator": "Equal", "operands": null, "path": ["name"], "valueText": "Hawaii"}},
			"output": "verbose",
			"dryRun": true
		}`, string(body))
		_, _ = w.Write([]byte(`{
			"match": {"class": "Pizza"},
			"output": "verbose",
			"dryRun": true,
			"results": {"matches": 1, "limit": 10000, "successful": 0, "failed": 0,
				"objects": [{"id": "97fa5147-bdad-4d74-9a81-f8babc811b09", "status": "DRYRUN"}]}
		}`))
	}))
	defer ts.Close()

	api := New(restConn(t, ts.Listener.Addr().String()), nil, nil, nil)
	res := api.ObjectsBatchDeleter().
		WithClassName("Pizza").
		WithWhere(filters.Where().WithPath("name").WithOperator(filters.Equal).WithValueText("Hawaii")).
		WithOutput(OutputVerbose).
		WithDryRun(true).
		WithTenant("tenantA").
		Run(context.Background())
	require.False(t, res.HasErrors())
	assert.True(t, res.Payload.DryRun)
	assert.Equal(t, int64(1), res.Payload.Results.Matches)
	require.Len(t, res.Payload.Results.Objects, 1)
	assert.Equal(t, "DRYRUN", res.Payload.Results.Objects[0].Status)
}
