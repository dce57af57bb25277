package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/platformbuilds/weaviate-client-go/internal/fakeweaviate"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate"
)

const pizzaID = "97fa5147-bdad-4d74-9a81-f8babc811b09"

func newServer(t *testing.T) *fakeweaviate.Server {
	t.Helper()
	srv := fakeweaviate.New("1.24.1")
	t.Cleanup(srv.Close)
	srv.AddClass(&models.Class{Class: "Pizza"})
	return srv
}

func run(t *testing.T, srv *fakeweaviate.Server, args ...string) (string, error) {
	t.Helper()
	return runApp(t, &app{}, fmt.Sprintf("host: %s\nlog_level: error\n", srv.Host()), args...)
}

func runApp(t *testing.T, a *app, content string, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "weavctl.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	var out bytes.Buffer
	root := newRootCommand(a)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeObjects(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "objects.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, newServer(t), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "weavctl dev")
}

func TestMetaCommand(t *testing.T) {
	out, err := run(t, newServer(t), "meta")
	require.NoError(t, err)
	assert.Contains(t, out, `"version": "1.24.1"`)
}

func TestReadyAndLiveCommands(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, srv, "ready")
	require.NoError(t, err)
	assert.Contains(t, out, `"ready": true`)

	out, err = run(t, srv, "live", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "live: true")
}

func TestSchemaGetCommand(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, srv, "schema", "get", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "class: Pizza")

	out, err = run(t, srv, "schema", "get", "Pizza")
	require.NoError(t, err)
	assert.Contains(t, out, `"class": "Pizza"`)

	_, err = run(t, srv, "schema", "get", "Pasta")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSchemaShardsCommand(t *testing.T) {
	out, err := run(t, newServer(t), "schema", "shards", "Pizza")
	require.NoError(t, err)
	assert.Contains(t, out, "pizza-shard")
	assert.Contains(t, out, "READY")
}

func TestBatchImportAndObjectCommands(t *testing.T) {
	srv := newServer(t)
	file := writeObjects(t, `[
  {"class": "Pizza", "id": "`+pizzaID+`", "properties": {"name": "Hawaii"}},
  {"class": "Pizza", "properties": {"name": "Doener"}}
]`)

	out, err := run(t, srv, "batch", "import", file, "--batch-size", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `"succeeded": 2`)
	assert.Equal(t, 2, srv.ObjectCount())

	out, err = run(t, srv, "object", "get", pizzaID, "--class", "Pizza")
	require.NoError(t, err)
	assert.Contains(t, out, "Hawaii")

	out, err = run(t, srv, "object", "delete", pizzaID, "--class", "Pizza")
	require.NoError(t, err)
	assert.Contains(t, out, `"deleted": true`)

	_, err = run(t, srv, "object", "get", pizzaID, "--class", "Pizza")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestBatchImportOverGRPCKeepsArrayTypes(t *testing.T) {
	srv := newServer(t)
	g := fakeweaviate.NewGRPC()
	t.Cleanup(g.Stop)

	file := writeObjects(t, `[
  {"class": "Pizza", "id": "`+pizzaID+`", "properties": {
    "name": "Hawaii",
    "tags": ["sweet", "classic"],
    "prices": [7.5, 9],
    "vegan": [false, true],
    "toppings": [{"name": "ham", "aliases": ["jambon"]}]
  }}
]`)
	a := &app{clientOptions: []weaviate.Option{weaviate.WithGRPCDialOptions(g.DialOptions()...)}}
	content := fmt.Sprintf("host: %s\ngrpc_host: %s\nlog_level: error\n", srv.Host(), g.Target())

	out, err := runApp(t, a, content, "batch", "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, `"succeeded": 1`)

	requests := g.Requests()
	require.Len(t, requests, 1)
	require.Len(t, requests[0].GetObjects(), 1)
	props := requests[0].GetObjects()[0].GetProperties()

	require.Len(t, props.GetTextArrayProperties(), 1)
	assert.Equal(t, "tags", props.GetTextArrayProperties()[0].GetPropName())
	assert.Equal(t, []string{"sweet", "classic"}, props.GetTextArrayProperties()[0].GetValues())

	require.Len(t, props.GetNumberArrayProperties(), 1)
	assert.Equal(t, []float64{7.5, 9}, props.GetNumberArrayProperties()[0].GetValues())

	require.Len(t, props.GetBooleanArrayProperties(), 1)
	assert.Equal(t, []bool{false, true}, props.GetBooleanArrayProperties()[0].GetValues())

	require.Len(t, props.GetObjectArrayProperties(), 1)
	toppings := props.GetObjectArrayProperties()[0]
	assert.Equal(t, "toppings", toppings.GetPropName())
	require.Len(t, toppings.GetValues(), 1)
	require.Len(t, toppings.GetValues()[0].GetTextArrayProperties(), 1)
	assert.Equal(t, []string{"jambon"}, toppings.GetValues()[0].GetTextArrayProperties()[0].GetValues())
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, normalizeValue([]interface{}{"a", "b"}))
	assert.Equal(t, []float64{1, 2.5}, normalizeValue([]interface{}{1.0, 2.5}))
	assert.Equal(t, []bool{true}, normalizeValue([]interface{}{true}))
	assert.Equal(t, []interface{}{"a", 1.0}, normalizeValue([]interface{}{"a", 1.0}))
	assert.Equal(t, []interface{}{}, normalizeValue([]interface{}{}))
	assert.Equal(t, "x", normalizeValue("x"))

	nested := normalizeValue(map[string]interface{}{"list": []interface{}{"x"}})
	assert.Equal(t, map[string]interface{}{"list": []string{"x"}}, nested)
}

func TestBatchImportReportsFailures(t *testing.T) {
	srv := newServer(t)
	file := writeObjects(t, `[
  {"class": "Pizza", "properties": {"name": "Hawaii"}},
  {"class": "Soup", "properties": {"name": "Tomato"}}
]`)

	out, err := run(t, srv, "batch", "import", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 objects failed")
	assert.Contains(t, out, `"failed": 1`)
	assert.Contains(t, out, `class \"Soup\" not found`)
}

func TestBatchImportRejectsBadFile(t *testing.T) {
	srv := newServer(t)

	_, err := run(t, srv, "batch", "import", writeObjects(t, `{"class": "Pizza"}`))
	assert.Error(t, err)

	_, err = run(t, srv, "batch", "import", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestGraphQLCommand(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, srv, "graphql", "{ Get { Pizza { name } } }")
	require.NoError(t, err)
	assert.Contains(t, out, "Counts")

	out, err = run(t, srv, "graphql", "{ Get { Unknown { name } } }")
	require.Error(t, err)
	assert.Contains(t, out, "Cannot query field")

	_, err = run(t, srv, "graphql", "{ Get { Pizza { name } } }", "--variables", "not-json")
	assert.Error(t, err)
}

func TestUnsupportedOutputFormat(t *testing.T) {
	_, err := run(t, newServer(t), "meta", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}
