package cluster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platformbuilds/weaviate-client-go/internal/transport"
)

const nodesBody = `{"nodes":[{"name":"weaviate-0","status":"HEALTHY","version":"1.24.1","gitHash":"abc123",
	"stats":{"shardCount":1,"objectCount":3},
	"shards":[{"name":"pizza-shard","class":"Pizza","objectCount":3,"vectorIndexingStatus":"READY"}]}]}`

func TestNodesStatusGetter(t *testing.T) {
	var (
		mu                 sync.Mutex
		gotPath, gotOutput string
	)
	seen := func() (string, string) {
		mu.Lock()
		defer mu.Unlock()
		return gotPath, gotOutput
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		gotOutput = r.URL.Query().Get("output")
		_, _ = w.Write([]byte(nodesBody))
	}))
	defer ts.Close()
	conn, err := transport.NewConnection(transport.Config{Host: ts.Listener.Addr().String()})
	require.NoError(t, err)
	api := New(conn)

	res := api.NodesStatusGetter().WithClassName("Pizza").WithOutput(OutputVerbose).Run(context.Background())
	require.False(t, res.HasErrors())
	path, output := seen()
	assert.Equal(t, "/v1/nodes/Pizza", path)
	assert.Equal(t, "verbose", output)

	require.Len(t, res.Payload.Nodes, 1)
	node := res.Payload.Nodes[0]
	assert.Equal(t, NodeStatusHealthy, node.Status)
	assert.Equal(t, int64(3), node.Stats.ObjectCount)
	require.Len(t, node.Shards, 1)
	assert.Equal(t, "Pizza", node.Shards[0].Class)

	all := api.NodesStatusGetter().Run(context.Background())
	require.False(t, all.HasErrors())
	path, output = seen()
	assert.Equal(t, "/v1/nodes", path)
	assert.Empty(t, output)
}
