// Package cluster reports node and shard status.
package cluster

import (
	"context"
	"net/http"
	"net/url"

	"github.com/platformbuilds/weaviate-client-go/internal/transport"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/base"
)

// Node statuses.
const (
	NodeStatusHealthy     = "HEALTHY"
	NodeStatusUnhealthy   = "UNHEALTHY"
	NodeStatusUnavailable = "UNAVAILABLE"
)

// Output verbosity.
const (
	OutputMinimal = "minimal"
	OutputVerbose = "verbose"
)

type NodeStats struct {
	ShardCount  int64 `json:"shardCount"`
	ObjectCount int64 `json:"objectCount"`
}

type ShardStatus struct {
	Name                 string `json:"name"`
	Class                string `json:"class"`
	ObjectCount          int64  `json:"objectCount"`
	VectorIndexingStatus string `json:"vectorIndexingStatus,omitempty"`
	VectorQueueLength    int64  `json:"vectorQueueLength,omitempty"`
	Compressed           bool   `json:"compressed,omitempty"`
	LoadedStatus         string `json:"loaded,omitempty"`
}

type NodeStatus struct {
	Name    string         `json:"name"`
	Status  string         `json:"status"`
	Version string         `json:"version"`
	GitHash string         `json:"gitHash"`
	Stats   *NodeStats     `json:"stats,omitempty"`
	Shards  []*ShardStatus `json:"shards,omitempty"`
}

// NodesStatus is the body of GET /nodes.
type NodesStatus struct {
	Nodes []*NodeStatus `json:"nodes"`
}

// API hands out the cluster request builders.
type API struct {
	conn transport.Transport
}

// New builds the cluster API.
func New(conn transport.Transport) *API { return &API{conn: conn} }

// NodesStatusGetter fetches node status, optionally for one class.
func (a *API) NodesStatusGetter() *NodesStatusGetter { return &NodesStatusGetter{conn: a.conn} }

// NodesStatusGetter lists cluster nodes, optionally only the shards of one class.
type NodesStatusGetter struct {
	conn      transport.Transport
	className string
	output    string
}

func (g *NodesStatusGetter) WithClassName(className string) *NodesStatusGetter {
	g.className = className
	return g
}

// WithOutput selects OutputMinimal or OutputVerbose.
func (g *NodesStatusGetter) WithOutput(output string) *NodesStatusGetter {
	g.output = output
	return g
}

// Run fetches GET /nodes.
func (g *NodesStatusGetter) Run(ctx context.Context) *base.Result[*NodesStatus] {
	path := "/nodes"
	if g.className != "" {
		path += "/" + url.PathEscape(g.className)
	}
	if g.output != "" {
		path += "?" + url.Values{"output": {g.output}}.Encode()
	}
	var out NodesStatus
	resp := g.conn.Do(ctx, http.MethodGet, path, nil, &out)
	return transport.Result(resp, &out)
}
