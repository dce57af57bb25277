package schema

import (
	"context"
	"net/http"
	"net/url"

	"github.com/platformbuilds/weaviate-client-go/internal/transport"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/base"
)

// Shard statuses.
const (
	ShardStatusReady    = "READY"
	ShardStatusReadOnly = "READONLY"
	ShardStatusIndexing = "INDEXING"
)

// ShardStatus is one entry of GET /schema/{class}/shards.
type ShardStatus struct {
	Name            string `json:"name,omitempty"`
	Status          string `json:"status"`
	VectorQueueSize int64  `json:"vectorQueueSize,omitempty"`
}

// ShardsGetter lists the shards of a class.
type ShardsGetter struct {
	conn      transport.Transport
	className string
	tenant    string
}

func (g *ShardsGetter) WithClassName(className string) *ShardsGetter {
	g.className = className
	return g
}

func (g *ShardsGetter) WithTenant(tenant string) *ShardsGetter {
	g.tenant = tenant
	return g
}

// Run lists the shards, scoped to the tenant when one is set.
func (g *ShardsGetter) Run(ctx context.Context) *base.Result[[]*ShardStatus] {
	path := classPath(g.className) + "/shards"
	if g.tenant != "" {
		path += "?" + url.Values{"tenant": {g.tenant}}.Encode()
	}
	var shards []*ShardStatus
	resp := g.conn.Do(ctx, http.MethodGet, path, nil, &shards)
	return transport.Result(resp, shards)
}

// ShardUpdater sets the status of one shard.
type ShardUpdater struct {
	conn      transport.Transport
	className string
	shardName string
	status    string
}

func (u *ShardUpdater) WithClassName(className string) *ShardUpdater {
	u.className = className
	return u
}

func (u *ShardUpdater) WithShardName(shardName string) *ShardUpdater {
	u.shardName = shardName
	return u
}

func (u *ShardUpdater) WithStatus(status string) *ShardUpdater {
	u.status = status
	return u
}

// Run puts the new status and returns the updated shard.
func (u *ShardUpdater) Run(ctx context.Context) *base.Result[*ShardStatus] {
	path := classPath(u.className) + "/shards/" + url.PathEscape(u.shardName)
	var updated ShardStatus
	resp := u.conn.Do(ctx, http.MethodPut, path, &ShardStatus{Status: u.status}, &updated)
	if len(resp.Errors) == 0 && updated.Name == "" {
		updated.Name = u.shardName
	}
	return transport.Result(resp, &updated)
}

// ShardsUpdater sets the status of every shard of a class.
type ShardsUpdater struct {
	conn      transport.Transport
	className string
	status    string
}

func (u *ShardsUpdater) WithClassName(className string) *ShardsUpdater {
	u.className = className
	return u
}

func (u *ShardsUpdater) WithStatus(status string) *ShardsUpdater {
	u.status = status
	return u
}

// Run lists the shards and updates each in turn. The first failure aborts
// the remaining updates.
func (u *ShardsUpdater) Run(ctx context.Context) *base.Result[[]*ShardStatus] {
	shards := (&ShardsGetter{conn: u.conn, className: u.className}).Run(ctx)
	if shards.HasErrors() {
		return shards
	}
	updated := make([]*ShardStatus, 0, len(shards.Payload))
	status := shards.StatusCode
	for _, shard := range shards.Payload {
		res := (&ShardUpdater{conn: u.conn, className: u.className, shardName: shard.Name, status: u.status}).Run(ctx)
		if res.HasErrors() {
			return base.ErrorResult[[]*ShardStatus](res.StatusCode, res.Errors)
		}
		updated = append(updated, res.Payload)
		status = res.StatusCode
	}
	return base.NewResult(status, updated, nil)
}
