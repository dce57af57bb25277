// Package misc covers the server introspection endpoints: meta, liveness,
// readiness and the OpenID discovery document.
package misc

import (
	"context"
	"net/http"

	"github.com/weaviate/weaviate/entities/models"

	"github.com/platformbuilds/weaviate-client-go/internal/dbversion"
	"github.com/platformbuilds/weaviate-client-go/internal/transport"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/base"
)

// API hands out the misc request builders.
type API struct {
	conn    transport.Transport
	version *dbversion.Provider
}

// New builds the misc API. version may be nil, in which case the checkers
// do not refresh any cache.
func New(conn transport.Transport, version *dbversion.Provider) *API {
	return &API{conn: conn, version: version}
}

// MetaGetter fetches server metadata.
func (a *API) MetaGetter() *MetaGetter { return &MetaGetter{conn: a.conn} }

// LiveChecker checks /.well-known/live.
func (a *API) LiveChecker() *LiveChecker {
	return &LiveChecker{conn: a.conn, version: a.version}
}

// ReadyChecker checks /.well-known/ready.
func (a *API) ReadyChecker() *ReadyChecker {
	return &ReadyChecker{conn: a.conn, version: a.version}
}

// OpenIDConfigGetter fetches the OIDC discovery document.
func (a *API) OpenIDConfigGetter() *OpenIDConfigGetter {
	return &OpenIDConfigGetter{conn: a.conn}
}

// MetaGetter fetches GET /meta.
type MetaGetter struct {
	conn transport.Transport
}

// Run fetches GET /meta.
func (g *MetaGetter) Run(ctx context.Context) *base.Result[*models.Meta] {
	var meta models.Meta
	resp := g.conn.Do(ctx, http.MethodGet, "/meta", nil, &meta)
	return transport.Result(resp, &meta)
}

// LiveChecker checks /.well-known/live. A live server also gets its version
// re-read so capability checks see upgrades.
type LiveChecker struct {
	conn    transport.Transport
	version *dbversion.Provider
}

// Run reports whether the server is live and refreshes the cached version
// when it is.
func (c *LiveChecker) Run(ctx context.Context) *base.Result[bool] {
	return checkWellKnown(ctx, c.conn, c.version, "/.well-known/live")
}

// ReadyChecker checks /.well-known/ready.
type ReadyChecker struct {
	conn    transport.Transport
	version *dbversion.Provider
}

// Run reports whether the server is ready to serve requests.
func (c *ReadyChecker) Run(ctx context.Context) *base.Result[bool] {
	return checkWellKnown(ctx, c.conn, c.version, "/.well-known/ready")
}

func checkWellKnown(ctx context.Context, conn transport.Transport, version *dbversion.Provider, path string) *base.Result[bool] {
	resp := conn.Do(ctx, http.MethodGet, path, nil, nil)
	res := transport.StatusResult(resp, http.StatusOK)
	if res.Payload {
		version.Refresh(ctx)
	}
	return res
}

// OpenIDConfiguration is the discovery document served when OIDC is enabled.
type OpenIDConfiguration struct {
	Href     string   `json:"href"`
	ClientID string   `json:"clientId"`
	Scopes   []string `json:"scopes,omitempty"`
}

// OpenIDConfigGetter fetches /.well-known/openid-configuration. A server
// without OIDC answers 404, which yields a nil payload and no error.
type OpenIDConfigGetter struct {
	conn transport.Transport
}

// Run returns a nil payload when the server has OIDC disabled.
func (g *OpenIDConfigGetter) Run(ctx context.Context) *base.Result[*OpenIDConfiguration] {
	var cfg OpenIDConfiguration
	resp := g.conn.Do(ctx, http.MethodGet, "/.well-known/openid-configuration", nil, &cfg)
	if resp.StatusCode == http.StatusNotFound {
		return base.NewResult[*OpenIDConfiguration](resp.StatusCode, nil, nil)
	}
	return transport.Result(resp, &cfg)
}
