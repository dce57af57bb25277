// Package graphql runs raw GraphQL queries against /v1/graphql.
package graphql

import (
	"context"
	"net/http"

	"github.com/platformbuilds/weaviate-client-go/internal/transport"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/base"
)

// API hands out the GraphQL request builders.
type API struct {
	conn transport.Transport
}

// New builds the GraphQL API.
func New(conn transport.Transport) *API { return &API{conn: conn} }

// Raw returns a builder for a raw query string.
func (a *API) Raw() *Raw { return &Raw{conn: a.conn} }

// Location points into the query text.
type Location struct {
	Line   int64 `json:"line"`
	Column int64 `json:"column"`
}

// Error is a GraphQL level error. It is reported inside a successful HTTP
// response and so stays in the payload.
type Error struct {
	Message   string      `json:"message"`
	Path      []string    `json:"path,omitempty"`
	Locations []*Location `json:"locations,omitempty"`
}

// Response is the GraphQL envelope.
type Response struct {
	Data   map[string]interface{} `json:"data"`
	Errors []*Error               `json:"errors,omitempty"`
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

// Raw posts a query string as is.
type Raw struct {
	conn transport.Transport
	req  request
}

func (r *Raw) WithQuery(query string) *Raw {
	r.req.Query = query
	return r
}

func (r *Raw) WithOperationName(name string) *Raw {
	r.req.OperationName = name
	return r
}

func (r *Raw) WithVariables(variables map[string]interface{}) *Raw {
	r.req.Variables = variables
	return r
}

// Run posts the query to /graphql. GraphQL errors come back in the
// Response, not as request errors.
func (r *Raw) Run(ctx context.Context) *base.Result[*Response] {
	var out Response
	resp := r.conn.Do(ctx, http.MethodPost, "/graphql", &r.req, &out)
	return transport.Result(resp, &out)
}
