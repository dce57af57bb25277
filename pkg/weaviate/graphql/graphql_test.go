package graphql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platformbuilds/weaviate-client-go/internal/transport"
)

func newAPI(t *testing.T, h http.HandlerFunc) *API {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	conn, err := transport.NewConnection(transport.Config{Host: ts.Listener.Addr().String()})
	require.NoError(t, err)
	return New(conn)
}

func TestRaw(t *testing.T) {
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/graphql", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "{Get {Pizza {name}}}", body["query"])
		assert.NotContains(t, body, "variables")
		_, _ = w.Write([]byte(`{"data":{"Get":{"Pizza":[{"name":"Hawaii"},{"name":"Margherita"}]}}}`))
	})

	res := api.Raw().WithQuery("{Get {Pizza {name}}}").Run(context.Background())
	require.False(t, res.HasErrors())
	get := res.Payload.Data["Get"].(map[string]interface{})
	assert.Len(t, get["Pizza"], 2)
	assert.Empty(t, res.Payload.Errors)
}

func TestRaw_GraphQLErrorsStayInPayload(t *testing.T) {
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]interface{}{"limit": float64(2)}, body["variables"])
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"Cannot query field \"Burger\"","locations":[{"line":1,"column":7}],"path":["Get"]}]}`))
	})

	res := api.Raw().
		WithQuery("query Q($limit: Int) {Get {Burger(limit: $limit) {name}}}").
		WithVariables(map[string]interface{}{"limit": 2}).
		Run(context.Background())
	require.False(t, res.HasErrors())
	require.Len(t, res.Payload.Errors, 1)
	assert.Contains(t, res.Payload.Errors[0].Message, "Burger")
	assert.Equal(t, int64(7), res.Payload.Errors[0].Locations[0].Column)
}

func TestRaw_HTTPError(t *testing.T) {
	api := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":[{"message":"anonymous access not enabled"}]}`))
	})

	res := api.Raw().WithQuery("{Get {Pizza {name}}}").Run(context.Background())
	require.True(t, res.HasErrors())
	assert.Equal(t, 401, res.StatusCode)
	assert.Nil(t, res.Payload)
}
