package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"
)

func newTestConnection(t *testing.T, h http.HandlerFunc) *Connection {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	conn, err := NewConnection(Config{
		Host:    ts.Listener.Addr().String(),
		Headers: map[string]string{"X-OpenAI-Api-Key": "sk-test"},
		APIKey:  "secret",
		Timeout: 2 * time.Second,
	})
	require.NoError(t, err)
	return conn
}

func TestNewConnection_Validation(t *testing.T) {
	_, err := NewConnection(Config{})
	assert.ErrorIs(t, err, ErrHostRequired)

	_, err = NewConnection(Config{Host: "localhost:8080", Scheme: "ftp"})
	assert.ErrorIs(t, err, ErrInvalidScheme)

	conn, err := NewConnection(Config{Host: "localhost:8080", Scheme: "https", BasePath: "v1/"})
	require.NoError(t, err)
	assert.Equal(t, "https://localhost:8080/v1", conn.BaseURL())
}

func TestDo_DecodesSuccess(t *testing.T) {
	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/meta", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "sk-test", r.Header.Get("X-OpenAI-Api-Key"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hostname":"http://[::]:8080","version":"1.24.1"}`))
	})

	var meta models.Meta
	resp := conn.Do(context.Background(), http.MethodGet, "/meta", nil, &meta)
	require.Empty(t, resp.Errors)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "1.24.1", meta.Version)

	res := Result(resp, &meta)
	assert.False(t, res.HasErrors())
	assert.Equal(t, "1.24.1", res.Payload.Version)
}

func TestDo_SendsJSONBody(t *testing.T) {
	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Pizza", body["class"])
		w.WriteHeader(http.StatusOK)
	})

	resp := conn.Do(context.Background(), http.MethodPost, "/schema", map[string]string{"class": "Pizza"}, nil)
	assert.Empty(t, resp.Errors)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestDo_WeaviateErrorPayload(t *testing.T) {
	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":[{"message":"class name \"Pizza\" already exists"},{"message":"second"}]}`))
	})

	resp := conn.Do(context.Background(), http.MethodPost, "/schema", map[string]string{"class": "Pizza"}, nil)
	assert.Equal(t, 422, resp.StatusCode)
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, `class name "Pizza" already exists`, resp.Errors[0].Message)

	res := StatusResult(resp, http.StatusOK)
	assert.True(t, res.HasErrors())
	assert.False(t, res.Payload)
}

func TestDo_PlainTextError(t *testing.T) {
	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	resp := conn.Do(context.Background(), http.MethodGet, "/schema", nil, nil)
	assert.Equal(t, 502, resp.StatusCode)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "upstream exploded", resp.Errors[0].Message)
}

func TestDo_EmptyErrorBodyUsesStatusText(t *testing.T) {
	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	resp := conn.Do(context.Background(), http.MethodGet, "/schema", nil, nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "Forbidden", resp.Errors[0].Message)
}

func TestDo_ConnectionFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.Listener.Addr().String()
	ts.Close()

	conn, err := NewConnection(Config{Host: addr, Timeout: time.Second})
	require.NoError(t, err)

	resp := conn.Do(context.Background(), http.MethodGet, "/meta", nil, nil)
	assert.Equal(t, 0, resp.StatusCode)
	require.Len(t, resp.Errors, 1)
	assert.Error(t, resp.Errors[0].Err)
}

func TestDo_MarshalFailure(t *testing.T) {
	conn, err := NewConnection(Config{Host: "localhost:1"})
	require.NoError(t, err)

	resp := conn.Do(context.Background(), http.MethodPost, "/objects", map[string]interface{}{"bad": make(chan int)}, nil)
	assert.Equal(t, 0, resp.StatusCode)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Message, "marshal request body")
}

func TestDo_DecodeFailure(t *testing.T) {
	conn := newTestConnection(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	var meta models.Meta
	resp := conn.Do(context.Background(), http.MethodGet, "/meta", nil, &meta)
	assert.Equal(t, 200, resp.StatusCode)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "decode response body", resp.Errors[0].Message)
}

func TestStatusResult(t *testing.T) {
	assert.True(t, StatusResult(&Response{StatusCode: 204}, 204).Payload)
	assert.False(t, StatusResult(&Response{StatusCode: 404}, 204).Payload)
	assert.False(t, StatusResult(&Response{StatusCode: 404}, 204).HasErrors())
}
