// Package transport performs the single round trip behind every request
// builder: JSON over HTTP for the REST API and the gRPC batch service.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/weaviate/weaviate/entities/models"

	"github.com/platformbuilds/weaviate-client-go/internal/monitoring"
	"github.com/platformbuilds/weaviate-client-go/internal/tracing"
	"github.com/platformbuilds/weaviate-client-go/pkg/logger"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/base"
)

var (
	ErrHostRequired  = errors.New("transport: host is required")
	ErrInvalidScheme = errors.New("transport: scheme must be http or https")
)

// Config describes how to reach the REST API.
type Config struct {
	Scheme     string
	Host       string
	BasePath   string
	Headers    map[string]string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     logger.Logger
}

// Response is the raw outcome of one REST call.
type Response struct {
	StatusCode int
	Body       []byte
	Errors     []*base.WeaviateError
}

// Transport is what the request builders need from a REST connection.
type Transport interface {
	Do(ctx context.Context, method, path string, body, out interface{}) *Response
}

// Connection sends JSON requests to one Weaviate node.
type Connection struct {
	baseURL string
	headers http.Header
	http    *http.Client
	logger  logger.Logger
}

// NewConnection validates cfg and builds a Connection.
func NewConnection(cfg Config) (*Connection, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, ErrHostRequired
	}
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "http"
	}
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScheme, scheme)
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v1"
	}
	basePath = "/" + strings.Trim(basePath, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	headers := make(http.Header)
	for k, v := range cfg.Headers {
		headers.Set(k, v)
	}
	if cfg.APIKey != "" {
		headers.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	return &Connection{
		baseURL: fmt.Sprintf("%s://%s%s", scheme, strings.TrimRight(host, "/"), basePath),
		headers: headers,
		http:    httpClient,
		logger:  log,
	}, nil
}

// BaseURL returns the URL every path is appended to, e.g. http://localhost:8080/v1.
func (c *Connection) BaseURL() string { return c.baseURL }

// Do sends body (JSON encoded, may be nil) to path and decodes a 2xx response
// into out when out is non-nil. Non-2xx responses are decoded as Weaviate
// error payloads. Do never returns a nil Response.
func (c *Connection) Do(ctx context.Context, method, path string, body, out interface{}) *Response {
	start := time.Now()
	ctx, span := tracing.StartRequestSpan(ctx, monitoring.ProtocolREST, method, path)

	resp := c.do(ctx, method, path, body, out)

	elapsed := time.Since(start)
	var spanErr error
	if resp.StatusCode == 0 && len(resp.Errors) > 0 {
		spanErr = resp.Errors[0]
	}
	tracing.EndRequestSpan(span, resp.StatusCode, elapsed, spanErr)
	monitoring.RecordRequest(monitoring.ProtocolREST, method, path, resp.StatusCode, elapsed)
	c.logger.Debug("weaviate request", "method", method, "path", path, "status", resp.StatusCode, "duration", elapsed)
	return resp
}

func (c *Connection) do(ctx context.Context, method, path string, body, out interface{}) *Response {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return clientError(fmt.Errorf("marshal request body: %w", err))
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return clientError(fmt.Errorf("build request: %w", err))
	}
	for k, values := range c.headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return clientError(err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return &Response{StatusCode: httpResp.StatusCode, Errors: []*base.WeaviateError{{Message: "read response body", Err: err}}}
	}

	resp := &Response{StatusCode: httpResp.StatusCode, Body: data}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		resp.Errors = decodeErrors(httpResp.StatusCode, data)
		return resp
	}
	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			resp.Errors = []*base.WeaviateError{{Message: "decode response body", Err: err}}
		}
	}
	return resp
}

func clientError(err error) *Response {
	return &Response{Errors: []*base.WeaviateError{{Message: err.Error(), Err: err}}}
}

// decodeErrors turns an error body into structured errors. Weaviate answers
// with {"error":[{"message":"..."}]}; anything else is kept verbatim.
func decodeErrors(status int, body []byte) []*base.WeaviateError {
	var payload models.ErrorResponse
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Error) > 0 {
		errs := make([]*base.WeaviateError, 0, len(payload.Error))
		for _, item := range payload.Error {
			if item == nil {
				continue
			}
			errs = append(errs, &base.WeaviateError{Message: item.Message})
		}
		if len(errs) > 0 {
			return errs
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	if msg == "" {
		msg = fmt.Sprintf("unexpected status %d", status)
	}
	return []*base.WeaviateError{{Message: msg}}
}

// Result converts resp into a base.Result carrying payload.
func Result[T any](resp *Response, payload T) *base.Result[T] {
	if len(resp.Errors) > 0 {
		return base.ErrorResult[T](resp.StatusCode, resp.Errors)
	}
	return base.NewResult(resp.StatusCode, payload, nil)
}

// StatusResult reports true when the response code is one of ok.
func StatusResult(resp *Response, ok ...int) *base.Result[bool] {
	if len(resp.Errors) > 0 {
		return base.ErrorResult[bool](resp.StatusCode, resp.Errors)
	}
	for _, code := range ok {
		if resp.StatusCode == code {
			return base.NewResult(resp.StatusCode, true, nil)
		}
	}
	return base.NewResult(resp.StatusCode, false, nil)
}
