package weaviate

import (
	"errors"
	"net/http"
	"time"

	"google.golang.org/grpc"

	"github.com/platformbuilds/weaviate-client-go/pkg/logger"
)

// ErrHostRequired is returned by New when Config.Host is empty.
var ErrHostRequired = errors.New("weaviate: host is required")

const (
	DefaultScheme   = "http"
	DefaultBasePath = "/v1"
	DefaultTimeout  = 60 * time.Second

	defaultVersionRefreshTimeout = 5 * time.Second
)

// Config describes how to reach a Weaviate instance.
type Config struct {
	// Scheme is http or https.
	Scheme string
	// Host is host[:port] of the REST API.
	Host     string
	BasePath string
	// Headers are sent with every request, e.g. X-OpenAI-Api-Key.
	Headers map[string]string
	// APIKey is sent as a bearer token.
	APIKey  string
	Timeout time.Duration

	// GRPCHost enables gRPC batch ingestion when set.
	GRPCHost    string
	GRPCSecured bool

	// CABundle is a PEM file of extra trusted roots for https and secured
	// gRPC. It is reloaded when it changes; a custom HTTPClient ignores it.
	CABundle string

	Logger     logger.Logger
	HTTPClient *http.Client
}

func (c Config) withDefaults() Config {
	if c.Scheme == "" {
		c.Scheme = DefaultScheme
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Logger == nil {
		c.Logger = logger.NewNop()
	}
	return c
}

// Option adjusts the client after the Config has been read.
type Option func(*settings)

type settings struct {
	cfg                   Config
	grpcDialOptions       []grpc.DialOption
	versionRefreshTimeout time.Duration
}

// WithLogger replaces Config.Logger. A nil logger is ignored.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.cfg.Logger = l
		}
	}
}

// WithHTTPClient replaces the HTTP client. A nil client is ignored.
func WithHTTPClient(h *http.Client) Option {
	return func(s *settings) {
		if h != nil {
			s.cfg.HTTPClient = h
		}
	}
}

// WithHeaders adds headers on top of Config.Headers.
func WithHeaders(headers map[string]string) Option {
	return func(s *settings) {
		merged := make(map[string]string, len(s.cfg.Headers)+len(headers))
		for k, v := range s.cfg.Headers {
			merged[k] = v
		}
		for k, v := range headers {
			merged[k] = v
		}
		s.cfg.Headers = merged
	}
}

// WithAPIKey sets the bearer token sent on every request.
func WithAPIKey(key string) Option {
	return func(s *settings) { s.cfg.APIKey = key }
}

// WithGRPC enables batch ingestion over gRPC against host.
func WithGRPC(host string, secured bool) Option {
	return func(s *settings) {
		s.cfg.GRPCHost = host
		s.cfg.GRPCSecured = secured
	}
}

// WithGRPCDialOptions appends dial options to the gRPC connection.
func WithGRPCDialOptions(opts ...grpc.DialOption) Option {
	return func(s *settings) {
		s.grpcDialOptions = append(s.grpcDialOptions, opts...)
	}
}

// WithVersionRefreshTimeout bounds the server version lookup done by Data and Batch.
func WithVersionRefreshTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.versionRefreshTimeout = d
		}
	}
}
