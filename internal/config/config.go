package config

import (
	"time"

	"github.com/platformbuilds/weaviate-client-go/pkg/logger"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate"
)

// Config is the file and environment configuration of the weavctl CLI.
// Connection keys live at the top level so WEAVIATE_HOST, WEAVIATE_API_KEY
// and friends map onto them directly.
type Config struct {
	Scheme           string            `mapstructure:"scheme" yaml:"scheme"` // http or https
	Host             string            `mapstructure:"host" yaml:"host"`     // host[:port]
	BasePath         string            `mapstructure:"base_path" yaml:"base_path"`
	APIKey           string            `mapstructure:"api_key" yaml:"api_key"`
	Headers          map[string]string `mapstructure:"headers" yaml:"headers"`
	Timeout          time.Duration     `mapstructure:"timeout" yaml:"timeout"`
	ConsistencyLevel string            `mapstructure:"consistency_level" yaml:"consistency_level"`

	GRPCHost    string `mapstructure:"grpc_host" yaml:"grpc_host"`
	GRPCSecured bool   `mapstructure:"grpc_secured" yaml:"grpc_secured"`
	CABundle    string `mapstructure:"ca_bundle" yaml:"ca_bundle"`

	LogLevel string        `mapstructure:"log_level" yaml:"log_level"`
	Tracing  TracingConfig `mapstructure:"tracing" yaml:"tracing"`
}

// TracingConfig enables OTLP export of request spans.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint    string `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure    bool   `mapstructure:"insecure" yaml:"insecure"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
}

// ClientConfig converts the loaded settings into a client configuration.
func (c *Config) ClientConfig(log logger.Logger) weaviate.Config {
	return weaviate.Config{
		Scheme:      c.Scheme,
		Host:        c.Host,
		BasePath:    c.BasePath,
		Headers:     c.Headers,
		APIKey:      c.APIKey,
		Timeout:     c.Timeout,
		GRPCHost:    c.GRPCHost,
		GRPCSecured: c.GRPCSecured,
		CABundle:    c.CABundle,
		Logger:      log,
	}
}
