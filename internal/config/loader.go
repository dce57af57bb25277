package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/base"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "WEAVIATE"

// Load reads configuration with priority order:
// 1. Environment variables (WEAVIATE_*, WEAVIATE_URL)
// 2. Configuration file (path, or weavctl.yaml in the usual places)
// 3. Default values
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("weavctl")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/weavctl")
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := overrideWithEnvVars(v); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scheme", "http")
	v.SetDefault("host", "localhost:8080")
	v.SetDefault("base_path", "/v1")
	v.SetDefault("api_key", "")
	v.SetDefault("timeout", "60s")
	v.SetDefault("consistency_level", "")
	v.SetDefault("grpc_host", "")
	v.SetDefault("grpc_secured", false)
	v.SetDefault("ca_bundle", "")
	v.SetDefault("log_level", "info")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.service_name", "weavctl")
}

// overrideWithEnvVars handles variables that do not map 1:1 onto a key.
func overrideWithEnvVars(v *viper.Viper) error {
	if raw := os.Getenv("WEAVIATE_URL"); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return fmt.Errorf("invalid WEAVIATE_URL %q", raw)
		}
		v.Set("scheme", u.Scheme)
		v.Set("host", u.Host)
		if p := strings.TrimRight(u.Path, "/"); p != "" {
			v.Set("base_path", p)
		}
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		v.Set("log_level", logLevel)
	}

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		v.Set("tracing.endpoint", strings.TrimPrefix(strings.TrimPrefix(endpoint, "http://"), "https://"))
		v.Set("tracing.enabled", true)
	}
	return nil
}

func validateConfig(config *Config) error {
	if config.Host == "" {
		return fmt.Errorf("host is required")
	}

	if config.Scheme != "http" && config.Scheme != "https" {
		return fmt.Errorf("invalid scheme: %s", config.Scheme)
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, config.LogLevel) {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	if config.ConsistencyLevel != "" {
		valid := []string{base.ConsistencyLevelOne, base.ConsistencyLevelQuorum, base.ConsistencyLevelAll}
		if !slices.Contains(valid, strings.ToUpper(config.ConsistencyLevel)) {
			return fmt.Errorf("invalid consistency level: %s", config.ConsistencyLevel)
		}
	}

	if config.Tracing.Enabled && config.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing endpoint is required when tracing is enabled")
	}
	return nil
}
