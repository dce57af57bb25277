// Package weaviate is the entry point of the client. A Client hands out one
// API per resource family; every builder of those APIs performs a single
// request and returns a base.Result.
//
//	client, err := weaviate.New(weaviate.Config{Host: "localhost:8080"})
//	res := client.Schema().Getter().Run(ctx)
//	if err := res.Err(); err != nil { ... }
package weaviate

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/platformbuilds/weaviate-client-go/internal/cabundle"
	"github.com/platformbuilds/weaviate-client-go/internal/dbversion"
	"github.com/platformbuilds/weaviate-client-go/internal/monitoring"
	"github.com/platformbuilds/weaviate-client-go/internal/transport"
	"github.com/platformbuilds/weaviate-client-go/pkg/logger"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/backup"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/batch"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/classifications"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/cluster"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/contextionary"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/data"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/graphql"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/misc"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/schema"
)

// Client is safe for concurrent use. The server version it caches is shared
// by every API it hands out.
type Client struct {
	cfg            Config
	logger         logger.Logger
	rest           *transport.Connection
	grpc           *transport.GRPCConnection
	caBundle       *cabundle.Manager
	version        *dbversion.Provider
	support        *dbversion.Support
	refreshTimeout time.Duration
}

// New validates cfg, applies opts and prepares the connections. No request
// is sent until the first builder runs.
func New(cfg Config, opts ...Option) (*Client, error) {
	s := &settings{cfg: cfg, versionRefreshTimeout: defaultVersionRefreshTimeout}
	for _, opt := range opts {
		opt(s)
	}
	cfg = s.cfg.withDefaults()
	if cfg.Host == "" {
		return nil, ErrHostRequired
	}

	var (
		caBundle  *cabundle.Manager
		tlsConfig *tls.Config
		err       error
	)
	if cfg.CABundle != "" {
		caBundle, err = cabundle.NewManager(cfg.CABundle, cfg.Logger, nil)
		if err != nil {
			return nil, fmt.Errorf("weaviate: %w", err)
		}
		tlsConfig = caBundle.TLSConfig()
		if cfg.HTTPClient == nil {
			cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout, Transport: caBundle.RoundTripper()}
		}
	}

	rest, err := transport.NewConnection(transport.Config{
		Scheme:     cfg.Scheme,
		Host:       cfg.Host,
		BasePath:   cfg.BasePath,
		Headers:    cfg.Headers,
		APIKey:     cfg.APIKey,
		Timeout:    cfg.Timeout,
		HTTPClient: cfg.HTTPClient,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("weaviate: %w", err), caBundle.Close())
	}

	c := &Client{
		cfg:            cfg,
		logger:         cfg.Logger,
		rest:           rest,
		caBundle:       caBundle,
		refreshTimeout: s.versionRefreshTimeout,
	}

	if cfg.GRPCHost != "" {
		c.grpc, err = transport.NewGRPCConnection(transport.GRPCConfig{
			Host:        cfg.GRPCHost,
			Secured:     cfg.GRPCSecured,
			Headers:     cfg.Headers,
			APIKey:      cfg.APIKey,
			Timeout:     cfg.Timeout,
			TLSConfig:   tlsConfig,
			Logger:      cfg.Logger,
			DialOptions: s.grpcDialOptions,
		})
		if err != nil {
			return nil, errors.Join(fmt.Errorf("weaviate: %w", err), caBundle.Close())
		}
	}

	c.version = dbversion.NewProvider(c.fetchVersion, cfg.Logger)
	c.support = dbversion.NewSupport(c.version)
	return c, nil
}

func (c *Client) fetchVersion(ctx context.Context) (string, error) {
	res := misc.New(c.rest, nil).MetaGetter().Run(ctx)
	if err := res.Err(); err != nil {
		return "", err
	}
	return res.Payload.Version, nil
}

// refreshVersion re-reads the server version, bounded by the refresh timeout.
func (c *Client) refreshVersion() {
	ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
	defer cancel()
	c.version.Refresh(ctx)
}

// ServerVersion returns the cached server version, fetching it if needed.
// It is empty when the server could not be reached.
func (c *Client) ServerVersion(ctx context.Context) string {
	return c.support.Version(ctx)
}

// Misc returns the meta, liveness and readiness builders.
func (c *Client) Misc() *misc.API { return misc.New(c.rest, c.version) }

// Schema returns the class, property, shard and tenant builders.
func (c *Client) Schema() *schema.API { return schema.New(c.rest, c.support) }

// Data refreshes the cached server version before handing out the API, so
// path selection follows server upgrades.
func (c *Client) Data() *data.API {
	c.refreshVersion()
	return data.New(c.rest, c.support, c.logger)
}

// Batch refreshes the cached server version before handing out the API, so
// the choice between gRPC and REST follows server upgrades.
func (c *Client) Batch() *batch.API {
	c.refreshVersion()
	var grpcService transport.BatchService
	if c.grpc != nil {
		grpcService = c.grpc
	}
	return batch.New(c.rest, grpcService, c.support, c.logger)
}

// Backup returns the backup create, restore and status builders.
func (c *Client) Backup() *backup.API { return backup.New(c.rest) }

// Classifications schedules and fetches classification jobs.
func (c *Client) Classifications() *classifications.API { return classifications.New(c.rest) }

// Cluster returns the node status builder.
func (c *Client) Cluster() *cluster.API { return cluster.New(c.rest) }

// GraphQL runs raw GraphQL queries.
func (c *Client) GraphQL() *graphql.API { return graphql.New(c.rest) }

// C11y returns the text2vec-contextionary module builders.
func (c *Client) C11y() *contextionary.API { return contextionary.New(c.rest) }

// Close releases the gRPC connection and stops the CA bundle watcher.
func (c *Client) Close() error {
	return errors.Join(c.grpc.Close(), c.caBundle.Close())
}

// RegisterMetrics registers the client request metrics with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	return monitoring.Register(reg)
}
