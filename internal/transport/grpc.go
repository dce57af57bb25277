package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	pb "github.com/weaviate/weaviate/grpc/generated/protocol/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/platformbuilds/weaviate-client-go/internal/monitoring"
	"github.com/platformbuilds/weaviate-client-go/internal/tracing"
	"github.com/platformbuilds/weaviate-client-go/pkg/logger"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/base"
)

const batchObjectsMethod = "/weaviate.v1.Weaviate/BatchObjects"

// ErrGRPCHostRequired is returned when a gRPC connection is requested without a host.
var ErrGRPCHostRequired = errors.New("transport: gRPC host is required")

// GRPCConfig describes how to reach the gRPC API.
type GRPCConfig struct {
	// Host is host[:port]; the port defaults to 50051, or 443 when Secured.
	Host    string
	Secured bool
	Headers map[string]string
	APIKey  string
	// MaxMessageSize bounds both directions; defaults to 100MB.
	MaxMessageSize int
	Timeout        time.Duration
	// TLSConfig replaces the default client TLS settings when Secured.
	TLSConfig   *tls.Config
	Logger      logger.Logger
	DialOptions []grpc.DialOption
}

// BatchService is the gRPC call used by batch ingestion.
type BatchService interface {
	BatchObjects(ctx context.Context, objects []*pb.BatchObject, consistencyLevel string) (*pb.BatchObjectsReply, error)
}

// GRPCConnection talks to the Weaviate gRPC service.
type GRPCConnection struct {
	conn    *grpc.ClientConn
	client  pb.WeaviateClient
	md      metadata.MD
	timeout time.Duration
	logger  logger.Logger
}

// NewGRPCConnection creates a lazily connecting gRPC client.
func NewGRPCConnection(cfg GRPCConfig) (*GRPCConnection, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, ErrGRPCHostRequired
	}
	if !strings.Contains(host, ":") {
		if cfg.Secured {
			host += ":443"
		} else {
			host += ":50051"
		}
	}

	maxSize := cfg.MaxMessageSize
	if maxSize <= 0 {
		maxSize = 100 * 1024 * 1024
	}

	creds := insecure.NewCredentials()
	if cfg.Secured {
		tlsConfig := cfg.TLSConfig
		if tlsConfig == nil {
			tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		creds = credentials.NewTLS(tlsConfig)
	}
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(maxSize),
			grpc.MaxCallSendMsgSize(maxSize),
		),
	}
	opts = append(opts, cfg.DialOptions...)

	conn, err := grpc.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("transport: create gRPC client for %s: %w", host, err)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	md := metadata.MD{}
	for k, v := range cfg.Headers {
		md.Set(strings.ToLower(k), v)
	}
	if cfg.APIKey != "" {
		md.Set("authorization", "Bearer "+cfg.APIKey)
	}

	return &GRPCConnection{
		conn:    conn,
		client:  pb.NewWeaviateClient(conn),
		md:      md,
		timeout: cfg.Timeout,
		logger:  log,
	}, nil
}

// BatchObjects sends objects in one BatchObjects call.
func (g *GRPCConnection) BatchObjects(ctx context.Context, objects []*pb.BatchObject, consistencyLevel string) (*pb.BatchObjectsReply, error) {
	req := &pb.BatchObjectsRequest{Objects: objects}
	if cl := toConsistencyLevel(consistencyLevel); cl != nil {
		req.ConsistencyLevel = cl
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	if len(g.md) > 0 {
		ctx = metadata.NewOutgoingContext(ctx, g.md)
	}

	start := time.Now()
	ctx, span := tracing.StartRequestSpan(ctx, monitoring.ProtocolGRPC, "BatchObjects", batchObjectsMethod)
	reply, err := g.client.BatchObjects(ctx, req)
	elapsed := time.Since(start)

	status := 200
	if err != nil {
		status = 0
	}
	tracing.EndRequestSpan(span, status, elapsed, err)
	monitoring.RecordRequest(monitoring.ProtocolGRPC, "BatchObjects", batchObjectsMethod, status, elapsed)
	if err != nil {
		g.logger.Debug("weaviate gRPC batch failed", "objects", len(objects), "error", err)
		return nil, err
	}
	g.logger.Debug("weaviate gRPC batch", "objects", len(objects), "errors", len(reply.GetErrors()), "duration", elapsed)
	return reply, nil
}

// Close releases the underlying connection.
func (g *GRPCConnection) Close() error {
	if g == nil || g.conn == nil {
		return nil
	}
	return g.conn.Close()
}

func toConsistencyLevel(level string) *pb.ConsistencyLevel {
	var cl pb.ConsistencyLevel
	switch strings.ToUpper(level) {
	case base.ConsistencyLevelOne:
		cl = pb.ConsistencyLevel_CONSISTENCY_LEVEL_ONE
	case base.ConsistencyLevelQuorum:
		cl = pb.ConsistencyLevel_CONSISTENCY_LEVEL_QUORUM
	case base.ConsistencyLevelAll:
		cl = pb.ConsistencyLevel_CONSISTENCY_LEVEL_ALL
	default:
		return nil
	}
	return &cl
}
