package fakeweaviate

import (
	"context"
	"net"
	"sync"

	pb "github.com/weaviate/weaviate/grpc/generated/protocol/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
)

// GRPCServer is an in-process Weaviate gRPC service answering BatchObjects.
type GRPCServer struct {
	pb.UnimplementedWeaviateServer

	listener *bufconn.Listener
	server   *grpc.Server

	mu       sync.Mutex
	requests []*pb.BatchObjectsRequest
	metadata []metadata.MD
	// FailIndexes maps object positions to the error reported for them.
	FailIndexes map[int32]string
}

// NewGRPC starts the service on an in-memory listener.
func NewGRPC() *GRPCServer {
	g := &GRPCServer{
		listener:    bufconn.Listen(1 << 20),
		server:      grpc.NewServer(),
		FailIndexes: map[int32]string{},
	}
	pb.RegisterWeaviateServer(g.server, g)
	go func() { _ = g.server.Serve(g.listener) }()
	return g
}

// Target is the dial target to pass as the client's gRPC host.
func (g *GRPCServer) Target() string { return "passthrough:///bufnet" }

// DialOptions routes the client connection to the in-memory listener.
func (g *GRPCServer) DialOptions() []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return g.listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
}

// Stop shuts the service down.
func (g *GRPCServer) Stop() {
	g.server.Stop()
}

// Requests returns the batch requests received so far.
func (g *GRPCServer) Requests() []*pb.BatchObjectsRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*pb.BatchObjectsRequest, len(g.requests))
	copy(out, g.requests)
	return out
}

// Metadata returns the incoming metadata of each request.
func (g *GRPCServer) Metadata() []metadata.MD {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]metadata.MD, len(g.metadata))
	copy(out, g.metadata)
	return out
}

// BatchObjects records the request and reports FailIndexes as errors.
func (g *GRPCServer) BatchObjects(ctx context.Context, req *pb.BatchObjectsRequest) (*pb.BatchObjectsReply, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	g.metadata = append(g.metadata, md)

	reply := &pb.BatchObjectsReply{}
	for i := range req.GetObjects() {
		if msg, failed := g.FailIndexes[int32(i)]; failed {
			reply.Errors = append(reply.Errors, &pb.BatchObjectsReply_BatchError{Index: int32(i), Error: msg})
		}
	}
	return reply, nil
}
