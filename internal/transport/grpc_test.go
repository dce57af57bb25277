package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pb "github.com/weaviate/weaviate/grpc/generated/protocol/v1"

	"github.com/platformbuilds/weaviate-client-go/internal/fakeweaviate"
)

func TestNewGRPCConnection_RequiresHost(t *testing.T) {
	_, err := NewGRPCConnection(GRPCConfig{})
	assert.ErrorIs(t, err, ErrGRPCHostRequired)
}

func TestGRPCConnection_BatchObjects(t *testing.T) {
	srv := fakeweaviate.NewGRPC()
	defer srv.Stop()
	srv.FailIndexes[1] = "vector lengths don't match"

	conn, err := NewGRPCConnection(GRPCConfig{
		Host:        srv.Target(),
		APIKey:      "secret",
		Headers:     map[string]string{"X-Cohere-Api-Key": "co-key"},
		Timeout:     2 * time.Second,
		DialOptions: srv.DialOptions(),
	})
	require.NoError(t, err)
	defer conn.Close()

	objects := []*pb.BatchObject{
		{Uuid: "36ddd591-2dee-4e7e-a3cc-eb86d30a4303", Collection: "Pizza"},
		{Uuid: "5b6a08ba-1d46-43aa-89cc-8b070790c6f2", Collection: "Pizza"},
	}
	reply, err := conn.BatchObjects(context.Background(), objects, "quorum")
	require.NoError(t, err)
	require.Len(t, reply.GetErrors(), 1)
	assert.Equal(t, int32(1), reply.GetErrors()[0].GetIndex())

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Len(t, reqs[0].GetObjects(), 2)
	assert.Equal(t, pb.ConsistencyLevel_CONSISTENCY_LEVEL_QUORUM, reqs[0].GetConsistencyLevel())

	md := srv.Metadata()[0]
	assert.Equal(t, []string{"Bearer secret"}, md.Get("authorization"))
	assert.Equal(t, []string{"co-key"}, md.Get("x-cohere-api-key"))
}

func TestToConsistencyLevel(t *testing.T) {
	assert.Nil(t, toConsistencyLevel(""))
	assert.Nil(t, toConsistencyLevel("SOME"))
	require.NotNil(t, toConsistencyLevel("ALL"))
	assert.Equal(t, pb.ConsistencyLevel_CONSISTENCY_LEVEL_ALL, *toConsistencyLevel("ALL"))
	assert.Equal(t, pb.ConsistencyLevel_CONSISTENCY_LEVEL_ONE, *toConsistencyLevel("one"))
}
