// Package batch ingests objects and references in bulk and deletes objects
// matching a filter.
package batch

import (
	"github.com/platformbuilds/weaviate-client-go/internal/dbversion"
	"github.com/platformbuilds/weaviate-client-go/internal/transport"
	"github.com/platformbuilds/weaviate-client-go/pkg/logger"
)

// Per-object statuses reported by the server.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
	StatusPending = "PENDING"
)

// Output verbosity of a batch delete.
const (
	OutputMinimal = "minimal"
	OutputVerbose = "verbose"
)

// API hands out the batch request builders. grpc may be nil, in which case
// objects always go over REST.
type API struct {
	conn    transport.Transport
	grpc    transport.BatchService
	support *dbversion.Support
	logger  logger.Logger
}

// New builds the batch API. grpc may be nil, in which case objects go over
// REST.
func New(conn transport.Transport, grpc transport.BatchService, support *dbversion.Support, log logger.Logger) *API {
	if log == nil {
		log = logger.NewNop()
	}
	return &API{conn: conn, grpc: grpc, support: support, logger: log}
}

// ObjectsBatcher imports objects.
func (a *API) ObjectsBatcher() *ObjectsBatcher {
	return &ObjectsBatcher{conn: a.conn, grpc: a.grpc, support: a.support, logger: a.logger}
}

// ReferencesBatcher imports references.
func (a *API) ReferencesBatcher() *ReferencesBatcher {
	return &ReferencesBatcher{conn: a.conn}
}

// ReferencePayloadBuilder builds one batch reference.
func (a *API) ReferencePayloadBuilder() *ReferencePayloadBuilder {
	return &ReferencePayloadBuilder{}
}

// ObjectsBatchDeleter deletes the objects matching a filter.
func (a *API) ObjectsBatchDeleter() *ObjectsBatchDeleter {
	return &ObjectsBatchDeleter{conn: a.conn}
}
