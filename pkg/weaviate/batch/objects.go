package batch

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate/entities/models"
	pb "github.com/weaviate/weaviate/grpc/generated/protocol/v1"

	"github.com/platformbuilds/weaviate-client-go/internal/batchconv"
	"github.com/platformbuilds/weaviate-client-go/internal/dbversion"
	"github.com/platformbuilds/weaviate-client-go/internal/monitoring"
	"github.com/platformbuilds/weaviate-client-go/internal/transport"
	"github.com/platformbuilds/weaviate-client-go/pkg/logger"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/base"
)

// ObjectResult is the per-object outcome of a batch import.
type ObjectResult struct {
	Status string               `json:"status,omitempty"`
	Errors *models.ErrorResponse `json:"errors,omitempty"`
}

// ObjectResponse echoes one imported object with its outcome.
type ObjectResponse struct {
	ID         strfmt.UUID            `json:"id,omitempty"`
	Class      string                 `json:"class,omitempty"`
	Tenant     string                 `json:"tenant,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Result     *ObjectResult          `json:"result,omitempty"`
}

// Failed reports whether the server rejected the object.
func (r *ObjectResponse) Failed() bool {
	return r.Result != nil && (r.Result.Status == StatusFailed || (r.Result.Errors != nil && len(r.Result.Errors.Error) > 0))
}

type objectsRequest struct {
	Fields  []string         `json:"fields"`
	Objects []*models.Object `json:"objects"`
}

// ObjectsBatcher imports objects in one call. The gRPC service is used when
// a gRPC host is configured and the server is recent enough, REST otherwise.
type ObjectsBatcher struct {
	conn             transport.Transport
	grpc             transport.BatchService
	support          *dbversion.Support
	logger           logger.Logger
	objects          []*models.Object
	consistencyLevel string
}

func (b *ObjectsBatcher) WithObjects(objects ...*models.Object) *ObjectsBatcher {
	b.objects = append(b.objects, objects...)
	return b
}

func (b *ObjectsBatcher) WithConsistencyLevel(level string) *ObjectsBatcher {
	b.consistencyLevel = level
	return b
}

// Run sends the objects over gRPC when the server supports it and REST
// otherwise. Per-object failures are reported in the payload.
func (b *ObjectsBatcher) Run(ctx context.Context) *base.Result[[]ObjectResponse] {
	if b.grpc != nil && b.support.SupportsGRPCBatch(ctx) {
		return b.runGRPC(ctx)
	}
	if b.grpc != nil {
		b.logger.Debug("gRPC batch not supported by server, using REST",
			"required", dbversion.VersionGRPCBatch, "server", b.support.Version(ctx))
	}
	return b.runREST(ctx)
}

func (b *ObjectsBatcher) runREST(ctx context.Context) *base.Result[[]ObjectResponse] {
	path := "/batch/objects"
	if b.consistencyLevel != "" {
		path += "?" + url.Values{"consistency_level": {b.consistencyLevel}}.Encode()
	}
	objects := b.objects
	if objects == nil {
		objects = []*models.Object{}
	}
	var out []ObjectResponse
	resp := b.conn.Do(ctx, http.MethodPost, path, &objectsRequest{Fields: []string{"ALL"}, Objects: objects}, &out)
	if len(resp.Errors) > 0 {
		return base.ErrorResult[[]ObjectResponse](resp.StatusCode, resp.Errors)
	}
	failed := 0
	for i := range out {
		if out[i].Failed() {
			failed++
		}
	}
	monitoring.RecordBatchObjects(monitoring.ProtocolREST, len(out)-failed, failed)
	return base.NewResult(resp.StatusCode, out, nil)
}

func (b *ObjectsBatcher) runGRPC(ctx context.Context) *base.Result[[]ObjectResponse] {
	batch := make([]*pb.BatchObject, len(b.objects))
	out := make([]ObjectResponse, len(b.objects))
	for i, obj := range b.objects {
		if obj == nil {
			obj = &models.Object{}
		}
		o := *obj
		if o.ID == "" {
			o.ID = strfmt.UUID(uuid.NewString())
		}
		batch[i] = batchconv.ToBatchObject(&o)

		props, _ := o.Properties.(map[string]interface{})
		out[i] = ObjectResponse{
			ID:         o.ID,
			Class:      o.Class,
			Tenant:     o.Tenant,
			Properties: props,
			Result:     &ObjectResult{Status: StatusSuccess},
		}
	}

	reply, err := b.grpc.BatchObjects(ctx, batch, b.consistencyLevel)
	if err != nil {
		return base.ErrorResult[[]ObjectResponse](0, []*base.WeaviateError{{Message: err.Error(), Err: err}})
	}

	failed := 0
	for _, e := range reply.GetErrors() {
		idx := int(e.GetIndex())
		if idx < 0 || idx >= len(out) {
			continue
		}
		item := &models.ErrorResponseErrorItems0{Message: e.GetError()}
		if res := out[idx].Result; res.Status == StatusFailed {
			res.Errors.Error = append(res.Errors.Error, item)
			continue
		}
		failed++
		out[idx].Result = &ObjectResult{
			Status: StatusFailed,
			Errors: &models.ErrorResponse{Error: []*models.ErrorResponseErrorItems0{item}},
		}
	}
	monitoring.RecordBatchObjects(monitoring.ProtocolGRPC, len(out)-failed, failed)
	return base.NewResult(http.StatusOK, out, nil)
}
