package batch

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/platformbuilds/weaviate-client-go/internal/transport"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/base"
)

// ReferenceResponse is the per-reference outcome of a batch.
type ReferenceResponse struct {
	From   strfmt.URI    `json:"from,omitempty"`
	To     strfmt.URI    `json:"to,omitempty"`
	Tenant string        `json:"tenant,omitempty"`
	Result *ObjectResult `json:"result,omitempty"`
}

// ReferencesBatcher adds many cross references in one call.
type ReferencesBatcher struct {
	conn             transport.Transport
	references       []*models.BatchReference
	consistencyLevel string
}

func (b *ReferencesBatcher) WithReferences(refs ...*models.BatchReference) *ReferencesBatcher {
	b.references = append(b.references, refs...)
	return b
}

func (b *ReferencesBatcher) WithConsistencyLevel(level string) *ReferencesBatcher {
	b.consistencyLevel = level
	return b
}

// Run posts the references. Per-reference failures are in the payload.
func (b *ReferencesBatcher) Run(ctx context.Context) *base.Result[[]ReferenceResponse] {
	path := "/batch/references"
	if b.consistencyLevel != "" {
		path += "?" + url.Values{"consistency_level": {b.consistencyLevel}}.Encode()
	}
	refs := b.references
	if refs == nil {
		refs = []*models.BatchReference{}
	}
	var out []ReferenceResponse
	resp := b.conn.Do(ctx, http.MethodPost, path, refs, &out)
	return transport.Result(resp, out)
}

// ReferencePayloadBuilder builds the from and to beacons of a batch reference:
// weaviate://localhost/{class}/{id}/{property} and weaviate://localhost/{class}/{id}.
type ReferencePayloadBuilder struct {
	fromClassName string
	fromID        string
	fromProperty  string
	toClassName   string
	toID          string
	tenant        string
}

func (b *ReferencePayloadBuilder) WithFromClassName(className string) *ReferencePayloadBuilder {
	b.fromClassName = className
	return b
}

func (b *ReferencePayloadBuilder) WithFromID(id string) *ReferencePayloadBuilder {
	b.fromID = id
	return b
}

func (b *ReferencePayloadBuilder) WithFromRefProp(property string) *ReferencePayloadBuilder {
	b.fromProperty = property
	return b
}

func (b *ReferencePayloadBuilder) WithToClassName(className string) *ReferencePayloadBuilder {
	b.toClassName = className
	return b
}

func (b *ReferencePayloadBuilder) WithToID(id string) *ReferencePayloadBuilder {
	b.toID = id
	return b
}

func (b *ReferencePayloadBuilder) WithTenant(tenant string) *ReferencePayloadBuilder {
	b.tenant = tenant
	return b
}

// Payload returns the reference with from and to beacons.
func (b *ReferencePayloadBuilder) Payload() *models.BatchReference {
	return &models.BatchReference{
		From:   strfmt.URI(beacon(b.fromClassName, b.fromID, b.fromProperty)),
		To:     strfmt.URI(beacon(b.toClassName, b.toID)),
		Tenant: b.tenant,
	}
}

func beacon(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return "weaviate://localhost/" + strings.Join(nonEmpty, "/")
}
