package data

import (
	"context"
	"net/http"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/platformbuilds/weaviate-client-go/internal/dbversion"
	"github.com/platformbuilds/weaviate-client-go/internal/transport"
	"github.com/platformbuilds/weaviate-client-go/pkg/logger"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/base"
)

const beaconPrefix = "weaviate://localhost/"

// referenceRequest carries the source side of a reference operation.
type referenceRequest struct {
	conn   transport.Transport
	paths  pathBuilder
	params pathParams
}

func (r *referenceRequest) path(ctx context.Context) string {
	return r.paths.references(ctx, r.params)
}

// ReferenceCreator adds one reference to a reference property.
type ReferenceCreator struct {
	referenceRequest
	reference *models.SingleRef
}

func (c *ReferenceCreator) WithID(id string) *ReferenceCreator {
	c.params.id = id
	return c
}

func (c *ReferenceCreator) WithClassName(className string) *ReferenceCreator {
	c.params.className = className
	return c
}

func (c *ReferenceCreator) WithReferenceProperty(property string) *ReferenceCreator {
	c.params.property = property
	return c
}

func (c *ReferenceCreator) WithReference(ref *models.SingleRef) *ReferenceCreator {
	c.reference = ref
	return c
}

func (c *ReferenceCreator) WithTenant(tenant string) *ReferenceCreator {
	c.params.tenant = tenant
	return c
}

func (c *ReferenceCreator) WithConsistencyLevel(level string) *ReferenceCreator {
	c.params.consistencyLevel = level
	return c
}

// Run posts the reference.
func (c *ReferenceCreator) Run(ctx context.Context) *base.Result[bool] {
	resp := c.conn.Do(ctx, http.MethodPost, c.path(ctx), c.reference, nil)
	return transport.StatusResult(resp, http.StatusOK)
}

// ReferenceReplacer replaces every reference of a property.
type ReferenceReplacer struct {
	referenceRequest
	references models.MultipleRef
}

func (r *ReferenceReplacer) WithID(id string) *ReferenceReplacer {
	r.params.id = id
	return r
}

func (r *ReferenceReplacer) WithClassName(className string) *ReferenceReplacer {
	r.params.className = className
	return r
}

func (r *ReferenceReplacer) WithReferenceProperty(property string) *ReferenceReplacer {
	r.params.property = property
	return r
}

func (r *ReferenceReplacer) WithReferences(refs ...*models.SingleRef) *ReferenceReplacer {
	r.references = refs
	return r
}

func (r *ReferenceReplacer) WithTenant(tenant string) *ReferenceReplacer {
	r.params.tenant = tenant
	return r
}

func (r *ReferenceReplacer) WithConsistencyLevel(level string) *ReferenceReplacer {
	r.params.consistencyLevel = level
	return r
}

// Run puts the references. No references clears the property.
func (r *ReferenceReplacer) Run(ctx context.Context) *base.Result[bool] {
	refs := r.references
	if refs == nil {
		refs = models.MultipleRef{}
	}
	resp := r.conn.Do(ctx, http.MethodPut, r.path(ctx), refs, nil)
	return transport.StatusResult(resp, http.StatusOK)
}

// ReferenceDeleter removes one reference. The payload is true iff the server
// answered 204.
type ReferenceDeleter struct {
	referenceRequest
	reference *models.SingleRef
}

func (d *ReferenceDeleter) WithID(id string) *ReferenceDeleter {
	d.params.id = id
	return d
}

func (d *ReferenceDeleter) WithClassName(className string) *ReferenceDeleter {
	d.params.className = className
	return d
}

func (d *ReferenceDeleter) WithReferenceProperty(property string) *ReferenceDeleter {
	d.params.property = property
	return d
}

func (d *ReferenceDeleter) WithReference(ref *models.SingleRef) *ReferenceDeleter {
	d.reference = ref
	return d
}

func (d *ReferenceDeleter) WithTenant(tenant string) *ReferenceDeleter {
	d.params.tenant = tenant
	return d
}

func (d *ReferenceDeleter) WithConsistencyLevel(level string) *ReferenceDeleter {
	d.params.consistencyLevel = level
	return d
}

// Run deletes the reference.
func (d *ReferenceDeleter) Run(ctx context.Context) *base.Result[bool] {
	resp := d.conn.Do(ctx, http.MethodDelete, d.path(ctx), d.reference, nil)
	return transport.StatusResult(resp, http.StatusNoContent)
}

// ReferencePayloadBuilder builds the beacon pointing at a target object.
type ReferencePayloadBuilder struct {
	support   *dbversion.Support
	logger    logger.Logger
	id        string
	className string
}

func (b *ReferencePayloadBuilder) WithID(id string) *ReferencePayloadBuilder {
	b.id = id
	return b
}

func (b *ReferencePayloadBuilder) WithClassName(className string) *ReferencePayloadBuilder {
	b.className = className
	return b
}

// Payload returns weaviate://localhost/{class}/{id}, or the class-less form
// when no class is given or the server predates class-qualified beacons.
func (b *ReferencePayloadBuilder) Payload(ctx context.Context) *models.SingleRef {
	beacon := beaconPrefix + b.id
	if b.className != "" {
		if b.support.SupportsClassNameNamespacedEndpoints(ctx) {
			beacon = beaconPrefix + b.className + "/" + b.id
		} else {
			b.logger.Warn("class name ignored in beacon, server does not support class namespaced beacons",
				"required", dbversion.VersionClassNamespacedEndpoints)
		}
	}
	return &models.SingleRef{Beacon: strfmt.URI(beacon)}
}
