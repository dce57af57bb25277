package data

import (
	"context"
	"net/http"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/platformbuilds/weaviate-client-go/internal/transport"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/base"
)

// objectFields are the parts of an object a write request sends.
type objectFields struct {
	id         string
	className  string
	properties map[string]interface{}
	vector     []float32
	tenant     string
}

func (f objectFields) model() *models.Object {
	obj := &models.Object{
		ID:     strfmt.UUID(f.id),
		Class:  f.className,
		Tenant: f.tenant,
	}
	if f.properties != nil {
		obj.Properties = f.properties
	}
	if len(f.vector) > 0 {
		obj.Vector = f.vector
	}
	return obj
}

// Creator creates one object with POST /objects.
type Creator struct {
	conn             transport.Transport
	paths            pathBuilder
	fields           objectFields
	consistencyLevel string
}

func (c *Creator) WithID(id string) *Creator {
	c.fields.id = id
	return c
}

func (c *Creator) WithClassName(className string) *Creator {
	c.fields.className = className
	return c
}

func (c *Creator) WithProperties(properties map[string]interface{}) *Creator {
	c.fields.properties = properties
	return c
}

func (c *Creator) WithVector(vector []float32) *Creator {
	c.fields.vector = vector
	return c
}

func (c *Creator) WithTenant(tenant string) *Creator {
	c.fields.tenant = tenant
	return c
}

func (c *Creator) WithConsistencyLevel(level string) *Creator {
	c.consistencyLevel = level
	return c
}

// Object returns the payload Run would send.
func (c *Creator) Object() *models.Object { return c.fields.model() }

// Run posts the object and returns it as stored by the server.
func (c *Creator) Run(ctx context.Context) *base.Result[*models.Object] {
	var created models.Object
	path := c.paths.create(pathParams{consistencyLevel: c.consistencyLevel})
	resp := c.conn.Do(ctx, http.MethodPost, path, c.fields.model(), &created)
	return transport.Result(resp, &created)
}

// ObjectsGetter reads one object by id or lists objects of a class.
type ObjectsGetter struct {
	conn   transport.Transport
	paths  pathBuilder
	params pathParams
}

func (g *ObjectsGetter) WithID(id string) *ObjectsGetter {
	g.params.id = id
	return g
}

func (g *ObjectsGetter) WithClassName(className string) *ObjectsGetter {
	g.params.className = className
	return g
}

func (g *ObjectsGetter) WithTenant(tenant string) *ObjectsGetter {
	g.params.tenant = tenant
	return g
}

func (g *ObjectsGetter) WithConsistencyLevel(level string) *ObjectsGetter {
	g.params.consistencyLevel = level
	return g
}

func (g *ObjectsGetter) WithNodeName(node string) *ObjectsGetter {
	g.params.nodeName = node
	return g
}

// WithAdditional asks for additional properties such as base.AdditionalVector.
func (g *ObjectsGetter) WithAdditional(additional ...string) *ObjectsGetter {
	g.params.additional = append(g.params.additional, additional...)
	return g
}

func (g *ObjectsGetter) WithVector() *ObjectsGetter {
	return g.WithAdditional(base.AdditionalVector)
}

func (g *ObjectsGetter) WithLimit(limit int) *ObjectsGetter {
	g.params.limit = limit
	return g
}

func (g *ObjectsGetter) WithOffset(offset int) *ObjectsGetter {
	g.params.offset = offset
	return g
}

// WithAfter sets the cursor id for listing.
func (g *ObjectsGetter) WithAfter(after string) *ObjectsGetter {
	g.params.after = after
	return g
}

// Run returns the matching objects. Asking for a missing id yields a nil
// payload without errors.
func (g *ObjectsGetter) Run(ctx context.Context) *base.Result[[]*models.Object] {
	if g.params.id == "" {
		var list models.ObjectsListResponse
		resp := g.conn.Do(ctx, http.MethodGet, g.paths.list(g.params), nil, &list)
		if len(resp.Errors) > 0 {
			return base.ErrorResult[[]*models.Object](resp.StatusCode, resp.Errors)
		}
		return base.NewResult(resp.StatusCode, list.Objects, nil)
	}

	var obj models.Object
	resp := g.conn.Do(ctx, http.MethodGet, g.paths.object(ctx, g.params), nil, &obj)
	if resp.StatusCode == http.StatusNotFound {
		return base.NewResult[[]*models.Object](resp.StatusCode, nil, nil)
	}
	if len(resp.Errors) > 0 {
		return base.ErrorResult[[]*models.Object](resp.StatusCode, resp.Errors)
	}
	return base.NewResult(resp.StatusCode, []*models.Object{&obj}, nil)
}

// Deleter removes one object. The payload is true iff the server answered 204.
type Deleter struct {
	conn   transport.Transport
	paths  pathBuilder
	params pathParams
}

func (d *Deleter) WithID(id string) *Deleter {
	d.params.id = id
	return d
}

func (d *Deleter) WithClassName(className string) *Deleter {
	d.params.className = className
	return d
}

func (d *Deleter) WithTenant(tenant string) *Deleter {
	d.params.tenant = tenant
	return d
}

func (d *Deleter) WithConsistencyLevel(level string) *Deleter {
	d.params.consistencyLevel = level
	return d
}

// Run deletes the object.
func (d *Deleter) Run(ctx context.Context) *base.Result[bool] {
	resp := d.conn.Do(ctx, http.MethodDelete, d.paths.object(ctx, d.params), nil, nil)
	return transport.StatusResult(resp, http.StatusNoContent)
}

// Updater replaces an object with PUT, or merges properties into it with
// PATCH when WithMerge is set.
type Updater struct {
	conn             transport.Transport
	paths            pathBuilder
	fields           objectFields
	consistencyLevel string
	merge            bool
}

func (u *Updater) WithID(id string) *Updater {
	u.fields.id = id
	return u
}

func (u *Updater) WithClassName(className string) *Updater {
	u.fields.className = className
	return u
}

func (u *Updater) WithProperties(properties map[string]interface{}) *Updater {
	u.fields.properties = properties
	return u
}

func (u *Updater) WithVector(vector []float32) *Updater {
	u.fields.vector = vector
	return u
}

func (u *Updater) WithTenant(tenant string) *Updater {
	u.fields.tenant = tenant
	return u
}

func (u *Updater) WithConsistencyLevel(level string) *Updater {
	u.consistencyLevel = level
	return u
}

func (u *Updater) WithMerge() *Updater {
	u.merge = true
	return u
}

// Run sends PUT, or PATCH when merging.
func (u *Updater) Run(ctx context.Context) *base.Result[bool] {
	method := http.MethodPut
	if u.merge {
		method = http.MethodPatch
	}
	path := u.paths.object(ctx, pathParams{
		id:               u.fields.id,
		className:        u.fields.className,
		tenant:           u.fields.tenant,
		consistencyLevel: u.consistencyLevel,
	})
	resp := u.conn.Do(ctx, method, path, u.fields.model(), nil)
	return transport.StatusResult(resp, http.StatusOK, http.StatusNoContent)
}

// Validator asks the server whether an object would be accepted.
type Validator struct {
	conn   transport.Transport
	fields objectFields
}

func (v *Validator) WithID(id string) *Validator {
	v.fields.id = id
	return v
}

func (v *Validator) WithClassName(className string) *Validator {
	v.fields.className = className
	return v
}

func (v *Validator) WithProperties(properties map[string]interface{}) *Validator {
	v.fields.properties = properties
	return v
}

func (v *Validator) WithVector(vector []float32) *Validator {
	v.fields.vector = vector
	return v
}

// Run posts the object to /objects/validate.
func (v *Validator) Run(ctx context.Context) *base.Result[bool] {
	resp := v.conn.Do(ctx, http.MethodPost, "/objects/validate", v.fields.model(), nil)
	return transport.StatusResult(resp, http.StatusOK)
}

// Checker tests object existence with HEAD. A missing object is not an error.
type Checker struct {
	conn   transport.Transport
	paths  pathBuilder
	params pathParams
}

func (c *Checker) WithID(id string) *Checker {
	c.params.id = id
	return c
}

func (c *Checker) WithClassName(className string) *Checker {
	c.params.className = className
	return c
}

func (c *Checker) WithTenant(tenant string) *Checker {
	c.params.tenant = tenant
	return c
}

func (c *Checker) WithConsistencyLevel(level string) *Checker {
	c.params.consistencyLevel = level
	return c
}

// Run returns false with no error when the object does not exist.
func (c *Checker) Run(ctx context.Context) *base.Result[bool] {
	resp := c.conn.Do(ctx, http.MethodHead, c.paths.object(ctx, c.params), nil, nil)
	if resp.StatusCode == http.StatusNotFound {
		return base.NewResult(resp.StatusCode, false, nil)
	}
	return transport.StatusResult(resp, http.StatusNoContent)
}
