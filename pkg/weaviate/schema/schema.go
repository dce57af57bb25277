// Package schema manages classes, properties, shards and tenants.
package schema

import (
	"context"
	"net/http"
	"net/url"

	"github.com/weaviate/weaviate/entities/models"

	"github.com/platformbuilds/weaviate-client-go/internal/dbversion"
	"github.com/platformbuilds/weaviate-client-go/internal/transport"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/base"
)

// API hands out the schema request builders.
type API struct {
	conn    transport.Transport
	support *dbversion.Support
}

// New builds the schema API.
func New(conn transport.Transport, support *dbversion.Support) *API {
	return &API{conn: conn, support: support}
}

// Getter fetches the whole schema.
func (a *API) Getter() *Getter { return &Getter{conn: a.conn} }

// ClassCreator creates a class.
func (a *API) ClassCreator() *ClassCreator { return &ClassCreator{conn: a.conn} }

// ClassGetter fetches one class.
func (a *API) ClassGetter() *ClassGetter { return &ClassGetter{conn: a.conn} }

// ClassUpdater replaces a class definition.
func (a *API) ClassUpdater() *ClassUpdater { return &ClassUpdater{conn: a.conn} }

// ClassDeleter deletes a class and its objects.
func (a *API) ClassDeleter() *ClassDeleter { return &ClassDeleter{conn: a.conn} }

// AllDeleter deletes every class.
func (a *API) AllDeleter() *AllDeleter { return &AllDeleter{conn: a.conn} }

// PropertyCreator adds a property to an existing class.
func (a *API) PropertyCreator() *PropertyCreator { return &PropertyCreator{conn: a.conn} }

// ShardsGetter lists the shards of a class.
func (a *API) ShardsGetter() *ShardsGetter { return &ShardsGetter{conn: a.conn} }

// ShardUpdater sets the status of one shard.
func (a *API) ShardUpdater() *ShardUpdater { return &ShardUpdater{conn: a.conn} }

// ShardsUpdater sets the status of every shard of a class.
func (a *API) ShardsUpdater() *ShardsUpdater { return &ShardsUpdater{conn: a.conn} }

// TenantsCreator adds tenants to a class.
func (a *API) TenantsCreator() *TenantsCreator { return &TenantsCreator{conn: a.conn} }

// TenantsGetter lists the tenants of a class.
func (a *API) TenantsGetter() *TenantsGetter { return &TenantsGetter{conn: a.conn} }

// TenantsUpdater changes tenant activity status.
func (a *API) TenantsUpdater() *TenantsUpdater { return &TenantsUpdater{conn: a.conn} }

// TenantsDeleter removes tenants by name.
func (a *API) TenantsDeleter() *TenantsDeleter { return &TenantsDeleter{conn: a.conn} }

// ClassExistenceChecker reports whether a class exists.
func (a *API) ClassExistenceChecker() *ClassExistenceChecker {
	return &ClassExistenceChecker{conn: a.conn}
}

// TenantsExists reports whether a tenant exists. It needs a server that
// supports the tenant HEAD endpoint.
func (a *API) TenantsExists() *TenantsExists {
	return &TenantsExists{conn: a.conn, support: a.support}
}

func classPath(className string) string {
	return "/schema/" + url.PathEscape(className)
}

// Getter dumps the whole schema.
type Getter struct {
	conn transport.Transport
}

// Run fetches GET /schema.
func (g *Getter) Run(ctx context.Context) *base.Result[*models.Schema] {
	var schema models.Schema
	resp := g.conn.Do(ctx, http.MethodGet, "/schema", nil, &schema)
	return transport.Result(resp, &schema)
}

// ClassCreator creates a class. Module configuration is sent as given.
type ClassCreator struct {
	conn  transport.Transport
	class *models.Class
}

func (c *ClassCreator) WithClass(class *models.Class) *ClassCreator {
	c.class = class
	return c
}

// Run posts the class to /schema.
func (c *ClassCreator) Run(ctx context.Context) *base.Result[bool] {
	resp := c.conn.Do(ctx, http.MethodPost, "/schema", c.class, nil)
	return transport.StatusResult(resp, http.StatusOK)
}

// ClassGetter reads one class. A missing class yields a nil payload without errors.
type ClassGetter struct {
	conn      transport.Transport
	className string
}

func (g *ClassGetter) WithClassName(className string) *ClassGetter {
	g.className = className
	return g
}

// Run fetches the class. A missing class yields a nil payload and no error.
func (g *ClassGetter) Run(ctx context.Context) *base.Result[*models.Class] {
	var class models.Class
	resp := g.conn.Do(ctx, http.MethodGet, classPath(g.className), nil, &class)
	if resp.StatusCode == http.StatusNotFound {
		return base.NewResult[*models.Class](resp.StatusCode, nil, nil)
	}
	return transport.Result(resp, &class)
}

// ClassExistenceChecker reports whether a class is defined.
type ClassExistenceChecker struct {
	conn      transport.Transport
	className string
}

func (c *ClassExistenceChecker) WithClassName(className string) *ClassExistenceChecker {
	c.className = className
	return c
}

// Run returns false with no error when the class is missing.
func (c *ClassExistenceChecker) Run(ctx context.Context) *base.Result[bool] {
	resp := c.conn.Do(ctx, http.MethodGet, classPath(c.className), nil, nil)
	if resp.StatusCode == http.StatusNotFound {
		return base.NewResult(resp.StatusCode, false, nil)
	}
	return transport.StatusResult(resp, http.StatusOK)
}

// ClassUpdater replaces the mutable settings of a class.
type ClassUpdater struct {
	conn  transport.Transport
	class *models.Class
}

func (u *ClassUpdater) WithClass(class *models.Class) *ClassUpdater {
	u.class = class
	return u
}

// Run puts the class definition under its own name.
func (u *ClassUpdater) Run(ctx context.Context) *base.Result[bool] {
	name := ""
	if u.class != nil {
		name = u.class.Class
	}
	resp := u.conn.Do(ctx, http.MethodPut, classPath(name), u.class, nil)
	return transport.StatusResult(resp, http.StatusOK)
}

// ClassDeleter drops a class and all of its objects.
type ClassDeleter struct {
	conn      transport.Transport
	className string
}

func (d *ClassDeleter) WithClassName(className string) *ClassDeleter {
	d.className = className
	return d
}

// Run deletes the class.
func (d *ClassDeleter) Run(ctx context.Context) *base.Result[bool] {
	resp := d.conn.Do(ctx, http.MethodDelete, classPath(d.className), nil, nil)
	return transport.StatusResult(resp, http.StatusOK)
}

// AllDeleter reads the schema and deletes every class in it, stopping at the
// first failure.
type AllDeleter struct {
	conn transport.Transport
}

// Run reads the schema and deletes its classes one by one, stopping at the
// first failure.
func (d *AllDeleter) Run(ctx context.Context) *base.Result[bool] {
	schema := (&Getter{conn: d.conn}).Run(ctx)
	if schema.HasErrors() {
		return base.ErrorResult[bool](schema.StatusCode, schema.Errors)
	}
	status := schema.StatusCode
	for _, class := range schema.Payload.Classes {
		if class == nil {
			continue
		}
		res := (&ClassDeleter{conn: d.conn, className: class.Class}).Run(ctx)
		if res.HasErrors() || !res.Payload {
			return res
		}
		status = res.StatusCode
	}
	return base.NewResult(status, true, nil)
}

// PropertyCreator adds a property to an existing class.
type PropertyCreator struct {
	conn      transport.Transport
	className string
	property  *models.Property
}

func (c *PropertyCreator) WithClassName(className string) *PropertyCreator {
	c.className = className
	return c
}

func (c *PropertyCreator) WithProperty(property *models.Property) *PropertyCreator {
	c.property = property
	return c
}

// Run posts the property to the class.
func (c *PropertyCreator) Run(ctx context.Context) *base.Result[bool] {
	resp := c.conn.Do(ctx, http.MethodPost, classPath(c.className)+"/properties", c.property, nil)
	return transport.StatusResult(resp, http.StatusOK)
}
