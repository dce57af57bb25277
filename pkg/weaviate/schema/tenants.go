package schema

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/weaviate/weaviate/entities/models"

	"github.com/platformbuilds/weaviate-client-go/internal/dbversion"
	"github.com/platformbuilds/weaviate-client-go/internal/transport"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/base"
)

// Tenant activity statuses.
const (
	TenantActivityStatusHot  = "HOT"
	TenantActivityStatusCold = "COLD"
)

func tenantsPath(className string) string {
	return classPath(className) + "/tenants"
}

// TenantsCreator adds tenants to a multi-tenant class.
type TenantsCreator struct {
	conn      transport.Transport
	className string
	tenants   []*models.Tenant
}

func (c *TenantsCreator) WithClassName(className string) *TenantsCreator {
	c.className = className
	return c
}

func (c *TenantsCreator) WithTenants(tenants ...*models.Tenant) *TenantsCreator {
	c.tenants = tenants
	return c
}

// Run posts the tenants.
func (c *TenantsCreator) Run(ctx context.Context) *base.Result[bool] {
	resp := c.conn.Do(ctx, http.MethodPost, tenantsPath(c.className), c.tenants, nil)
	return transport.StatusResult(resp, http.StatusOK)
}

// TenantsGetter lists the tenants of a class.
type TenantsGetter struct {
	conn      transport.Transport
	className string
}

func (g *TenantsGetter) WithClassName(className string) *TenantsGetter {
	g.className = className
	return g
}

// Run lists the tenants of the class.
func (g *TenantsGetter) Run(ctx context.Context) *base.Result[[]*models.Tenant] {
	var tenants []*models.Tenant
	resp := g.conn.Do(ctx, http.MethodGet, tenantsPath(g.className), nil, &tenants)
	return transport.Result(resp, tenants)
}

// TenantsUpdater changes the activity status of tenants.
type TenantsUpdater struct {
	conn      transport.Transport
	className string
	tenants   []*models.Tenant
}

func (u *TenantsUpdater) WithClassName(className string) *TenantsUpdater {
	u.className = className
	return u
}

func (u *TenantsUpdater) WithTenants(tenants ...*models.Tenant) *TenantsUpdater {
	u.tenants = tenants
	return u
}

// Run puts the tenants with their new activity status.
func (u *TenantsUpdater) Run(ctx context.Context) *base.Result[bool] {
	resp := u.conn.Do(ctx, http.MethodPut, tenantsPath(u.className), u.tenants, nil)
	return transport.StatusResult(resp, http.StatusOK)
}

// TenantsDeleter removes tenants by name.
type TenantsDeleter struct {
	conn      transport.Transport
	className string
	names     []string
}

func (d *TenantsDeleter) WithClassName(className string) *TenantsDeleter {
	d.className = className
	return d
}

func (d *TenantsDeleter) WithTenants(names ...string) *TenantsDeleter {
	d.names = names
	return d
}

// Run deletes the named tenants. An empty list is sent as [].
func (d *TenantsDeleter) Run(ctx context.Context) *base.Result[bool] {
	names := d.names
	if names == nil {
		names = []string{}
	}
	resp := d.conn.Do(ctx, http.MethodDelete, tenantsPath(d.className), names, nil)
	return transport.StatusResult(resp, http.StatusOK)
}

// TenantsExists checks one tenant with HEAD. Servers older than 1.25.0 have
// no such endpoint, so the check fails on the client side without a request.
type TenantsExists struct {
	conn      transport.Transport
	support   *dbversion.Support
	className string
	tenant    string
}

func (e *TenantsExists) WithClassName(className string) *TenantsExists {
	e.className = className
	return e
}

func (e *TenantsExists) WithTenant(tenant string) *TenantsExists {
	e.tenant = tenant
	return e
}

// Run fails without a request when the server is older than
// dbversion.VersionTenantExists. A missing tenant is false, not an error.
func (e *TenantsExists) Run(ctx context.Context) *base.Result[bool] {
	if !e.support.SupportsTenantExists(ctx) {
		msg := fmt.Sprintf("checking tenant existence requires Weaviate %s or newer, server is %q",
			dbversion.VersionTenantExists, e.support.Version(ctx))
		return base.ErrorResult[bool](0, []*base.WeaviateError{{Message: msg}})
	}
	path := tenantsPath(e.className) + "/" + url.PathEscape(e.tenant)
	resp := e.conn.Do(ctx, http.MethodHead, path, nil, nil)
	if resp.StatusCode == http.StatusNotFound {
		return base.NewResult(resp.StatusCode, false, nil)
	}
	return transport.StatusResult(resp, http.StatusOK)
}
