package data

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/platformbuilds/weaviate-client-go/internal/dbversion"
	"github.com/platformbuilds/weaviate-client-go/pkg/logger"
)

// pathParams are the parts an object or reference path may carry.
type pathParams struct {
	id               string
	className        string
	tenant           string
	consistencyLevel string
	nodeName         string
	property         string
	additional       []string
	limit            int
	offset           int
	after            string
}

// pathBuilder decides between /objects/{id} and /objects/{class}/{id}
// depending on what the server understands.
type pathBuilder struct {
	support *dbversion.Support
	logger  logger.Logger
}

func (b pathBuilder) namespaced(ctx context.Context, p pathParams) bool {
	supported := b.support.SupportsClassNameNamespacedEndpoints(ctx)
	switch {
	case supported && p.className == "":
		b.logger.Warn("objects path without class name is deprecated, provide the class name",
			"since", dbversion.VersionClassNamespacedEndpoints, "id", p.id)
	case !supported && p.className != "":
		b.logger.Warn("class name ignored in objects path, server does not support class namespaced endpoints",
			"required", dbversion.VersionClassNamespacedEndpoints, "server", b.support.Version(ctx))
	}
	return supported && p.className != ""
}

// object builds the path for single object operations.
func (b pathBuilder) object(ctx context.Context, p pathParams) string {
	var sb strings.Builder
	sb.WriteString("/objects")
	if b.namespaced(ctx, p) {
		sb.WriteString("/" + url.PathEscape(p.className))
	}
	if p.id != "" {
		sb.WriteString("/" + url.PathEscape(p.id))
	}
	return sb.String() + query(p, false)
}

// list builds GET /objects with the class passed as a query parameter.
func (b pathBuilder) list(p pathParams) string {
	return "/objects" + query(p, true)
}

// create builds POST /objects; class and tenant travel in the body.
func (b pathBuilder) create(p pathParams) string {
	return "/objects" + query(pathParams{consistencyLevel: p.consistencyLevel}, false)
}

func (b pathBuilder) references(ctx context.Context, p pathParams) string {
	path := b.object(ctx, pathParams{id: p.id, className: p.className})
	path += "/references/" + url.PathEscape(p.property)
	return path + query(pathParams{tenant: p.tenant, consistencyLevel: p.consistencyLevel}, false)
}

func query(p pathParams, listing bool) string {
	q := url.Values{}
	if len(p.additional) > 0 {
		q.Set("include", strings.Join(p.additional, ","))
	}
	if p.consistencyLevel != "" {
		q.Set("consistency_level", p.consistencyLevel)
	}
	if p.nodeName != "" {
		q.Set("node_name", p.nodeName)
	}
	if p.tenant != "" {
		q.Set("tenant", p.tenant)
	}
	if listing {
		if p.className != "" {
			q.Set("class", p.className)
		}
		if p.limit > 0 {
			q.Set("limit", strconv.Itoa(p.limit))
		}
		if p.offset > 0 {
			q.Set("offset", strconv.Itoa(p.offset))
		}
		if p.after != "" {
			q.Set("after", p.after)
		}
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
