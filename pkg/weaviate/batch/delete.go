package batch

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/platformbuilds/weaviate-client-go/internal/transport"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/base"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/filters"
)

// DeleteMatch selects the objects a batch delete removes.
type DeleteMatch struct {
	Class string              `json:"class"`
	Where *models.WhereFilter `json:"where"`
}

// DeleteObject is a per-object outcome in verbose output.
type DeleteObject struct {
	ID     strfmt.UUID           `json:"id"`
	Status string                `json:"status"`
	Errors *models.ErrorResponse `json:"errors,omitempty"`
}

// DeleteResults summarises a batch delete.
type DeleteResults struct {
	Matches    int64          `json:"matches"`
	Limit      int64          `json:"limit"`
	Successful int64          `json:"successful"`
	Failed     int64          `json:"failed"`
	Objects    []DeleteObject `json:"objects,omitempty"`
}

// DeleteResponse is the body of DELETE /batch/objects.
type DeleteResponse struct {
	Match   *DeleteMatch   `json:"match"`
	Output  string         `json:"output,omitempty"`
	DryRun  bool           `json:"dryRun"`
	Results *DeleteResults `json:"results,omitempty"`
}

type deleteRequest struct {
	Match  *DeleteMatch `json:"match"`
	Output string       `json:"output,omitempty"`
	DryRun bool         `json:"dryRun"`
}

// ObjectsBatchDeleter removes every object of a class matching a where filter.
type ObjectsBatchDeleter struct {
	conn             transport.Transport
	className        string
	where            *models.WhereFilter
	output           string
	dryRun           bool
	tenant           string
	consistencyLevel string
}

func (d *ObjectsBatchDeleter) WithClassName(className string) *ObjectsBatchDeleter {
	d.className = className
	return d
}

func (d *ObjectsBatchDeleter) WithWhere(where *filters.WhereBuilder) *ObjectsBatchDeleter {
	d.where = where.Build()
	return d
}

// WithOutput selects OutputMinimal or OutputVerbose.
func (d *ObjectsBatchDeleter) WithOutput(output string) *ObjectsBatchDeleter {
	d.output = output
	return d
}

func (d *ObjectsBatchDeleter) WithDryRun(dryRun bool) *ObjectsBatchDeleter {
	d.dryRun = dryRun
	return d
}

func (d *ObjectsBatchDeleter) WithTenant(tenant string) *ObjectsBatchDeleter {
	d.tenant = tenant
	return d
}

func (d *ObjectsBatchDeleter) WithConsistencyLevel(level string) *ObjectsBatchDeleter {
	d.consistencyLevel = level
	return d
}

// Run sends DELETE /batch/objects with the match filter.
func (d *ObjectsBatchDeleter) Run(ctx context.Context) *base.Result[*DeleteResponse] {
	q := url.Values{}
	if d.tenant != "" {
		q.Set("tenant", d.tenant)
	}
	if d.consistencyLevel != "" {
		q.Set("consistency_level", d.consistencyLevel)
	}
	path := "/batch/objects"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	body := &deleteRequest{
		Match:  &DeleteMatch{Class: d.className, Where: d.where},
		Output: d.output,
		DryRun: d.dryRun,
	}
	var out DeleteResponse
	resp := d.conn.Do(ctx, http.MethodDelete, path, body, &out)
	return transport.Result(resp, &out)
}
