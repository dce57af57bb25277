// Package backup starts, inspects and cancels backups and restores. Every
// builder performs a single request; callers poll the status getters.
package backup

import (
	"context"
	"net/http"
	"net/url"

	"github.com/platformbuilds/weaviate-client-go/internal/transport"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/base"
)

// Storage backends.
const (
	BackendFilesystem = "filesystem"
	BackendS3         = "s3"
	BackendGCS        = "gcs"
	BackendAzure      = "azure"
)

// Backup and restore statuses.
const (
	StatusStarted      = "STARTED"
	StatusTransferring = "TRANSFERRING"
	StatusTransferred  = "TRANSFERRED"
	StatusSuccess      = "SUCCESS"
	StatusFailed       = "FAILED"
	StatusCanceled     = "CANCELED"
)

// API hands out the backup request builders.
type API struct {
	conn transport.Transport
}

// New builds the backup API.
func New(conn transport.Transport) *API { return &API{conn: conn} }

// Creator starts a backup.
func (a *API) Creator() *Creator { return &Creator{conn: a.conn} }

// CreateStatusGetter fetches the status of a backup.
func (a *API) CreateStatusGetter() *CreateStatusGetter { return &CreateStatusGetter{conn: a.conn} }

// Restorer restores a backup.
func (a *API) Restorer() *Restorer { return &Restorer{conn: a.conn} }

// RestoreStatusGetter fetches the status of a restore.
func (a *API) RestoreStatusGetter() *RestoreStatusGetter { return &RestoreStatusGetter{conn: a.conn} }

// Canceler cancels a running backup.
func (a *API) Canceler() *Canceler { return &Canceler{conn: a.conn} }

// CreateConfig tunes a backup.
type CreateConfig struct {
	CPUPercentage    int    `json:"CPUPercentage,omitempty"`
	ChunkSize        int    `json:"ChunkSize,omitempty"`
	CompressionLevel string `json:"CompressionLevel,omitempty"`
}

// RestoreConfig tunes a restore.
type RestoreConfig struct {
	CPUPercentage int `json:"CPUPercentage,omitempty"`
}

// CreateResponse is returned when a backup starts.
type CreateResponse struct {
	ID      string   `json:"id"`
	Backend string   `json:"backend"`
	Classes []string `json:"classes,omitempty"`
	Path    string   `json:"path,omitempty"`
	Status  string   `json:"status"`
	Error   string   `json:"error,omitempty"`
}

// RestoreResponse is returned when a restore starts.
type RestoreResponse = CreateResponse

// StatusResponse reports the progress of a backup or restore.
type StatusResponse struct {
	ID      string `json:"id"`
	Backend string `json:"backend"`
	Path    string `json:"path,omitempty"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

func backupPath(backend, id string) string {
	return "/backups/" + url.PathEscape(backend) + "/" + url.PathEscape(id)
}

type createRequest struct {
	ID      string        `json:"id"`
	Include []string      `json:"include,omitempty"`
	Exclude []string      `json:"exclude,omitempty"`
	Config  *CreateConfig `json:"config,omitempty"`
}

// Creator starts a backup.
type Creator struct {
	conn    transport.Transport
	backend string
	req     createRequest
}

func (c *Creator) WithBackend(backend string) *Creator {
	c.backend = backend
	return c
}

func (c *Creator) WithBackupID(id string) *Creator {
	c.req.ID = id
	return c
}

func (c *Creator) WithIncludeClassNames(classNames ...string) *Creator {
	c.req.Include = classNames
	return c
}

func (c *Creator) WithExcludeClassNames(classNames ...string) *Creator {
	c.req.Exclude = classNames
	return c
}

func (c *Creator) WithConfig(cfg *CreateConfig) *Creator {
	c.req.Config = cfg
	return c
}

// Run starts the backup on the backend. It does not wait for completion.
func (c *Creator) Run(ctx context.Context) *base.Result[*CreateResponse] {
	var out CreateResponse
	resp := c.conn.Do(ctx, http.MethodPost, "/backups/"+url.PathEscape(c.backend), &c.req, &out)
	return transport.Result(resp, &out)
}

// CreateStatusGetter reads the status of a backup.
type CreateStatusGetter struct {
	conn    transport.Transport
	backend string
	id      string
}

func (g *CreateStatusGetter) WithBackend(backend string) *CreateStatusGetter {
	g.backend = backend
	return g
}

func (g *CreateStatusGetter) WithBackupID(id string) *CreateStatusGetter {
	g.id = id
	return g
}

// Run fetches the backup status.
func (g *CreateStatusGetter) Run(ctx context.Context) *base.Result[*StatusResponse] {
	var out StatusResponse
	resp := g.conn.Do(ctx, http.MethodGet, backupPath(g.backend, g.id), nil, &out)
	return transport.Result(resp, &out)
}

type restoreRequest struct {
	Include []string       `json:"include,omitempty"`
	Exclude []string       `json:"exclude,omitempty"`
	Config  *RestoreConfig `json:"config,omitempty"`
}

// Restorer starts restoring a backup.
type Restorer struct {
	conn    transport.Transport
	backend string
	id      string
	req     restoreRequest
}

func (r *Restorer) WithBackend(backend string) *Restorer {
	r.backend = backend
	return r
}

func (r *Restorer) WithBackupID(id string) *Restorer {
	r.id = id
	return r
}

func (r *Restorer) WithIncludeClassNames(classNames ...string) *Restorer {
	r.req.Include = classNames
	return r
}

func (r *Restorer) WithExcludeClassNames(classNames ...string) *Restorer {
	r.req.Exclude = classNames
	return r
}

func (r *Restorer) WithConfig(cfg *RestoreConfig) *Restorer {
	r.req.Config = cfg
	return r
}

// Run starts the restore.
func (r *Restorer) Run(ctx context.Context) *base.Result[*RestoreResponse] {
	var out RestoreResponse
	resp := r.conn.Do(ctx, http.MethodPost, backupPath(r.backend, r.id)+"/restore", &r.req, &out)
	return transport.Result(resp, &out)
}

// RestoreStatusGetter reads the status of a restore.
type RestoreStatusGetter struct {
	conn    transport.Transport
	backend string
	id      string
}

func (g *RestoreStatusGetter) WithBackend(backend string) *RestoreStatusGetter {
	g.backend = backend
	return g
}

func (g *RestoreStatusGetter) WithBackupID(id string) *RestoreStatusGetter {
	g.id = id
	return g
}

// Run fetches the restore status.
func (g *RestoreStatusGetter) Run(ctx context.Context) *base.Result[*StatusResponse] {
	var out StatusResponse
	resp := g.conn.Do(ctx, http.MethodGet, backupPath(g.backend, g.id)+"/restore", nil, &out)
	return transport.Result(resp, &out)
}

// Canceler aborts a running backup. The payload is true iff the server
// answered 204.
type Canceler struct {
	conn    transport.Transport
	backend string
	id      string
}

func (c *Canceler) WithBackend(backend string) *Canceler {
	c.backend = backend
	return c
}

func (c *Canceler) WithBackupID(id string) *Canceler {
	c.id = id
	return c
}

// Run cancels the backup.
func (c *Canceler) Run(ctx context.Context) *base.Result[bool] {
	resp := c.conn.Do(ctx, http.MethodDelete, backupPath(c.backend, c.id), nil, nil)
	return transport.StatusResult(resp, http.StatusNoContent)
}
