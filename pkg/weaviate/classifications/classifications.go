// Package classifications schedules and inspects classification jobs.
package classifications

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

// Classification types.
const (
	KNN        = "knn"
	Contextual = "text2vec-contextionary-contextual"
	ZeroShot   = "zeroshot"
)

// Job statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Filters restrict the objects taking part in a classification.
type Filters struct {
	SourceWhere      *models.WhereFilter `json:"sourceWhere,omitempty"`
	TargetWhere      *models.WhereFilter `json:"targetWhere,omitempty"`
	TrainingSetWhere *models.WhereFilter `json:"trainingSetWhere,omitempty"`
}

// Meta carries job timing and counts.
type Meta struct {
	Started        strfmt.DateTime `json:"started,omitempty"`
	Completed      strfmt.DateTime `json:"completed,omitempty"`
	Count          int64           `json:"count,omitempty"`
	CountSucceeded int64           `json:"countSucceeded,omitempty"`
	CountFailed    int64           `json:"countFailed,omitempty"`
}

// Classification is both the scheduling request and the job description.
type Classification struct {
	ID                 strfmt.UUID `json:"id,omitempty"`
	Class              string      `json:"class"`
	Type               string      `json:"type"`
	ClassifyProperties []string    `json:"classifyProperties,omitempty"`
	BasedOnProperties  []string    `json:"basedOnProperties,omitempty"`
	Settings           interface{} `json:"settings,omitempty"`
	Filters            *Filters    `json:"filters,omitempty"`
	Status             string      `json:"status,omitempty"`
	Error              string      `json:"error,omitempty"`
	Meta               *Meta       `json:"meta,omitempty"`
}

// API hands out the classification request builders.
type API struct {
	conn transport.Transport
}

// New builds the classifications API.
func New(conn transport.Transport) *API { return &API{conn: conn} }

// Scheduler starts a classification.
func (a *API) Scheduler() *Scheduler { return &Scheduler{conn: a.conn} }

// Getter fetches a classification by id.
func (a *API) Getter() *Getter { return &Getter{conn: a.conn} }

// Scheduler starts a classification job. The job runs asynchronously on the
// server; use Getter to follow it.
type Scheduler struct {
	conn           transport.Transport
	classification Classification
	filters        Filters
}

func (s *Scheduler) WithType(classificationType string) *Scheduler {
	s.classification.Type = classificationType
	return s
}

func (s *Scheduler) WithClassName(className string) *Scheduler {
	s.classification.Class = className
	return s
}

func (s *Scheduler) WithClassifyProperties(properties ...string) *Scheduler {
	s.classification.ClassifyProperties = properties
	return s
}

func (s *Scheduler) WithBasedOnProperties(properties ...string) *Scheduler {
	s.classification.BasedOnProperties = properties
	return s
}

// WithSettings passes type specific settings, e.g. {"k": 3} for knn.
func (s *Scheduler) WithSettings(settings interface{}) *Scheduler {
	s.classification.Settings = settings
	return s
}

func (s *Scheduler) WithSourceWhereFilter(where *filters.WhereBuilder) *Scheduler {
	s.filters.SourceWhere = where.Build()
	return s
}

func (s *Scheduler) WithTargetWhereFilter(where *filters.WhereBuilder) *Scheduler {
	s.filters.TargetWhere = where.Build()
	return s
}

func (s *Scheduler) WithTrainingSetWhereFilter(where *filters.WhereBuilder) *Scheduler {
	s.filters.TrainingSetWhere = where.Build()
	return s
}

// Run posts the classification. Filters are sent only when one is set.
func (s *Scheduler) Run(ctx context.Context) *base.Result[*Classification] {
	body := s.classification
	if s.filters != (Filters{}) {
		f := s.filters
		body.Filters = &f
	}
	var out Classification
	resp := s.conn.Do(ctx, http.MethodPost, "/classifications", &body, &out)
	return transport.Result(resp, &out)
}

// Getter reads a classification job by id.
type Getter struct {
	conn transport.Transport
	id   string
}

func (g *Getter) WithID(id string) *Getter {
	g.id = id
	return g
}

// Run fetches the classification.
func (g *Getter) Run(ctx context.Context) *base.Result[*Classification] {
	var out Classification
	resp := g.conn.Do(ctx, http.MethodGet, "/classifications/"+url.PathEscape(g.id), nil, &out)
	return transport.Result(resp, &out)
}
