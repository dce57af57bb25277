// Package contextionary talks to the text2vec-contextionary module.
package contextionary

import (
	"context"
	"net/http"
	"net/url"

	"github.com/platformbuilds/weaviate-client-go/internal/transport"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/base"
)

const modulePath = "/modules/text2vec-contextionary"

type NearestNeighbor struct {
	Word     string  `json:"word"`
	Distance float32 `json:"distance"`
}

type WordInfo struct {
	Vector           []float32          `json:"vector"`
	NearestNeighbors []*NearestNeighbor `json:"nearestNeighbors"`
}

type IndividualWord struct {
	Word    string    `json:"word"`
	Present bool      `json:"present"`
	Info    *WordInfo `json:"info,omitempty"`
}

type ConcatenatedWord struct {
	ConcatenatedWord             string             `json:"concatenatedWord"`
	SingleWords                  []string           `json:"singleWords"`
	ConcatenatedVector           []float32          `json:"concatenatedVector"`
	ConcatenatedNearestNeighbors []*NearestNeighbor `json:"concatenatedNearestNeighbors"`
}

// Concepts describes how the contextionary understands a concept.
type Concepts struct {
	IndividualWords  []*IndividualWord `json:"individualWords"`
	ConcatenatedWord *ConcatenatedWord `json:"concatenatedWord,omitempty"`
}

// Extension teaches the contextionary a new concept.
type Extension struct {
	Concept    string  `json:"concept"`
	Definition string  `json:"definition"`
	Weight     float32 `json:"weight"`
}

// API hands out the contextionary request builders.
type API struct {
	conn transport.Transport
}

// New builds the contextionary API.
func New(conn transport.Transport) *API { return &API{conn: conn} }

// ConceptsGetter looks up a concept in the contextionary.
func (a *API) ConceptsGetter() *ConceptsGetter { return &ConceptsGetter{conn: a.conn} }

// ExtensionCreator extends the contextionary with a new concept.
func (a *API) ExtensionCreator() *ExtensionCreator {
	return &ExtensionCreator{conn: a.conn, extension: Extension{Weight: 1}}
}

// ConceptsGetter looks a concept up.
type ConceptsGetter struct {
	conn    transport.Transport
	concept string
}

func (g *ConceptsGetter) WithConcept(concept string) *ConceptsGetter {
	g.concept = concept
	return g
}

// Run fetches the concept.
func (g *ConceptsGetter) Run(ctx context.Context) *base.Result[*Concepts] {
	var out Concepts
	resp := g.conn.Do(ctx, http.MethodGet, modulePath+"/concepts/"+url.PathEscape(g.concept), nil, &out)
	return transport.Result(resp, &out)
}

// ExtensionCreator adds a concept. The weight defaults to 1.
type ExtensionCreator struct {
	conn      transport.Transport
	extension Extension
}

func (c *ExtensionCreator) WithConcept(concept string) *ExtensionCreator {
	c.extension.Concept = concept
	return c
}

func (c *ExtensionCreator) WithDefinition(definition string) *ExtensionCreator {
	c.extension.Definition = definition
	return c
}

func (c *ExtensionCreator) WithWeight(weight float32) *ExtensionCreator {
	c.extension.Weight = weight
	return c
}

// Run posts the extension.
func (c *ExtensionCreator) Run(ctx context.Context) *base.Result[bool] {
	resp := c.conn.Do(ctx, http.MethodPost, modulePath+"/extensions", &c.extension, nil)
	return transport.StatusResult(resp, http.StatusOK)
}
