// Package data holds the object and reference request builders.
package data

import (
	"github.com/google/uuid"

	"github.com/platformbuilds/weaviate-client-go/internal/dbversion"
	"github.com/platformbuilds/weaviate-client-go/internal/transport"
	"github.com/platformbuilds/weaviate-client-go/pkg/logger"
)

// API hands out the data request builders.
type API struct {
	conn    transport.Transport
	support *dbversion.Support
	paths   pathBuilder
}

// New builds the data API. log may be nil.
func New(conn transport.Transport, support *dbversion.Support, log logger.Logger) *API {
	if log == nil {
		log = logger.NewNop()
	}
	return &API{
		conn:    conn,
		support: support,
		paths:   pathBuilder{support: support, logger: log},
	}
}

// Creator creates an object.
func (a *API) Creator() *Creator { return &Creator{conn: a.conn, paths: a.paths} }

// ObjectsGetter fetches one object by id or lists objects.
func (a *API) ObjectsGetter() *ObjectsGetter {
	return &ObjectsGetter{conn: a.conn, paths: a.paths}
}

// Deleter deletes an object.
func (a *API) Deleter() *Deleter { return &Deleter{conn: a.conn, paths: a.paths} }

// Updater replaces or merges an object.
func (a *API) Updater() *Updater { return &Updater{conn: a.conn, paths: a.paths} }

// Validator checks an object against the schema without storing it.
func (a *API) Validator() *Validator { return &Validator{conn: a.conn} }

// Checker reports whether an object exists.
func (a *API) Checker() *Checker { return &Checker{conn: a.conn, paths: a.paths} }

// ReferenceCreator adds a reference to an object property.
func (a *API) ReferenceCreator() *ReferenceCreator {
	return &ReferenceCreator{referenceRequest: referenceRequest{conn: a.conn, paths: a.paths}}
}

// ReferenceReplacer replaces every reference of a property.
func (a *API) ReferenceReplacer() *ReferenceReplacer {
	return &ReferenceReplacer{referenceRequest: referenceRequest{conn: a.conn, paths: a.paths}}
}

// ReferenceDeleter removes one reference from a property.
func (a *API) ReferenceDeleter() *ReferenceDeleter {
	return &ReferenceDeleter{referenceRequest: referenceRequest{conn: a.conn, paths: a.paths}}
}

// ReferencePayloadBuilder builds the beacon for a reference target.
func (a *API) ReferencePayloadBuilder() *ReferencePayloadBuilder {
	return &ReferencePayloadBuilder{support: a.support, logger: a.paths.logger}
}

// GenerateUUID returns a random object identifier.
func GenerateUUID() string { return uuid.NewString() }
