// Package dbversion caches the version reported by the Weaviate server and
// answers capability questions against it.
package dbversion

import (
	"context"
	"errors"
	"sync"

	"github.com/platformbuilds/weaviate-client-go/pkg/logger"
)

// ErrEmptyVersion is returned by getters when the server answered without a version.
var ErrEmptyVersion = errors.New("dbversion: server reported an empty version")

// Getter fetches the version from the server, usually through GET /v1/meta.
type Getter func(ctx context.Context) (string, error)

// Provider holds the last known server version. The slot is shared by every
// API family derived from one client; concurrent refreshes race and the last
// successful one wins. The lock is never held across a fetch.
type Provider struct {
	getter Getter
	logger logger.Logger

	mu      sync.RWMutex
	version string
}

// NewProvider returns an empty cache that fetches through getter.
func NewProvider(getter Getter, log logger.Logger) *Provider {
	if log == nil {
		log = logger.NewNop()
	}
	return &Provider{getter: getter, logger: log}
}

// Refresh fetches the version and stores it. A failed fetch leaves the
// previous value in place.
func (p *Provider) Refresh(ctx context.Context) {
	if p == nil || p.getter == nil {
		return
	}
	v, err := p.getter(ctx)
	if err == nil && v == "" {
		err = ErrEmptyVersion
	}
	if err != nil {
		p.logger.Debug("weaviate version refresh failed", "error", err)
		return
	}

	p.mu.Lock()
	p.version = v
	p.mu.Unlock()
}

// Cached returns the stored version without touching the network.
func (p *Provider) Cached() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.version, p.version != ""
}

// Get returns the cached version, fetching it first when nothing has been
// cached yet. An empty string means the server version is unknown.
func (p *Provider) Get(ctx context.Context) string {
	if v, ok := p.Cached(); ok {
		return v
	}
	p.Refresh(ctx)
	v, _ := p.Cached()
	return v
}

// AtLeast reports whether the server version is at or above min. An unknown
// version never satisfies the gate.
func (p *Provider) AtLeast(ctx context.Context, min string) bool {
	v := p.Get(ctx)
	if v == "" {
		return false
	}
	return Compare(v, min) >= 0
}
