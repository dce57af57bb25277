// Package cabundle keeps a PEM CA bundle loaded for outgoing TLS connections
// and reloads it when the file changes on disk.
package cabundle

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/platformbuilds/weaviate-client-go/pkg/logger"
)

// Manager watches a CA bundle file and exposes the certificate pool built from it.
type Manager struct {
	path     string
	logger   logger.Logger
	onChange func()

	mu   sync.RWMutex
	pool *x509.CertPool

	transport atomic.Pointer[http.Transport]

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewManager loads the bundle at path and starts watching its directory.
// When path is empty the manager is inert and RootCAs returns nil.
func NewManager(path string, log logger.Logger, onChange func()) (*Manager, error) {
	if log == nil {
		log = logger.NewNop()
	}
	cleanPath := ""
	if path != "" {
		cleanPath = filepath.Clean(path)
	}
	mgr := &Manager{
		path:     cleanPath,
		logger:   log,
		onChange: onChange,
	}

	if cleanPath == "" {
		return mgr, nil
	}

	if err := mgr.reloadBundle(); err != nil {
		return nil, fmt.Errorf("load CA bundle %s: %w", cleanPath, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	mgr.watcher = watcher
	mgr.stopCh = make(chan struct{})
	mgr.doneCh = make(chan struct{})

	dir := filepath.Dir(cleanPath)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			log.Warn("failed to close CA bundle watcher after add failure", "error", closeErr)
		}
		return nil, fmt.Errorf("watch directory %s: %w", dir, err)
	}

	go mgr.watchLoop()
	log.Info("CA bundle loaded", "path", cleanPath)
	return mgr, nil
}

// RootCAs returns the current certificate pool. It is nil when no bundle is configured.
func (m *Manager) RootCAs() *x509.CertPool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pool
}

// TLSConfig builds a client TLS config trusting the current pool.
func (m *Manager) TLSConfig() *tls.Config {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if pool := m.RootCAs(); pool != nil {
		cfg.RootCAs = pool
	}
	return cfg
}

// RoundTripper returns an http.RoundTripper whose TLS settings follow the
// bundle. A reload swaps in a fresh transport and drops idle connections of
// the previous one.
func (m *Manager) RoundTripper() http.RoundTripper {
	if m.transport.Load() == nil {
		m.swapTransport()
	}
	return roundTripper{m: m}
}

type roundTripper struct{ m *Manager }

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt.m.transport.Load().RoundTrip(req)
}

func (m *Manager) swapTransport() {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.TLSClientConfig = m.TLSConfig()
	if old := m.transport.Swap(t); old != nil {
		old.CloseIdleConnections()
	}
}

// ForceReload reloads the bundle from disk immediately.
func (m *Manager) ForceReload() error {
	if m.path == "" {
		return nil
	}
	return m.reloadBundle()
}

// Close stops the watcher and releases resources.
func (m *Manager) Close() error {
	if m == nil || m.watcher == nil {
		return nil
	}
	close(m.stopCh)
	err := m.watcher.Close()
	<-m.doneCh
	if t := m.transport.Load(); t != nil {
		t.CloseIdleConnections()
	}
	return err
}

func (m *Manager) watchLoop() {
	defer close(m.doneCh)

	for {
		select {
		case event := <-m.watcher.Events:
			if !m.isRelevant(event) {
				continue
			}
			if err := m.reloadWithRetries(); err != nil {
				m.logger.Warn("CA bundle reload failed", "path", m.path, "error", err)
				continue
			}
			m.logger.Info("CA bundle reloaded", "path", m.path)
			if m.onChange != nil {
				m.onChange()
			}
		case err := <-m.watcher.Errors:
			m.logger.Warn("CA bundle watcher error", "error", err)
		case <-m.stopCh:
			return
		}
	}
}

func (m *Manager) reloadWithRetries() error {
	const (
		attempts = 5
		delay    = 200 * time.Millisecond
	)

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := m.reloadBundle(); err != nil {
			lastErr = err
			time.Sleep(delay)
			continue
		}
		return nil
	}
	return lastErr
}

func (m *Manager) reloadBundle() error {
	pool, err := loadBundle(m.path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.pool = pool
	m.mu.Unlock()
	if m.transport.Load() != nil {
		m.swapTransport()
	}
	return nil
}

func (m *Manager) isRelevant(event fsnotify.Event) bool {
	if event.Name == "" {
		return true
	}
	eventPath := filepath.Clean(event.Name)
	if eventPath == m.path {
		return true
	}
	// ConfigMap mounts swap a ..data symlink next to the file.
	return filepath.Dir(eventPath) == filepath.Dir(m.path)
}

var (
	errInvalidPEMData       = errors.New("invalid PEM data in CA bundle")
	errUnexpectedPEMBlock   = errors.New("unexpected PEM block type")
	errNoCertificatesInPool = errors.New("no certificates found in CA bundle")
)

const certificateBlockType = "CERTIFICATE"

func loadBundle(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CA bundle: %w", err)
	}

	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}

	rest := data
	added := false
	for len(rest) > 0 {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			if len(bytes.TrimSpace(rest)) == 0 {
				break
			}
			return nil, errInvalidPEMData
		}
		if block.Type != certificateBlockType {
			return nil, fmt.Errorf("%w: %s", errUnexpectedPEMBlock, block.Type)
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse certificate: %w", err)
		}
		pool.AddCert(cert)
		added = true
	}

	if !added {
		return nil, errNoCertificatesInPool
	}
	return pool, nil
}
