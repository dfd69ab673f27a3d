// Package testutil starts the full HTTP stack against the repository's
// templates, locales and content for handler tests.
package testutil

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/BrandonAlanDev/Portfolio2025/internal/content"
	"github.com/BrandonAlanDev/Portfolio2025/internal/httpserver"
	"github.com/BrandonAlanDev/Portfolio2025/internal/i18n"
	"github.com/BrandonAlanDev/Portfolio2025/internal/middleware"
	"github.com/BrandonAlanDev/Portfolio2025/internal/page"
	"github.com/BrandonAlanDev/Portfolio2025/internal/section"
)

// RepoPath joins elem onto the repository root.
func RepoPath(elem ...string) string {
	_, file, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(file), "..", "..")
	return filepath.Join(append([]string{root}, elem...)...)
}

// Labels loads the repository locale bundle.
func Labels(t testing.TB) *i18n.Bundle {
	t.Helper()

	b, err := i18n.Load(RepoPath("locales"), "es", []string{"es", "en"})
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}
	return b
}

// PageStore builds a page store over the portfolio sections.
func PageStore(t testing.TB, opts ...page.Option) *page.Store {
	t.Helper()

	registry, err := section.New(section.Default(), Labels(t), nil)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	store, err := page.NewStore(registry, opts...)
	if err != nil {
		t.Fatalf("page store: %v", err)
	}
	return store
}

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithPages wires a page store the test keeps a handle on.
func WithPages(store *page.Store) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Pages = store
	}
}

// WithDev toggles template reparsing and asset caching.
func WithDev(dev bool) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Dev = dev
	}
}

// WithAllowedOrigins sets extra websocket origins.
func WithAllowedOrigins(origins ...string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.AllowedOrigins = origins
	}
}

// NewServer constructs an httptest server running the HTTP stack with sensible defaults.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	labels := Labels(t)
	contentStore, err := content.NewStore(RepoPath("content"), "es", nil)
	if err != nil {
		t.Fatalf("content store: %v", err)
	}
	sessions, err := middleware.NewSessions(middleware.SessionConfig{
		HashKey: []byte("0123456789abcdef0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}

	cfg := httpserver.Config{
		Address:      ":0",
		TemplatesDir: RepoPath("templates"),
		PublicDir:    RepoPath("public"),
		Content:      contentStore,
		Labels:       labels,
		Sessions:     sessions,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Pages == nil {
		cfg.Pages = PageStore(t)
	}

	srv, err := httpserver.New(cfg)
	if err != nil {
		t.Fatalf("httpserver: %v", err)
	}
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

// NewClient returns a client that keeps the session cookie between requests.
func NewClient(t testing.TB) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}
