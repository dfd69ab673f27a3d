// Package httpserver wires the router, templates and handlers that serve the
// portfolio page and drive its mounted navigation controllers.
package httpserver

import (
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BrandonAlanDev/Portfolio2025/internal/content"
	mw "github.com/BrandonAlanDev/Portfolio2025/internal/middleware"
	"github.com/BrandonAlanDev/Portfolio2025/internal/page"
	"github.com/BrandonAlanDev/Portfolio2025/internal/section"
)

// Config carries the dependencies and settings the HTTP server needs.
type Config struct {
	Address        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	Dev            bool
	TemplatesDir   string
	PublicDir      string
	Pages          *page.Store
	Content        *content.Store
	Labels         section.LabelSource
	Sessions       *mw.Sessions
	Logger         *zap.Logger
	AllowedOrigins []string
}

// Server holds the handler dependencies.
type Server struct {
	pages    *page.Store
	content  *content.Store
	labels   section.LabelSource
	sessions *mw.Sessions
	render   *Renderer
	logger   *zap.Logger
	dev      bool
	origins  map[string]struct{}
}

// New constructs an *http.Server with the router and configured timeouts.
func New(cfg Config) (*http.Server, error) {
	h, err := NewHandler(cfg)
	if err != nil {
		return nil, err
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 15 * time.Second
	}
	idleTimeout := cfg.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = 60 * time.Second
	}
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       idleTimeout,
	}, nil
}

// NewHandler builds the router.
func NewHandler(cfg Config) (http.Handler, error) {
	switch {
	case cfg.Pages == nil:
		return nil, errors.New("httpserver: page store is required")
	case cfg.Content == nil:
		return nil, errors.New("httpserver: content store is required")
	case cfg.Labels == nil:
		return nil, errors.New("httpserver: label source is required")
	case cfg.Sessions == nil:
		return nil, errors.New("httpserver: sessions are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer, err := NewRenderer(cfg.TemplatesDir, cfg.Dev)
	if err != nil {
		return nil, err
	}

	s := &Server{
		pages:    cfg.Pages,
		content:  cfg.Content,
		labels:   cfg.Labels,
		sessions: cfg.Sessions,
		render:   renderer,
		logger:   logger.Named("http"),
		dev:      cfg.Dev,
		origins:  make(map[string]struct{}, len(cfg.AllowedOrigins)),
	}
	for _, o := range cfg.AllowedOrigins {
		s.origins[o] = struct{}{}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.HTMX)
	r.Use(mw.Logger(logger))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.PublicDir != "" {
		r.Handle("/assets/*", mw.AssetsWithCache(filepath.Join(cfg.PublicDir, "assets"), "/assets", cfg.Dev))
	}

	r.Group(func(r chi.Router) {
		r.Use(s.sessions.Middleware)
		r.Use(mw.CSRF)
		r.Use(mw.Locale)
		r.Use(mw.VaryLocale)

		r.Get("/", s.home)
		r.Route("/pages/{pageID}", func(r chi.Router) {
			r.Post("/scroll", s.scroll)
			r.Post("/activate/{sectionID}", s.activate)
			r.Post("/menu", s.toggleMenu)
			r.Post("/locale/{locale}", s.setLocale)
			r.With(mw.RequireHTMX).Get("/body", s.body)
			r.Get("/ws", s.stream)
			r.Post("/unmount", s.unmount)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		mw.WriteError(w, r, http.StatusNotFound, "not_found", "not found")
	})
	return r, nil
}
