// Package app assembles the portfolio server from its configuration and runs
// it until the context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BrandonAlanDev/Portfolio2025/internal/config"
	"github.com/BrandonAlanDev/Portfolio2025/internal/content"
	"github.com/BrandonAlanDev/Portfolio2025/internal/httpserver"
	"github.com/BrandonAlanDev/Portfolio2025/internal/i18n"
	"github.com/BrandonAlanDev/Portfolio2025/internal/middleware"
	"github.com/BrandonAlanDev/Portfolio2025/internal/page"
	"github.com/BrandonAlanDev/Portfolio2025/internal/section"
)

// App is a fully wired server.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	server  *http.Server
	pages   *page.Store
	content *content.Store
}

// New loads locales and content and builds the HTTP server.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	labels, err := i18n.Load(cfg.Paths.Locales, cfg.Locales.Default, cfg.Locales.Supported)
	if err != nil {
		return nil, fmt.Errorf("load locales: %w", err)
	}
	registry, err := section.New(section.Default(), labels, nil)
	if err != nil {
		return nil, fmt.Errorf("section registry: %w", err)
	}
	profiles, err := content.NewStore(cfg.Paths.Content, cfg.Locales.Default, logger.Named("content"))
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	warnMissingProfiles(profiles, labels.Supported(), logger)
	if cfg.Dev {
		profiles.OnReload(func() { warnMissingProfiles(profiles, labels.Supported(), logger) })
	}

	pages, err := page.NewStore(registry,
		page.WithTTL(cfg.Pages.TTL),
		page.WithUnreportedTTL(cfg.Pages.UnreportedTTL),
		page.WithMaxPages(cfg.Pages.Max),
		page.WithSweepInterval(cfg.Pages.SweepInterval),
		page.WithLogger(logger.Named("pages")),
	)
	if err != nil {
		return nil, fmt.Errorf("page store: %w", err)
	}

	if cfg.Session.HashKey == "" {
		logger.Warn("session hash key not configured, generating an ephemeral one")
	}
	sessions, err := middleware.NewSessions(middleware.SessionConfig{
		CookieName: cfg.Session.CookieName,
		HashKey:    []byte(cfg.Session.HashKey),
		BlockKey:   []byte(cfg.Session.BlockKey),
		Secure:     cfg.Session.Secure,
	})
	if err != nil {
		return nil, err
	}

	srv, err := httpserver.New(httpserver.Config{
		Address:        cfg.Server.Addr,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		Dev:            cfg.Dev,
		TemplatesDir:   cfg.Paths.Templates,
		PublicDir:      cfg.Paths.Public,
		Pages:          pages,
		Content:        profiles,
		Labels:         labels,
		Sessions:       sessions,
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	if err != nil {
		return nil, fmt.Errorf("http server: %w", err)
	}

	return &App{cfg: cfg, logger: logger, server: srv, pages: pages, content: profiles}, nil
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler { return a.server.Handler }

// Run serves HTTP, sweeps idle pages and, in dev mode, watches the content
// directory. It returns once ctx is cancelled and the server has drained.
func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("starting HTTP server", zap.String("addr", a.server.Addr), zap.Bool("dev", a.cfg.Dev))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.pages.Run(gCtx)
	})

	if a.cfg.Dev {
		g.Go(func() error {
			if err := a.content.Watch(gCtx); err != nil {
				// the site keeps serving the loaded copy
				a.logger.Warn("content watcher unavailable", zap.Error(err))
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown error", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		a.logger.Error("application error", zap.Error(err))
		return err
	}
	a.logger.Info("server stopped")
	return nil
}

// warnMissingProfiles logs every supported locale without its own profile and
// returns them sorted.
func warnMissingProfiles(profiles *content.Store, locales []string, logger *zap.Logger) []string {
	have := make(map[string]struct{})
	for _, l := range profiles.Locales() {
		have[l] = struct{}{}
	}
	var missing []string
	for _, l := range locales {
		if _, ok := have[l]; ok {
			continue
		}
		logger.Warn("no profile for locale, fallback copy will be served", zap.String("locale", l))
		missing = append(missing, l)
	}
	sort.Strings(missing)
	return missing
}

func (a *App) shutdownTimeout() time.Duration {
	if a.cfg.Server.ShutdownTimeout > 0 {
		return a.cfg.Server.ShutdownTimeout
	}
	return 10 * time.Second
}
