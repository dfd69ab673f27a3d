package page

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BrandonAlanDev/Portfolio2025/internal/layout"
	"github.com/BrandonAlanDev/Portfolio2025/internal/nav"
	"github.com/BrandonAlanDev/Portfolio2025/internal/observability"
	"github.com/BrandonAlanDev/Portfolio2025/internal/section"
)

var (
	// ErrNotFound is returned for unknown or unmounted pages.
	ErrNotFound = errors.New("page: not found")
	// ErrForbidden is returned when a page is addressed from another session.
	ErrForbidden = errors.New("page: owned by another session")
)

const (
	defaultTTL           = 30 * time.Minute
	defaultSweepInterval = time.Minute
)

// MountOptions describe the document being mounted.
type MountOptions struct {
	SessionID      string
	AcceptLanguage string
	// Locale is an explicit preference (?hl=) tried before AcceptLanguage.
	Locale string
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets how long an idle page survives before Sweep removes it.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithUnreportedTTL sets a shorter lifetime for pages that never handled an
// event, such as documents fetched by crawlers. Zero keeps the regular TTL.
func WithUnreportedTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.unreportedTTL = ttl
		}
	}
}

// WithMaxPages caps the mounted pages. At capacity Mount evicts the page idle
// the longest, preferring pages that never handled an event. Zero means no cap.
func WithMaxPages(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

// WithSweepInterval sets the Run ticker interval.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store keeps the mounted pages of the process.
type Store struct {
	registry      *section.Registry
	ttl           time.Duration
	unreportedTTL time.Duration
	maxPages      int
	interval      time.Duration
	now           func() time.Time
	logger        *zap.Logger
	tracer        trace.Tracer
	events        metric.Int64Counter
	mounted       metric.Int64UpDownCounter

	mu    sync.RWMutex
	pages map[string]*Page
}

// NewStore builds a page store over the shared section registry.
func NewStore(registry *section.Registry, opts ...Option) (*Store, error) {
	if registry == nil {
		return nil, errors.New("page: registry is required")
	}
	s := &Store{
		registry: registry,
		ttl:      defaultTTL,
		interval: defaultSweepInterval,
		now:      time.Now,
		logger:   zap.NewNop(),
		tracer:   observability.Tracer("page"),
		pages:    map[string]*Page{},
	}
	for _, opt := range opts {
		opt(s)
	}

	meter := observability.Meter("page")
	var err error
	s.events, err = meter.Int64Counter("portfolio.nav.events",
		metric.WithDescription("Navigation events handled, by kind and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("page: create events counter: %w", err)
	}
	s.mounted, err = meter.Int64UpDownCounter("portfolio.pages.mounted",
		metric.WithDescription("Pages currently mounted"),
	)
	if err != nil {
		return nil, fmt.Errorf("page: create mounted counter: %w", err)
	}
	return s, nil
}

// Registry returns the shared registry (without per-page geometry).
func (s *Store) Registry() *section.Registry { return s.registry }

// Mount creates a page with its own controller and geometry table. The locale
// is inferred here, once.
func (s *Store) Mount(ctx context.Context, opts MountOptions) (*Page, error) {
	now := s.now()
	p := &Page{
		ID:         uuid.NewString(),
		SessionID:  opts.SessionID,
		Created:    now,
		lastActive: now,
		now:        s.now,
		tracer:     s.tracer,
		events:     s.events,
	}
	p.layout = layout.New(s.registry.Has)
	p.registry = s.registry.WithBounds(p.layout)

	ctrl, err := nav.New(p.registry,
		nav.WithScroller(p),
		nav.WithLocale(opts.Locale),
		nav.WithAcceptLanguage(opts.AcceptLanguage),
	)
	if err != nil {
		return nil, fmt.Errorf("page: mount: %w", err)
	}
	p.ctrl = ctrl
	p.logger = s.logger.With(zap.String("page_id", p.ID))

	s.mu.Lock()
	var evicted *Page
	if s.maxPages > 0 && len(s.pages) >= s.maxPages {
		evicted = s.evictableLocked()
		delete(s.pages, evicted.ID)
	}
	s.pages[p.ID] = p
	s.mu.Unlock()
	s.mounted.Add(ctx, 1)
	if evicted != nil {
		evicted.close()
		s.mounted.Add(ctx, -1)
		s.logger.Warn("page store full, evicted page", zap.String("page_id", evicted.ID), zap.Int("max", s.maxPages))
	}

	observability.FromContext(ctx).Info("page mounted",
		zap.String("page_id", p.ID),
		zap.String("locale", ctrl.State().Locale),
	)
	return p, nil
}

// Get returns a page regardless of its owner.
func (s *Store) Get(id string) (*Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pages[id]
	return p, ok
}

// Lookup returns the page if it exists and belongs to sessionID.
func (s *Store) Lookup(id, sessionID string) (*Page, error) {
	p, ok := s.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	if p.SessionID != sessionID {
		return nil, ErrForbidden
	}
	return p, nil
}

// Unmount detaches the page's listeners and forgets it.
func (s *Store) Unmount(ctx context.Context, id, sessionID string) error {
	p, err := s.Lookup(id, sessionID)
	if err != nil {
		return err
	}
	s.remove(ctx, p)
	observability.FromContext(ctx).Info("page unmounted", zap.String("page_id", id))
	return nil
}

func (s *Store) remove(ctx context.Context, p *Page) {
	s.mu.Lock()
	_, ok := s.pages[p.ID]
	delete(s.pages, p.ID)
	s.mu.Unlock()
	if !ok {
		return
	}
	p.close()
	s.mounted.Add(ctx, -1)
}

// evictableLocked picks the page idle the longest, unengaged pages first.
// s.pages must not be empty.
func (s *Store) evictableLocked() *Page {
	var (
		victim        *Page
		victimLast    time.Time
		victimEngaged bool
	)
	for _, p := range s.pages {
		last, engaged := p.activity()
		switch {
		case victim == nil,
			victimEngaged && !engaged,
			victimEngaged == engaged && last.Before(victimLast):
			victim, victimLast, victimEngaged = p, last, engaged
		}
	}
	return victim
}

// Sweep unmounts pages idle for longer than the TTL, or the unreported TTL for
// pages that never handled an event, and returns how many.
func (s *Store) Sweep(ctx context.Context, now time.Time) int {
	s.mu.RLock()
	var idle []*Page
	for _, p := range s.pages {
		last, engaged := p.activity()
		ttl := s.ttl
		if !engaged && s.unreportedTTL > 0 && s.unreportedTTL < ttl {
			ttl = s.unreportedTTL
		}
		if now.Sub(last) > ttl {
			idle = append(idle, p)
		}
	}
	s.mu.RUnlock()

	for _, p := range idle {
		s.remove(ctx, p)
	}
	if len(idle) > 0 {
		s.logger.Info("swept idle pages", zap.Int("count", len(idle)), zap.Int("remaining", s.Len()))
	}
	return len(idle)
}

// Run sweeps on the configured interval until ctx is done.
func (s *Store) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep(ctx, s.now())
		}
	}
}

// Len returns the number of mounted pages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages)
}
