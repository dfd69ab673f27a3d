// Package page hosts mounted documents. Each Page owns one navigation
// controller and the geometry its browser reported, and serialises every event
// delivered to it.
package page

import (
	"context"
	"reflect"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BrandonAlanDev/Portfolio2025/internal/layout"
	"github.com/BrandonAlanDev/Portfolio2025/internal/nav"
	"github.com/BrandonAlanDev/Portfolio2025/internal/section"
)

// Measure carries freshly measured section geometry.
type Measure struct {
	Bounds map[string]section.Bounds `json:"bounds"`
}

// Kind implements nav.Event.
func (Measure) Kind() string { return "measure" }

// Report is what the browser sends on scroll: the viewport plus, optionally,
// the geometry measured in the same frame.
type Report struct {
	ScrollY        float64                   `json:"scrollY"`
	ViewportHeight float64                   `json:"viewportHeight"`
	Bounds         map[string]section.Bounds `json:"bounds,omitempty"`
}

// Snapshot is a consistent read of a page.
type Snapshot struct {
	ID         string    `json:"pageId"`
	State      nav.State `json:"state"`
	Stale      bool      `json:"stale"`
	LastActive time.Time `json:"lastActive"`
}

// Page is one mounted document.
type Page struct {
	ID        string
	SessionID string
	Created   time.Time

	mu         sync.Mutex
	ctrl       *nav.Controller
	registry   *section.Registry
	layout     *layout.Measurements
	pending    *nav.ScrollCommand
	lastActive time.Time
	handled    int

	now     func() time.Time
	logger  *zap.Logger
	tracer  trace.Tracer
	events  metric.Int64Counter
	ignored []string
}

// ScrollTo implements nav.Scroller. Only the latest command is kept.
func (p *Page) ScrollTo(cmd nav.ScrollCommand) {
	p.pending = &cmd
}

// Dispatch delivers one event and runs it to completion before any other event
// for this page is accepted.
func (p *Page) Dispatch(ctx context.Context, ev nav.Event) (nav.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dispatchLocked(ctx, ev)
}

// Report applies the geometry before the scroll it accompanies, atomically.
func (p *Page) Report(ctx context.Context, r Report) (nav.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	before := p.ctrl.State()
	if len(r.Bounds) > 0 {
		if _, err := p.dispatchLocked(ctx, Measure{Bounds: r.Bounds}); err != nil {
			return nav.Result{Before: before, After: before}, err
		}
	}
	res, err := p.dispatchLocked(ctx, nav.Scroll{Y: r.ScrollY, ViewportHeight: r.ViewportHeight})
	res.Before = before
	return res, err
}

func (p *Page) dispatchLocked(ctx context.Context, ev nav.Event) (nav.Result, error) {
	kind := eventKind(ev)
	ctx, span := p.tracer.Start(ctx, "page.dispatch "+kind, trace.WithAttributes(
		attribute.String("page.id", p.ID),
		attribute.String("nav.event", kind),
	))
	defer span.End()

	p.lastActive = p.now()
	p.handled++

	var (
		res nav.Result
		err error
	)
	switch e := ev.(type) {
	case Measure:
		res, err = p.measureLocked(e)
	case *Measure:
		if e == nil {
			res, err = p.ctrl.Handle(ev)
			break
		}
		res, err = p.measureLocked(*e)
	default:
		res, err = p.ctrl.Handle(ev)
		if err == nil && kind == (nav.SetLocale{}).Kind() && res.Before.Locale != res.After.Locale {
			// text reflows in the new locale; bounds are stale until the next report
			p.layout.Invalidate()
		}
	}

	outcome := "unchanged"
	switch {
	case err != nil:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Error("navigation event rejected",
			zap.String("page_id", p.ID),
			zap.String("event", kind),
			zap.Error(err),
		)
	case res.Changed():
		outcome = "changed"
		p.logger.Debug("navigation state changed",
			zap.String("page_id", p.ID),
			zap.String("event", kind),
			zap.Stringer("before", res.Before),
			zap.Stringer("after", res.After),
		)
	}
	span.SetAttributes(attribute.String("nav.outcome", outcome))
	p.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
	return res, err
}

func (p *Page) measureLocked(m Measure) (nav.Result, error) {
	state := p.ctrl.State()
	if p.ctrl.Closed() {
		return nav.Result{Before: state, After: state}, nav.ErrClosed
	}
	ignored := p.layout.Update(m.Bounds)
	if len(ignored) > 0 {
		p.ignored = append(p.ignored[:0], ignored...)
		p.logger.Warn("ignored geometry for unknown sections",
			zap.String("page_id", p.ID),
			zap.Strings("ids", ignored),
		)
	}
	return nav.Result{Before: state, After: state}, nil
}

// PendingScroll drains the latest scroll command, if any.
func (p *Page) PendingScroll() (nav.ScrollCommand, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return nav.ScrollCommand{}, false
	}
	cmd := *p.pending
	p.pending = nil
	return cmd, true
}

// State returns the current navigation state.
func (p *Page) State() nav.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctrl.State()
}

// Snapshot returns the state together with page metadata.
func (p *Page) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		ID:         p.ID,
		State:      p.ctrl.State(),
		Stale:      p.layout.Stale(),
		LastActive: p.lastActive,
	}
}

// Items renders the navigation view model for the current state.
func (p *Page) Items() []nav.RenderedItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	return nav.Build(p.ctrl.State(), p.registry)
}

// Observe attaches a read-only observer. It runs synchronously inside Dispatch
// and must not block or call back into the page.
func (p *Page) Observe(fn nav.Observer) (cancel func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	detach := p.ctrl.Observe(fn)
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		detach()
	}
}

// Bounds returns the last geometry reported by the browser.
func (p *Page) Bounds() map[string]section.Bounds {
	return p.layout.Snapshot()
}

// IgnoredIDs returns the ids dropped from the most recent report that had any.
func (p *Page) IgnoredIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.ignored...)
}

// activity returns when the page last handled an event and whether it ever did.
// A page nobody reported to was most likely loaded without script.
func (p *Page) activity() (last time.Time, engaged bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastActive, p.handled > 0
}

func eventKind(ev nav.Event) string {
	if ev == nil {
		return "unknown"
	}
	if v := reflect.ValueOf(ev); v.Kind() == reflect.Pointer && v.IsNil() {
		return "unknown"
	}
	return ev.Kind()
}

func (p *Page) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctrl.Close()
	p.pending = nil
}
