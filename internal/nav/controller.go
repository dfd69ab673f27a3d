// Package nav owns the navigation state of a mounted page: which section is
// active, whether the collapsed menu is open, and which locale labels render in.
//
// A Controller is not safe for concurrent use. Its host delivers events one at
// a time and each handler runs to completion before the next one starts.
package nav

import (
	"errors"
	"fmt"
	"sort"

	"github.com/BrandonAlanDev/Portfolio2025/internal/section"
)

// ErrClosed is returned for events delivered after Close.
var ErrClosed = errors.New("nav: controller closed")

// Option customises controller construction.
type Option func(*options)

type options struct {
	scroller       Scroller
	acceptLanguage string
	locale         string
	initial        *string
}

// WithScroller sets the receiver of smooth-scroll commands.
func WithScroller(s Scroller) Option {
	return func(o *options) { o.scroller = s }
}

// WithAcceptLanguage supplies the user agent's language preference used to infer
// the initial locale.
func WithAcceptLanguage(header string) Option {
	return func(o *options) { o.acceptLanguage = header }
}

// WithLocale requests an explicit initial locale. It wins over WithAcceptLanguage
// when it matches a supported tag and is ignored otherwise.
func WithLocale(tag string) Option {
	return func(o *options) { o.locale = tag }
}

// WithInitialSection overrides the initially active section. None starts with no
// active section.
func WithInitialSection(id string) Option {
	return func(o *options) { o.initial = &id }
}

// Controller is the single writer of a page's State.
type Controller struct {
	registry  *section.Registry
	scroller  Scroller
	state     State
	observers map[int]Observer
	nextObs   int
	closed    bool
}

// New mounts a controller. The locale is inferred here and nowhere else.
func New(registry *section.Registry, opts ...Option) (*Controller, error) {
	if registry == nil {
		return nil, errors.New("nav: registry is required")
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	active := registry.First()
	if o.initial != nil {
		active = *o.initial
		if active != None && !registry.Has(active) {
			return nil, &section.UnknownSectionError{ID: active}
		}
	}
	return &Controller{
		registry:  registry,
		scroller:  o.scroller,
		observers: map[int]Observer{},
		state: State{
			ActiveSectionID: active,
			MenuOpen:        false,
			Locale:          inferLocale(registry, o.locale, o.acceptLanguage),
		},
	}, nil
}

func inferLocale(registry *section.Registry, explicit, acceptLanguage string) string {
	if explicit != "" {
		if l, ok := registry.MatchLocale(explicit); ok {
			return l
		}
	}
	if acceptLanguage != "" {
		return registry.ResolveLocale(acceptLanguage)
	}
	return registry.DefaultLocale()
}

// State returns a snapshot of the current state.
func (c *Controller) State() State { return c.state }

// Registry returns the registry the controller reads sections and labels from.
func (c *Controller) Registry() *section.Registry { return c.registry }

// Handle dispatches one typed event.
func (c *Controller) Handle(ev Event) (Result, error) {
	switch e := ev.(type) {
	case Scroll:
		return c.OnScroll(e.Y, e.ViewportHeight)
	case *Scroll:
		if e != nil {
			return c.OnScroll(e.Y, e.ViewportHeight)
		}
	case Activate:
		return c.Activate(e.ID)
	case *Activate:
		if e != nil {
			return c.Activate(e.ID)
		}
	case ToggleMenu:
		return c.ToggleMenu()
	case *ToggleMenu:
		if e != nil {
			return c.ToggleMenu()
		}
	case SetLocale:
		return c.SetLocale(e.Locale)
	case *SetLocale:
		if e != nil {
			return c.SetLocale(e.Locale)
		}
	}
	return Result{Before: c.state, After: c.state}, &UnsupportedEventError{Event: ev}
}

// OnScroll recomputes the active section from the viewport midpoint. The first
// section in registry order containing the midpoint wins; when none does the
// active section is left as it is.
func (c *Controller) OnScroll(scrollY, viewportHeight float64) (Result, error) {
	before := c.state
	if c.closed {
		return Result{Before: before, After: before}, ErrClosed
	}
	mid := Scroll{Y: scrollY, ViewportHeight: viewportHeight}.Midpoint()
	if id, ok := c.registry.At(mid); ok && id != c.state.ActiveSectionID {
		next := c.state
		next.ActiveSectionID = id
		c.commit(next)
	}
	return Result{Before: before, After: c.state}, nil
}

// Activate scrolls to id and marks it active immediately, closing the menu.
func (c *Controller) Activate(id string) (Result, error) {
	before := c.state
	if c.closed {
		return Result{Before: before, After: before}, ErrClosed
	}
	if !c.registry.Has(id) {
		return Result{Before: before, After: before}, &section.UnknownSectionError{ID: id}
	}
	cmd := ScrollCommand{
		SectionID: id,
		Top:       c.registry.BoundsOf(id).Top,
		Behavior:  BehaviorSmooth,
	}
	if c.scroller != nil {
		c.scroller.ScrollTo(cmd)
	}
	next := c.state
	next.ActiveSectionID = id
	next.MenuOpen = false
	c.commit(next)
	return Result{Before: before, After: c.state, Scroll: &cmd}, nil
}

// ToggleMenu flips MenuOpen. Whether that is visible is up to the presentation.
func (c *Controller) ToggleMenu() (Result, error) {
	before := c.state
	if c.closed {
		return Result{Before: before, After: before}, ErrClosed
	}
	next := c.state
	next.MenuOpen = !next.MenuOpen
	c.commit(next)
	return Result{Before: before, After: c.state}, nil
}

// SetLocale switches the locale. The active section is not re-derived here:
// bounds measured before the text swap are stale until the next scroll report.
func (c *Controller) SetLocale(locale string) (Result, error) {
	before := c.state
	if c.closed {
		return Result{Before: before, After: before}, ErrClosed
	}
	if !c.registry.SupportsLocale(locale) {
		return Result{Before: before, After: before}, &section.UnknownLocaleError{Locale: locale}
	}
	next := c.state
	next.Locale = locale
	c.commit(next)
	return Result{Before: before, After: c.state}, nil
}

// Observe registers a read-only observer. The returned func detaches it.
func (c *Controller) Observe(fn Observer) (cancel func()) {
	if fn == nil || c.closed {
		return func() {}
	}
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	return func() { delete(c.observers, id) }
}

// Observers returns the number of attached observers.
func (c *Controller) Observers() int { return len(c.observers) }

// Close detaches every observer; later events fail with ErrClosed.
func (c *Controller) Close() {
	c.closed = true
	c.observers = map[int]Observer{}
}

// Closed reports whether Close was called.
func (c *Controller) Closed() bool { return c.closed }

func (c *Controller) commit(next State) {
	prev := c.state
	if prev == next {
		return
	}
	c.state = next
	// registration order keeps notification deterministic
	ids := make([]int, 0, len(c.observers))
	for id := range c.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := c.observers[id]; ok {
			fn(prev, next)
		}
	}
}

// String renders the state for logs.
func (s State) String() string {
	active := s.ActiveSectionID
	if active == None {
		active = "none"
	}
	return fmt.Sprintf("active=%s menu=%t locale=%s", active, s.MenuOpen, s.Locale)
}
