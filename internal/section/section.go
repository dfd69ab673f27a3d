// Package section holds the fixed, ordered set of navigable page sections and
// answers label and geometry queries against it.
package section

import (
	"fmt"
	"strings"
)

// Section is one navigable region of the page. ID doubles as the DOM anchor.
type Section struct {
	ID       string
	LabelKey string // i18n key, e.g. "nav.about"
	TitleKey string // heading key; "section.<id>.title" when empty
}

// Portfolio is the navigation order of the portfolio page.
var Portfolio = []Section{
	{ID: "home", LabelKey: "nav.home"},
	{ID: "about", LabelKey: "nav.about"},
	{ID: "projects", LabelKey: "nav.projects"},
	{ID: "contact", LabelKey: "nav.contact"},
}

func (s Section) titleKey() string {
	if s.TitleKey != "" {
		return s.TitleKey
	}
	return "section." + s.ID + ".title"
}

// Default returns a copy of Portfolio.
func Default() []Section {
	out := make([]Section, len(Portfolio))
	copy(out, Portfolio)
	return out
}

// Bounds is a section's vertical extent in document coordinates.
type Bounds struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// IsZero reports a zero-area result, i.e. a section that is not measurable yet.
func (b Bounds) IsZero() bool { return b.Height <= 0 }

// Bottom returns Top+Height.
func (b Bounds) Bottom() float64 { return b.Top + b.Height }

// Contains reports top <= y <= top+height. Zero-area bounds contain nothing.
func (b Bounds) Contains(y float64) bool {
	if b.IsZero() {
		return false
	}
	return b.Top <= y && y <= b.Bottom()
}

// BoundsProvider reads live geometry. Implementations return zero Bounds for
// sections they have not measured; they never fail.
type BoundsProvider interface {
	BoundsOf(id string) Bounds
}

// BoundsFunc adapts a function to BoundsProvider.
type BoundsFunc func(id string) Bounds

// BoundsOf implements BoundsProvider.
func (f BoundsFunc) BoundsOf(id string) Bounds { return f(id) }

// StaticBounds is a fixed geometry table, handy for tests and server-side defaults.
type StaticBounds map[string]Bounds

// BoundsOf implements BoundsProvider.
func (s StaticBounds) BoundsOf(id string) Bounds { return s[id] }

var unmeasured = BoundsFunc(func(string) Bounds { return Bounds{} })

// LabelSource resolves display labels. *i18n.Bundle satisfies it.
type LabelSource interface {
	Supported() []string
	Fallback() string
	IsSupported(locale string) bool
	T(locale, key string) string
	Match(tag string) (string, bool)
	Resolve(acceptLanguage string) string
}

// Registry is the immutable, ordered section list plus the label table and a
// geometry source. It is safe for concurrent reads.
type Registry struct {
	sections []Section
	index    map[string]int
	labels   LabelSource
	bounds   BoundsProvider
}

// New validates the sequence once; the registry never changes afterwards.
// A nil bounds provider reports every section as unmeasured.
func New(sections []Section, labels LabelSource, bounds BoundsProvider) (*Registry, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: no sections", ErrInvalidRegistry)
	}
	if labels == nil {
		return nil, fmt.Errorf("%w: label source is required", ErrInvalidRegistry)
	}
	index := make(map[string]int, len(sections))
	seq := make([]Section, 0, len(sections))
	for i, s := range sections {
		id := strings.TrimSpace(s.ID)
		if id == "" || id != s.ID {
			return nil, fmt.Errorf("%w: section %d has a blank or padded id %q", ErrInvalidRegistry, i, s.ID)
		}
		if _, dup := index[id]; dup {
			return nil, fmt.Errorf("%w: duplicate section id %q", ErrInvalidRegistry, id)
		}
		index[id] = i
		seq = append(seq, s)
	}
	if bounds == nil {
		bounds = unmeasured
	}
	return &Registry{sections: seq, index: index, labels: labels, bounds: bounds}, nil
}

// WithBounds returns a registry sharing this sequence and label table but
// reading geometry from p.
func (r *Registry) WithBounds(p BoundsProvider) *Registry {
	if p == nil {
		p = unmeasured
	}
	cp := *r
	cp.bounds = p
	return &cp
}

// Sections returns the sequence in display order. The slice is a copy.
func (r *Registry) Sections() []Section {
	out := make([]Section, len(r.sections))
	copy(out, r.sections)
	return out
}

// IDs returns the section ids in display order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.sections))
	for i, s := range r.sections {
		out[i] = s.ID
	}
	return out
}

// Len returns the number of sections.
func (r *Registry) Len() int { return len(r.sections) }

// First returns the first registered section id.
func (r *Registry) First() string { return r.sections[0].ID }

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.index[id]
	return ok
}

// Index returns the position of id, or -1.
func (r *Registry) Index(id string) int {
	if i, ok := r.index[id]; ok {
		return i
	}
	return -1
}

// Lookup returns the section registered under id.
func (r *Registry) Lookup(id string) (Section, error) {
	i, ok := r.index[id]
	if !ok {
		return Section{}, &UnknownSectionError{ID: id}
	}
	return r.sections[i], nil
}

// Locales returns the closed set of supported locale tags.
func (r *Registry) Locales() []string { return r.labels.Supported() }

// DefaultLocale is the locale used when the user agent preference matches nothing.
func (r *Registry) DefaultLocale() string { return r.labels.Fallback() }

// SupportsLocale reports whether locale is in the supported set.
func (r *Registry) SupportsLocale(locale string) bool { return r.labels.IsSupported(locale) }

// MatchLocale maps a tag such as "es-AR" onto a supported locale by prefix.
func (r *Registry) MatchLocale(tag string) (string, bool) { return r.labels.Match(tag) }

// ResolveLocale negotiates an Accept-Language header against the supported set,
// falling back to DefaultLocale.
func (r *Registry) ResolveLocale(acceptLanguage string) string {
	return r.labels.Resolve(acceptLanguage)
}

// LabelFor resolves the display label of id in locale.
func (r *Registry) LabelFor(id, locale string) (string, error) {
	s, err := r.Lookup(id)
	if err != nil {
		return "", err
	}
	if !r.labels.IsSupported(locale) {
		return "", &UnknownLocaleError{Locale: locale}
	}
	return r.labels.T(locale, s.LabelKey), nil
}

// TitleFor resolves the heading of id in locale. It fails like LabelFor.
func (r *Registry) TitleFor(id, locale string) (string, error) {
	s, err := r.Lookup(id)
	if err != nil {
		return "", err
	}
	if !r.labels.IsSupported(locale) {
		return "", &UnknownLocaleError{Locale: locale}
	}
	return r.labels.T(locale, s.titleKey()), nil
}

// BoundsOf reads live geometry for id. It never fails: unknown or unmounted
// sections yield zero Bounds.
func (r *Registry) BoundsOf(id string) Bounds {
	if !r.Has(id) {
		return Bounds{}
	}
	return r.bounds.BoundsOf(id)
}

// At returns the first section, in registry order, whose bounds contain y.
func (r *Registry) At(y float64) (string, bool) {
	for _, s := range r.sections {
		if r.bounds.BoundsOf(s.ID).Contains(y) {
			return s.ID, true
		}
	}
	return "", false
}
