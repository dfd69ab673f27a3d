// Package layout keeps the section geometry last reported by the browser.
package layout

import (
	"sort"
	"sync"

	"github.com/BrandonAlanDev/Portfolio2025/internal/section"
)

// Measurements is a section.BoundsProvider fed by client reports. Values may be
// stale (after a locale swap reflows text) or absent (before mount); both read as
// ordinary data, never as errors.
type Measurements struct {
	mu      sync.RWMutex
	known   func(id string) bool
	bounds  map[string]section.Bounds
	stale   bool
	reports int
}

// New returns an empty measurement table. known filters ids; nil accepts all.
func New(known func(id string) bool) *Measurements {
	return &Measurements{known: known, bounds: map[string]section.Bounds{}}
}

// BoundsOf implements section.BoundsProvider.
func (m *Measurements) BoundsOf(id string) section.Bounds {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bounds[id]
}

// Update records a report. Sections absent from the report keep their last
// value. Ids rejected by the known filter are skipped and returned sorted.
func (m *Measurements) Update(report map[string]section.Bounds) (ignored []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, b := range report {
		if m.known != nil && !m.known(id) {
			ignored = append(ignored, id)
			continue
		}
		if b.Height < 0 {
			b.Height = 0
		}
		m.bounds[id] = b
	}
	m.stale = false
	m.reports++
	sort.Strings(ignored)
	return ignored
}

// Invalidate flags every value as stale; they stay readable until replaced.
func (m *Measurements) Invalidate() {
	m.mu.Lock()
	m.stale = true
	m.mu.Unlock()
}

// Stale reports whether a reflow happened since the last report.
func (m *Measurements) Stale() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stale
}

// Reports returns how many reports were applied.
func (m *Measurements) Reports() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reports
}

// Snapshot copies the current table.
func (m *Measurements) Snapshot() map[string]section.Bounds {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]section.Bounds, len(m.bounds))
	for id, b := range m.bounds {
		out[id] = b
	}
	return out
}
