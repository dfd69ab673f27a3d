package nav

import "fmt"

// Event is an input accepted by Controller.Handle.
type Event interface {
	Kind() string
}

// Scroll reports the viewport's scroll offset and height.
type Scroll struct {
	Y              float64 `json:"scrollY"`
	ViewportHeight float64 `json:"viewportHeight"`
}

// Activate selects a section from a navigation control.
type Activate struct {
	ID string `json:"id"`
}

// ToggleMenu flips the collapsed/expanded menu.
type ToggleMenu struct{}

// SetLocale switches the label set.
type SetLocale struct {
	Locale string `json:"locale"`
}

func (Scroll) Kind() string     { return "scroll" }
func (Activate) Kind() string   { return "activate" }
func (ToggleMenu) Kind() string { return "menu" }
func (SetLocale) Kind() string  { return "locale" }

// Midpoint is the document offset tested against section bounds.
func (s Scroll) Midpoint() float64 { return s.Y + s.ViewportHeight/2 }

// Result describes the effect of one handled event.
type Result struct {
	Before State
	After  State
	Scroll *ScrollCommand
}

// Changed reports whether the event mutated the state.
func (r Result) Changed() bool { return r.Before != r.After }

// UnsupportedEventError is returned by Handle for event types it does not know.
type UnsupportedEventError struct {
	Event Event
}

func (e *UnsupportedEventError) Error() string {
	if e.Event == nil {
		return "nav: nil event"
	}
	return fmt.Sprintf("nav: unsupported event %T", e.Event)
}
