package nav

// None is the active-section sentinel used before the first measurement.
const None = ""

// BehaviorSmooth is the only scroll easing the controller issues.
const BehaviorSmooth = "smooth"

// State is the navigation state of one mounted page. It is a value: readers get
// snapshots, only the Controller produces new ones.
type State struct {
	ActiveSectionID string `json:"activeSectionId"`
	MenuOpen        bool   `json:"menuOpen"`
	Locale          string `json:"locale"`
}

// HasActive reports whether a section has been selected.
func (s State) HasActive() bool { return s.ActiveSectionID != None }

// ScrollCommand asks the host document to bring a section's top into view.
type ScrollCommand struct {
	SectionID string  `json:"id"`
	Top       float64 `json:"top"`
	Behavior  string  `json:"behavior"`
}

// Scroller receives scroll commands. The controller never waits on it.
type Scroller interface {
	ScrollTo(cmd ScrollCommand)
}

// ScrollerFunc adapts a function to Scroller.
type ScrollerFunc func(cmd ScrollCommand)

// ScrollTo implements Scroller.
func (f ScrollerFunc) ScrollTo(cmd ScrollCommand) { f(cmd) }

// Observer is notified after every state change with the previous and new state.
type Observer func(prev, next State)
