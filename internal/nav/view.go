package nav

import "github.com/BrandonAlanDev/Portfolio2025/internal/section"

// Class hints for the presentational layer.
const (
	LinkClassActive   = "px-3 py-1 rounded-full text-black bg-white"
	LinkClassInactive = "px-3 py-1 rounded-full text-gray-300 hover:text-white"
	MenuClassOpen     = "md:hidden mt-4 space-y-4"
	MenuClassClosed   = "hidden"
)

// RenderedItem is a view model for templates.
type RenderedItem struct {
	ID       string
	Href     string
	LabelKey string
	Label    string
	Active   bool
	Class    string
}

// Build renders navigation items for state, labelled in state.Locale.
func Build(state State, registry *section.Registry) []RenderedItem {
	sections := registry.Sections()
	items := make([]RenderedItem, 0, len(sections))
	for _, s := range sections {
		label, err := registry.LabelFor(s.ID, state.Locale)
		if err != nil {
			label = s.LabelKey
		}
		active := s.ID == state.ActiveSectionID
		items = append(items, RenderedItem{
			ID:       s.ID,
			Href:     "#" + s.ID,
			LabelKey: s.LabelKey,
			Label:    label,
			Active:   active,
			Class:    LinkClass(active),
		})
	}
	return items
}

// LinkClass returns the link class for an (in)active item.
func LinkClass(active bool) string {
	if active {
		return LinkClassActive
	}
	return LinkClassInactive
}

// MenuClass returns the class of the collapsible menu container.
func MenuClass(state State) string {
	if state.MenuOpen {
		return MenuClassOpen
	}
	return MenuClassClosed
}
