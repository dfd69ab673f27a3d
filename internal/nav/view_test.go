package nav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildLabelsAndHighlights(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t, nil)

	items := Build(State{ActiveSectionID: "about", Locale: "en"}, reg)
	require.Len(t, items, 3)
	require.Equal(t, "#home", items[0].Href)
	require.Equal(t, "Home", items[0].Label)
	require.False(t, items[0].Active)
	require.Equal(t, LinkClassInactive, items[0].Class)
	require.True(t, items[1].Active)
	require.Equal(t, "About me", items[1].Label)
	require.Equal(t, LinkClassActive, items[1].Class)

	items = Build(State{ActiveSectionID: "about", Locale: "es"}, reg)
	require.Equal(t, "Sobre mí", items[1].Label)
}

func TestBuildWithoutActiveSection(t *testing.T) {
	t.Parallel()

	for _, it := range Build(State{ActiveSectionID: None, Locale: "es"}, newRegistry(t, nil)) {
		require.False(t, it.Active, it.ID)
	}
}

func TestMenuClass(t *testing.T) {
	t.Parallel()

	require.Equal(t, MenuClassClosed, MenuClass(State{}))
	require.Equal(t, MenuClassOpen, MenuClass(State{MenuOpen: true}))
}
