package section

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BrandonAlanDev/Portfolio2025/internal/i18n"
)

func testRegistry(t *testing.T, bounds BoundsProvider) *Registry {
	t.Helper()

	bundle, err := i18n.Load("../../locales", "es", []string{"es", "en"})
	require.NoError(t, err)
	reg, err := New(Portfolio, bundle, bounds)
	require.NoError(t, err)
	return reg
}

func TestNewRejectsDuplicateAndBlankIDs(t *testing.T) {
	t.Parallel()

	bundle, err := i18n.Load("../../locales", "es", []string{"es", "en"})
	require.NoError(t, err)

	_, err = New([]Section{{ID: "home"}, {ID: "home"}}, bundle, nil)
	require.ErrorIs(t, err, ErrInvalidRegistry)

	_, err = New([]Section{{ID: " "}}, bundle, nil)
	require.ErrorIs(t, err, ErrInvalidRegistry)

	_, err = New(nil, bundle, nil)
	require.ErrorIs(t, err, ErrInvalidRegistry)

	_, err = New(Portfolio, nil, nil)
	require.ErrorIs(t, err, ErrInvalidRegistry)
}

func TestSectionsIsStableCopy(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, nil)
	first := reg.Sections()
	first[0].ID = "mutated"

	require.Equal(t, []string{"home", "about", "projects", "contact"}, reg.IDs())
	require.Equal(t, reg.Sections(), reg.Sections())
	require.Equal(t, "home", reg.First())
	require.Equal(t, 2, reg.Index("projects"))
	require.Equal(t, -1, reg.Index("blog"))
}

func TestLabelForPerLocale(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, nil)

	label, err := reg.LabelFor("about", "es")
	require.NoError(t, err)
	require.Equal(t, "Sobre mí", label)

	label, err = reg.LabelFor("about", "en")
	require.NoError(t, err)
	require.Equal(t, "About me", label)
}

func TestLabelForFailures(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, nil)

	_, err := reg.LabelFor("blog", "en")
	require.ErrorIs(t, err, ErrUnknownSection)
	var secErr *UnknownSectionError
	require.True(t, errors.As(err, &secErr))
	require.Equal(t, "blog", secErr.ID)

	_, err = reg.LabelFor("home", "fr")
	require.ErrorIs(t, err, ErrUnknownLocale)
	var locErr *UnknownLocaleError
	require.True(t, errors.As(err, &locErr))
	require.Equal(t, "fr", locErr.Locale)
}

func TestTitleFor(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, nil)

	title, err := reg.TitleFor("about", "es")
	require.NoError(t, err)
	require.Equal(t, "Sobre mí", title)
	title, err = reg.TitleFor("home", "en")
	require.NoError(t, err)
	require.Equal(t, "Home", title)

	_, err = reg.TitleFor("blog", "en")
	require.ErrorIs(t, err, ErrUnknownSection)
	_, err = reg.TitleFor("home", "fr")
	require.ErrorIs(t, err, ErrUnknownLocale)

	bundle, err := i18n.Load("../../locales", "es", []string{"es", "en"})
	require.NoError(t, err)
	custom, err := New([]Section{{ID: "home", LabelKey: "nav.home", TitleKey: "nav.contact"}}, bundle, nil)
	require.NoError(t, err)
	title, err = custom.TitleFor("home", "en")
	require.NoError(t, err)
	require.Equal(t, bundle.T("en", "nav.contact"), title)
}

func TestBoundsOfNeverFails(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, nil)
	require.True(t, reg.BoundsOf("home").IsZero(), "unmounted section reads as zero area")
	require.True(t, reg.BoundsOf("blog").IsZero(), "unknown section reads as zero area")

	measured := reg.WithBounds(StaticBounds{"home": {Top: 0, Height: 800}, "blog": {Top: 1, Height: 1}})
	require.Equal(t, Bounds{Top: 0, Height: 800}, measured.BoundsOf("home"))
	require.True(t, measured.BoundsOf("blog").IsZero(), "unregistered ids are not exposed")
	require.True(t, reg.BoundsOf("home").IsZero(), "WithBounds must not alter the original registry")
}

func TestBoundsContainsIsInclusive(t *testing.T) {
	t.Parallel()

	b := Bounds{Top: 800, Height: 800}
	require.True(t, b.Contains(800))
	require.True(t, b.Contains(1600))
	require.False(t, b.Contains(799.9))
	require.False(t, b.Contains(1600.1))
	require.False(t, Bounds{Top: 0}.Contains(0), "zero-area bounds contain nothing")
}

func TestAtPrefersEarlierSectionOnOverlap(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, StaticBounds{
		"home":     {Top: 0, Height: 800},
		"about":    {Top: 700, Height: 900},
		"projects": {Top: 1600, Height: 800},
	})

	id, ok := reg.At(750)
	require.True(t, ok)
	require.Equal(t, "home", id)

	id, ok = reg.At(1600)
	require.True(t, ok)
	require.Equal(t, "about", id)

	_, ok = reg.At(5000)
	require.False(t, ok)
}

func TestLocaleQueries(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t, nil)
	require.Equal(t, []string{"en", "es"}, reg.Locales())
	require.Equal(t, "es", reg.DefaultLocale())
	require.True(t, reg.SupportsLocale("en"))
	require.False(t, reg.SupportsLocale("fr"))
	require.Equal(t, "en", reg.ResolveLocale("en-US,en;q=0.9"))

	got, ok := reg.MatchLocale("es-AR")
	require.True(t, ok)
	require.Equal(t, "es", got)
}
