package page

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BrandonAlanDev/Portfolio2025/internal/i18n"
	"github.com/BrandonAlanDev/Portfolio2025/internal/nav"
	"github.com/BrandonAlanDev/Portfolio2025/internal/section"
)

var geometry = map[string]section.Bounds{
	"home":     {Top: 0, Height: 800},
	"about":    {Top: 800, Height: 800},
	"projects": {Top: 1600, Height: 800},
	"contact":  {Top: 2400, Height: 600},
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newStore(t *testing.T, opts ...Option) *Store {
	t.Helper()

	bundle, err := i18n.Load("../../locales", "es", []string{"es", "en"})
	require.NoError(t, err)
	reg, err := section.New(section.Default(), bundle, nil)
	require.NoError(t, err)
	store, err := NewStore(reg, opts...)
	require.NoError(t, err)
	return store
}

func mount(t *testing.T, s *Store, accept string) *Page {
	t.Helper()
	p, err := s.Mount(context.Background(), MountOptions{SessionID: "sess", AcceptLanguage: accept})
	require.NoError(t, err)
	return p
}

func TestMountInitialState(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	p := mount(t, s, "en-US,en;q=0.9")
	require.NotEmpty(t, p.ID)
	require.Equal(t, nav.State{ActiveSectionID: "home", Locale: "en"}, p.State())

	explicit, err := s.Mount(context.Background(), MountOptions{SessionID: "sess", AcceptLanguage: "en", Locale: "es"})
	require.NoError(t, err)
	require.Equal(t, "es", explicit.State().Locale)
	require.NotEqual(t, p.ID, explicit.ID)
	require.Equal(t, 2, s.Len())
}

func TestReportAppliesMeasureBeforeScroll(t *testing.T) {
	t.Parallel()

	p := mount(t, newStore(t), "")
	ctx := context.Background()

	// without geometry the scroll report is inert
	res, err := p.Dispatch(ctx, nav.Scroll{Y: 1700, ViewportHeight: 600})
	require.NoError(t, err)
	require.False(t, res.Changed())

	res, err = p.Report(ctx, Report{ScrollY: 1700, ViewportHeight: 600, Bounds: geometry})
	require.NoError(t, err)
	require.True(t, res.Changed())
	require.Equal(t, "projects", p.State().ActiveSectionID)
	require.Equal(t, "home", res.Before.ActiveSectionID)
}

func TestMeasureIgnoresUnknownSections(t *testing.T) {
	t.Parallel()

	p := mount(t, newStore(t), "")
	_, err := p.Dispatch(context.Background(), Measure{Bounds: map[string]section.Bounds{
		"home": {Top: 0, Height: 500},
		"blog": {Top: 500, Height: 500},
	}})
	require.NoError(t, err)
	require.Equal(t, []string{"blog"}, p.IgnoredIDs())
	require.Len(t, p.Bounds(), 1)
}

func TestActivateQueuesLatestScroll(t *testing.T) {
	t.Parallel()

	p := mount(t, newStore(t), "")
	ctx := context.Background()
	_, err := p.Dispatch(ctx, Measure{Bounds: geometry})
	require.NoError(t, err)

	_, err = p.Dispatch(ctx, nav.ToggleMenu{})
	require.NoError(t, err)
	_, err = p.Dispatch(ctx, nav.Activate{ID: "about"})
	require.NoError(t, err)
	_, err = p.Dispatch(ctx, nav.Activate{ID: "contact"})
	require.NoError(t, err)

	cmd, ok := p.PendingScroll()
	require.True(t, ok)
	require.Equal(t, nav.ScrollCommand{SectionID: "contact", Top: 2400, Behavior: nav.BehaviorSmooth}, cmd)
	_, ok = p.PendingScroll()
	require.False(t, ok, "drained")

	state := p.State()
	require.Equal(t, "contact", state.ActiveSectionID)
	require.False(t, state.MenuOpen)
}

func TestLocaleChangeInvalidatesGeometryButKeepsActive(t *testing.T) {
	t.Parallel()

	p := mount(t, newStore(t), "")
	ctx := context.Background()
	_, err := p.Report(ctx, Report{ScrollY: 700, ViewportHeight: 600, Bounds: geometry})
	require.NoError(t, err)
	require.Equal(t, "about", p.State().ActiveSectionID)

	_, err = p.Dispatch(ctx, nav.SetLocale{Locale: "en"})
	require.NoError(t, err)
	snap := p.Snapshot()
	require.True(t, snap.Stale)
	require.Equal(t, "about", snap.State.ActiveSectionID)
	require.Equal(t, "en", snap.State.Locale)

	_, err = p.Dispatch(ctx, nav.SetLocale{Locale: "fr"})
	require.ErrorIs(t, err, section.ErrUnknownLocale)
	require.Equal(t, "en", p.State().Locale)

	_, err = p.Report(ctx, Report{ScrollY: 700, ViewportHeight: 600, Bounds: geometry})
	require.NoError(t, err)
	require.False(t, p.Snapshot().Stale)
}

func TestObserveThroughPage(t *testing.T) {
	t.Parallel()

	p := mount(t, newStore(t), "")
	var seen []nav.State
	cancel := p.Observe(func(_, next nav.State) { seen = append(seen, next) })

	_, err := p.Dispatch(context.Background(), nav.ToggleMenu{})
	require.NoError(t, err)
	require.Len(t, seen, 1)

	cancel()
	_, err = p.Dispatch(context.Background(), nav.ToggleMenu{})
	require.NoError(t, err)
	require.Len(t, seen, 1)
}

func TestConcurrentDispatchIsSerialised(t *testing.T) {
	t.Parallel()

	p := mount(t, newStore(t), "")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.Dispatch(context.Background(), nav.ToggleMenu{})
		}()
	}
	wg.Wait()
	require.False(t, p.State().MenuOpen, "an even number of toggles restores the menu")
}

func TestItemsFollowState(t *testing.T) {
	t.Parallel()

	p := mount(t, newStore(t), "en")
	_, err := p.Dispatch(context.Background(), nav.Activate{ID: "projects"})
	require.NoError(t, err)

	items := p.Items()
	require.Len(t, items, 4)
	require.True(t, items[2].Active)
	require.Equal(t, "Projects", items[2].Label)
}

func TestDispatchRejectsNilPointerEvents(t *testing.T) {
	t.Parallel()

	p := mount(t, newStore(t), "")
	for _, ev := range []nav.Event{(*Measure)(nil), (*nav.Activate)(nil), (*nav.Scroll)(nil)} {
		var err error
		require.NotPanics(t, func() { _, err = p.Dispatch(context.Background(), ev) }, "%T", ev)
		var unsupported *nav.UnsupportedEventError
		require.ErrorAs(t, err, &unsupported, "%T", ev)
	}
	require.Equal(t, "home", p.State().ActiveSectionID)
}
