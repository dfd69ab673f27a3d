package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/BrandonAlanDev/Portfolio2025/internal/config"
	"github.com/BrandonAlanDev/Portfolio2025/internal/content"
	"github.com/BrandonAlanDev/Portfolio2025/internal/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Paths.Templates = testutil.RepoPath("templates")
	cfg.Paths.Public = testutil.RepoPath("public")
	cfg.Paths.Locales = testutil.RepoPath("locales")
	cfg.Paths.Content = testutil.RepoPath("content")
	return cfg
}

func TestNewServesHome(t *testing.T) {
	t.Parallel()

	a, err := New(testConfig(t), nil)
	require.NoError(t, err)

	ts := httptest.NewServer(a.Handler())
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc := testutil.ParseHTML(t, body)
	require.Equal(t, 1, doc.Find("#site-nav").Length())
	require.Equal(t, 1, a.pages.Len())
}

func TestNewRejectsMissingLocales(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Paths.Locales = t.TempDir()
	_, err := New(cfg, nil)
	require.Error(t, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Dev = true
	a, err := New(cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWarnMissingProfiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "es.yaml"), []byte("name: Beatriz\n"), 0o644))
	profiles, err := content.NewStore(dir, "es", zap.NewNop())
	require.NoError(t, err)

	core, logs := observer.New(zap.WarnLevel)
	missing := warnMissingProfiles(profiles, []string{"es", "en"}, zap.New(core))
	require.Equal(t, []string{"en"}, missing)
	require.Equal(t, 1, logs.FilterMessage("no profile for locale, fallback copy will be served").Len())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.yaml"), []byte("name: Beatrice\n"), 0o644))
	require.NoError(t, profiles.Load())
	require.Empty(t, warnMissingProfiles(profiles, []string{"es", "en"}, zap.NewNop()))
}
