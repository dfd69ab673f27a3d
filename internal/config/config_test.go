package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(WithConfigFile(writeFile(t, dir, "config.yaml", "{}\n")), WithEnvFile(""))
	require.NoError(t, err)

	require.Equal(t, Default(), cfg)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, []string{"es", "en"}, cfg.Locales.Supported)
	require.Equal(t, "es", cfg.Locales.Default)
	require.Equal(t, 30*time.Minute, cfg.Pages.TTL)
	require.Equal(t, 2*time.Minute, cfg.Pages.UnreportedTTL)
	require.Equal(t, 10000, cfg.Pages.Max)
	require.False(t, cfg.Dev)
}

func TestLoadLayers(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
dev: true
log_level: DEBUG
server:
  addr: ":9000"
  read_timeout: 3s
locales:
  supported: [en]
  default: en
`)
	t.Setenv("PORTFOLIO_SERVER__ADDR", ":9100")
	t.Setenv("PORTFOLIO_PAGES__SWEEP_INTERVAL", "30s")

	cfg, err := Load(WithConfigFile(path), WithEnvFile(""))
	require.NoError(t, err)
	require.True(t, cfg.Dev)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, ":9100", cfg.Server.Addr, "environment wins over the file")
	require.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, 15*time.Second, cfg.Server.WriteTimeout, "untouched defaults survive")
	require.Equal(t, []string{"en"}, cfg.Locales.Supported, "file slices replace defaults")
	require.Equal(t, 30*time.Second, cfg.Pages.SweepInterval)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "PORTFOLIO_PAGES__TTL=5m\nPORTFOLIO_LOG_LEVEL=warn\n")

	// registers restoration, then leaves the variables unset for godotenv
	t.Setenv("PORTFOLIO_PAGES__TTL", "")
	t.Setenv("PORTFOLIO_LOG_LEVEL", "error")
	require.NoError(t, os.Unsetenv("PORTFOLIO_PAGES__TTL"))

	cfg, err := Load(WithConfigFile(writeFile(t, dir, "config.yaml", "{}\n")), WithEnvFile(envFile))
	require.NoError(t, err)
	require.Equal(t, 5*time.Minute, cfg.Pages.TTL)
	require.Equal(t, "error", cfg.LogLevel, "process environment wins over .env")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(WithConfigFile(filepath.Join(t.TempDir(), "nope.yaml")), WithEnvFile(""))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := map[string]func(*Config){
		"unknown log level":        func(c *Config) { c.LogLevel = "loud" },
		"default not supported":    func(c *Config) { c.Locales.Default = "fr" },
		"no supported locales":     func(c *Config) { c.Locales.Supported = nil },
		"short hash key":           func(c *Config) { c.Session.HashKey = "short" },
		"odd block key":            func(c *Config) { c.Session.BlockKey = "0123456789" },
		"missing templates":        func(c *Config) { c.Paths.Templates = "" },
		"sub-second sweep":         func(c *Config) { c.Pages.SweepInterval = time.Millisecond },
		"unreported outlives ttl":  func(c *Config) { c.Pages.UnreportedTTL = time.Hour },
		"negative page cap":        func(c *Config) { c.Pages.Max = -1 },
		"missing shutdown timeout": func(c *Config) { c.Server.ShutdownTimeout = 0 },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		require.Error(t, cfg.Validate(), name)
	}

	ok := Default()
	ok.Session.HashKey = "0123456789abcdef0123456789abcdef"
	ok.Session.BlockKey = "0123456789abcdef"
	require.NoError(t, ok.Validate())
}
