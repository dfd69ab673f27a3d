// Package config assembles the site configuration from defaults, an optional
// YAML file, a .env file and PORTFOLIO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix namespaces environment overrides. "__" separates nesting levels:
	// PORTFOLIO_SERVER__ADDR sets server.addr.
	EnvPrefix = "PORTFOLIO_"

	defaultConfigFile = "config.yaml"
	defaultEnvFile    = ".env"
)

// Config is the full site configuration.
type Config struct {
	Dev      bool          `koanf:"dev"`
	LogLevel string        `koanf:"log_level"`
	Server   ServerConfig  `koanf:"server"`
	Paths    PathsConfig   `koanf:"paths"`
	Locales  LocalesConfig `koanf:"locales"`
	Session  SessionConfig `koanf:"session"`
	Pages    PagesConfig   `koanf:"pages"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// AllowedOrigins are extra websocket origins besides the serving host.
	AllowedOrigins  []string      `koanf:"allowed_origins"`
}

// PathsConfig points at the runtime asset directories.
type PathsConfig struct {
	Templates string `koanf:"templates"`
	Public    string `koanf:"public"`
	Locales   string `koanf:"locales"`
	Content   string `koanf:"content"`
}

// LocalesConfig is the closed set of label locales.
type LocalesConfig struct {
	Supported []string `koanf:"supported"`
	Default   string   `koanf:"default"`
}

// SessionConfig controls the session cookie. Empty keys are generated per
// process, which is only acceptable in development.
type SessionConfig struct {
	CookieName string `koanf:"cookie_name"`
	HashKey    string `koanf:"hash_key"`
	BlockKey   string `koanf:"block_key"`
	Secure     bool   `koanf:"secure"`
}

// PagesConfig bounds how long mounted pages live without events.
type PagesConfig struct {
	TTL           time.Duration `koanf:"ttl"`
	UnreportedTTL time.Duration `koanf:"unreported_ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	Max           int           `koanf:"max"` // 0 disables the cap
}

var defaultValues = map[string]any{
	"dev":                     false,
	"log_level":               "info",
	"server.addr":             ":8080",
	"server.read_timeout":     10 * time.Second,
	"server.write_timeout":    15 * time.Second,
	"server.idle_timeout":     60 * time.Second,
	"server.shutdown_timeout": 10 * time.Second,
	"server.allowed_origins":  []string{},
	"paths.templates":         "templates",
	"paths.public":            "public",
	"paths.locales":           "locales",
	"paths.content":           "content",
	"locales.supported":       []string{"es", "en"},
	"locales.default":         "es",
	"session.cookie_name":     "portfolio_session",
	"session.secure":          false,
	"pages.ttl":               30 * time.Minute,
	"pages.unreported_ttl":    2 * time.Minute,
	"pages.sweep_interval":    time.Minute,
	"pages.max":               10000,
}

// newKoanf seeds a koanf instance with defaultValues. Later layers replace
// slices wholesale.
func newKoanf() *koanf.Koanf {
	k := koanf.New(".")
	for key, v := range defaultValues {
		_ = k.Set(key, v)
	}
	return k
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	var cfg Config
	_ = newKoanf().Unmarshal("", &cfg)
	cfg.normalize()
	return &cfg
}

// Option customises Load.
type Option func(*loaderOptions)

type loaderOptions struct {
	configFile string
	explicit   bool
	envFile    string
}

// WithConfigFile sets the YAML file. Unlike the default file, an explicit one must exist.
func WithConfigFile(path string) Option {
	return func(o *loaderOptions) {
		if strings.TrimSpace(path) != "" {
			o.configFile = path
			o.explicit = true
		}
	}
}

// WithEnvFile overrides the .env path; an empty path disables .env loading.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// Load resolves defaults < YAML file < .env < environment, then validates.
func Load(opts ...Option) (*Config, error) {
	options := loaderOptions{
		configFile: defaultConfigFile,
		envFile:    defaultEnvFile,
	}
	for _, opt := range opts {
		opt(&options)
	}

	if options.envFile != "" {
		// existing variables win over .env entries
		if err := godotenv.Load(options.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", options.envFile, err)
		}
	}

	k := newKoanf()

	if _, err := os.Stat(options.configFile); err == nil {
		if err := k.Load(file.Provider(options.configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", options.configFile, err)
		}
	} else if !os.IsNotExist(err) || options.explicit {
		return nil, fmt.Errorf("config: access %s: %w", options.configFile, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func (c *Config) normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Locales.Default = strings.ToLower(strings.TrimSpace(c.Locales.Default))
	supported := make([]string, 0, len(c.Locales.Supported))
	for _, l := range c.Locales.Supported {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			supported = append(supported, l)
		}
	}
	c.Locales.Supported = supported
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	sections := []struct {
		name string
		v    validation.Validatable
	}{
		{"server", &c.Server},
		{"paths", &c.Paths},
		{"locales", &c.Locales},
		{"session", &c.Session},
		{"pages", &c.Pages},
	}
	for _, sec := range sections {
		if err := sec.v.Validate(); err != nil {
			return fmt.Errorf("config: %s: %w", sec.name, err)
		}
	}
	return nil
}

// Validate validates the listener settings.
func (c *ServerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.ReadTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.WriteTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.ShutdownTimeout, validation.Required),
	)
}

// Validate validates the asset paths.
func (c *PathsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Templates, validation.Required),
		validation.Field(&c.Public, validation.Required),
		validation.Field(&c.Locales, validation.Required),
		validation.Field(&c.Content, validation.Required),
	)
}

// Validate requires the default locale to be one of the supported ones.
func (c *LocalesConfig) Validate() error {
	supported := make([]any, 0, len(c.Supported))
	for _, l := range c.Supported {
		supported = append(supported, l)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Supported, validation.Required),
		validation.Field(&c.Default, validation.Required, validation.In(supported...)),
	)
}

// Validate checks key lengths accepted by securecookie.
func (c *SessionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CookieName, validation.Required),
		validation.Field(&c.HashKey, validation.When(c.HashKey != "", validation.Length(32, 64))),
		validation.Field(&c.BlockKey, validation.By(aesKeyLength)),
	)
}

// block keys select AES-128, AES-192 or AES-256
func aesKeyLength(value any) error {
	key, _ := value.(string)
	switch len(key) {
	case 0, 16, 24, 32:
		return nil
	}
	return errors.New("must be 16, 24 or 32 bytes long")
}

// Validate validates page lifetimes.
func (c *PagesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.UnreportedTTL, validation.Required, validation.Min(time.Second), validation.Max(c.TTL)),
		validation.Field(&c.SweepInterval, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.Max, validation.Min(0)),
	)
}
