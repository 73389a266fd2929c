// Package config holds the core configuration shared by every chartkit
// component: cache location, fonts, HTTP identity and rate limits, output
// quality and the logger.
//
// Configuration is an explicit value. Components take a *Config in their
// options; a nil pointer means [Current], the process default, which starts
// out as [Default] and can be replaced once at startup with [SetDefault].
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartkit/pkg/errors"
)

const appName = "chartkit"

// Rate limit scopes.
const (
	ScopeGlobal = "global"
	ScopeHost   = "host"
)

// Config is the core configuration.
type Config struct {
	// CacheDir is where downloaded images are stored.
	CacheDir string `toml:"cache_dir"`

	// Font is the default font family and size.
	Font FontConfig `toml:"font"`

	// FontDirs are searched for font files before the system font paths.
	FontDirs []string `toml:"font_dirs"`

	// UserAgent and Referer are sent with every image download.
	UserAgent string `toml:"user_agent"`
	Referer   string `toml:"referer"`

	// RateLimit is the minimum delay between downloads; RateScope is
	// ScopeGlobal or ScopeHost.
	RateLimit Duration `toml:"rate_limit"`
	RateScope string   `toml:"rate_scope"`

	// HTTPTimeout bounds each download.
	HTTPTimeout Duration `toml:"http_timeout"`

	// JPEGQuality is used when saving JPEG output.
	JPEGQuality int `toml:"jpeg_quality"`

	Logger *log.Logger `toml:"-"`
}

// FontConfig names a default font.
type FontConfig struct {
	Family string  `toml:"family"`
	Size   float64 `toml:"size"`
}

// Duration is a time.Duration that reads from TOML strings such as "1s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	dir, err := cacheDir()
	if err != nil {
		dir = filepath.Join(os.TempDir(), appName, "images")
	}
	return &Config{
		CacheDir:    dir,
		Font:        FontConfig{Family: "Go", Size: 16},
		UserAgent:   appName + "/1.0 (image cache)",
		RateScope:   ScopeHost,
		HTTPTimeout: Duration{30 * time.Second},
		JPEGQuality: 75,
		Logger:      log.New(io.Discard),
	}
}

// cacheDir returns the image cache directory using the XDG standard
// (~/.cache/chartkit/images).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName, "images"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName, "images"), nil
}

// Load reads a TOML configuration file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "could not read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.RateScope != ScopeGlobal && c.RateScope != ScopeHost {
		return errors.New(errors.ErrCodeInvalidInput, "rate_scope must be %q or %q, got %q", ScopeGlobal, ScopeHost, c.RateScope)
	}
	if c.RateLimit.Duration < 0 || c.HTTPTimeout.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "durations must not be negative")
	}
	if c.JPEGQuality < 0 || c.JPEGQuality > 100 {
		return errors.New(errors.ErrCodeInvalidInput, "jpeg_quality must be between 1 and 100")
	}
	if c.Font.Size < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "font size must not be negative")
	}
	return nil
}

// Log returns the configured logger, or a discarding one.
func (c *Config) Log() *log.Logger {
	if c == nil || c.Logger == nil {
		return log.New(io.Discard)
	}
	return c.Logger
}

var (
	mu      sync.RWMutex
	current *Config
)

// Current returns the process default configuration.
func Current() *Config {
	mu.RLock()
	c := current
	mu.RUnlock()
	if c != nil {
		return c
	}
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		current = Default()
	}
	return current
}

// SetDefault replaces the process default configuration. It is meant for
// program initialization.
func SetDefault(c *Config) {
	mu.Lock()
	defer mu.Unlock()
	current = c
}

// Or returns c, or Current() when c is nil.
func Or(c *Config) *Config {
	if c != nil {
		return c
	}
	return Current()
}
