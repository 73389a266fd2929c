package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/chartkit/pkg/errors"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chartkit.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	cfg := Default()
	if cfg.CacheDir != filepath.Join("/tmp/xdg", "chartkit", "images") {
		t.Errorf("CacheDir = %q", cfg.CacheDir)
	}
	if cfg.Font.Family != "Go" || cfg.JPEGQuality != 75 || cfg.RateScope != ScopeHost {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.Log() == nil {
		t.Error("Log() = nil")
	}
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
cache_dir = "/data/images"
user_agent = "test-agent"
rate_limit = "1500ms"
rate_scope = "global"
jpeg_quality = 90
font_dirs = ["/fonts"]

[font]
family = "Go Mono"
size = 12
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CacheDir != "/data/images" || cfg.UserAgent != "test-agent" {
		t.Errorf("Load = %+v", cfg)
	}
	if cfg.RateLimit.Duration != 1500*time.Millisecond || cfg.RateScope != ScopeGlobal {
		t.Errorf("rate limit = %v %q", cfg.RateLimit, cfg.RateScope)
	}
	if cfg.Font.Family != "Go Mono" || cfg.Font.Size != 12 || cfg.JPEGQuality != 90 {
		t.Errorf("font = %+v quality = %d", cfg.Font, cfg.JPEGQuality)
	}
	// Unset keys keep their defaults.
	if cfg.HTTPTimeout.Duration != 30*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", `cache_dir = `},
		{"unknown key", `colour = "red"`},
		{"bad scope", `rate_scope = "planet"`},
		{"bad duration", `rate_limit = "soon"`},
		{"bad quality", `jpeg_quality = 101`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Load error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestCurrentAndSetDefault(t *testing.T) {
	orig := Current()
	t.Cleanup(func() { SetDefault(orig) })

	custom := Default()
	custom.UserAgent = "custom"
	SetDefault(custom)
	if Current() != custom {
		t.Error("Current() did not return the new default")
	}
	if Or(nil) != custom {
		t.Error("Or(nil) != Current()")
	}
	other := Default()
	if Or(other) != other {
		t.Error("Or(c) != c")
	}
}
