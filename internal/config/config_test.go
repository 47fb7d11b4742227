package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stockboard.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"STOCKBOARD_GATEWAY_URL", "STOCKBOARD_USER_ID", "STOCKBOARD_RATE_LIMIT",
		"STOCKBOARD_FIXTURE_DATA", "STOCKBOARD_LOG_FILE", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
gateway:
  base_url: "http://gateway.internal:8000"
  timeout: 15s
  user_id: "u-42"
  rate_limit_per_min: 120
explore:
  limit: 250
  offset: 50
  default_sort: "percentageChange"
  default_order: "desc"
cache:
  market_summary_ttl: 2m
pin:
  error_revert: 5s
news:
  category: "crypto"
  days: 3
fixture:
  host: "0.0.0.0"
  port: 9000
  data_path: "testdata/fixture.yaml"
logging:
  level: "debug"
  format: "text"
  file: "/var/log/stockboard.log"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Gateway --
	if cfg.Gateway.BaseURL != "http://gateway.internal:8000" {
		t.Errorf("Gateway.BaseURL = %q, want %q", cfg.Gateway.BaseURL, "http://gateway.internal:8000")
	}
	if cfg.Gateway.Timeout != 15*time.Second {
		t.Errorf("Gateway.Timeout = %s, want %s", cfg.Gateway.Timeout, 15*time.Second)
	}
	if cfg.Gateway.UserID != "u-42" {
		t.Errorf("Gateway.UserID = %q, want %q", cfg.Gateway.UserID, "u-42")
	}
	if cfg.Gateway.RateLimitPerMin != 120 {
		t.Errorf("Gateway.RateLimitPerMin = %d, want %d", cfg.Gateway.RateLimitPerMin, 120)
	}

	// -- Explore --
	if cfg.Explore.Limit != 250 || cfg.Explore.Offset != 50 {
		t.Errorf("Explore limit/offset = %d/%d, want 250/50", cfg.Explore.Limit, cfg.Explore.Offset)
	}
	if cfg.Explore.DefaultSort != "percentageChange" || cfg.Explore.DefaultOrder != "desc" {
		t.Errorf("Explore sort = %q %q", cfg.Explore.DefaultSort, cfg.Explore.DefaultOrder)
	}

	// -- Cache / Pin / News --
	if cfg.Cache.MarketSummaryTTL != 2*time.Minute {
		t.Errorf("Cache.MarketSummaryTTL = %s, want 2m", cfg.Cache.MarketSummaryTTL)
	}
	if cfg.Pin.ErrorRevert != 5*time.Second {
		t.Errorf("Pin.ErrorRevert = %s, want 5s", cfg.Pin.ErrorRevert)
	}
	if cfg.News.Category != "crypto" || cfg.News.Days != 3 {
		t.Errorf("News = %+v", cfg.News)
	}

	// -- Fixture --
	if got := cfg.Fixture.ListenAddr(); got != "0.0.0.0:9000" {
		t.Errorf("Fixture.ListenAddr() = %q, want %q", got, "0.0.0.0:9000")
	}

	// -- Logging --
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
gateway:
  base_url: "http://example.com"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Gateway.Timeout != 10*time.Second {
		t.Errorf("Gateway.Timeout = %s, want default 10s", cfg.Gateway.Timeout)
	}
	if cfg.Cache.MarketSummaryTTL != 5*time.Minute {
		t.Errorf("Cache.MarketSummaryTTL = %s, want default 5m", cfg.Cache.MarketSummaryTTL)
	}
	if cfg.Pin.ErrorRevert != 3*time.Second {
		t.Errorf("Pin.ErrorRevert = %s, want default 3s", cfg.Pin.ErrorRevert)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Gateway.BaseURL != Default().Gateway.BaseURL {
		t.Errorf("Gateway.BaseURL = %q, want default", cfg.Gateway.BaseURL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
gateway:
  base_url: "http://yaml-host:8000"
  user_id: "yaml-user"
logging:
  level: "info"
`)

	t.Setenv("STOCKBOARD_GATEWAY_URL", "http://env-host:9999")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("STOCKBOARD_RATE_LIMIT", "30")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Gateway.BaseURL != "http://env-host:9999" {
		t.Errorf("Gateway.BaseURL = %q, want %q (env override)", cfg.Gateway.BaseURL, "http://env-host:9999")
	}
	// user_id should remain from YAML since no env override was set.
	if cfg.Gateway.UserID != "yaml-user" {
		t.Errorf("Gateway.UserID = %q, want %q (from YAML)", cfg.Gateway.UserID, "yaml-user")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want %q (env override)", cfg.Logging.Level, "warn")
	}
	if cfg.Gateway.RateLimitPerMin != 30 {
		t.Errorf("Gateway.RateLimitPerMin = %d, want 30 (env override)", cfg.Gateway.RateLimitPerMin)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative url", func(c *Config) { c.Gateway.BaseURL = "localhost:8000" }},
		{"zero timeout", func(c *Config) { c.Gateway.Timeout = 0 }},
		{"negative limit", func(c *Config) { c.Explore.Limit = -1 }},
		{"bad sort", func(c *Config) { c.Explore.DefaultSort = "volume" }},
		{"bad order", func(c *Config) { c.Explore.DefaultOrder = "up" }},
		{"zero revert", func(c *Config) { c.Pin.ErrorRevert = 0 }},
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v, want nil", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() = nil, want error")
			}
		})
	}
}
