// Package config loads stockboard configuration from a YAML file, a .env
// file and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when STOCKBOARD_CONFIG is not set.
const DefaultPath = "config/stockboard.yaml"

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for stockboard.
type Config struct {
	Gateway Gateway `yaml:"gateway"`
	Explore Explore `yaml:"explore"`
	Cache   Cache   `yaml:"cache"`
	Pin     Pin     `yaml:"pin"`
	News    News    `yaml:"news"`
	Fixture Fixture `yaml:"fixture"`
	Logging Logging `yaml:"logging"`
}

// Gateway describes the remote market-data API.
type Gateway struct {
	BaseURL         string        `yaml:"base_url"`
	Timeout         time.Duration `yaml:"timeout"`
	UserID          string        `yaml:"user_id"`
	RateLimitPerMin int           `yaml:"rate_limit_per_min"`
}

// Explore controls the explorable stock list.
type Explore struct {
	Limit        int    `yaml:"limit"`
	Offset       int    `yaml:"offset"`
	DefaultSort  string `yaml:"default_sort"`
	DefaultOrder string `yaml:"default_order"`
}

// Cache holds time-to-live settings for memoised gateway calls.
type Cache struct {
	MarketSummaryTTL time.Duration `yaml:"market_summary_ttl"`
}

// Pin configures the pin/unpin coordinator.
type Pin struct {
	ErrorRevert time.Duration `yaml:"error_revert"`
}

// News sets the default news query.
type News struct {
	Category string `yaml:"category"`
	Days     int    `yaml:"days"`
}

// Fixture configures the local fixture gateway server.
type Fixture struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DataPath string `yaml:"data_path"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// ---------------------------------------------------------------------------
// Defaults
// ---------------------------------------------------------------------------

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Gateway: Gateway{
			BaseURL: "http://localhost:8000",
			Timeout: 10 * time.Second,
			UserID:  "default",
		},
		Explore: Explore{
			Limit:        100,
			DefaultSort:  "none",
			DefaultOrder: "asc",
		},
		Cache: Cache{MarketSummaryTTL: 5 * time.Minute},
		Pin:   Pin{ErrorRevert: 3 * time.Second},
		News:  News{Category: "general", Days: 7},
		Fixture: Fixture{
			Host: "127.0.0.1",
			Port: 8000,
		},
		Logging: Logging{Level: "info", Format: "json"},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Path returns the config file path from STOCKBOARD_CONFIG or DefaultPath.
func Path() string {
	if p := os.Getenv("STOCKBOARD_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the YAML configuration file at path on top of the defaults and
// then applies environment variable overrides. A .env file in the working
// directory, if present, is loaded into the environment first. A missing
// config file is not an error: defaults plus environment are used.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults + env only.
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STOCKBOARD_GATEWAY_URL"); v != "" {
		cfg.Gateway.BaseURL = v
	}
	if v := os.Getenv("STOCKBOARD_USER_ID"); v != "" {
		cfg.Gateway.UserID = v
	}
	if v := os.Getenv("STOCKBOARD_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.RateLimitPerMin = n
		}
	}
	if v := os.Getenv("STOCKBOARD_FIXTURE_DATA"); v != "" {
		cfg.Fixture.DataPath = v
	}
	if v := os.Getenv("STOCKBOARD_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Gateway.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("gateway.base_url %q is not an absolute URL", c.Gateway.BaseURL)
	}
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("gateway.timeout must be positive, got %s", c.Gateway.Timeout)
	}
	if c.Explore.Limit < 0 || c.Explore.Offset < 0 {
		return fmt.Errorf("explore.limit and explore.offset must not be negative")
	}
	switch c.Explore.DefaultSort {
	case "", "none", "ticker", "name", "currentPrice", "costChange", "percentageChange":
	default:
		return fmt.Errorf("explore.default_sort %q is not a sort key", c.Explore.DefaultSort)
	}
	switch c.Explore.DefaultOrder {
	case "", "asc", "desc":
	default:
		return fmt.Errorf("explore.default_order %q must be asc or desc", c.Explore.DefaultOrder)
	}
	if c.Cache.MarketSummaryTTL < 0 {
		return fmt.Errorf("cache.market_summary_ttl must not be negative")
	}
	if c.Pin.ErrorRevert <= 0 {
		return fmt.Errorf("pin.error_revert must be positive, got %s", c.Pin.ErrorRevert)
	}
	return nil
}

// ListenAddr returns host:port for the fixture server.
func (f Fixture) ListenAddr() string {
	return fmt.Sprintf("%s:%d", f.Host, f.Port)
}
