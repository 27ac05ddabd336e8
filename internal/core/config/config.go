// Package config handles configuration loading and validation for tasks.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/tasks/internal/core/styles"
	"github.com/colonyops/tasks/internal/core/task"
)

// Config holds the application configuration.
type Config struct {
	DefaultFilter string         `yaml:"default_filter"`
	Remote        RemoteConfig   `yaml:"remote"`
	Cache         CacheConfig    `yaml:"cache"`
	Database      DatabaseConfig `yaml:"database"`
	TUI           TUIConfig      `yaml:"tui"`
	DataDir       string         `yaml:"-"` // set by caller, not from config file
}

// RemoteConfig configures the remote task document.
type RemoteConfig struct {
	Path    string        `yaml:"path"`    // defaults to <data-dir>/remote.json
	Latency time.Duration `yaml:"latency"` // simulated round trip per call, 0 disables
	Watch   bool          `yaml:"watch"`   // reload when another process edits the document
}

// CacheConfig configures the repository cache.
type CacheConfig struct {
	ServeStale bool `yaml:"serve_stale"`
}

// DatabaseConfig configures the local SQLite database.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// TUIConfig configures the interactive list.
type TUIConfig struct {
	ToastTTL time.Duration `yaml:"toast_ttl"`
	Theme    string        `yaml:"theme"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultFilter: task.FilterAll.String(),
		Remote: RemoteConfig{
			Latency: 300 * time.Millisecond,
			Watch:   true,
		},
		Cache: CacheConfig{
			ServeStale: true,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5000,
		},
		TUI: TUIConfig{
			ToastTTL: 3 * time.Second,
			Theme:    styles.DefaultTheme,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.DefaultFilter == "" {
		c.DefaultFilter = defaults.DefaultFilter
	}
	if c.Remote.Path == "" && c.DataDir != "" {
		c.Remote.Path = filepath.Join(c.DataDir, "remote.json")
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.TUI.ToastTTL == 0 {
		c.TUI.ToastTTL = defaults.TUI.ToastTTL
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
}

// Filter returns the configured default filter. Call after Validate.
func (c *Config) Filter() task.FilterType {
	f, _ := task.ParseFilterType(c.DefaultFilter)
	return f
}

// LogFile returns the default log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "tasks.log")
}
