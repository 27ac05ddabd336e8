package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tasks/internal/core/task"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(dataDir, "nope.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, "all", cfg.DefaultFilter)
	assert.Equal(t, task.FilterAll, cfg.Filter())
	assert.Equal(t, filepath.Join(dataDir, "remote.json"), cfg.Remote.Path)
	assert.Equal(t, 300*time.Millisecond, cfg.Remote.Latency)
	assert.True(t, cfg.Remote.Watch)
	assert.True(t, cfg.Cache.ServeStale)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 3*time.Second, cfg.TUI.ToastTTL)
	assert.Equal(t, filepath.Join(dataDir, "tasks.log"), cfg.LogFile())
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Remote.Latency, cfg.Remote.Latency)
}

func TestLoad_OverridesKeepUnsetDefaults(t *testing.T) {
	path := writeConfig(t, `
default_filter: active
remote:
  path: /tmp/elsewhere.json
  latency: 1s
  watch: false
cache:
  serve_stale: false
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, task.FilterActive, cfg.Filter())
	assert.Equal(t, "/tmp/elsewhere.json", cfg.Remote.Path)
	assert.Equal(t, time.Second, cfg.Remote.Latency)
	assert.False(t, cfg.Remote.Watch)
	assert.False(t, cfg.Cache.ServeStale)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns, "unset sections keep defaults")
}

func TestLoad_ZeroLatencyIsAllowed(t *testing.T) {
	path := writeConfig(t, "remote:\n  latency: 0s\n")

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, cfg.Remote.Latency)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "default_filter: [unclosed")

	_, err := Load(path, t.TempDir())
	require.ErrorContains(t, err, "parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "unknown filter", mutate: func(c *Config) { c.DefaultFilter = "actve" }, field: "default_filter"},
		{name: "negative latency", mutate: func(c *Config) { c.Remote.Latency = -time.Second }, field: "remote.latency"},
		{name: "no connections", mutate: func(c *Config) { c.Database.MaxOpenConns = 0 }, field: "database.max_open_conns"},
		{name: "negative idle", mutate: func(c *Config) { c.Database.MaxIdleConns = -1 }, field: "database.max_idle_conns"},
		{name: "idle above open", mutate: func(c *Config) { c.Database.MaxIdleConns = 50 }, field: "database.max_idle_conns"},
		{name: "unknown theme", mutate: func(c *Config) { c.TUI.Theme = "solarized" }, field: "tui.theme"},
		{name: "empty data dir", mutate: func(c *Config) { c.DataDir = "" }, field: "data_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = t.TempDir()
			tt.mutate(&cfg)

			err := cfg.Validate()

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.Len(t, fieldErrs, 1)
			assert.Equal(t, tt.field, fieldErrs[0].Field)
		})
	}
}

func TestValidate_FilterSuggestion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.DefaultFilter = "complted"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "completed"?`)
}

func TestValidateDeep(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := Load("", dir)
		require.NoError(t, err)
		require.NoError(t, cfg.ValidateDeep(""))
	})

	t.Run("remote path is a directory", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := Load("", dir)
		require.NoError(t, err)
		cfg.Remote.Path = dir

		err = cfg.ValidateDeep("")
		var fieldErrs criterio.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Equal(t, "remote.path", fieldErrs[0].Field)
	})

	t.Run("config path is a directory", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := Load("", dir)
		require.NoError(t, err)

		err = cfg.ValidateDeep(dir)
		var fieldErrs criterio.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Equal(t, "config_file", fieldErrs[0].Field)
	})
}

func TestWarnings(t *testing.T) {
	cfg := DefaultConfig()
	assert.Empty(t, cfg.Warnings())

	cfg.Cache.ServeStale = false
	warnings := cfg.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "serve_stale", warnings[0].Item)
}
