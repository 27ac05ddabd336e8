package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate_Valid(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.run(nil, "config", "validate"))
	assert.Contains(t, env.out.String(), "Configuration is valid")
}

func TestConfigValidate_Invalid(t *testing.T) {
	env := newTestEnv(t)
	env.flags.Config.DefaultFilter = "someday"

	require.Error(t, env.run(nil, "config", "validate"))
	assert.Contains(t, env.out.String(), "default_filter")
	assert.Contains(t, env.out.String(), "1 error(s) found")
}

func TestConfigValidate_JSON(t *testing.T) {
	env := newTestEnv(t)
	env.flags.Config.Cache.ServeStale = false
	env.flags.Config.Remote.Latency = 1

	require.NoError(t, env.run(nil, "config", "validate", "--format", "json"))

	var out struct {
		Valid    bool `json:"valid"`
		Warnings []struct {
			Category string `json:"category"`
			Item     string `json:"item"`
		} `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &out))
	assert.True(t, out.Valid)
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, "serve_stale", out.Warnings[0].Item)
}
