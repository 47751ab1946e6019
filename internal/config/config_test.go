package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "local", cfg.LLM.Provider)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.BaseURL)
	assert.Equal(t, 45, cfg.LLM.TimeoutSecs)
	assert.Equal(t, 120, cfg.Strategy.TimeoutSecs)
	assert.False(t, cfg.Strategy.AutoGenerate)
	assert.Equal(t, "LKR", cfg.Pipeline.Currency)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PROFILER_LLM_PROVIDER", "anthropic")
	t.Setenv("PROFILER_SERVER_PORT", "9090")
	t.Setenv("PROFILER_PIPELINE_CURRENCY", "USD")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "USD", cfg.Pipeline.Currency)
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.Error(t, InitLogger(LogConfig{Level: "bogus", Format: "json"}))
}
