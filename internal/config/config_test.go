package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_PATH", "REDIS_URL", "ENVIRONMENT", "LOG_LEVEL",
		"LOCK_WAIT", "LOCK_TTL", "SESSION_LIFETIME", "SIMULATION_ITERATIONS"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "brackets.db", cfg.DatabasePath)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.LockWait)
	assert.Equal(t, 15*time.Second, cfg.LockTTL)
	assert.Equal(t, 24*time.Hour, cfg.SessionLifetime)
	assert.Equal(t, 1000, cfg.SimulationIterations)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOCK_WAIT", "500ms")
	t.Setenv("SIMULATION_ITERATIONS", "250")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 500*time.Millisecond, cfg.LockWait)
	assert.Equal(t, 250, cfg.SimulationIterations)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non numeric port", "PORT", "http"},
		{"port out of range", "PORT", "70000"},
		{"bad duration", "LOCK_TTL", "soon"},
		{"negative duration", "LOCK_WAIT", "-1s"},
		{"zero iterations", "SIMULATION_ITERATIONS", "0"},
		{"unknown environment", "ENVIRONMENT", "qa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
