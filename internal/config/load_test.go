package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Note: no t.Parallel() here, these tests mutate process env.

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TASKFLOW_DATABASE_URL", "postgres://localhost:5432/taskflow_test")
	t.Setenv("TASKFLOW_AUTH_JWT_SECRET", "test-secret-key-at-least-32-bytes-long")
	t.Setenv("TASKFLOW_AUTH_SERVICE_TOKEN", "internal-service-token")
}

func TestLoad(t *testing.T) {
	t.Run("loads from environment with defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "info", cfg.Server.LogLevel)
		assert.Equal(t, "postgres://localhost:5432/taskflow_test", cfg.Database.URL)
		assert.Equal(t, 60, cfg.Auth.TokenLifetimeMinutes)
		assert.Equal(t, time.Hour, cfg.Auth.TokenLifetime())
		assert.Equal(t, 4, cfg.Dispatch.WorkerCount)
		assert.Equal(t, 16, cfg.Dispatch.ConnectionBuffer)
		assert.False(t, cfg.Email.Enabled())
		assert.False(t, cfg.Kafka.Enabled())
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TASKFLOW_SERVER_PORT", "9999")
		t.Setenv("TASKFLOW_SERVER_LOG_LEVEL", "debug")
		t.Setenv("TASKFLOW_DISPATCH_WORKER_COUNT", "8")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 9999, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Server.LogLevel)
		assert.Equal(t, 8, cfg.Dispatch.WorkerCount)
	})

	t.Run("fails without database URL", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TASKFLOW_DATABASE_URL", "")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("fails on short JWT secret", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TASKFLOW_AUTH_JWT_SECRET", "too-short")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("fails on invalid log level", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TASKFLOW_SERVER_LOG_LEVEL", "verbose")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("email enabled when host set", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TASKFLOW_EMAIL_HOST", "smtp.example.com")
		t.Setenv("TASKFLOW_EMAIL_FROM", "notifications@example.com")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Email.Enabled())
		assert.Equal(t, 587, cfg.Email.Port)
	})
}
