package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "USD", cfg.BaseCurrency)
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout)
	assert.False(t, cfg.RemindersEnabled())
}

func TestNewConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BACKEND_URL", "https://books.example.com/api/")
	t.Setenv("BACKEND_TIMEOUT", "3s")
	t.Setenv("BASE_CURRENCY", "IQD")
	t.Setenv("REMINDER_TO", "owner@example.com")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "https://books.example.com/api/", cfg.BackendURL)
	assert.Equal(t, 3*time.Second, cfg.BackendTimeout)
	assert.Equal(t, "IQD", cfg.BaseCurrency)
	assert.True(t, cfg.RemindersEnabled())
}

func TestNewConfig_Invalid(t *testing.T) {
	t.Run("bad timeout", func(t *testing.T) {
		t.Setenv("BACKEND_TIMEOUT", "soon")
		_, err := NewConfig()
		assert.Error(t, err)
	})

	t.Run("empty jwt secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := NewConfig()
		assert.EqualError(t, err, "JWT_SECRET is required")
	})
}
