package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_CONNECT_TIMEOUT", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://localhost/chat")
	t.Setenv("DB_CONNECT_TIMEOUT", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://chat.example.com, https://staging.example.com")

	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "postgres://localhost/chat", cfg.DatabaseURL)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, []string{"https://chat.example.com", "https://staging.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadIgnoresBadTimeout(t *testing.T) {
	t.Setenv("DB_CONNECT_TIMEOUT", "not-a-number")

	cfg := Load()

	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
}
