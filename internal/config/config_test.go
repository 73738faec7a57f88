package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "", cfg.RedisAddr)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, 60, cfg.CursorRateLimit)
	assert.Equal(t, 30, cfg.ConnectRateLimit)
	assert.Equal(t, time.Minute, cfg.ConnectRateWindow)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("HISTORY_LIMIT", "10")
	t.Setenv("CURSOR_RATE_LIMIT", "120")
	t.Setenv("CONNECT_RATE_LIMIT", "5")
	t.Setenv("CONNECT_RATE_WINDOW_SECONDS", "30")

	cfg := LoadConfig()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.Equal(t, 120, cfg.CursorRateLimit)
	assert.Equal(t, 5, cfg.ConnectRateLimit)
	assert.Equal(t, 30*time.Second, cfg.ConnectRateWindow)
}

func TestInvalidIntFallsBack(t *testing.T) {
	t.Setenv("HISTORY_LIMIT", "not-a-number")
	cfg := LoadConfig()
	assert.Equal(t, 50, cfg.HistoryLimit)
}
