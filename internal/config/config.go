package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the canvas server configuration, read from the
// environment.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// RedisAddr is the Redis host:port used for connect rate limiting.
	// Empty disables rate limiting entirely.
	RedisAddr string

	// HistoryLimit bounds each room's committed stroke log.
	HistoryLimit int

	// CursorRateLimit is the maximum cursor_move events per second
	// accepted per connection. Zero disables throttling.
	CursorRateLimit int

	// ConnectRateLimit is the number of connections allowed per client IP
	// per ConnectRateWindow.
	ConnectRateLimit  int
	ConnectRateWindow time.Duration
}

// LoadConfig reads configuration from the environment, with defaults.
func LoadConfig() *Config {
	return &Config{
		Port:              getEnv("PORT", "8080"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		HistoryLimit:      getEnvInt("HISTORY_LIMIT", 50),
		CursorRateLimit:   getEnvInt("CURSOR_RATE_LIMIT", 60),
		ConnectRateLimit:  getEnvInt("CONNECT_RATE_LIMIT", 30),
		ConnectRateWindow: time.Duration(getEnvInt("CONNECT_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
