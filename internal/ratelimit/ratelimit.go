// Package ratelimit provides Redis-based rate limiting for incoming
// connections.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRateLimited is returned when a rate limit is exceeded
var ErrRateLimited = errors.New("rate limit exceeded")

// Limiter counts connection attempts per client IP in fixed Redis windows.
// It fails open: a nil limiter, a missing Redis, or a Redis error all allow
// the request, so rate limiting can never take the service down with it.
type Limiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
}

// NewLimiter creates a limiter allowing limit connections per window for
// each client IP.
func NewLimiter(redis *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{redis: redis, limit: limit, window: window}
}

// CheckConnect checks whether the given IP may open another connection.
// Returns nil if allowed, ErrRateLimited if the limit is exceeded.
func (l *Limiter) CheckConnect(ctx context.Context, ip string) error {
	if l == nil || l.redis == nil || ip == "" {
		return nil
	}

	key := fmt.Sprintf("ratelimit:connect:ip:%s", ip)

	// INCR atomically counts the attempt; the first one opens the window.
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		// Fail-open on Redis errors to maintain availability
		return nil
	}
	if count == 1 {
		l.redis.Expire(ctx, key, l.window)
	}

	if int(count) > l.limit {
		log.Printf("[RateLimit] IP %s exceeded connect limit (%d per %s)", ip, l.limit, l.window)
		return ErrRateLimited
	}
	return nil
}
