// Package ratelimit provides the Redis-backed submission quota for the public
// contact form. Unlike the in-process limiter in platform/httpkit, this one
// survives restarts and is shared across replicas.
package ratelimit

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"lieux_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// Result is the outcome of a quota check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfterSeconds returns the whole seconds until the window resets, minimum 1.
func (r Result) RetryAfterSeconds() int {
	secs := int(time.Until(r.ResetAt).Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Limiter checks whether an identifier may submit again.
type Limiter interface {
	Check(ctx context.Context, identifier string) (Result, error)
}

// NoopLimiter allows every request. Used when Redis is not configured, which
// only happens in local development.
type NoopLimiter struct{}

// Check always allows.
func (NoopLimiter) Check(context.Context, string) (Result, error) {
	return Result{Allowed: true}, nil
}

// RedisLimiter implements a fixed-window counter per identifier.
type RedisLimiter struct {
	rdb    redis.Cmdable
	prefix string
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a limiter allowing limit requests per window.
func NewRedisLimiter(rdb redis.Cmdable, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, prefix: prefix, limit: limit, window: window}
}

// Check increments the window counter for the identifier and reports whether
// the submission is within quota. The counter is incremented even for denied
// requests; the window expiry is anchored to the first request in the window.
func (l *RedisLimiter) Check(ctx context.Context, identifier string) (Result, error) {
	key := fmt.Sprintf("%s:%s", l.prefix, identifier)

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit incr: %w", err)
	}

	if count == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return Result{}, fmt.Errorf("ratelimit expire: %w", err)
		}
	}

	ttl, err := l.rdb.PTTL(ctx, key).Result()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit pttl: %w", err)
	}
	if ttl < 0 {
		// Key lost its expiry (e.g., Redis restarted between INCR and EXPIRE).
		ttl = l.window
		_ = l.rdb.Expire(ctx, key, l.window).Err()
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   count <= int64(l.limit),
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   time.Now().Add(ttl),
	}, nil
}

// NewClient builds a Redis client from the configured URL.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{InsecureSkipVerify: true}
		} else {
			opt.TLSConfig.InsecureSkipVerify = true
		}
	}

	return redis.NewClient(opt), nil
}
