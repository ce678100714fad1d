// Package ratelimit throttles login attempts with fixed windows kept in
// Redis, so the limit holds across server instances.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/musiccompanion/apiserver/config"
)

const keyPrefix = "musicd:login"

// LoginThrottle counts attempts per key within a window.
type LoginThrottle struct {
	redis       *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewClient connects to Redis, or returns nil when cfg.Addr is empty.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// NewLoginThrottle returns nil when client is nil; a nil throttle allows
// every attempt.
func NewLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration) *LoginThrottle {
	if client == nil {
		return nil
	}
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginThrottle{redis: client, maxAttempts: maxAttempts, window: window}
}

// Allow records an attempt for key and reports whether it is within the
// limit, along with the time left in the current window. Redis errors
// are returned with allowed=true.
func (t *LoginThrottle) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if t == nil {
		return true, 0, nil
	}
	redisKey := keyPrefix + ":" + key

	pipe := t.redis.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, 0, fmt.Errorf("redis error: %w", err)
	}

	// The window starts at the first attempt and is never extended.
	remaining := ttl.Val()
	if remaining < 0 {
		if err := t.redis.Expire(ctx, redisKey, t.window).Err(); err != nil {
			return true, 0, fmt.Errorf("redis error: %w", err)
		}
		remaining = t.window
	}
	return incr.Val() <= int64(t.maxAttempts), remaining, nil
}

// Reset clears the attempts recorded for key, e.g. after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, key string) error {
	if t == nil {
		return nil
	}
	return t.redis.Del(ctx, keyPrefix+":"+key).Err()
}

// Key derives the throttle key for a login attempt.
func Key(email, remoteIP string) string {
	return strings.ToLower(strings.TrimSpace(email)) + "|" + remoteIP
}
