// Package ratelimit implements the fixed-window counter guarding the cron
// trigger endpoints, backed by Redis so the limit holds across replicas.
//
// The limiter fails open: when Redis is not configured or a command errors,
// the request is allowed and a warning is logged. Availability of the
// scheduled jobs wins over strict limiting.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Store is the minimal Redis surface the limiter needs.
type Store interface {
	// Incr atomically increments the counter at key and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)
	// Expire sets the key's TTL.
	Expire(ctx context.Context, key string, ttl time.Duration) error
	// TTL returns the key's remaining lifetime.
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// RedisStore adapts a go-redis client to Store.
type RedisStore struct {
	C *redis.Client
}

// Incr implements Store.
func (r *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	return r.C.Incr(ctx, key).Result()
}

// Expire implements Store.
func (r *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return r.C.Expire(ctx, key, ttl).Err()
}

// TTL implements Store.
func (r *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	return r.C.TTL(ctx, key).Result()
}

// Result reports one limiter decision.
type Result struct {
	Allowed    bool
	Count      int64
	Limit      int64
	RetryAfter time.Duration // > 0 only when denied
}

// FixedWindow counts invocations per key within a rolling Redis-expiry
// window. The window starts at the first hit (the INCR that created the
// key) and the Nth hit within it is still allowed when N == Limit.
type FixedWindow struct {
	Store  Store
	Limit  int64
	Window time.Duration
	Prefix string
}

// Check records one hit for name and decides whether it is allowed.
//
// A nil Store disables limiting entirely. Store errors also allow the
// request: a Redis outage must not silence the scheduled jobs.
func (f *FixedWindow) Check(ctx context.Context, name string) Result {
	res := Result{Allowed: true, Limit: f.Limit}
	if f.Store == nil {
		return res
	}

	key := f.Prefix + name
	n, err := f.Store.Incr(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, allowing request")
		return res
	}
	res.Count = n

	if n == 1 {
		if err := f.Store.Expire(ctx, key, f.Window); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to set rate window TTL")
		}
	}

	if n > f.Limit {
		res.Allowed = false
		ttl, err := f.Store.TTL(ctx, key)
		if err != nil || ttl <= 0 {
			ttl = f.Window
		}
		res.RetryAfter = ttl
	}
	return res
}

// NewRedisStore dials Redis from a URL ("redis://host:port/db"). The
// connection is verified with a short ping; a failure is reported to the
// caller, who decides whether to run without the limiter.
func NewRedisStore(url string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{C: c}, nil
}
