// Package cache wraps Redis for two jobs: short-lived caching of upstream
// metric values (the stale-on-error fallback) and gating of repeat alerts.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is safe for concurrent use; construct once at process start.
type Cache struct {
	rdb *redis.Client
}

// New connects to Redis and verifies the connection.
func New(redisURL, password string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if password != "" {
		opts.Password = password
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Cache{rdb: rdb}, nil
}

// Close shuts down the Redis connection.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

// PutFloat stores a metric value with a TTL. Errors are ignored: a cache
// write failure must never fail the lookup that produced the value.
func (c *Cache) PutFloat(ctx context.Context, key string, val float64, ttl time.Duration) {
	if c == nil {
		return
	}
	c.rdb.Set(ctx, key, strconv.FormatFloat(val, 'g', -1, 64), ttl)
}

// GetFloat returns the cached value for key, or false when absent.
func (c *Cache) GetFloat(ctx context.Context, key string) (float64, bool) {
	if c == nil {
		return 0, false
	}
	s, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// AlreadySent returns true if an alert gate key is currently set.
func (c *Cache) AlreadySent(ctx context.Context, key string) bool {
	if c == nil {
		return false
	}
	exists, err := c.rdb.Exists(ctx, key).Result()
	return err == nil && exists > 0
}

// Record sets an alert gate key with no expiry; Clear resets it when the
// alert condition recovers so the next incident fires again.
func (c *Cache) Record(ctx context.Context, key string) {
	if c == nil {
		return
	}
	c.rdb.Set(ctx, key, "1", 0)
}

func (c *Cache) Clear(ctx context.Context, key string) {
	if c == nil {
		return
	}
	c.rdb.Del(ctx, key) //nolint:errcheck
}
