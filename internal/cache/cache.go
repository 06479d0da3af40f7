// Package cache is a JSON cache-aside layer over Redis. Redis failures are
// logged and reported as misses so callers always fall back to recomputation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/smartquizzer/quizzer-backend/internal/metrics"
)

// RedisCache stores JSON values under string keys with a TTL.
type RedisCache struct {
	rdb *redis.Client
	log zerolog.Logger
}

// New creates a RedisCache. A nil client yields a cache that always misses.
func New(rdb *redis.Client, log zerolog.Logger) *RedisCache {
	return &RedisCache{
		rdb: rdb,
		log: log.With().Str("component", "cache").Logger(),
	}
}

// Get decodes the value stored at key into dst. It reports false on a miss,
// a Redis error or an undecodable payload.
func (c *RedisCache) Get(ctx context.Context, key string, dst any) bool {
	if c.rdb == nil {
		metrics.CacheRequests.WithLabelValues(family(key), "miss").Inc()
		return false
	}

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheRequests.WithLabelValues(family(key), "miss").Inc()
		} else {
			metrics.CacheRequests.WithLabelValues(family(key), "error").Inc()
			c.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		metrics.CacheRequests.WithLabelValues(family(key), "error").Inc()
		c.log.Warn().Err(err).Str("key", key).Msg("Cache entry undecodable")
		return false
	}

	metrics.CacheRequests.WithLabelValues(family(key), "hit").Inc()
	return true
}

// Set stores value at key for ttl.
func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c.rdb == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("Cache value not encodable")
		return
	}

	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// Delete removes key.
func (c *RedisCache) Delete(ctx context.Context, key string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache delete failed")
	}
}

// Exists reports whether key is present. A nil client or a Redis error
// counts as absent.
func (c *RedisCache) Exists(ctx context.Context, key string) bool {
	if c.rdb == nil {
		metrics.CacheRequests.WithLabelValues(family(key), "miss").Inc()
		return false
	}

	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		metrics.CacheRequests.WithLabelValues(family(key), "error").Inc()
		c.log.Warn().Err(err).Str("key", key).Msg("Cache exists check failed")
		return false
	}
	if n == 0 {
		metrics.CacheRequests.WithLabelValues(family(key), "miss").Inc()
		return false
	}
	metrics.CacheRequests.WithLabelValues(family(key), "hit").Inc()
	return true
}

// family returns the key prefix used as a metrics label ("questions", "analytics").
func family(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
