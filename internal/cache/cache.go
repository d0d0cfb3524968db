// Package cache keeps ranked results in Redis for a short TTL. Failures
// never reach the caller; a broken cache behaves like an empty one.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"university-matcher/internal/common/logger"
	"university-matcher/internal/common/metrics"
)

type ResultCache struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

func New(client redis.Cmdable, ttl time.Duration, prefix string, log logger.Logger) *ResultCache {
	return &ResultCache{
		client: client,
		ttl:    ttl,
		prefix: prefix,
		logger: log.WithFields(map[string]interface{}{"component": "result-cache"}),
	}
}

// Key derives a stable key from the operation name and its input.
func (c *ResultCache) Key(operation string, input interface{}) (string, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("encode cache key input: %w", err)
	}
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("%s:%s:%s", c.prefix, operation, hex.EncodeToString(sum[:16])), nil
}

// Get decodes the cached value into dst and reports whether it was found.
func (c *ResultCache) Get(ctx context.Context, key string, dst interface{}) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return false
	}
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("cache entry corrupt", map[string]interface{}{"key": key, "error": err.Error()})
		_ = c.client.Del(ctx, key).Err()
		return false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return true
}

func (c *ResultCache) Set(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", map[string]interface{}{"key": key, "error": err.Error()})
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}
