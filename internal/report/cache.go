package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "profitable:report:"

// Cache stores built reports in Redis. Failures are logged and treated as misses.
// A nil *Cache is a no-op.
type Cache struct {
	client *redis.Client
	ttl    func() time.Duration
	log    *zap.Logger
}

func NewCache(client *redis.Client, ttl func() time.Duration, log *zap.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, log: log}
}

func cacheKey(period time.Duration) string {
	return cacheKeyPrefix + strconv.FormatFloat(period.Hours(), 'f', -1, 64)
}

func (c *Cache) Get(ctx context.Context, period time.Duration) (Report, bool) {
	if c == nil || c.client == nil {
		return Report{}, false
	}
	raw, err := c.client.Get(ctx, cacheKey(period)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("report cache read failed", zap.String("key", cacheKey(period)), zap.Error(err))
		}
		return Report{}, false
	}
	var out Report
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.Warn("report cache entry unreadable", zap.String("key", cacheKey(period)), zap.Error(err))
		return Report{}, false
	}
	return out, true
}

func (c *Cache) Set(ctx context.Context, period time.Duration, r Report) {
	if c == nil || c.client == nil {
		return
	}
	ttl := c.ttl()
	if ttl <= 0 {
		return
	}
	raw, err := json.Marshal(r)
	if err != nil {
		c.log.Warn("report cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, cacheKey(period), raw, ttl).Err(); err != nil {
		c.log.Warn("report cache write failed", zap.String("key", cacheKey(period)), zap.Error(fmt.Errorf("set: %w", err)))
	}
}

// Invalidate drops the cached report for period.
func (c *Cache) Invalidate(ctx context.Context, period time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, cacheKey(period)).Err()
}
