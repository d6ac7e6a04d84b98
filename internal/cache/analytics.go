// Package cache keeps computed analytics read models in redis between
// uploads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/config"
	"github.com/redis/go-redis/v9"
)

const analyticsKeyPrefix = "inventory:analytics:"

// Names of the cached read models.
const (
	KeyDashboard           = "dashboard"
	KeyRevenueForecast     = "revenue-forecast"
	KeyStockAlerts         = "stock-alerts"
	KeyCategoryPerformance = "category-performance"
)

// AnalyticsCache stores JSON-encoded read models by name. Get reports a miss
// with ok=false and a nil error.
type AnalyticsCache interface {
	Get(ctx context.Context, name string, dest interface{}) (bool, error)
	Set(ctx context.Context, name string, value interface{}) error
	InvalidateAll(ctx context.Context) error
	Close() error
}

type redisAnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnalyticsCache struct{}

// NewAnalyticsCache connects to redis when caching is enabled and returns a
// no-op cache otherwise.
func NewAnalyticsCache(cfg config.CacheConfig) (AnalyticsCache, error) {
	if !cfg.Enabled {
		return &noopAnalyticsCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAnalyticsCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopAnalyticsCache() AnalyticsCache {
	return &noopAnalyticsCache{}
}

func (c *redisAnalyticsCache) Get(ctx context.Context, name string, dest interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, analyticsKeyPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode %s cache: %w", name, err)
	}

	return true, nil
}

func (c *redisAnalyticsCache) Set(ctx context.Context, name string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s cache: %w", name, err)
	}

	if err := c.client.Set(ctx, analyticsKeyPrefix+name, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, analyticsKeyPrefix, scanBatchSize)
}

func (c *redisAnalyticsCache) Close() error {
	return c.client.Close()
}

func (n *noopAnalyticsCache) Get(ctx context.Context, name string, dest interface{}) (bool, error) {
	return false, nil
}

func (n *noopAnalyticsCache) Set(ctx context.Context, name string, value interface{}) error {
	return nil
}

func (n *noopAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func (n *noopAnalyticsCache) Close() error {
	return nil
}
