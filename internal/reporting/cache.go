package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	v1 "github.com/rentops-lab/rentops/internal/api/v1"
	"github.com/rentops-lab/rentops/internal/aggregation"
)

const cacheKeyPrefix = "rentops:revenue"

// Cache stores rendered reports. Get reports a miss as (nil, nil).
type Cache interface {
	Get(ctx context.Context, key string) (*v1.RevenueReport, error)
	Set(ctx context.Context, key string, report v1.RevenueReport) error
}

// CacheKey identifies a report by owner scope, unit filter and window.
func CacheKey(q aggregation.Query) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", cacheKeyPrefix, q.OwnerID, q.UnitID, q.Start, q.End)
}

// RedisCache keeps reports as JSON strings with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*v1.RevenueReport, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var report v1.RevenueReport
	if err := json.Unmarshal([]byte(val), &report); err != nil {
		return nil, fmt.Errorf("decode cached report %s: %w", key, err)
	}
	return &report, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, report v1.RevenueReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
