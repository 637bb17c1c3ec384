package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mycok/uJobs/jobs"
)

// Static and compile-time check to ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)

// RedisCache stores results as JSON strings that redis expires after a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to the redis instance at redisURL and verifies the
// connection. A zero ttl uses DefaultTTL.
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis cache: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("redis cache: ping: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

// Close terminates the connection to redis.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]jobs.RankedResult, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("redis cache: get: %w", err)
	}

	var results []jobs.RankedResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, false, fmt.Errorf("redis cache: decode: %w", err)
	}

	return results, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, results []jobs.RankedResult) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("redis cache: encode: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis cache: set: %w", err)
	}

	return nil
}
