package content

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const listingKey = "blog:approved"

// RedisCache keeps the approved listing as a JSON string.
type RedisCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, key: prefix + listingKey, ttl: ttl}
}

func (c *RedisCache) GetListing(ctx context.Context) ([]PostSummary, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", c.key, err)
	}

	var posts []PostSummary
	if err := json.Unmarshal([]byte(raw), &posts); err != nil {
		// Treat an undecodable entry as a miss; the next write replaces it.
		return nil, false, nil
	}
	return posts, true, nil
}

func (c *RedisCache) SetListing(ctx context.Context, posts []PostSummary) error {
	data, err := json.Marshal(posts)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", c.key, err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", c.key, err)
	}
	return nil
}
