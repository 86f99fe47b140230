package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewCache connects to Redis and verifies the connection with PING.
func NewCache(ctx context.Context, address, username, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Username: username,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", address, err)
	}
	return client, nil
}

// RedisStreamCache stores stream URLs in Redis, letting Redis expire them after ttl.
type RedisStreamCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStreamCache(client redis.Cmdable, ttl time.Duration) *RedisStreamCache {
	return &RedisStreamCache{client: client, ttl: ttl}
}

// Get implements repository.IStreamCache.
func (c *RedisStreamCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

// Put implements repository.IStreamCache.
func (c *RedisStreamCache) Put(ctx context.Context, key, value string) error {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
