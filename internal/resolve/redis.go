package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmunix/reelvault/internal/library"
)

const kindKeyPrefix = "reelvault:kind:"

// RedisCache stores kind tags in redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to the redis server at url and verifies it responds.
func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisCacheWithClient(client, ttl), nil
}

// NewRedisCacheWithClient wraps an existing client without contacting it.
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// GetKind implements Cache.
func (c *RedisCache) GetKind(ctx context.Context, id string) (library.Kind, bool, error) {
	val, err := c.client.Get(ctx, kindKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return library.Kind(val), true, nil
}

// SetKind implements Cache.
func (c *RedisCache) SetKind(ctx context.Context, id string, kind library.Kind) error {
	return c.client.Set(ctx, kindKeyPrefix+id, string(kind), c.ttl).Err()
}

// Forget implements Cache.
func (c *RedisCache) Forget(ctx context.Context, id string) error {
	return c.client.Del(ctx, kindKeyPrefix+id).Err()
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
