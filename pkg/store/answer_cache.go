// Package store holds the answer caches used by the generative resolver.
package store

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "deepsight:answer:"

// RedisAnswerCache shares generated answers between instances.
type RedisAnswerCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisAnswerCache(rdb *redis.Client, ttl time.Duration) *RedisAnswerCache {
	return &RedisAnswerCache{rdb: rdb, ttl: ttl}
}

func (c *RedisAnswerCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *RedisAnswerCache) Set(ctx context.Context, key, value string) error {
	return c.rdb.Set(ctx, keyPrefix+key, value, c.ttl).Err()
}

// MemoryAnswerCache is the single-instance fallback when no Redis is configured.
type MemoryAnswerCache struct {
	c *gocache.Cache
}

func NewMemoryAnswerCache(ttl time.Duration) *MemoryAnswerCache {
	return &MemoryAnswerCache{c: gocache.New(ttl, 2*ttl)}
}

func (c *MemoryAnswerCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.c.Get(key)
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

func (c *MemoryAnswerCache) Set(_ context.Context, key, value string) error {
	c.c.SetDefault(key, value)
	return nil
}

// NewRedisClient accepts either a redis:// URL or a bare host:port.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
