package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LeventeLantos/webhook-chat/internal/repo"
)

const keyPrefix = "webchat:settings:"

var _ repo.SettingsStore = (*RedisSettings)(nil)

// RedisSettings stores each setting under its own string key. A zero TTL
// keeps values forever.
type RedisSettings struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSettings(rdb *redis.Client, ttl time.Duration) *RedisSettings {
	return &RedisSettings{rdb: rdb, ttl: ttl}
}

func (c *RedisSettings) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &repo.StoreError{Driver: "redis", Op: "get", Key: key, Err: err}
	}
	return v, true, nil
}

func (c *RedisSettings) Set(ctx context.Context, key, value string) error {
	if err := c.rdb.Set(ctx, keyPrefix+key, value, c.ttl).Err(); err != nil {
		return &repo.StoreError{Driver: "redis", Op: "set", Key: key, Err: err}
	}
	return nil
}

func (c *RedisSettings) Close() error {
	return c.rdb.Close()
}
