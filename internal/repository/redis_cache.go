package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Gold-Price-Tracker-Backend/internal/model"
)

// RedisCache stores the record as one JSON value under a single key.
// SET replaces the value atomically. No Redis expiry is set: a stale record
// must stay readable for the fallback path.
type RedisCache struct {
	rdb *redis.Client
	key string
}

// NewRedisCache creates a new RedisCache and pings the server.
func NewRedisCache(ctx context.Context, addr, password string, db int, key string) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{rdb: rdb, key: key}, nil
}

func (c *RedisCache) Read(ctx context.Context) (model.CacheRecord, error) {
	data, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.CacheRecord{}, apperrors.ErrCacheMiss
	}
	if err != nil {
		return model.CacheRecord{}, fmt.Errorf("failed to get %s from redis: %w", c.key, err)
	}
	return decodeRecord(data)
}

func (c *RedisCache) Write(ctx context.Context, record model.CacheRecord) error {
	data, err := encodeRecord(record)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, c.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", c.key, err)
	}
	return nil
}

// Health checks Redis connection health.
func (c *RedisCache) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
