// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/tracing"
)

const redisKeyPrefix = "identity:cache:"

var _ CacheInterface = (*RedisCache)(nil)

type RedisCache struct {
	client redis.Cmdable

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

func redisKey(key Key) string {
	return redisKeyPrefix + key.String()
}

func (c *RedisCache) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	ctx, span := c.tracer.Start(ctx, "cache.RedisCache.Get")
	defer span.End()

	v, err := c.client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	return v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key Key, value []byte, ttl time.Duration) error {
	ctx, span := c.tracer.Start(ctx, "cache.RedisCache.Set")
	defer span.End()

	if ttl <= 0 {
		return nil
	}

	if err := c.client.Set(ctx, redisKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key Key) error {
	ctx, span := c.tracer.Start(ctx, "cache.RedisCache.Delete")
	defer span.End()

	if err := c.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func NewRedisCache(client redis.Cmdable, tracer tracing.TracingInterface, logger logging.LoggerInterface) *RedisCache {
	c := new(RedisCache)
	c.client = client
	c.tracer = tracer
	c.logger = logger
	return c
}
