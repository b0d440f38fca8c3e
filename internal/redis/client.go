// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewClient creates a Redis client and verifies connectivity.
func NewClient(ctx context.Context, cfg Config, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	tags := map[string]string{"component": "redis"}

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = monitor.SetDependencyAvailability(tags, 0)
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	_ = monitor.SetDependencyAvailability(tags, 1)
	logger.Infof("redis client connected to %s", cfg.Addr)

	return rdb, nil
}
