// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cache

import (
	"context"
	"time"
)

type CacheInterface interface {
	// Get reports false on a miss, an error only when the backend failed.
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Set(ctx context.Context, key Key, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key Key) error
}
