// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

var _ CacheInterface = (*MemoryCache)(nil)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a single process cache holding at most size entries, the
// least recently used go first. Expired entries are dropped on read.
type MemoryCache struct {
	mu      sync.Mutex
	entries *simplelru.LRU[string, entry]

	now func() time.Time
}

func (c *MemoryCache) Get(_ context.Context, key Key) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key.String()
	e, ok := c.entries.Get(k)
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		c.entries.Remove(k)
		return nil, false, nil
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key Key, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	c.entries.Add(key.String(), entry{value: v, expiresAt: c.now().Add(ttl)})
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Remove(key.String())
	return nil
}

// Len counts stored entries, expired ones included until they are read.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.entries.Len()
}

func NewMemoryCache(size int) (*MemoryCache, error) {
	entries, err := simplelru.NewLRU[string, entry](size, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid cache size %d: %w", size, err)
	}

	c := new(MemoryCache)
	c.entries = entries
	c.now = time.Now
	return c, nil
}
