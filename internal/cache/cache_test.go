// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cache

import (
	"context"
	"testing"
	"time"
)

func TestKeyString(t *testing.T) {
	tests := []struct {
		name     string
		key      Key
		expected string
	}{
		{name: "no params", key: Key{TenantID: "t1", Name: "tenant.active"}, expected: "t1/tenant.active"},
		{
			name:     "params sorted",
			key:      Key{TenantID: "t1", Name: "stock", Params: map[string]string{"to": "2026-02", "from": "2026-01"}},
			expected: "t1/stock?from=2026-01&to=2026-02",
		},
		{
			name:     "separators escaped",
			key:      Key{TenantID: "t/1", Name: "a?b", Params: map[string]string{"k&": "v="}},
			expected: "t%2F1/a%3Fb?k%26=v%3D",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func newTestCache(t *testing.T, size int) *MemoryCache {
	t.Helper()

	c, err := NewMemoryCache(size)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestMemoryCacheTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c := newTestCache(t, 16)
	c.now = func() time.Time { return now }

	ctx := context.Background()
	key := Key{TenantID: "t1", Name: "tenant.active"}

	if _, ok, _ := c.Get(ctx, key); ok {
		t.Fatal("expected miss on empty cache")
	}

	if err := c.Set(ctx, key, []byte("true"), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, ok, err := c.Get(ctx, key)
	if err != nil || !ok || string(v) != "true" {
		t.Fatalf("expected hit, got %q %v %v", v, ok, err)
	}

	now = now.Add(time.Minute)
	if _, ok, _ := c.Get(ctx, key); ok {
		t.Fatal("expected entry to expire after its ttl")
	}
}

func TestMemoryCacheDeleteAndZeroTTL(t *testing.T) {
	c := newTestCache(t, 16)
	ctx := context.Background()
	key := Key{Name: "global"}

	_ = c.Set(ctx, key, []byte("x"), 0)
	if _, ok, _ := c.Get(ctx, key); ok {
		t.Fatal("zero ttl must not store anything")
	}

	_ = c.Set(ctx, key, []byte("x"), time.Hour)
	_ = c.Delete(ctx, key)
	if _, ok, _ := c.Get(ctx, key); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestMemoryCacheIsBounded(t *testing.T) {
	c := newTestCache(t, 2)
	ctx := context.Background()

	a := Key{TenantID: "t1", Name: "tenant.active"}
	b := Key{TenantID: "t2", Name: "tenant.active"}
	d := Key{TenantID: "t3", Name: "tenant.active"}

	_ = c.Set(ctx, a, []byte("true"), time.Hour)
	_ = c.Set(ctx, b, []byte("true"), time.Hour)

	// a becomes the most recently used
	if _, ok, _ := c.Get(ctx, a); !ok {
		t.Fatal("expected hit")
	}

	_ = c.Set(ctx, d, []byte("false"), time.Hour)

	if c.Len() != 2 {
		t.Fatalf("expected the cache to stay at its size, got %d", c.Len())
	}
	if _, ok, _ := c.Get(ctx, b); ok {
		t.Errorf("expected the least recently used entry to be evicted")
	}
	for _, k := range []Key{a, d} {
		if _, ok, _ := c.Get(ctx, k); !ok {
			t.Errorf("expected %s to be kept", k.String())
		}
	}
}

func TestNewMemoryCacheRejectsInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := NewMemoryCache(size); err == nil {
			t.Errorf("expected an error for size %d", size)
		}
	}
}
