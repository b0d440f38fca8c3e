// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package events

import (
	"context"
	"sync"

	"github.com/canonical/inventory-identity/internal/logging"
)

const subscriberBuffer = 256

var _ BusInterface = (*MemoryBus)(nil)

// MemoryBus fans events out to in-process subscribers. Slow subscribers lose
// events instead of stalling publishers.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[int]chan DisconnectEvent
	nextID int

	logger logging.LoggerInterface
}

func (b *MemoryBus) Publish(_ context.Context, e DisconnectEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.logger.Warnf("dropping disconnect event for subscriber %d, buffer full", id)
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, h Handler) (func(), error) {
	ch := make(chan DisconnectEvent, subscriberBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)

	go func() {
		defer func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case e := <-ch:
				h(e)
			}
		}
	}()

	return cancel, nil
}

func NewMemoryBus(logger logging.LoggerInterface) *MemoryBus {
	b := new(MemoryBus)
	b.subs = make(map[int]chan DisconnectEvent)
	b.logger = logger
	return b
}
