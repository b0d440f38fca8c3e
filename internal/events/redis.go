// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/tracing"
)

const (
	DisconnectChannel = "identity:disconnect"

	publishTimeout = 5 * time.Second
)

var _ BusInterface = (*RedisBus)(nil)

// RedisBus broadcasts disconnect events to every instance through redis pub/sub.
type RedisBus struct {
	client *redis.Client

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

// Publish hands the event to a goroutine, the revoking request never waits on redis.
func (b *RedisBus) Publish(ctx context.Context, e DisconnectEvent) error {
	_, span := b.tracer.Start(ctx, "events.RedisBus.Publish")
	defer span.End()

	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode disconnect event: %w", err)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := b.client.Publish(ctx, DisconnectChannel, body).Err(); err != nil {
			b.logger.Errorf("failed to publish disconnect event: %v", err)
		}
	}()

	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, h Handler) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	pubsub := b.client.Subscribe(ctx, DisconnectChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	ch := pubsub.Channel()

	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				e, err := decodeEvent(msg.Payload)
				if err != nil {
					b.logger.Warnf("discarding malformed disconnect event: %v", err)
					continue
				}
				h(e)
			}
		}
	}()

	return cancel, nil
}

func decodeEvent(payload string) (DisconnectEvent, error) {
	var e DisconnectEvent
	err := json.Unmarshal([]byte(payload), &e)
	return e, err
}

func NewRedisBus(client *redis.Client, tracer tracing.TracingInterface, logger logging.LoggerInterface) *RedisBus {
	b := new(RedisBus)
	b.client = client
	b.tracer = tracer
	b.logger = logger
	return b
}
