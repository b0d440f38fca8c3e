// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package events

import (
	"context"
	"time"
)

// DisconnectEvent asks every live connection of the session to close, or of the
// principal when SessionID is empty.
type DisconnectEvent struct {
	PrincipalID string    `json:"principal_id"`
	SessionID   string    `json:"session_id"`
	Reason      string    `json:"reason"`
	At          time.Time `json:"at"`
}

type Handler func(DisconnectEvent)

type BusInterface interface {
	// Publish never blocks the caller on delivery.
	Publish(ctx context.Context, e DisconnectEvent) error
	// Subscribe delivers events until ctx is cancelled or the returned cancel func is called.
	Subscribe(ctx context.Context, h Handler) (func(), error)
}
