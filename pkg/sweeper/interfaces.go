// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package sweeper

import (
	"context"
)

type InvitationSweeperInterface interface {
	Sweep(ctx context.Context) (int64, error)
}

type SessionPurgerInterface interface {
	PurgeExpired(ctx context.Context) (int64, error)
}
