// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invitation

import (
	"context"
	"time"

	"github.com/canonical/inventory-identity/internal/types"
)

type ManagerInterface interface {
	Create(ctx context.Context, email, role, tenantID string, inviter *types.Principal, url URLBuilder) (*Created, error)
	Redeem(ctx context.Context, token string, attrs types.RedeemAttrs) (*types.Principal, error)
	Sweep(ctx context.Context) (int64, error)
}

type StorageInterface interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error

	EmailExists(ctx context.Context, email string) (bool, error)
	CreatePrincipal(ctx context.Context, p *types.Principal) (*types.Principal, error)

	CreateInvitation(ctx context.Context, i *types.Invitation) (*types.Invitation, error)
	GetInvitationByTokenHash(ctx context.Context, hash string, forUpdate bool) (*types.Invitation, error)
	MarkInvitationExpired(ctx context.Context, id string) (bool, error)
	MarkInvitationAccepted(ctx context.Context, id string, at time.Time) (bool, error)
	ExpirePendingInvitations(ctx context.Context, now time.Time) (int64, error)
}

type PasswordHasherInterface interface {
	Hash(password string) (string, error)
}
