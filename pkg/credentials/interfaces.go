// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package credentials

import (
	"context"

	"github.com/canonical/inventory-identity/internal/types"
)

type StoreInterface interface {
	Verify(ctx context.Context, email, password string) (*types.Principal, error)
	Hash(password string) (string, error)
	ResetToTemporary(ctx context.Context, principal *types.Principal) (*types.Principal, string, error)
	ChangePassword(ctx context.Context, principal *types.Principal, attrs types.PasswordChangeAttrs, currentToken string) (*types.Principal, error)
}

type StorageInterface interface {
	GetPrincipalByID(ctx context.Context, id string) (*types.Principal, error)
	GetPrincipalByEmail(ctx context.Context, email string) (*types.Principal, error)
	UpdatePrincipalPassword(ctx context.Context, id, passwordHash string, mustChange bool) error
}

// SessionRevokerInterface is the part of the session manager a password change needs.
type SessionRevokerInterface interface {
	RevokeAllExcept(ctx context.Context, principalID, currentToken string) (int, error)
	RevokeAll(ctx context.Context, principalID string) (int, error)
}
