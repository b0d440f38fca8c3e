// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"

	"github.com/canonical/inventory-identity/internal/types"
)

type SessionResolverInterface interface {
	// ResolveSession turns a plaintext token into a fresh scope, or one of
	// ErrSessionExpired / ErrSessionNotFound
	ResolveSession(ctx context.Context, token string) (*types.SessionResolution, error)
}
