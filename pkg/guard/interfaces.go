// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package guard

import (
	"context"

	"github.com/canonical/inventory-identity/internal/types"
)

type GuardInterface interface {
	Check(ctx context.Context, scope *types.Scope, action types.Action, resourceTenant string) error
	CheckAssignRole(ctx context.Context, scope *types.Scope, role types.Role, targetTenant string) error
	RequireRoot(ctx context.Context, scope *types.Scope, operation, resourceTenant string) error
	InvalidateTenant(ctx context.Context, tenantID string)
}

type TenantStorageInterface interface {
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
}
