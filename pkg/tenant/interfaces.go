// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"

	"github.com/canonical/inventory-identity/internal/types"
)

type ServiceInterface interface {
	CreateTenant(ctx context.Context, scope *types.Scope, attrs types.TenantAttrs) (*types.Tenant, error)
	GetTenant(ctx context.Context, scope *types.Scope, id string) (*types.Tenant, error)
	ListTenants(ctx context.Context, scope *types.Scope) ([]*types.Tenant, error)
	SetTenantActive(ctx context.Context, scope *types.Scope, id string, active bool) (*types.Tenant, error)
}

type StorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	SetTenantActive(ctx context.Context, id string, active bool) error
}

type GuardInterface interface {
	RequireRoot(ctx context.Context, scope *types.Scope, operation, resourceTenant string) error
	InvalidateTenant(ctx context.Context, tenantID string)
}
