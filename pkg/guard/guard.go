// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package guard

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/canonical/inventory-identity/internal/authorization"
	"github.com/canonical/inventory-identity/internal/cache"
	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/storage"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/internal/types"
	"github.com/canonical/inventory-identity/pkg/audit"
)

const tenantActiveKey = "tenant_active"

const (
	reasonRole           = "role"
	reasonTenantInactive = "tenant_inactive"
	reasonNoScope        = "no_scope"
	reasonEscalation     = "escalation"
)

var _ GuardInterface = (*Guard)(nil)

// Guard is the single entry point for tenant isolation. Every denial leaves an
// authz.denied audit entry naming the action, the resource tenant and the roles
// that would have been allowed.
type Guard struct {
	authorizer authorization.AuthorizerInterface
	tenants    TenantStorageInterface
	cache      cache.CacheInterface
	cacheTTL   time.Duration
	audit      audit.RecorderInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (g *Guard) Check(ctx context.Context, scope *types.Scope, action types.Action, resourceTenant string) error {
	ctx, span := g.tracer.Start(ctx, "guard.Guard.Check")
	defer span.End()

	span.SetAttributes(
		attribute.String("action", string(action)),
		attribute.String("resource_tenant", resourceTenant),
	)

	if scope == nil || scope.Principal == nil {
		return g.deny(ctx, scope, string(action), resourceTenant, reasonNoScope, authorization.RequiredRoles(action))
	}

	if !g.authorizer.Check(ctx, scope, action, resourceTenant) {
		return g.deny(ctx, scope, string(action), resourceTenant, reasonRole, authorization.RequiredRoles(action))
	}

	if scope.Role() != types.RoleRootAdmin && !g.tenantActive(ctx, resourceTenant) {
		return g.deny(ctx, scope, string(action), resourceTenant, reasonTenantInactive, []types.Role{types.RoleRootAdmin})
	}

	return nil
}

// CheckAssignRole enforces that only root-admin hands out admin roles.
func (g *Guard) CheckAssignRole(ctx context.Context, scope *types.Scope, role types.Role, targetTenant string) error {
	ctx, span := g.tracer.Start(ctx, "guard.Guard.CheckAssignRole")
	defer span.End()

	action := "assign-role:" + string(role)

	if scope == nil || scope.Principal == nil {
		return g.deny(ctx, scope, action, targetTenant, reasonNoScope, nil)
	}

	if !g.authorizer.CheckAssignRole(ctx, scope, role, targetTenant) {
		required := []types.Role{types.RoleRootAdmin}
		if role.Invitable() {
			required = append(required, types.RoleTenantAdmin)
		}
		return g.deny(ctx, scope, action, targetTenant, reasonEscalation, required)
	}

	if scope.Role() != types.RoleRootAdmin && !g.tenantActive(ctx, targetTenant) {
		return g.deny(ctx, scope, action, targetTenant, reasonTenantInactive, []types.Role{types.RoleRootAdmin})
	}

	return nil
}

// RequireRoot guards operations reserved to root-admin, such as the tenant directory.
func (g *Guard) RequireRoot(ctx context.Context, scope *types.Scope, operation, resourceTenant string) error {
	ctx, span := g.tracer.Start(ctx, "guard.Guard.RequireRoot")
	defer span.End()

	if scope.Role() == types.RoleRootAdmin {
		return nil
	}

	reason := reasonRole
	if scope == nil || scope.Principal == nil {
		reason = reasonNoScope
	}

	return g.deny(ctx, scope, operation, resourceTenant, reason, []types.Role{types.RoleRootAdmin})
}

// InvalidateTenant drops the cached active flag after a tenant changes.
func (g *Guard) InvalidateTenant(ctx context.Context, tenantID string) {
	if err := g.cache.Delete(ctx, cache.Key{TenantID: tenantID, Name: tenantActiveKey}); err != nil {
		g.logger.Warnf("failed to invalidate tenant %s: %v", tenantID, err)
	}
}

func (g *Guard) deny(ctx context.Context, scope *types.Scope, action, resourceTenant, reason string, required []types.Role) error {
	roles := make([]string, 0, len(required))
	for _, r := range required {
		roles = append(roles, string(r))
	}

	var actor *types.Principal
	if scope != nil {
		actor = scope.Principal
	}

	g.logger.Security().AuthzFailure(scope.PrincipalID(), action, logging.WithContext("resource_tenant", resourceTenant, "reason", reason))

	if err := g.monitor.IncrementEventCounter(map[string]string{"event": "authz_denied", "outcome": reason}); err != nil {
		g.logger.Debugf("failed to record authorization metric: %v", err)
	}

	g.audit.Record(ctx, actor, audit.ActionAuthzDenied, audit.Attrs{
		TenantID:     resourceTenant,
		ResourceType: audit.ResourceTenant,
		ResourceID:   resourceTenant,
		Diff: map[string]interface{}{
			"action":         action,
			"role":           string(scope.Role()),
			"required_roles": roles,
			"reason":         reason,
		},
	})

	return types.ErrUnauthorized
}

// tenantActive fails closed: an unknown tenant or a storage error is inactive.
func (g *Guard) tenantActive(ctx context.Context, tenantID string) bool {
	if tenantID == "" {
		return false
	}

	key := cache.Key{TenantID: tenantID, Name: tenantActiveKey}

	if v, ok, err := g.cache.Get(ctx, key); err != nil {
		g.logger.Warnf("tenant cache unavailable: %v", err)
	} else if ok {
		return string(v) == "1"
	}

	t, err := g.tenants.GetTenantByID(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			g.logger.Errorf("failed to load tenant %s: %v", tenantID, err)
			return false
		}
		t = &types.Tenant{ID: tenantID}
	}

	v := []byte("0")
	if t.Active {
		v = []byte("1")
	}

	if err := g.cache.Set(ctx, key, v, g.cacheTTL); err != nil {
		g.logger.Warnf("failed to cache tenant %s: %v", tenantID, err)
	}

	return t.Active
}

func NewGuard(authorizer authorization.AuthorizerInterface, tenants TenantStorageInterface, c cache.CacheInterface, cacheTTL time.Duration, recorder audit.RecorderInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Guard {
	g := new(Guard)

	g.authorizer = authorizer
	g.tenants = tenants
	g.cache = c
	g.cacheTTL = cacheTTL
	g.audit = recorder

	g.tracer = tracer
	g.monitor = monitor
	g.logger = logger

	return g
}
