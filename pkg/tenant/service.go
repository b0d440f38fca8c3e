// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/storage"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/internal/types"
	"github.com/canonical/inventory-identity/internal/validation"
	"github.com/canonical/inventory-identity/pkg/audit"
)

const (
	opCreate    = "tenant.create"
	opGet       = "tenant.get"
	opSetActive = "tenant.set_active"
)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage StorageInterface
	guard   GuardInterface
	audit   audit.RecorderInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	guard GuardInterface,
	recorder audit.RecorderInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage: storage,
		guard:   guard,
		audit:   recorder,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

func (s *Service) CreateTenant(ctx context.Context, scope *types.Scope, attrs types.TenantAttrs) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.CreateTenant")
	defer span.End()

	if err := s.guard.RequireRoot(ctx, scope, opCreate, ""); err != nil {
		return nil, err
	}

	valid, err := validation.Tenant(attrs)
	if err != nil {
		return nil, err
	}

	t := &types.Tenant{
		Name:         valid.Name,
		Slug:         valid.Slug,
		ContactEmail: valid.ContactEmail,
		ContactPhone: valid.ContactPhone,
		Settings:     valid.Settings,
		// new tenants are usable straight away
		Active: true,
	}

	created, err := s.storage.CreateTenant(ctx, t)
	if errors.Is(err, storage.ErrDuplicateKey) {
		verr := types.NewValidationError()
		verr.Add("slug", "already taken")
		return nil, verr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	s.logger.Infof("tenant %s (%s) created by %s", created.ID, created.Slug, scope.PrincipalID())

	s.audit.Record(ctx, scope.Principal, audit.ActionTenantCreated, audit.Attrs{
		TenantID:     created.ID,
		ResourceType: audit.ResourceTenant,
		ResourceID:   created.ID,
		Diff: map[string]interface{}{
			"name": created.Name,
			"slug": created.Slug,
		},
	})

	return created, nil
}

// GetTenant is open to root-admin and to members of the tenant itself.
func (s *Service) GetTenant(ctx context.Context, scope *types.Scope, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.GetTenant")
	defer span.End()

	if scope == nil || scope.TenantID == "" || scope.TenantID != id {
		if err := s.guard.RequireRoot(ctx, scope, opGet, id); err != nil {
			return nil, err
		}
	}

	t, err := s.storage.GetTenantByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, types.ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return t, nil
}

// ListTenants returns every tenant to root-admin and only the own tenant to everybody else.
func (s *Service) ListTenants(ctx context.Context, scope *types.Scope) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListTenants")
	defer span.End()

	if scope.Role() != types.RoleRootAdmin {
		if scope == nil || scope.TenantID == "" {
			return []*types.Tenant{}, nil
		}

		t, err := s.GetTenant(ctx, scope, scope.TenantID)
		if err != nil {
			return nil, err
		}
		return []*types.Tenant{t}, nil
	}

	tenants, err := s.storage.ListTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}

	return tenants, nil
}

func (s *Service) SetTenantActive(ctx context.Context, scope *types.Scope, id string, active bool) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.SetTenantActive")
	defer span.End()

	if err := s.guard.RequireRoot(ctx, scope, opSetActive, id); err != nil {
		return nil, err
	}

	before, err := s.storage.GetTenantByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, types.ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	if before.Active == active {
		return before, nil
	}

	if err := s.storage.SetTenantActive(ctx, id, active); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}

	s.guard.InvalidateTenant(ctx, id)

	s.logger.Infof("tenant %s active=%t, changed by %s", id, active, scope.PrincipalID())

	s.audit.Record(ctx, scope.Principal, audit.ActionTenantStatusChange, audit.Attrs{
		TenantID:     id,
		ResourceType: audit.ResourceTenant,
		ResourceID:   id,
		Diff: map[string]interface{}{
			"active": map[string]interface{}{"from": before.Active, "to": active},
		},
	})

	after := *before
	after.Active = active

	return &after, nil
}
