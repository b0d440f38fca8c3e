// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/storage"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/internal/types"
	"github.com/canonical/inventory-identity/pkg/audit"
)

//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_tenant.go -source=./interfaces.go

var (
	rootScope   = types.NewScope(&types.Principal{ID: "root-1", Role: types.RoleRootAdmin, Status: types.StatusActive})
	adminScope  = types.NewScope(&types.Principal{ID: "admin-1", Role: types.RoleTenantAdmin, TenantID: "tenant-1", Status: types.StatusActive})
	viewerScope = types.NewScope(&types.Principal{ID: "viewer-1", Role: types.RoleViewer, TenantID: "tenant-1", Status: types.StatusActive})
)

type mocks struct {
	storage *MockStorageInterface
	guard   *MockGuardInterface
	audit   *audit.MockRecorderInterface
}

func newTestService(ctrl *gomock.Controller) (*Service, *mocks) {
	m := &mocks{
		storage: NewMockStorageInterface(ctrl),
		guard:   NewMockGuardInterface(ctrl),
		audit:   audit.NewMockRecorderInterface(ctrl),
	}

	logger := logging.NewNoopLogger()
	s := NewService(m.storage, m.guard, m.audit, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)

	return s, m
}

func TestService_CreateTenant(t *testing.T) {
	attrs := types.TenantAttrs{Name: "Acme", Slug: "acme", ContactEmail: "ops@acme.example"}

	testCases := []struct {
		name          string
		scope         *types.Scope
		attrs         types.TenantAttrs
		setupMocks    func(*mocks)
		expectedErr   error
		expectedField string
	}{
		{
			name:  "root admin creates an active tenant",
			scope: rootScope,
			attrs: attrs,
			setupMocks: func(m *mocks) {
				m.guard.EXPECT().RequireRoot(gomock.Any(), rootScope, opCreate, "").Return(nil)
				m.storage.EXPECT().CreateTenant(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, t *types.Tenant) (*types.Tenant, error) {
					if !t.Active || t.Slug != "acme" {
						return nil, errors.New("unexpected tenant")
					}
					created := *t
					created.ID = "tenant-1"
					return &created, nil
				})
				m.audit.EXPECT().Record(gomock.Any(), rootScope.Principal, audit.ActionTenantCreated, gomock.Any())
			},
		},
		{
			name:  "tenant admin is refused",
			scope: adminScope,
			attrs: attrs,
			setupMocks: func(m *mocks) {
				m.guard.EXPECT().RequireRoot(gomock.Any(), adminScope, opCreate, "").Return(types.ErrUnauthorized)
			},
			expectedErr: types.ErrUnauthorized,
		},
		{
			name:  "invalid slug",
			scope: rootScope,
			attrs: types.TenantAttrs{Name: "Acme", Slug: "Not A Slug"},
			setupMocks: func(m *mocks) {
				m.guard.EXPECT().RequireRoot(gomock.Any(), rootScope, opCreate, "").Return(nil)
			},
			expectedErr:   types.ErrValidationFailed,
			expectedField: "slug",
		},
		{
			name:  "slug already taken",
			scope: rootScope,
			attrs: attrs,
			setupMocks: func(m *mocks) {
				m.guard.EXPECT().RequireRoot(gomock.Any(), rootScope, opCreate, "").Return(nil)
				m.storage.EXPECT().CreateTenant(gomock.Any(), gomock.Any()).Return(nil, storage.ErrDuplicateKey)
			},
			expectedErr:   types.ErrValidationFailed,
			expectedField: "slug",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, m := newTestService(ctrl)
			tc.setupMocks(m)

			tenant, err := s.CreateTenant(context.Background(), tc.scope, tc.attrs)

			if !errors.Is(err, tc.expectedErr) {
				t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
			}
			if tc.expectedField != "" {
				var verr *types.ValidationError
				if !errors.As(err, &verr) || len(verr.Fields[tc.expectedField]) == 0 {
					t.Errorf("expected a reason for %s, got %v", tc.expectedField, err)
				}
			}
			if tc.expectedErr == nil && tenant.ID != "tenant-1" {
				t.Errorf("unexpected tenant %+v", tenant)
			}
		})
	}
}

func TestService_GetTenant(t *testing.T) {
	tenant := &types.Tenant{ID: "tenant-1", Name: "Acme", Active: true}

	testCases := []struct {
		name        string
		scope       *types.Scope
		id          string
		setupMocks  func(*mocks)
		expectedErr error
	}{
		{
			name:  "member reads own tenant",
			scope: viewerScope,
			id:    "tenant-1",
			setupMocks: func(m *mocks) {
				m.storage.EXPECT().GetTenantByID(gomock.Any(), "tenant-1").Return(tenant, nil)
			},
		},
		{
			name:  "member cannot read another tenant",
			scope: viewerScope,
			id:    "tenant-2",
			setupMocks: func(m *mocks) {
				m.guard.EXPECT().RequireRoot(gomock.Any(), viewerScope, opGet, "tenant-2").Return(types.ErrUnauthorized)
			},
			expectedErr: types.ErrUnauthorized,
		},
		{
			name:  "root reads anything",
			scope: rootScope,
			id:    "tenant-1",
			setupMocks: func(m *mocks) {
				m.guard.EXPECT().RequireRoot(gomock.Any(), rootScope, opGet, "tenant-1").Return(nil)
				m.storage.EXPECT().GetTenantByID(gomock.Any(), "tenant-1").Return(tenant, nil)
			},
		},
		{
			name:  "missing tenant",
			scope: rootScope,
			id:    "tenant-9",
			setupMocks: func(m *mocks) {
				m.guard.EXPECT().RequireRoot(gomock.Any(), rootScope, opGet, "tenant-9").Return(nil)
				m.storage.EXPECT().GetTenantByID(gomock.Any(), "tenant-9").Return(nil, storage.ErrNotFound)
			},
			expectedErr: types.ErrTenantNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, m := newTestService(ctrl)
			tc.setupMocks(m)

			_, err := s.GetTenant(context.Background(), tc.scope, tc.id)

			if !errors.Is(err, tc.expectedErr) {
				t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
			}
		})
	}
}

func TestService_ListTenants(t *testing.T) {
	all := []*types.Tenant{{ID: "tenant-1"}, {ID: "tenant-2"}}

	t.Run("root sees every tenant", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		s, m := newTestService(ctrl)
		m.storage.EXPECT().ListTenants(gomock.Any()).Return(all, nil)

		tenants, err := s.ListTenants(context.Background(), rootScope)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tenants) != 2 {
			t.Errorf("expected 2 tenants, got %d", len(tenants))
		}
	})

	t.Run("tenant admin sees its own tenant only", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		s, m := newTestService(ctrl)
		m.storage.EXPECT().GetTenantByID(gomock.Any(), "tenant-1").Return(all[0], nil)

		tenants, err := s.ListTenants(context.Background(), adminScope)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tenants) != 1 || tenants[0].ID != "tenant-1" {
			t.Errorf("unexpected tenants %+v", tenants)
		}
	})

	t.Run("storage error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		s, m := newTestService(ctrl)
		m.storage.EXPECT().ListTenants(gomock.Any()).Return(nil, errors.New("db error"))

		if _, err := s.ListTenants(context.Background(), rootScope); err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestService_SetTenantActive(t *testing.T) {
	testCases := []struct {
		name        string
		scope       *types.Scope
		active      bool
		setupMocks  func(*mocks)
		expectedErr error
	}{
		{
			name:   "deactivate invalidates the cached flag",
			scope:  rootScope,
			active: false,
			setupMocks: func(m *mocks) {
				m.guard.EXPECT().RequireRoot(gomock.Any(), rootScope, opSetActive, "tenant-1").Return(nil)
				m.storage.EXPECT().GetTenantByID(gomock.Any(), "tenant-1").Return(&types.Tenant{ID: "tenant-1", Active: true}, nil)
				m.storage.EXPECT().SetTenantActive(gomock.Any(), "tenant-1", false).Return(nil)
				m.guard.EXPECT().InvalidateTenant(gomock.Any(), "tenant-1")
				m.audit.EXPECT().Record(gomock.Any(), rootScope.Principal, audit.ActionTenantStatusChange, gomock.Any())
			},
		},
		{
			name:   "no change is a no-op",
			scope:  rootScope,
			active: true,
			setupMocks: func(m *mocks) {
				m.guard.EXPECT().RequireRoot(gomock.Any(), rootScope, opSetActive, "tenant-1").Return(nil)
				m.storage.EXPECT().GetTenantByID(gomock.Any(), "tenant-1").Return(&types.Tenant{ID: "tenant-1", Active: true}, nil)
			},
		},
		{
			name:   "tenant admin cannot toggle",
			scope:  adminScope,
			active: false,
			setupMocks: func(m *mocks) {
				m.guard.EXPECT().RequireRoot(gomock.Any(), adminScope, opSetActive, "tenant-1").Return(types.ErrUnauthorized)
			},
			expectedErr: types.ErrUnauthorized,
		},
		{
			name:   "unknown tenant",
			scope:  rootScope,
			active: false,
			setupMocks: func(m *mocks) {
				m.guard.EXPECT().RequireRoot(gomock.Any(), rootScope, opSetActive, "tenant-1").Return(nil)
				m.storage.EXPECT().GetTenantByID(gomock.Any(), "tenant-1").Return(nil, storage.ErrNotFound)
			},
			expectedErr: types.ErrTenantNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, m := newTestService(ctrl)
			tc.setupMocks(m)

			tenant, err := s.SetTenantActive(context.Background(), tc.scope, "tenant-1", tc.active)

			if !errors.Is(err, tc.expectedErr) {
				t.Fatalf("expected error %v, got %v", tc.expectedErr, err)
			}
			if tc.expectedErr == nil && tenant.Active != tc.active {
				t.Errorf("expected active=%t, got %+v", tc.active, tenant)
			}
		})
	}
}
