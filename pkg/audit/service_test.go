// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/storage"
	"github.com/canonical/inventory-identity/internal/storage/memory"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package audit -destination ./mock_audit.go -source=./interfaces.go

func newTestService(s StorageInterface, logger logging.LoggerInterface) *Service {
	svc := NewService(s, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestService_RecordFillsSnapshot(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store, logging.NewNoopLogger())

	actor := &types.Principal{ID: "p-1", Email: "admin@t1.example", Role: types.RoleTenantAdmin, TenantID: "t1"}
	ctx := types.ContextWithClientInfo(context.Background(), types.ClientInfo{Addr: "10.0.0.7", Agent: "curl/8"})

	svc.Record(ctx, actor, ActionUserRoleChanged, Attrs{
		ResourceType: ResourcePrincipal,
		ResourceID:   "p-2",
		Diff:         map[string]interface{}{"role": []string{"viewer", "operator"}},
	})

	entries, err := store.ListAuditEntries(context.Background(), types.AuditFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.ActorID != "p-1" || e.ActorEmail != "admin@t1.example" {
		t.Errorf("expected actor snapshot, got %s/%s", e.ActorID, e.ActorEmail)
	}
	if e.TenantID != "t1" {
		t.Errorf("expected tenant to default to the actor tenant, got %q", e.TenantID)
	}
	if e.ClientAddr != "10.0.0.7" || e.ClientAgent != "curl/8" {
		t.Errorf("expected client info to be captured, got %s/%s", e.ClientAddr, e.ClientAgent)
	}
	if e.Action != ActionUserRoleChanged || e.ResourceID != "p-2" {
		t.Errorf("unexpected entry %+v", e)
	}
	if !e.OccurredAt.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected timestamp %v", e.OccurredAt)
	}
}

func TestService_RecordSystemActor(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store, logging.NewNoopLogger())

	svc.Record(context.Background(), nil, ActionInvitationsSwept, Attrs{Diff: map[string]interface{}{"count": 3}})

	entries, _ := store.ListAuditEntries(context.Background(), types.AuditFilter{})
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ActorID != "" || entries[0].TenantID != "" {
		t.Errorf("expected an empty actor for system entries, got %+v", entries[0])
	}
}

func TestService_RecordSwallowsStorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	core, logs := observer.New(zap.InfoLevel)
	logger := logging.NewLoggerFromZap(zap.New(core))

	mockStorage := NewMockStorageInterface(ctrl)
	mockStorage.EXPECT().AppendAuditEntry(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	svc := newTestService(mockStorage, logger)
	svc.Record(context.Background(), &types.Principal{ID: "p-1", TenantID: "t1"}, ActionLogout, Attrs{})

	found := false
	for _, l := range logs.All() {
		if l.ContextMap()["event"] == "audit_write_fail:"+ActionLogout {
			found = true
			if l.ContextMap()["error"] != "disk full" {
				t.Errorf("expected storage error in log context, got %v", l.ContextMap()["error"])
			}
		}
	}

	if !found {
		t.Errorf("expected audit write failure to reach the security log")
	}
}

func TestService_Query(t *testing.T) {
	root := &types.Principal{ID: "root", Role: types.RoleRootAdmin}
	admin := &types.Principal{ID: "a1", Role: types.RoleTenantAdmin, TenantID: "t1"}

	testCases := []struct {
		name           string
		scope          *types.Scope
		filter         types.AuditFilter
		expectedFilter string
		expectedErr    error
	}{
		{
			name:           "tenant admin is pinned to own tenant",
			scope:          types.NewScope(admin),
			filter:         types.AuditFilter{TenantID: "t2"},
			expectedFilter: "t1",
		},
		{
			name:           "tenant admin without filter",
			scope:          types.NewScope(admin),
			expectedFilter: "t1",
		},
		{
			name:           "root admin may read another tenant",
			scope:          types.NewScope(root),
			filter:         types.AuditFilter{TenantID: "t2"},
			expectedFilter: "t2",
		},
		{
			name:           "root admin reads everything",
			scope:          types.NewScope(root),
			expectedFilter: "",
		},
		{
			name:        "no scope",
			scope:       nil,
			expectedErr: types.ErrUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)

			if tc.expectedErr == nil {
				mockStorage.EXPECT().ListAuditEntries(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, f types.AuditFilter) ([]*types.AuditEntry, error) {
						if f.TenantID != tc.expectedFilter {
							t.Errorf("expected tenant filter %q, got %q", tc.expectedFilter, f.TenantID)
						}
						return []*types.AuditEntry{}, nil
					},
				)
			}

			svc := newTestService(mockStorage, logging.NewNoopLogger())

			_, err := svc.Query(context.Background(), tc.scope, tc.filter)

			if !errors.Is(err, tc.expectedErr) {
				t.Errorf("expected error %v, got %v", tc.expectedErr, err)
			}
		})
	}
}

func TestService_QueryStorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dbErr := errors.New("db error")

	mockStorage := NewMockStorageInterface(ctrl)
	mockStorage.EXPECT().ListAuditEntries(gomock.Any(), gomock.Any()).Return(nil, dbErr)

	svc := newTestService(mockStorage, logging.NewNoopLogger())

	_, err := svc.Query(context.Background(), types.NewScope(&types.Principal{ID: "root", Role: types.RoleRootAdmin}), types.AuditFilter{})
	if !errors.Is(err, dbErr) {
		t.Errorf("expected wrapped storage error, got %v", err)
	}
}

// The audit trail must stay append-only at every layer that can reach it.
func TestAuditSurfaceHasNoMutation(t *testing.T) {
	forbidden := []string{"Update", "Delete", "Remove", "Edit", "Modify", "Set", "Replace", "Truncate"}

	surfaces := map[string]reflect.Type{
		"Service":                       reflect.TypeOf((*Service)(nil)),
		"ServiceInterface":              reflect.TypeOf((*ServiceInterface)(nil)).Elem(),
		"StorageInterface":              reflect.TypeOf((*StorageInterface)(nil)).Elem(),
		"storage.AuditStorageInterface": reflect.TypeOf((*storage.AuditStorageInterface)(nil)).Elem(),
	}

	for name, typ := range surfaces {
		for i := 0; i < typ.NumMethod(); i++ {
			method := typ.Method(i).Name
			for _, prefix := range forbidden {
				if strings.HasPrefix(method, prefix) {
					t.Errorf("%s exposes mutating method %s", name, method)
				}
			}
		}
	}
}
