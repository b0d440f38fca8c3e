// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/internal/types"
)

var _ ServiceInterface = (*Service)(nil)

// Service appends to and reads the audit trail. Exposes no update or delete.
type Service struct {
	storage StorageInterface
	now     func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Record appends synchronously. A failed append is reported to the process logs
// and swallowed: the action it describes has already happened.
func (s *Service) Record(ctx context.Context, actor *types.Principal, action string, attrs Attrs) {
	ctx, span := s.tracer.Start(ctx, "audit.Service.Record")
	defer span.End()

	client := types.ClientInfoFromContext(ctx)

	e := &types.AuditEntry{
		TenantID:     attrs.TenantID,
		Action:       action,
		ResourceType: attrs.ResourceType,
		ResourceID:   attrs.ResourceID,
		Diff:         attrs.Diff,
		ClientAddr:   client.Addr,
		ClientAgent:  client.Agent,
		OccurredAt:   s.now().UTC(),
	}

	if actor != nil {
		e.ActorID = actor.ID
		e.ActorEmail = actor.Email
		if e.TenantID == "" {
			e.TenantID = actor.TenantID
		}
	}

	if err := s.storage.AppendAuditEntry(ctx, e); err != nil {
		s.logger.Security().AuditWriteFailure(action, err, logging.WithContext("actor_id", e.ActorID, "tenant_id", e.TenantID))
		if mErr := s.monitor.IncrementEventCounter(map[string]string{"event": "audit_write", "outcome": "failure"}); mErr != nil {
			s.logger.Debugf("failed to record audit metric: %v", mErr)
		}
	}
}

// Query pins the tenant filter to the caller's own tenant unless the caller is root-admin.
func (s *Service) Query(ctx context.Context, scope *types.Scope, filter types.AuditFilter) ([]*types.AuditEntry, error) {
	ctx, span := s.tracer.Start(ctx, "audit.Service.Query")
	defer span.End()

	if scope == nil || scope.Principal == nil {
		return nil, types.ErrUnauthorized
	}

	if scope.Role() != types.RoleRootAdmin {
		if scope.TenantID == "" {
			return nil, types.ErrUnauthorized
		}
		filter.TenantID = scope.TenantID
	}

	entries, err := s.storage.ListAuditEntries(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}

	return entries, nil
}

func NewService(storage StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Service {
	s := new(Service)

	s.storage = storage
	s.now = time.Now

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
