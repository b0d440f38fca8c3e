// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/inventory-identity/internal/types"
)

const maxAuditPageSize uint64 = 500

func (s *Storage) AppendAuditEntry(ctx context.Context, e *types.AuditEntry) error {
	ctx, span := s.tracer.Start(ctx, "storage.AppendAuditEntry")
	defer span.End()

	diff, err := marshalJSONB(e.Diff)
	if err != nil {
		return fmt.Errorf("failed to encode audit diff: %w", err)
	}

	err = s.db.Statement(ctx).
		Insert("audit_log").
		Columns("actor_id", "actor_email", "tenant_id", "action", "resource_type", "resource_id", "diff", "client_addr", "client_agent", "occurred_at").
		Values(
			nullString(e.ActorID), nullString(e.ActorEmail), nullString(e.TenantID), e.Action,
			nullString(e.ResourceType), nullString(e.ResourceID), diff,
			nullString(e.ClientAddr), nullString(e.ClientAgent), e.OccurredAt,
		).
		Suffix("RETURNING id").
		QueryRowContext(ctx).
		Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}

func (s *Storage) ListAuditEntries(ctx context.Context, filter types.AuditFilter) ([]*types.AuditEntry, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListAuditEntries")
	defer span.End()

	query := s.db.Statement(ctx).
		Select("id", "actor_id", "actor_email", "tenant_id", "action", "resource_type", "resource_id", "diff", "client_addr", "client_agent", "occurred_at").
		From("audit_log").
		OrderBy("occurred_at DESC", "id DESC")

	if filter.TenantID != "" {
		query = query.Where(sq.Eq{"tenant_id": filter.TenantID})
	}
	if filter.Action != "" {
		query = query.Where(sq.Eq{"action": filter.Action})
	}
	if filter.ResourceType != "" {
		query = query.Where(sq.Eq{"resource_type": filter.ResourceType})
	}
	if filter.ActorID != "" {
		query = query.Where(sq.Eq{"actor_id": filter.ActorID})
	}
	if filter.From != nil {
		query = query.Where(sq.GtOrEq{"occurred_at": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(sq.Lt{"occurred_at": *filter.To})
	}

	limit := filter.Limit
	if limit == 0 || limit > maxAuditPageSize {
		limit = maxAuditPageSize
	}
	query = query.Limit(limit).Offset(filter.Offset)

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*types.AuditEntry
	for rows.Next() {
		var e types.AuditEntry
		var actorID, actorEmail, tenantID, resourceType, resourceID, addr, agent sql.NullString
		var diff []byte

		if err := rows.Scan(&e.ID, &actorID, &actorEmail, &tenantID, &e.Action, &resourceType, &resourceID, &diff, &addr, &agent, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		e.ActorID = actorID.String
		e.ActorEmail = actorEmail.String
		e.TenantID = tenantID.String
		e.ResourceType = resourceType.String
		e.ResourceID = resourceID.String
		e.ClientAddr = addr.String
		e.ClientAgent = agent.String

		if len(diff) > 0 {
			if err := json.Unmarshal(diff, &e.Diff); err != nil {
				return nil, fmt.Errorf("failed to decode audit diff: %w", err)
			}
		}

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", err)
	}

	return entries, nil
}
