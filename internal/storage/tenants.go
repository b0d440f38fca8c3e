// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/inventory-identity/internal/types"
)

var tenantColumns = []string{"id", "name", "slug", "active", "contact_email", "contact_phone", "settings", "created_at"}

type rowScanner interface {
	Scan(...interface{}) error
}

func scanTenant(row rowScanner) (*types.Tenant, error) {
	var t types.Tenant
	var settings []byte

	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Active, &t.ContactEmail, &t.ContactPhone, &settings, &t.CreatedAt); err != nil {
		return nil, err
	}

	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &t.Settings); err != nil {
			return nil, fmt.Errorf("failed to decode tenant settings: %w", err)
		}
	}

	return &t, nil
}

func (s *Storage) CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateTenant")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tenant ID: %w", err)
	}

	settings, err := marshalJSONB(t.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tenant settings: %w", err)
	}

	row := s.db.Statement(ctx).
		Insert("tenants").
		Columns("id", "name", "slug", "active", "contact_email", "contact_phone", "settings").
		Values(id.String(), t.Name, t.Slug, t.Active, t.ContactEmail, t.ContactPhone, settings).
		Suffix("RETURNING " + strings.Join(tenantColumns, ", ")).
		QueryRowContext(ctx)

	tenant, err := scanTenant(row)
	if err != nil {
		return nil, mapWriteError(err, "failed to insert tenant")
	}

	return tenant, nil
}

func (s *Storage) GetTenantByID(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantByID")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(tenantColumns...).
		From("tenants").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx)

	t, err := scanTenant(row)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return t, nil
}

func (s *Storage) ListTenants(ctx context.Context) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListTenants")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select(tenantColumns...).
		From("tenants").
		OrderBy("name").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*types.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenant rows: %w", err)
	}

	return tenants, nil
}

func (s *Storage) SetTenantActive(ctx context.Context, id string, active bool) error {
	ctx, span := s.tracer.Start(ctx, "storage.SetTenantActive")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("tenants").
		Set("active", active).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}

	return expectAffected(res)
}
