// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/inventory-identity/internal/types"
)

var principalColumns = []string{
	"id", "email", "password_hash", "role", "tenant_id", "status",
	"last_login_at", "must_change_password", "created_at", "updated_at",
}

func scanPrincipal(row rowScanner) (*types.Principal, error) {
	var p types.Principal
	var passwordHash, tenantID sql.NullString
	var lastLogin sql.NullTime

	err := row.Scan(
		&p.ID, &p.Email, &passwordHash, &p.Role, &tenantID, &p.Status,
		&lastLogin, &p.MustChangePassword, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.PasswordHash = passwordHash.String
	p.TenantID = tenantID.String
	p.LastLoginAt = fromNullTime(lastLogin)

	return &p, nil
}

// CreatePrincipal relies on the unique index over lower(email), a concurrent insert
// of the same address surfaces as ErrDuplicateKey.
func (s *Storage) CreatePrincipal(ctx context.Context, p *types.Principal) (*types.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreatePrincipal")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate principal ID: %w", err)
	}

	status := p.Status
	if status == "" {
		status = types.StatusActive
	}

	row := s.db.Statement(ctx).
		Insert("principals").
		Columns("id", "email", "password_hash", "role", "tenant_id", "status", "must_change_password").
		Values(id.String(), p.Email, nullString(p.PasswordHash), string(p.Role), nullString(p.TenantID), string(status), p.MustChangePassword).
		Suffix("RETURNING " + strings.Join(principalColumns, ", ")).
		QueryRowContext(ctx)

	created, err := scanPrincipal(row)
	if err != nil {
		return nil, mapWriteError(err, "failed to insert principal")
	}

	return created, nil
}

func (s *Storage) GetPrincipalByID(ctx context.Context, id string) (*types.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetPrincipalByID")
	defer span.End()

	return s.getPrincipal(ctx, sq.Eq{"id": id})
}

func (s *Storage) GetPrincipalByEmail(ctx context.Context, email string) (*types.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetPrincipalByEmail")
	defer span.End()

	return s.getPrincipal(ctx, sq.Expr("LOWER(email) = LOWER(?)", email))
}

func (s *Storage) getPrincipal(ctx context.Context, pred sq.Sqlizer) (*types.Principal, error) {
	row := s.db.Statement(ctx).
		Select(principalColumns...).
		From("principals").
		Where(pred).
		QueryRowContext(ctx)

	p, err := scanPrincipal(row)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get principal: %w", err)
	}

	return p, nil
}

func (s *Storage) EmailExists(ctx context.Context, email string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "storage.EmailExists")
	defer span.End()

	var exists bool
	err := s.db.Statement(ctx).
		Select("1").
		Prefix("SELECT EXISTS (").
		From("principals").
		Where(sq.Expr("LOWER(email) = LOWER(?)", email)).
		Suffix(")").
		QueryRowContext(ctx).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}

	return exists, nil
}

func (s *Storage) UpdatePrincipalRole(ctx context.Context, id string, role types.Role) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdatePrincipalRole")
	defer span.End()

	return s.updatePrincipal(ctx, id, map[string]interface{}{"role": string(role)})
}

func (s *Storage) UpdatePrincipalStatus(ctx context.Context, id string, status types.Status) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdatePrincipalStatus")
	defer span.End()

	return s.updatePrincipal(ctx, id, map[string]interface{}{"status": string(status)})
}

func (s *Storage) UpdatePrincipalPassword(ctx context.Context, id, passwordHash string, mustChange bool) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdatePrincipalPassword")
	defer span.End()

	return s.updatePrincipal(ctx, id, map[string]interface{}{
		"password_hash":        nullString(passwordHash),
		"must_change_password": mustChange,
	})
}

func (s *Storage) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	ctx, span := s.tracer.Start(ctx, "storage.TouchLastLogin")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("principals").
		Set("last_login_at", at).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return expectAffected(res)
}

func (s *Storage) updatePrincipal(ctx context.Context, id string, values map[string]interface{}) error {
	res, err := s.db.Statement(ctx).
		Update("principals").
		SetMap(values).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return mapWriteError(err, "failed to update principal")
	}

	return expectAffected(res)
}

// DeletePrincipal cascades to session tokens, audit rows are snapshots and stay untouched.
func (s *Storage) DeletePrincipal(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeletePrincipal")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("principals").
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete principal: %w", err)
	}

	return expectAffected(res)
}
