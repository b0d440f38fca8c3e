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

var invitationColumns = []string{
	"id", "email", "role", "tenant_id", "token_hash", "status",
	"expires_at", "inviter_id", "accepted_at", "created_at",
}

func scanInvitation(row rowScanner) (*types.Invitation, error) {
	var i types.Invitation
	var inviter sql.NullString
	var acceptedAt sql.NullTime

	err := row.Scan(
		&i.ID, &i.Email, &i.Role, &i.TenantID, &i.TokenHash, &i.Status,
		&i.ExpiresAt, &inviter, &acceptedAt, &i.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	i.InviterID = inviter.String
	i.AcceptedAt = fromNullTime(acceptedAt)

	return &i, nil
}

func (s *Storage) CreateInvitation(ctx context.Context, i *types.Invitation) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateInvitation")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation ID: %w", err)
	}

	row := s.db.Statement(ctx).
		Insert("invitations").
		Columns("id", "email", "role", "tenant_id", "token_hash", "status", "expires_at", "inviter_id", "created_at").
		Values(id.String(), i.Email, string(i.Role), i.TenantID, i.TokenHash, string(types.InvitationPending), i.ExpiresAt, nullString(i.InviterID), i.CreatedAt).
		Suffix("RETURNING " + strings.Join(invitationColumns, ", ")).
		QueryRowContext(ctx)

	created, err := scanInvitation(row)
	if err != nil {
		return nil, mapWriteError(err, "failed to insert invitation")
	}

	return created, nil
}

// GetInvitationByTokenHash locks the row when forUpdate is set, callers must be inside WithTx.
func (s *Storage) GetInvitationByTokenHash(ctx context.Context, hash string, forUpdate bool) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetInvitationByTokenHash")
	defer span.End()

	query := s.db.Statement(ctx).
		Select(invitationColumns...).
		From("invitations").
		Where(sq.Eq{"token_hash": hash})

	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}

	inv, err := scanInvitation(query.QueryRowContext(ctx))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return inv, nil
}

// MarkInvitationExpired reports false when the invitation had already left pending.
func (s *Storage) MarkInvitationExpired(ctx context.Context, id string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "storage.MarkInvitationExpired")
	defer span.End()

	return s.transitionInvitation(ctx, id, map[string]interface{}{"status": string(types.InvitationExpired)})
}

// MarkInvitationAccepted reports false when the invitation had already left pending.
func (s *Storage) MarkInvitationAccepted(ctx context.Context, id string, at time.Time) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "storage.MarkInvitationAccepted")
	defer span.End()

	return s.transitionInvitation(ctx, id, map[string]interface{}{
		"status":      string(types.InvitationAccepted),
		"accepted_at": at,
	})
}

func (s *Storage) transitionInvitation(ctx context.Context, id string, values map[string]interface{}) (bool, error) {
	res, err := s.db.Statement(ctx).
		Update("invitations").
		SetMap(values).
		Where(sq.Eq{"id": id, "status": string(types.InvitationPending)}).
		ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to update invitation: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return n == 1, nil
}

// ExpirePendingInvitations is a single conditional update, safe to run repeatedly.
func (s *Storage) ExpirePendingInvitations(ctx context.Context, now time.Time) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ExpirePendingInvitations")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("invitations").
		Set("status", string(types.InvitationExpired)).
		Where(sq.Eq{"status": string(types.InvitationPending)}).
		Where(sq.LtOrEq{"expires_at": now}).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to expire invitations: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return n, nil
}
