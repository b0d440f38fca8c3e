// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/inventory-identity/internal/types"
)

var sessionTokenColumns = []string{"token_hash", "session_id", "principal_id", "context", "created_at", "authenticated_at", "replaced_at"}

func scanSessionToken(row rowScanner) (*types.SessionToken, error) {
	var t types.SessionToken
	var replacedAt sql.NullTime

	if err := row.Scan(&t.Hash, &t.SessionID, &t.PrincipalID, &t.Context, &t.CreatedAt, &t.AuthenticatedAt, &replacedAt); err != nil {
		return nil, err
	}

	t.ReplacedAt = fromNullTime(replacedAt)
	return &t, nil
}

func (s *Storage) insertSessionToken(ctx context.Context, t *types.SessionToken) error {
	_, err := s.db.Statement(ctx).
		Insert("session_tokens").
		Columns("token_hash", "session_id", "principal_id", "context", "created_at", "authenticated_at").
		Values(t.Hash, t.SessionID, t.PrincipalID, string(t.Context), t.CreatedAt, t.AuthenticatedAt).
		ExecContext(ctx)

	return err
}

func (s *Storage) CreateSessionToken(ctx context.Context, t *types.SessionToken) error {
	ctx, span := s.tracer.Start(ctx, "storage.CreateSessionToken")
	defer span.End()

	if err := s.insertSessionToken(ctx, t); err != nil {
		return mapWriteError(err, "failed to insert session token")
	}

	return nil
}

// GetSessionToken only matches tokens issued for the given context. Replaced
// tokens are returned too, callers check ReplacedAt.
func (s *Storage) GetSessionToken(ctx context.Context, hash string, tokenContext types.TokenContext) (*types.SessionToken, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetSessionToken")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(sessionTokenColumns...).
		From("session_tokens").
		Where(sq.Eq{"token_hash": hash, "context": string(tokenContext)}).
		QueryRowContext(ctx)

	t, err := scanSessionToken(row)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session token: %w", err)
	}

	return t, nil
}

// ReplaceSessionToken marks oldHash replaced at replacedAt and stores t in the
// same transaction. ErrNotFound when oldHash is gone or was already replaced.
func (s *Storage) ReplaceSessionToken(ctx context.Context, oldHash string, replacedAt time.Time, t *types.SessionToken) error {
	ctx, span := s.tracer.Start(ctx, "storage.ReplaceSessionToken")
	defer span.End()

	return s.db.WithTx(ctx, func(txCtx context.Context) error {
		res, err := s.db.Statement(txCtx).
			Update("session_tokens").
			Set("replaced_at", replacedAt).
			Where(sq.Eq{"token_hash": oldHash, "replaced_at": nil}).
			ExecContext(txCtx)
		if err != nil {
			return fmt.Errorf("failed to mark token replaced: %w", err)
		}
		if err := expectAffected(res); err != nil {
			return err
		}

		if err := s.insertSessionToken(txCtx, t); err != nil {
			return mapWriteError(err, "failed to insert rotated token")
		}

		return nil
	})
}

// DeleteSession removes every value of the session.
func (s *Storage) DeleteSession(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteSession")
	defer span.End()

	_, err := s.db.Statement(ctx).
		Delete("session_tokens").
		Where(sq.Eq{"session_id": sessionID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// ConsumeSessionToken deletes and returns a single use token in one statement.
func (s *Storage) ConsumeSessionToken(ctx context.Context, hash string, tokenContext types.TokenContext) (*types.SessionToken, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ConsumeSessionToken")
	defer span.End()

	row := s.db.Statement(ctx).
		Delete("session_tokens").
		Where(sq.Eq{"token_hash": hash, "context": string(tokenContext)}).
		Suffix("RETURNING token_hash, session_id, principal_id, context, created_at, authenticated_at, replaced_at").
		QueryRowContext(ctx)

	t, err := scanSessionToken(row)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to consume session token: %w", err)
	}

	return t, nil
}

// DeleteSessionTokensByPrincipal returns the sessions it removed, sorted.
// exceptSessionID may be empty.
func (s *Storage) DeleteSessionTokensByPrincipal(ctx context.Context, principalID string, contexts []types.TokenContext, exceptSessionID string) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteSessionTokensByPrincipal")
	defer span.End()

	ctxValues := make([]string, 0, len(contexts))
	for _, c := range contexts {
		ctxValues = append(ctxValues, string(c))
	}

	query := s.db.Statement(ctx).
		Delete("session_tokens").
		Where(sq.Eq{"principal_id": principalID, "context": ctxValues})

	if exceptSessionID != "" {
		query = query.Where(sq.NotEq{"session_id": exceptSessionID})
	}

	rows, err := query.Suffix("RETURNING session_id").QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to revoke session tokens: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan revoked session: %w", err)
		}
		seen[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating revoked sessions: %w", err)
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids, nil
}

func (s *Storage) DeleteSessionTokensAuthenticatedBefore(ctx context.Context, tokenContext types.TokenContext, before time.Time) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteSessionTokensAuthenticatedBefore")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("session_tokens").
		Where(sq.Eq{"context": string(tokenContext)}).
		Where(sq.Lt{"authenticated_at": before}).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to purge session tokens: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return n, nil
}

// DeleteReplacedSessionTokens drops token values replaced before the cutoff.
func (s *Storage) DeleteReplacedSessionTokens(ctx context.Context, before time.Time) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteReplacedSessionTokens")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("session_tokens").
		Where(sq.Lt{"replaced_at": before}).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to purge replaced session tokens: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return n, nil
}
