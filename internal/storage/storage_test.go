// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/canonical/inventory-identity/internal/db"
	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/internal/types"
)

func setupStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test", logger)

	return NewStorage(db.NewDBClientFromDB(conn, tracer, monitor, logger), tracer, monitor, logger), mock
}

func principalRow(id, email, role, tenant string) *sqlmock.Rows {
	now := time.Now()
	var tenantVal interface{}
	if tenant != "" {
		tenantVal = tenant
	}
	return sqlmock.NewRows(principalColumns).
		AddRow(id, email, "hash", role, tenantVal, "active", nil, false, now, now)
}

func TestStorage_CreatePrincipal(t *testing.T) {
	testCases := []struct {
		name        string
		setupMocks  func(sqlmock.Sqlmock)
		expectedErr error
	}{
		{
			name: "success",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO principals`).
					WithArgs(sqlmock.AnyArg(), "a@example.com", "hash", "viewer", "t1", "active", false).
					WillReturnRows(principalRow("p1", "a@example.com", "viewer", "t1"))
			},
		},
		{
			name: "duplicate email",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO principals`).
					WillReturnError(&pgconn.PgError{Code: pgErrCodeUniqueViolation})
			},
			expectedErr: ErrDuplicateKey,
		},
		{
			name: "unknown tenant",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO principals`).
					WillReturnError(&pgconn.PgError{Code: pgErrCodeForeignKeyViolation})
			},
			expectedErr: ErrForeignKeyViolation,
		},
		{
			name: "root-admin with a tenant",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO principals`).
					WillReturnError(&pgconn.PgError{Code: pgErrCodeCheckViolation, ConstraintName: "principals_root_admin_tenant"})
			},
			expectedErr: ErrCheckViolation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, mock := setupStorage(t)
			tc.setupMocks(mock)

			p, err := s.CreatePrincipal(context.Background(), &types.Principal{
				Email:        "a@example.com",
				PasswordHash: "hash",
				Role:         types.RoleViewer,
				TenantID:     "t1",
			})

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Fatalf("expected %v, got %v", tc.expectedErr, err)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if p.Role != types.RoleViewer || p.TenantID != "t1" {
					t.Fatalf("unexpected principal %+v", p)
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestStorage_GetPrincipalByEmail(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectQuery(`SELECT .* FROM principals WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("root@example.com").
		WillReturnRows(principalRow("p1", "root@example.com", "root-admin", ""))

	p, err := s.GetPrincipalByEmail(context.Background(), "root@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TenantID != "" || p.Role != types.RoleRootAdmin {
		t.Fatalf("unexpected principal %+v", p)
	}

	mock.ExpectQuery(`SELECT .* FROM principals`).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(principalColumns))

	if _, err := s.GetPrincipalByEmail(context.Background(), "ghost@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStorage_EmailExists(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectQuery(`SELECT EXISTS \( SELECT 1 FROM principals`).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := s.EmailExists(context.Background(), "a@example.com")
	if err != nil || !exists {
		t.Fatalf("expected email to exist, got %v %v", exists, err)
	}
}

func TestStorage_UpdatePrincipalStatusNotFound(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectExec(`UPDATE principals SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.UpdatePrincipalStatus(context.Background(), "missing", types.StatusInactive); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStorage_DeleteSessionTokensByPrincipal(t *testing.T) {
	s, mock := setupStorage(t)

	// a rotated session returns one row per value
	mock.ExpectQuery(`DELETE FROM session_tokens WHERE .* AND session_id <> \$\d RETURNING session_id`).
		WillReturnRows(sqlmock.NewRows([]string{"session_id"}).AddRow("s3").AddRow("s2").AddRow("s3"))

	ids, err := s.DeleteSessionTokensByPrincipal(context.Background(), "p1", []types.TokenContext{types.ContextSession}, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "s2" || ids[1] != "s3" {
		t.Fatalf("expected each session once, got %v", ids)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStorage_GetSessionToken(t *testing.T) {
	now := time.Now()
	columns := []string{"token_hash", "session_id", "principal_id", "context", "created_at", "authenticated_at", "replaced_at"}

	tests := []struct {
		name         string
		replacedAt   interface{}
		wantReplaced bool
	}{
		{name: "current value", replacedAt: nil},
		{name: "replaced value", replacedAt: now, wantReplaced: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := setupStorage(t)

			mock.ExpectQuery(`SELECT token_hash, session_id, .* FROM session_tokens WHERE context = \$1 AND token_hash = \$2`).
				WithArgs("session", "h1").
				WillReturnRows(sqlmock.NewRows(columns).AddRow("h1", "s1", "p1", "session", now, now, tt.replacedAt))

			got, err := s.GetSessionToken(context.Background(), "h1", types.ContextSession)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.SessionID != "s1" {
				t.Errorf("unexpected session id %q", got.SessionID)
			}
			if (got.ReplacedAt != nil) != tt.wantReplaced {
				t.Errorf("expected replaced %v, got %v", tt.wantReplaced, got.ReplacedAt)
			}
		})
	}
}

func TestStorage_ReplaceSessionToken(t *testing.T) {
	now := time.Now()
	token := &types.SessionToken{Hash: "new", SessionID: "s1", PrincipalID: "p1", Context: types.ContextSession, CreatedAt: now, AuthenticatedAt: now.Add(-time.Hour)}

	t.Run("success", func(t *testing.T) {
		s, mock := setupStorage(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE session_tokens SET replaced_at = \$1 WHERE replaced_at IS NULL AND token_hash = \$2`).
			WithArgs(now, "old").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO session_tokens`).
			WithArgs("new", "s1", "p1", "session", now, now.Add(-time.Hour)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		if err := s.ReplaceSessionToken(context.Background(), "old", now, token); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})

	t.Run("old token already revoked or replaced", func(t *testing.T) {
		s, mock := setupStorage(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE session_tokens`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		if err := s.ReplaceSessionToken(context.Background(), "old", now, token); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})
}

func TestStorage_DeleteSession(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectExec(`DELETE FROM session_tokens WHERE session_id = \$1`).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := s.DeleteSession(context.Background(), "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec(`DELETE FROM session_tokens WHERE replaced_at < \$1`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.DeleteReplacedSessionTokens(context.Background(), time.Now())
	if err != nil || n != 3 {
		t.Fatalf("expected 3 purged, got %d, %v", n, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStorage_MarkInvitationAccepted(t *testing.T) {
	s, mock := setupStorage(t)
	at := time.Now()

	mock.ExpectExec(`UPDATE invitations SET .* WHERE id = \$\d AND status = \$\d`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := s.MarkInvitationAccepted(context.Background(), "i1", at)
	if err != nil || !ok {
		t.Fatalf("expected transition, got %v %v", ok, err)
	}

	mock.ExpectExec(`UPDATE invitations SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = s.MarkInvitationAccepted(context.Background(), "i1", at)
	if err != nil || ok {
		t.Fatalf("expected no transition for a terminal invitation, got %v %v", ok, err)
	}
}

func TestStorage_ExpirePendingInvitations(t *testing.T) {
	s, mock := setupStorage(t)
	now := time.Now()

	mock.ExpectExec(`UPDATE invitations SET status = \$1 WHERE status = \$2 AND expires_at <= \$3`).
		WithArgs("expired", "pending", now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.ExpirePendingInvitations(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 expired, got %d", n)
	}
}

func TestStorage_GetInvitationByTokenHashForUpdate(t *testing.T) {
	s, mock := setupStorage(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM invitations WHERE token_hash = \$1 FOR UPDATE`).
		WithArgs("hash").
		WillReturnRows(sqlmock.NewRows(invitationColumns).
			AddRow("i1", "v@example.com", "viewer", "t1", "hash", "pending", now, "p1", nil, now))

	inv, err := s.GetInvitationByTokenHash(context.Background(), "hash", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Status != types.InvitationPending || inv.AcceptedAt != nil || inv.InviterID != "p1" {
		t.Fatalf("unexpected invitation %+v", inv)
	}
}

func TestStorage_ListAuditEntries(t *testing.T) {
	s, mock := setupStorage(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM audit_log WHERE tenant_id = \$1 AND action = \$2 ORDER BY occurred_at DESC, id DESC LIMIT 50 OFFSET 0`).
		WithArgs("t1", "authz.denied").
		WillReturnRows(sqlmock.NewRows([]string{"id", "actor_id", "actor_email", "tenant_id", "action", "resource_type", "resource_id", "diff", "client_addr", "client_agent", "occurred_at"}).
			AddRow(int64(1), "p1", "op@example.com", "t1", "authz.denied", "tenant", "t2", []byte(`{"attempted_action":"view-reports"}`), "10.0.0.1", "curl", now))

	entries, err := s.ListAuditEntries(context.Background(), types.AuditFilter{TenantID: "t1", Action: "authz.denied", Limit: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Diff["attempted_action"] != "view-reports" {
		t.Fatalf("unexpected diff %v", entries[0].Diff)
	}
}

func TestStorage_AppendAuditEntry(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectQuery(`INSERT INTO audit_log .* RETURNING id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	e := &types.AuditEntry{Action: "invitation.swept", Diff: map[string]interface{}{"count": 2}, OccurredAt: time.Now()}
	if err := s.AppendAuditEntry(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID != 42 {
		t.Fatalf("expected id 42, got %d", e.ID)
	}
}
