// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/canonical/inventory-identity/internal/storage"
	"github.com/canonical/inventory-identity/internal/types"
)

func TestStore_CreatePrincipalUniqueEmail(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	tenant, err := s.CreateTenant(ctx, &types.Tenant{Name: "T1", Slug: "t1", Active: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.CreatePrincipal(ctx, &types.Principal{Email: "Same@Example.com", Role: types.RoleViewer, TenantID: tenant.ID})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, storage.ErrDuplicateKey):
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != 1 {
		t.Fatalf("expected exactly one principal, got %d", succeeded)
	}
}

func TestStore_WithTxRollback(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	fail := errors.New("fail")

	err := s.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.CreateTenant(txCtx, &types.Tenant{Name: "T1", Slug: "t1"}); err != nil {
			return err
		}
		if err := s.AppendAuditEntry(txCtx, &types.AuditEntry{Action: "tenant.created"}); err != nil {
			return err
		}
		return fail
	})
	if !errors.Is(err, fail) {
		t.Fatalf("expected %v, got %v", fail, err)
	}

	tenants, _ := s.ListTenants(ctx)
	if len(tenants) != 0 {
		t.Fatalf("expected tenant creation to be rolled back, got %d tenants", len(tenants))
	}

	entries, _ := s.ListAuditEntries(ctx, types.AuditFilter{})
	if len(entries) != 1 {
		t.Fatalf("expected audit entry to survive rollback, got %d", len(entries))
	}
}

func TestStore_InvitationTransitionsAreForwardOnly(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Now()

	tenant, _ := s.CreateTenant(ctx, &types.Tenant{Name: "T1", Slug: "t1"})
	inv, err := s.CreateInvitation(ctx, &types.Invitation{Email: "v@example.com", Role: types.RoleViewer, TenantID: tenant.ID, TokenHash: "h", ExpiresAt: now.Add(time.Hour)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ok, _ := s.MarkInvitationAccepted(ctx, inv.ID, now); !ok {
		t.Fatal("expected pending -> accepted")
	}
	if ok, _ := s.MarkInvitationExpired(ctx, inv.ID); ok {
		t.Fatal("accepted invitation must not transition to expired")
	}
	if n, _ := s.ExpirePendingInvitations(ctx, now.Add(2*time.Hour)); n != 0 {
		t.Fatalf("sweep must skip terminal invitations, expired %d", n)
	}
}

func TestStore_DeleteSessionTokensByPrincipal(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Now()

	root, _ := s.CreatePrincipal(ctx, &types.Principal{Email: "root@example.com", Role: types.RoleRootAdmin})
	for _, h := range []string{"a", "b", "c"} {
		_ = s.CreateSessionToken(ctx, &types.SessionToken{Hash: h, SessionID: "s-" + h, PrincipalID: root.ID, Context: types.ContextSession, CreatedAt: now, AuthenticatedAt: now})
	}
	// a second value of session a, as left by a reissue
	if err := s.ReplaceSessionToken(ctx, "a", now, &types.SessionToken{Hash: "a2", SessionID: "s-a", PrincipalID: root.ID, Context: types.ContextSession, CreatedAt: now, AuthenticatedAt: now}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = s.CreateSessionToken(ctx, &types.SessionToken{Hash: "m", SessionID: "s-m", PrincipalID: root.ID, Context: types.ContextMagicLink, CreatedAt: now, AuthenticatedAt: now})

	ids, err := s.DeleteSessionTokensByPrincipal(ctx, root.ID, []types.TokenContext{types.ContextSession}, "s-b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "s-a" || ids[1] != "s-c" {
		t.Fatalf("expected each revoked session once, got %v", ids)
	}

	for _, h := range []string{"a", "a2", "c"} {
		if _, err := s.GetSessionToken(ctx, h, types.ContextSession); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected %s to be revoked, got %v", h, err)
		}
	}
	if _, err := s.GetSessionToken(ctx, "b", types.ContextSession); err != nil {
		t.Fatalf("excepted session must survive: %v", err)
	}
	if _, err := s.GetSessionToken(ctx, "m", types.ContextMagicLink); err != nil {
		t.Fatalf("other contexts must survive: %v", err)
	}
	if _, err := s.GetSessionToken(ctx, "m", types.ContextSession); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("token must not resolve under a different context, got %v", err)
	}
}

func TestStore_ReplaceSessionToken(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	p, _ := s.CreatePrincipal(ctx, &types.Principal{Email: "root@example.com", Role: types.RoleRootAdmin})
	_ = s.CreateSessionToken(ctx, &types.SessionToken{Hash: "old", SessionID: "s-1", PrincipalID: p.ID, Context: types.ContextSession, CreatedAt: now, AuthenticatedAt: now})

	next := func(hash string) *types.SessionToken {
		return &types.SessionToken{Hash: hash, SessionID: "s-1", PrincipalID: p.ID, Context: types.ContextSession, CreatedAt: now, AuthenticatedAt: now}
	}

	if err := s.ReplaceSessionToken(ctx, "old", now, next("new")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	old, err := s.GetSessionToken(ctx, "old", types.ContextSession)
	if err != nil {
		t.Fatalf("expected the replaced value to be kept, got %v", err)
	}
	if old.ReplacedAt == nil || !old.ReplacedAt.Equal(now) {
		t.Errorf("expected replaced at %v, got %v", now, old.ReplacedAt)
	}

	if err := s.ReplaceSessionToken(ctx, "old", now, next("other")); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected a second replacement to lose, got %v", err)
	}
	if _, err := s.GetSessionToken(ctx, "other", types.ContextSession); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected the losing value not to be stored")
	}

	if n, _ := s.DeleteReplacedSessionTokens(ctx, now.Add(time.Second)); n != 1 {
		t.Errorf("expected the replaced value to be purged, got %d", n)
	}
	if _, err := s.GetSessionToken(ctx, "new", types.ContextSession); err != nil {
		t.Errorf("expected the current value to survive the purge, got %v", err)
	}

	if err := s.DeleteSession(ctx, "s-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.GetSessionToken(ctx, "new", types.ContextSession); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected the session to be gone, got %v", err)
	}
}
