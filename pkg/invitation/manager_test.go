// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invitation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/canonical/inventory-identity/internal/authorization"
	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/secret"
	"github.com/canonical/inventory-identity/internal/storage/memory"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/internal/types"
	"github.com/canonical/inventory-identity/pkg/audit"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

var redeemAttrs = types.RedeemAttrs{
	Password:             "a long enough passphrase",
	PasswordConfirmation: "a long enough passphrase",
}

type fixture struct {
	manager *Manager
	store   *memory.Store
	clock   time.Time
	tenant  *types.Tenant
	admin   *types.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test", logger)

	f := new(fixture)
	f.store = memory.NewStore()
	f.clock = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tenant, err := f.store.CreateTenant(context.Background(), &types.Tenant{Name: "Acme", Slug: "acme", Active: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.tenant = tenant

	admin, err := f.store.CreatePrincipal(context.Background(), &types.Principal{
		Email:    "admin@acme.example",
		Role:     types.RoleTenantAdmin,
		TenantID: tenant.ID,
		Status:   types.StatusActive,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.admin = admin

	f.manager = NewManager(f.store, plainHasher{}, audit.NewService(f.store, tracer, monitor, logger), DefaultLifetime, 12, tracer, monitor, logger)
	f.manager.now = func() time.Time { return f.clock }

	return f
}

func (f *fixture) invite(t *testing.T, email string, role types.Role) *Created {
	t.Helper()

	created, err := f.manager.Create(context.Background(), email, string(role), f.tenant.ID, f.admin, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return created
}

func (f *fixture) invitation(t *testing.T, token string) *types.Invitation {
	t.Helper()

	inv, err := f.store.GetInvitationByTokenHash(context.Background(), secret.Hash(token), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return inv
}

func TestManager_Create(t *testing.T) {
	f := newFixture(t)

	calls := 0
	var linked string
	builder := func(token string) string {
		calls++
		linked = token
		return NewURLBuilder("https://inventory.example/")(token)
	}

	created, err := f.manager.Create(context.Background(), " New@Acme.Example ", "viewer", f.tenant.ID, f.admin, builder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 1 || linked != created.Token {
		t.Errorf("expected the url builder to run once with the token, ran %d times", calls)
	}
	if created.URL != "https://inventory.example/invitations/accept?token="+created.Token {
		t.Errorf("unexpected url %q", created.URL)
	}

	// 32 bytes, unpadded base64url
	if len(created.Token) != 43 {
		t.Errorf("expected a 256 bit token, got %d characters", len(created.Token))
	}

	inv := created.Invitation
	if inv.TokenHash == created.Token || inv.TokenHash != secret.Hash(created.Token) {
		t.Errorf("expected only the token hash to be stored")
	}
	if inv.Email != "new@acme.example" || inv.Role != types.RoleViewer || inv.TenantID != f.tenant.ID {
		t.Errorf("unexpected invitation %+v", inv)
	}
	if inv.Status != types.InvitationPending || inv.AcceptedAt != nil {
		t.Errorf("expected a pending invitation, got %s", inv.Status)
	}
	if !inv.ExpiresAt.Equal(f.clock.Add(7 * 24 * time.Hour)) {
		t.Errorf("expected a seven day window, got %v", inv.ExpiresAt)
	}
	if inv.InviterID != f.admin.ID {
		t.Errorf("expected inviter reference")
	}

	entries, _ := f.store.ListAuditEntries(context.Background(), types.AuditFilter{Action: audit.ActionInvitationCreated})
	if len(entries) != 1 || entries[0].ActorID != f.admin.ID || entries[0].TenantID != f.tenant.ID {
		t.Errorf("expected an invitation.created entry, got %+v", entries)
	}
}

func TestManager_CreateRejects(t *testing.T) {
	tests := []struct {
		name        string
		email       string
		role        string
		tenantID    func(*fixture) string
		expectedErr error
	}{
		{name: "tenant admin role", email: "x@acme.example", role: "tenant-admin", expectedErr: types.ErrValidationFailed},
		{name: "root admin role", email: "x@acme.example", role: "root-admin", expectedErr: types.ErrValidationFailed},
		{name: "unknown role", email: "x@acme.example", role: "owner", expectedErr: types.ErrValidationFailed},
		{name: "role with different case", email: "x@acme.example", role: "Viewer", expectedErr: types.ErrValidationFailed},
		{name: "bad email", email: "not-an-email", role: "viewer", expectedErr: types.ErrValidationFailed},
		{name: "missing tenant", email: "x@acme.example", role: "viewer", tenantID: func(*fixture) string { return "" }, expectedErr: types.ErrValidationFailed},
		{name: "unknown tenant", email: "x@acme.example", role: "viewer", tenantID: func(*fixture) string { return "nope" }, expectedErr: types.ErrTenantNotFound},
		{name: "email already taken", email: "ADMIN@acme.example", role: "viewer", expectedErr: types.ErrDuplicateEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			tenantID := f.tenant.ID
			if tt.tenantID != nil {
				tenantID = tt.tenantID(f)
			}

			_, err := f.manager.Create(context.Background(), tt.email, tt.role, tenantID, f.admin, nil)
			if !errors.Is(err, tt.expectedErr) {
				t.Errorf("expected %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

func TestManager_RedeemAroundExpiry(t *testing.T) {
	tests := []struct {
		name           string
		offset         time.Duration
		expectedErr    error
		expectedStatus types.InvitationStatus
	}{
		{name: "one second before expiry", offset: -time.Second, expectedStatus: types.InvitationAccepted},
		{name: "at expiry", offset: 0, expectedErr: types.ErrInvitationExpired, expectedStatus: types.InvitationExpired},
		{name: "one second after expiry", offset: time.Second, expectedErr: types.ErrInvitationExpired, expectedStatus: types.InvitationExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			created := f.invite(t, "op@acme.example", types.RoleOperator)

			f.clock = created.Invitation.ExpiresAt.Add(tt.offset)

			p, err := f.manager.Redeem(context.Background(), created.Token, redeemAttrs)
			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("expected %v, got %v", tt.expectedErr, err)
			}

			inv := f.invitation(t, created.Token)
			if inv.Status != tt.expectedStatus {
				t.Errorf("expected status %s, got %s", tt.expectedStatus, inv.Status)
			}

			exists, _ := f.store.EmailExists(context.Background(), "op@acme.example")

			if tt.expectedErr != nil {
				if exists {
					t.Errorf("expected no principal for an expired invitation")
				}
				if inv.AcceptedAt != nil {
					t.Errorf("expected no acceptance timestamp")
				}
				return
			}

			if !exists || p.Email != "op@acme.example" || p.Role != types.RoleOperator || p.TenantID != f.tenant.ID {
				t.Errorf("unexpected principal %+v", p)
			}
			if p.PasswordHash != "hashed:"+redeemAttrs.Password {
				t.Errorf("expected the hashed password to be stored")
			}
			if inv.AcceptedAt == nil || !inv.AcceptedAt.Equal(f.clock) {
				t.Errorf("expected acceptance timestamp %v, got %v", f.clock, inv.AcceptedAt)
			}
		})
	}
}

func TestManager_RedeemTerminalStates(t *testing.T) {
	f := newFixture(t)
	created := f.invite(t, "op@acme.example", types.RoleOperator)

	first, err := f.manager.Redeem(context.Background(), created.Token, redeemAttrs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.manager.Redeem(context.Background(), created.Token, redeemAttrs); !errors.Is(err, types.ErrInvitationAlreadyAccepted) {
		t.Errorf("expected already accepted, got %v", err)
	}

	p, err := f.store.GetPrincipalByEmail(context.Background(), "op@acme.example")
	if err != nil || p.ID != first.ID {
		t.Errorf("expected the first principal to be the only one, got %+v", p)
	}

	// an accepted invitation is never swept
	f.clock = created.Invitation.ExpiresAt.Add(time.Hour)
	if _, err := f.manager.Sweep(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv := f.invitation(t, created.Token); inv.Status != types.InvitationAccepted {
		t.Errorf("expected accepted to be terminal, got %s", inv.Status)
	}

	expiredInv := f.invite(t, "late@acme.example", types.RoleViewer)
	f.clock = expiredInv.Invitation.ExpiresAt.Add(time.Second)
	if _, err := f.manager.Redeem(context.Background(), expiredInv.Token, redeemAttrs); !errors.Is(err, types.ErrInvitationExpired) {
		t.Fatalf("expected expired, got %v", err)
	}

	// moving the clock back does not revive it
	f.clock = expiredInv.Invitation.CreatedAt
	if _, err := f.manager.Redeem(context.Background(), expiredInv.Token, redeemAttrs); !errors.Is(err, types.ErrInvitationExpired) {
		t.Errorf("expected expired to be terminal, got %v", err)
	}
}

func TestManager_RedeemFailures(t *testing.T) {
	t.Run("unknown token", func(t *testing.T) {
		f := newFixture(t)

		if _, err := f.manager.Redeem(context.Background(), "made-up", redeemAttrs); !errors.Is(err, types.ErrInvitationNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})

	t.Run("weak password keeps the invitation pending", func(t *testing.T) {
		f := newFixture(t)
		created := f.invite(t, "op@acme.example", types.RoleOperator)

		_, err := f.manager.Redeem(context.Background(), created.Token, types.RedeemAttrs{Password: "short", PasswordConfirmation: "short"})
		if !errors.Is(err, types.ErrValidationFailed) {
			t.Fatalf("expected validation failure, got %v", err)
		}

		if inv := f.invitation(t, created.Token); inv.Status != types.InvitationPending {
			t.Errorf("expected pending, got %s", inv.Status)
		}
	})

	t.Run("email taken after the invitation was sent", func(t *testing.T) {
		f := newFixture(t)
		created := f.invite(t, "op@acme.example", types.RoleOperator)

		if _, err := f.store.CreatePrincipal(context.Background(), &types.Principal{
			Email: "OP@acme.example", Role: types.RoleViewer, TenantID: f.tenant.ID, Status: types.StatusActive,
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := f.manager.Redeem(context.Background(), created.Token, redeemAttrs); !errors.Is(err, types.ErrDuplicateEmail) {
			t.Fatalf("expected duplicate email, got %v", err)
		}

		if inv := f.invitation(t, created.Token); inv.Status != types.InvitationPending {
			t.Errorf("expected the transaction to roll back, got %s", inv.Status)
		}
	})
}

func TestManager_RedeemConcurrently(t *testing.T) {
	f := newFixture(t)
	created := f.invite(t, "op@acme.example", types.RoleOperator)

	var wg sync.WaitGroup
	errs := make(chan error, 8)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.manager.Redeem(context.Background(), created.Token, redeemAttrs)
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, types.ErrInvitationAlreadyAccepted):
			t.Errorf("unexpected error %v", err)
		}
	}

	if succeeded != 1 {
		t.Errorf("expected exactly one redemption, got %d", succeeded)
	}
}

func TestManager_Sweep(t *testing.T) {
	f := newFixture(t)

	stale1 := f.invite(t, "a@acme.example", types.RoleViewer)
	stale2 := f.invite(t, "b@acme.example", types.RoleViewer)
	accepted := f.invite(t, "c@acme.example", types.RoleViewer)

	if _, err := f.manager.Redeem(context.Background(), accepted.Token, redeemAttrs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.clock = f.clock.Add(6 * 24 * time.Hour)
	fresh := f.invite(t, "d@acme.example", types.RoleOperator)

	f.clock = f.clock.Add(2 * 24 * time.Hour)

	n, err := f.manager.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 invitations swept, got %d", n)
	}

	for _, c := range []*Created{stale1, stale2} {
		if inv := f.invitation(t, c.Token); inv.Status != types.InvitationExpired {
			t.Errorf("expected expired, got %s", inv.Status)
		}
	}
	if inv := f.invitation(t, fresh.Token); inv.Status != types.InvitationPending {
		t.Errorf("expected the fresh invitation to stay pending, got %s", inv.Status)
	}

	n, err = f.manager.Sweep(context.Background())
	if err != nil || n != 0 {
		t.Errorf("expected a second sweep to be a no-op, got %d, %v", n, err)
	}

	entries, _ := f.store.ListAuditEntries(context.Background(), types.AuditFilter{Action: audit.ActionInvitationsSwept})
	if len(entries) != 1 || entries[0].ActorID != "" {
		t.Errorf("expected one system audit entry for the sweep, got %+v", entries)
	}
}

func TestInvitedViewerEndToEnd(t *testing.T) {
	f := newFixture(t)

	created := f.invite(t, "viewer@x.com", types.RoleViewer)

	f.clock = f.clock.Add(3 * 24 * time.Hour)

	p, err := f.manager.Redeem(context.Background(), created.Token, redeemAttrs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Role != types.RoleViewer || p.TenantID != f.tenant.ID {
		t.Fatalf("unexpected principal %+v", p)
	}

	scope := types.NewScope(p)

	if !authorization.Can(scope, types.ActionViewReports, f.tenant.ID) {
		t.Errorf("expected the viewer to see reports of its tenant")
	}
	if authorization.Can(scope, types.ActionManageInventory, f.tenant.ID) {
		t.Errorf("expected the viewer not to manage inventory")
	}
}
