// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package invitation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/secret"
	"github.com/canonical/inventory-identity/internal/storage"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/internal/types"
	"github.com/canonical/inventory-identity/internal/validation"
	"github.com/canonical/inventory-identity/pkg/audit"
)

const DefaultLifetime = 7 * 24 * time.Hour

var _ ManagerInterface = (*Manager)(nil)

// URLBuilder turns a plaintext invitation token into the link mailed to the invitee.
type URLBuilder func(token string) string

// NewURLBuilder links to the acceptance page of the public site.
func NewURLBuilder(baseURL string) URLBuilder {
	base := strings.TrimRight(baseURL, "/")
	return func(token string) string {
		return base + "/invitations/accept?token=" + url.QueryEscape(token)
	}
}

// Created holds the only copy of the plaintext token there will ever be.
type Created struct {
	Invitation *types.Invitation
	Token      string
	URL        string
}

// Manager runs the invitation state machine: pending moves to accepted on
// redemption or to expired once past ExpiresAt, both terminal.
type Manager struct {
	storage StorageInterface
	hasher  PasswordHasherInterface
	audit   audit.RecorderInterface

	lifetime          time.Duration
	minPasswordLength int
	now               func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (m *Manager) Create(ctx context.Context, email, role, tenantID string, inviter *types.Principal, buildURL URLBuilder) (*Created, error) {
	ctx, span := m.tracer.Start(ctx, "invitation.Manager.Create")
	defer span.End()

	verr := types.NewValidationError()

	email, err := validation.Email(email)
	if err != nil {
		verr.Add("email", "must be a valid email address")
	}

	r, err := validation.InvitationRole(role)
	if err != nil {
		verr.Add("role", "must be operator or viewer")
	}

	if strings.TrimSpace(tenantID) == "" {
		verr.Add("tenant_id", "is required")
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	exists, err := m.storage.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, types.ErrDuplicateEmail
	}

	token, hash, err := secret.NewToken()
	if err != nil {
		return nil, err
	}

	now := m.now().UTC()
	inv := &types.Invitation{
		Email:     email,
		Role:      r,
		TenantID:  tenantID,
		TokenHash: hash,
		ExpiresAt: now.Add(m.lifetime),
		InviterID: inviter.ID,
		CreatedAt: now,
	}

	created, err := m.storage.CreateInvitation(ctx, inv)
	if errors.Is(err, storage.ErrForeignKeyViolation) {
		return nil, types.ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	out := &Created{Invitation: created, Token: token}
	if buildURL != nil {
		out.URL = buildURL(token)
	}

	m.logger.Security().InviteCreated(inviter.ID, tenantID)
	m.audit.Record(ctx, inviter, audit.ActionInvitationCreated, audit.Attrs{
		TenantID:     tenantID,
		ResourceType: audit.ResourceInvitation,
		ResourceID:   created.ID,
		Diff:         map[string]interface{}{"email": created.Email, "role": string(created.Role), "expires_at": created.ExpiresAt},
	})

	return out, nil
}

// Redeem re-reads the invitation under a row lock and decides on its expiry
// inside the same transaction that creates the principal. A lazily expired
// invitation is committed as expired before ErrInvitationExpired is returned.
func (m *Manager) Redeem(ctx context.Context, token string, attrs types.RedeemAttrs) (*types.Principal, error) {
	ctx, span := m.tracer.Start(ctx, "invitation.Manager.Redeem")
	defer span.End()

	hash := secret.Hash(token)

	var (
		principal *types.Principal
		expired   *types.Invitation
	)

	err := m.storage.WithTx(ctx, func(ctx context.Context) error {
		inv, err := m.storage.GetInvitationByTokenHash(ctx, hash, true)
		if errors.Is(err, storage.ErrNotFound) {
			return types.ErrInvitationNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to look up invitation: %w", err)
		}

		if !secret.Equal(inv.TokenHash, hash) {
			return types.ErrInvitationNotFound
		}

		if err := statusError(inv.Status); err != nil {
			return err
		}

		now := m.now().UTC()

		if inv.ExpiredAt(now) {
			if _, err := m.storage.MarkInvitationExpired(ctx, inv.ID); err != nil {
				return fmt.Errorf("failed to expire invitation: %w", err)
			}
			expired = inv
			return nil
		}

		password, err := validation.Password(attrs.Password, attrs.PasswordConfirmation, m.minPasswordLength)
		if err != nil {
			return err
		}

		passwordHash, err := m.hasher.Hash(password)
		if err != nil {
			return err
		}

		// identity fields come from the invitation only
		created, err := m.storage.CreatePrincipal(ctx, &types.Principal{
			Email:        inv.Email,
			PasswordHash: passwordHash,
			Role:         inv.Role,
			TenantID:     inv.TenantID,
			Status:       types.StatusActive,
		})
		if errors.Is(err, storage.ErrDuplicateKey) {
			return types.ErrDuplicateEmail
		}
		if err != nil {
			return fmt.Errorf("failed to create principal: %w", err)
		}

		ok, err := m.storage.MarkInvitationAccepted(ctx, inv.ID, now)
		if err != nil {
			return fmt.Errorf("failed to accept invitation: %w", err)
		}
		if !ok {
			return m.currentStatusError(ctx, hash)
		}

		principal = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	if expired != nil {
		m.audit.Record(ctx, nil, audit.ActionInvitationExpired, audit.Attrs{
			TenantID:     expired.TenantID,
			ResourceType: audit.ResourceInvitation,
			ResourceID:   expired.ID,
			Diff:         map[string]interface{}{"status": []string{string(types.InvitationPending), string(types.InvitationExpired)}},
		})
		return nil, types.ErrInvitationExpired
	}

	m.logger.Security().InviteAccepted(principal.ID, principal.TenantID)
	m.count("invitation_accepted")
	m.audit.Record(ctx, principal, audit.ActionInvitationAccepted, audit.Attrs{
		TenantID:     principal.TenantID,
		ResourceType: audit.ResourcePrincipal,
		ResourceID:   principal.ID,
		Diff:         map[string]interface{}{"email": principal.Email, "role": string(principal.Role)},
	})

	return principal, nil
}

// Sweep expires every pending invitation past its window. Safe to run any
// number of times from any number of workers.
func (m *Manager) Sweep(ctx context.Context) (int64, error) {
	ctx, span := m.tracer.Start(ctx, "invitation.Manager.Sweep")
	defer span.End()

	n, err := m.storage.ExpirePendingInvitations(ctx, m.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep invitations: %w", err)
	}

	m.logger.Infof("expired %d pending invitations", n)

	if n > 0 {
		m.count("invitation_swept")
		m.audit.Record(ctx, nil, audit.ActionInvitationsSwept, audit.Attrs{
			ResourceType: audit.ResourceInvitation,
			Diff:         map[string]interface{}{"count": n},
		})
	}

	return n, nil
}

func (m *Manager) currentStatusError(ctx context.Context, hash string) error {
	inv, err := m.storage.GetInvitationByTokenHash(ctx, hash, false)
	if err != nil {
		return types.ErrInvitationNotFound
	}
	if err := statusError(inv.Status); err != nil {
		return err
	}
	return types.ErrInvitationNotFound
}

func statusError(status types.InvitationStatus) error {
	switch status {
	case types.InvitationAccepted:
		return types.ErrInvitationAlreadyAccepted
	case types.InvitationExpired:
		return types.ErrInvitationExpired
	}
	return nil
}

func (m *Manager) count(event string) {
	if err := m.monitor.IncrementEventCounter(map[string]string{"event": event, "outcome": "success"}); err != nil {
		m.logger.Debugf("failed to record %s metric: %v", event, err)
	}
}

func NewManager(storage StorageInterface, hasher PasswordHasherInterface, recorder audit.RecorderInterface, lifetime time.Duration, minPasswordLength int, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Manager {
	m := new(Manager)

	m.storage = storage
	m.hasher = hasher
	m.audit = recorder
	m.lifetime = lifetime
	m.minPasswordLength = minPasswordLength
	m.now = time.Now

	if m.lifetime <= 0 {
		m.lifetime = DefaultLifetime
	}

	m.tracer = tracer
	m.monitor = monitor
	m.logger = logger

	return m
}
