// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"time"

	"github.com/canonical/inventory-identity/internal/types"
)

type StorageInterface interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error

	TenantStorageInterface
	PrincipalStorageInterface
	SessionStorageInterface
	InvitationStorageInterface
	AuditStorageInterface
}

type TenantStorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	SetTenantActive(ctx context.Context, id string, active bool) error
}

type PrincipalStorageInterface interface {
	CreatePrincipal(ctx context.Context, p *types.Principal) (*types.Principal, error)
	GetPrincipalByID(ctx context.Context, id string) (*types.Principal, error)
	GetPrincipalByEmail(ctx context.Context, email string) (*types.Principal, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdatePrincipalRole(ctx context.Context, id string, role types.Role) error
	UpdatePrincipalStatus(ctx context.Context, id string, status types.Status) error
	UpdatePrincipalPassword(ctx context.Context, id, passwordHash string, mustChange bool) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	DeletePrincipal(ctx context.Context, id string) error
}

type SessionStorageInterface interface {
	CreateSessionToken(ctx context.Context, t *types.SessionToken) error
	GetSessionToken(ctx context.Context, hash string, tokenContext types.TokenContext) (*types.SessionToken, error)
	ReplaceSessionToken(ctx context.Context, oldHash string, replacedAt time.Time, t *types.SessionToken) error
	DeleteSession(ctx context.Context, sessionID string) error
	ConsumeSessionToken(ctx context.Context, hash string, tokenContext types.TokenContext) (*types.SessionToken, error)
	DeleteSessionTokensByPrincipal(ctx context.Context, principalID string, contexts []types.TokenContext, exceptSessionID string) ([]string, error)
	DeleteSessionTokensAuthenticatedBefore(ctx context.Context, tokenContext types.TokenContext, before time.Time) (int64, error)
	DeleteReplacedSessionTokens(ctx context.Context, before time.Time) (int64, error)
}

// InvitationStorageInterface only ever moves an invitation forward out of pending.
type InvitationStorageInterface interface {
	CreateInvitation(ctx context.Context, i *types.Invitation) (*types.Invitation, error)
	GetInvitationByTokenHash(ctx context.Context, hash string, forUpdate bool) (*types.Invitation, error)
	MarkInvitationExpired(ctx context.Context, id string) (bool, error)
	MarkInvitationAccepted(ctx context.Context, id string, at time.Time) (bool, error)
	ExpirePendingInvitations(ctx context.Context, now time.Time) (int64, error)
}

// AuditStorageInterface is append and read only, the audit_log table has no mutation path.
type AuditStorageInterface interface {
	AppendAuditEntry(ctx context.Context, e *types.AuditEntry) error
	ListAuditEntries(ctx context.Context, filter types.AuditFilter) ([]*types.AuditEntry, error)
}
