// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package accounts

import (
	"context"
	"time"

	"github.com/canonical/inventory-identity/internal/types"
	"github.com/canonical/inventory-identity/pkg/audit"
	"github.com/canonical/inventory-identity/pkg/invitation"
	"github.com/canonical/inventory-identity/pkg/session"
)

// ServiceInterface is the contract the rest of the application builds on.
type ServiceInterface interface {
	Authenticate(ctx context.Context, email, password string) (*types.Scope, error)
	IssueSession(ctx context.Context, principal *types.Principal, rememberMe bool) (*session.Issued, error)
	ResolveSession(ctx context.Context, token string) (*types.SessionResolution, error)
	Logout(ctx context.Context, token string) error
	Authorize(ctx context.Context, scope *types.Scope, action types.Action, resourceTenant string) error

	Register(ctx context.Context, scope *types.Scope, attrs types.PrincipalAttrs) (*types.Principal, error)
	GetPrincipal(ctx context.Context, scope *types.Scope, id string) (*types.Principal, error)
	ChangeRole(ctx context.Context, scope *types.Scope, id, role string) (*types.Principal, error)
	SetStatus(ctx context.Context, scope *types.Scope, id, status string) (*types.Principal, error)
	DeletePrincipal(ctx context.Context, scope *types.Scope, id string) error

	CreateInvitation(ctx context.Context, scope *types.Scope, email, role, tenantID string) (*invitation.Created, error)
	RedeemInvitation(ctx context.Context, token string, attrs types.RedeemAttrs) (*types.Principal, error)

	ResetPassword(ctx context.Context, scope *types.Scope, principalID string) (string, error)
	ChangePassword(ctx context.Context, scope *types.Scope, attrs types.PasswordChangeAttrs, currentToken string) (*types.Principal, error)
	RequestMagicLink(ctx context.Context, email string) error
	ConsumeMagicLink(ctx context.Context, token string, rememberMe bool) (*types.Scope, *session.Issued, error)

	Record(ctx context.Context, actor *types.Principal, action string, attrs audit.Attrs)
	QueryAuditLog(ctx context.Context, scope *types.Scope, filter types.AuditFilter) ([]*types.AuditEntry, error)
}

type StorageInterface interface {
	GetPrincipalByID(ctx context.Context, id string) (*types.Principal, error)
	GetPrincipalByEmail(ctx context.Context, email string) (*types.Principal, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreatePrincipal(ctx context.Context, p *types.Principal) (*types.Principal, error)
	UpdatePrincipalRole(ctx context.Context, id string, role types.Role) error
	UpdatePrincipalStatus(ctx context.Context, id string, status types.Status) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	DeletePrincipal(ctx context.Context, id string) error
}

// MailerInterface hands links to the mail delivery collaborator.
type MailerInterface interface {
	SendInvitation(ctx context.Context, email, url string, expiresAt time.Time) error
	SendMagicLink(ctx context.Context, email, url string) error
}
