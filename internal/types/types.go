// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"time"
)

type Tenant struct {
	ID           string            `db:"id" json:"id"`
	Name         string            `db:"name" json:"name"`
	Slug         string            `db:"slug" json:"slug"`
	Active       bool              `db:"active" json:"active"`
	ContactEmail string            `db:"contact_email" json:"contact_email,omitempty"`
	ContactPhone string            `db:"contact_phone" json:"contact_phone,omitempty"`
	Settings     map[string]string `db:"settings" json:"settings,omitempty"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
}

// Principal is a user account. TenantID is empty only for root admins.
type Principal struct {
	ID                 string     `db:"id" json:"id"`
	Email              string     `db:"email" json:"email"`
	PasswordHash       string     `db:"password_hash" json:"-"`
	Role               Role       `db:"role" json:"role"`
	TenantID           string     `db:"tenant_id" json:"tenant_id,omitempty"`
	Status             Status     `db:"status" json:"status"`
	LastLoginAt        *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	MustChangePassword bool       `db:"must_change_password" json:"must_change_password"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

func (p *Principal) IsActive() bool {
	return p != nil && p.Status == StatusActive
}

func (p *Principal) HasPassword() bool {
	return p != nil && p.PasswordHash != ""
}

// SessionToken is the persisted half of a bearer token, the plaintext value is never stored.
// SessionToken is one value of a session. Reissuing adds a value with the same
// SessionID and marks the previous one replaced.
type SessionToken struct {
	Hash            string       `db:"token_hash"`
	SessionID       string       `db:"session_id"`
	PrincipalID     string       `db:"principal_id"`
	Context         TokenContext `db:"context"`
	CreatedAt       time.Time    `db:"created_at"`
	AuthenticatedAt time.Time    `db:"authenticated_at"`
	ReplacedAt      *time.Time   `db:"replaced_at"`
}

type Invitation struct {
	ID         string           `db:"id" json:"id"`
	Email      string           `db:"email" json:"email"`
	Role       Role             `db:"role" json:"role"`
	TenantID   string           `db:"tenant_id" json:"tenant_id"`
	TokenHash  string           `db:"token_hash" json:"-"`
	Status     InvitationStatus `db:"status" json:"status"`
	ExpiresAt  time.Time        `db:"expires_at" json:"expires_at"`
	InviterID  string           `db:"inviter_id" json:"inviter_id,omitempty"`
	AcceptedAt *time.Time       `db:"accepted_at" json:"accepted_at,omitempty"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}

// ExpiredAt reports whether the invitation window has closed at instant now.
func (i *Invitation) ExpiredAt(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// AuditEntry keeps a snapshot of the actor rather than a live reference so
// principals can be removed without touching history.
type AuditEntry struct {
	ID           int64                  `db:"id" json:"id"`
	ActorID      string                 `db:"actor_id" json:"actor_id,omitempty"`
	ActorEmail   string                 `db:"actor_email" json:"actor_email,omitempty"`
	TenantID     string                 `db:"tenant_id" json:"tenant_id,omitempty"`
	Action       string                 `db:"action" json:"action"`
	ResourceType string                 `db:"resource_type" json:"resource_type,omitempty"`
	ResourceID   string                 `db:"resource_id" json:"resource_id,omitempty"`
	Diff         map[string]interface{} `db:"diff" json:"diff,omitempty"`
	ClientAddr   string                 `db:"client_addr" json:"client_addr,omitempty"`
	ClientAgent  string                 `db:"client_agent" json:"client_agent,omitempty"`
	OccurredAt   time.Time              `db:"occurred_at" json:"occurred_at"`
}

type AuditFilter struct {
	TenantID     string
	Action       string
	ResourceType string
	ActorID      string
	From         *time.Time
	To           *time.Time
	Limit        uint64
	Offset       uint64
}

// Scope is the resolved identity of a single request, built fresh every time.
type Scope struct {
	Principal *Principal
	TenantID  string
}

func NewScope(p *Principal) *Scope {
	return &Scope{Principal: p, TenantID: p.TenantID}
}

func (s *Scope) Role() Role {
	if s == nil || s.Principal == nil {
		return ""
	}
	return s.Principal.Role
}

func (s *Scope) PrincipalID() string {
	if s == nil || s.Principal == nil {
		return ""
	}
	return s.Principal.ID
}

// ClientInfo describes where a request came from, it ends up on audit entries.
type ClientInfo struct {
	Addr  string
	Agent string
}

// PrincipalAttrs is the input for privileged principal creation.
type PrincipalAttrs struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role" validate:"required,role"`
	TenantID string `json:"tenant_id,omitempty"`
}

// RedeemAttrs is what an invitee supplies, identity fields come from the invitation.
type RedeemAttrs struct {
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type PasswordChangeAttrs struct {
	CurrentPassword      string `json:"current_password"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type TenantAttrs struct {
	Name         string            `json:"name" validate:"required,max=200"`
	Slug         string            `json:"slug" validate:"required,max=63,slug"`
	ContactEmail string            `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone string            `json:"contact_phone,omitempty" validate:"omitempty,max=32"`
	Settings     map[string]string `json:"settings,omitempty"`
}

// SessionResolution is the outcome of a successful session lookup. RotatedToken
// is set only when the presented token was reissued and must be handed back.
type SessionResolution struct {
	Scope        *Scope
	SessionID    string
	TokenHash    string
	RotatedToken string
}
