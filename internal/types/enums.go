// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleRootAdmin   Role = "root-admin"
	RoleTenantAdmin Role = "tenant-admin"
	RoleOperator    Role = "operator"
	RoleViewer      Role = "viewer"
)

var Roles = []Role{RoleRootAdmin, RoleTenantAdmin, RoleOperator, RoleViewer}

// ParseRole rejects anything outside the closed set of roles, no normalization besides trimming.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleRootAdmin, RoleTenantAdmin, RoleOperator, RoleViewer:
		return true
	}
	return false
}

// Invitable roles can be handed out through invitations.
func (r Role) Invitable() bool {
	return r == RoleOperator || r == RoleViewer
}

func (r Role) String() string {
	return string(r)
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.TrimSpace(s)); st {
	case StatusActive, StatusInactive:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

type Action string

const (
	ActionManageUsers          Action = "manage-users"
	ActionManageInventory      Action = "manage-inventory"
	ActionViewReports          Action = "view-reports"
	ActionViewAuditLogs        Action = "view-audit-logs"
	ActionManageTenantSettings Action = "manage-tenant-settings"
)

var Actions = []Action{
	ActionManageUsers,
	ActionManageInventory,
	ActionViewReports,
	ActionViewAuditLogs,
	ActionManageTenantSettings,
}

func ParseAction(s string) (Action, error) {
	a := Action(strings.TrimSpace(s))
	for _, known := range Actions {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// TokenContext tags a stored token so one kind can never be replayed as another.
type TokenContext string

const (
	ContextSession       TokenContext = "session"
	ContextResetPassword TokenContext = "reset_password"
	ContextChangeEmail   TokenContext = "change_email"
	ContextMagicLink     TokenContext = "magic_link"
	ContextRememberMe    TokenContext = "remember_me"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
)

func (s InvitationStatus) Terminal() bool {
	return s == InvitationAccepted || s == InvitationExpired
}
