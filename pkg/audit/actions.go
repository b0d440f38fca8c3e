// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

const (
	ActionLoginSucceeded     = "auth.login.succeeded"
	ActionLoginFailed        = "auth.login.failed"
	ActionLogout             = "auth.logout"
	ActionMagicLinkIssued    = "auth.magic_link.issued"
	ActionSessionsRevoked    = "session.revoked_all"
	ActionPasswordChanged    = "credential.password_changed"
	ActionPasswordReset      = "credential.password_reset"
	ActionInvitationCreated  = "invitation.created"
	ActionInvitationAccepted = "invitation.accepted"
	ActionInvitationExpired  = "invitation.expired"
	ActionInvitationsSwept   = "invitation.swept"
	ActionUserCreated        = "user.created"
	ActionUserRoleChanged    = "user.role_changed"
	ActionUserStatusChanged  = "user.status_changed"
	ActionUserDeleted        = "user.deleted"
	ActionTenantCreated      = "tenant.created"
	ActionTenantStatusChange = "tenant.status_changed"
	ActionAuthzDenied        = "authz.denied"
)

const (
	ResourcePrincipal  = "principal"
	ResourceTenant     = "tenant"
	ResourceInvitation = "invitation"
	ResourceSession    = "session"
	ResourceAuditLog   = "audit_log"
)

// Attrs carries everything about an entry besides actor and action.
type Attrs struct {
	TenantID     string
	ResourceType string
	ResourceID   string
	Diff         map[string]interface{}
}
