// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

type LoggerInterface interface {
	Errorf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Debugf(string, ...interface{})
	Fatalf(string, ...interface{})
	Error(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Debug(...interface{})
	Fatal(...interface{})
	Errorw(string, ...interface{})
	Infow(string, ...interface{})
	Warnw(string, ...interface{})
	Debugw(string, ...interface{})
	Security() SecurityLoggerInterface
	Sync() error
}

// SecurityLoggerInterface emits process-level security events.
// The durable record of these actions lives in the audit log, these are diagnostics only.
type SecurityLoggerInterface interface {
	AuthnLoginSuccess(principalID string, opts ...Option)
	AuthnLoginFail(email string, opts ...Option)
	AuthnLogout(principalID string, opts ...Option)
	SessionExpired(principalID string, opts ...Option)
	SessionRevoked(principalID string, count int, opts ...Option)
	AuthzFailure(principalID, resource string, opts ...Option)
	UserCreated(actorID, principalID string, opts ...Option)
	UserUpdated(actorID, principalID string, opts ...Option)
	UserDeleted(actorID, principalID string, opts ...Option)
	PasswordChanged(principalID string, opts ...Option)
	PasswordReset(actorID, principalID string, opts ...Option)
	InviteCreated(actorID, tenantID string, opts ...Option)
	InviteAccepted(principalID, tenantID string, opts ...Option)
	AuditWriteFailure(action string, err error, opts ...Option)
	SystemStartup(opts ...Option)
	SystemShutdown(opts ...Option)
}
