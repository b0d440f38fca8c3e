// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	appID = "inventory-identity"

	levelInfo     = "INFO"
	levelWarn     = "WARN"
	levelCritical = "CRITICAL"
)

type Option func(*[]zap.Field)

// WithContext attaches arbitrary key-value pairs to a security event.
func WithContext(kv ...interface{}) Option {
	return func(fields *[]zap.Field) {
		for i := 0; i+1 < len(kv); i += 2 {
			*fields = append(*fields, zap.Any(fmt.Sprint(kv[i]), kv[i+1]))
		}
	}
}

// WithRequest attaches client details to a security event.
func WithRequest(addr, agent string) Option {
	return func(fields *[]zap.Field) {
		*fields = append(*fields, zap.String("source_ip", addr), zap.String("user_agent", agent))
	}
}

type SecurityLogger struct {
	l *zap.Logger
}

var _ SecurityLoggerInterface = (*SecurityLogger)(nil)

func newSecurityLogger(l *zap.Logger) *SecurityLogger {
	return &SecurityLogger{l: l}
}

func (s *SecurityLogger) emit(level, event, description string, opts []Option) {
	fields := []zap.Field{
		zap.String("type", "security"),
		zap.String("appid", appID),
		zap.String("event", event),
		zap.String("level", level),
		zap.Time("datetime", time.Now().UTC()),
	}

	for _, opt := range opts {
		opt(&fields)
	}

	switch level {
	case levelWarn:
		s.l.Warn(description, fields...)
	case levelCritical:
		s.l.Error(description, fields...)
	default:
		s.l.Info(description, fields...)
	}
}

func (s *SecurityLogger) AuthnLoginSuccess(principalID string, opts ...Option) {
	s.emit(levelInfo, fmt.Sprintf("authn_login_success:%s", principalID), "user login succeeded", opts)
}

func (s *SecurityLogger) AuthnLoginFail(email string, opts ...Option) {
	s.emit(levelWarn, fmt.Sprintf("authn_login_fail:%s", email), "user login failed", opts)
}

func (s *SecurityLogger) AuthnLogout(principalID string, opts ...Option) {
	s.emit(levelInfo, fmt.Sprintf("authn_logout:%s", principalID), "user logged out", opts)
}

func (s *SecurityLogger) SessionExpired(principalID string, opts ...Option) {
	s.emit(levelInfo, fmt.Sprintf("session_expired:%s", principalID), "session expired", opts)
}

func (s *SecurityLogger) SessionRevoked(principalID string, count int, opts ...Option) {
	s.emit(levelWarn, fmt.Sprintf("session_revoked:%s,%d", principalID, count), "sessions revoked", opts)
}

func (s *SecurityLogger) AuthzFailure(principalID, resource string, opts ...Option) {
	s.emit(levelCritical, fmt.Sprintf("authz_fail:%s,%s", principalID, resource), "authorization denied", opts)
}

func (s *SecurityLogger) UserCreated(actorID, principalID string, opts ...Option) {
	s.emit(levelWarn, fmt.Sprintf("user_created:%s,%s", actorID, principalID), "user created", opts)
}

func (s *SecurityLogger) UserUpdated(actorID, principalID string, opts ...Option) {
	s.emit(levelWarn, fmt.Sprintf("user_updated:%s,%s", actorID, principalID), "user updated", opts)
}

func (s *SecurityLogger) UserDeleted(actorID, principalID string, opts ...Option) {
	s.emit(levelWarn, fmt.Sprintf("user_deleted:%s,%s", actorID, principalID), "user deleted", opts)
}

func (s *SecurityLogger) PasswordChanged(principalID string, opts ...Option) {
	s.emit(levelInfo, fmt.Sprintf("authn_password_change:%s", principalID), "password changed", opts)
}

func (s *SecurityLogger) PasswordReset(actorID, principalID string, opts ...Option) {
	s.emit(levelWarn, fmt.Sprintf("authn_password_reset:%s,%s", actorID, principalID), "password reset to temporary", opts)
}

func (s *SecurityLogger) InviteCreated(actorID, tenantID string, opts ...Option) {
	s.emit(levelInfo, fmt.Sprintf("invite_created:%s,%s", actorID, tenantID), "invitation created", opts)
}

func (s *SecurityLogger) InviteAccepted(principalID, tenantID string, opts ...Option) {
	s.emit(levelInfo, fmt.Sprintf("invite_accepted:%s,%s", principalID, tenantID), "invitation accepted", opts)
}

func (s *SecurityLogger) AuditWriteFailure(action string, err error, opts ...Option) {
	opts = append(opts, WithContext("error", err.Error()))
	s.emit(levelCritical, fmt.Sprintf("audit_write_fail:%s", action), "failed to append audit entry", opts)
}

func (s *SecurityLogger) SystemStartup(opts ...Option) {
	s.emit(levelWarn, "sys_startup", "system started", opts)
}

func (s *SecurityLogger) SystemShutdown(opts ...Option) {
	s.emit(levelWarn, "sys_shutdown", "system shutting down", opts)
}
