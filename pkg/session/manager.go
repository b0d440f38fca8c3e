// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/canonical/inventory-identity/internal/events"
	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/secret"
	"github.com/canonical/inventory-identity/internal/storage"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/internal/types"
	"github.com/canonical/inventory-identity/pkg/audit"
	"github.com/canonical/inventory-identity/pkg/authentication"
)

const (
	ReasonLogout   = "logout"
	ReasonRevoked  = "revoked"
	// ReasonShutdown asks clients to reconnect to another instance.
	ReasonShutdown = "shutdown"
)

var _ ManagerInterface = (*Manager)(nil)

type Config struct {
	// InactivityTimeout bounds the age of the last authentication.
	InactivityTimeout time.Duration
	// ReissueAge bounds how long a single token value circulates.
	ReissueAge time.Duration
	// RotationGrace keeps a reissued value usable for requests already in
	// flight with it.
	RotationGrace time.Duration
	MagicLinkTTL  time.Duration
}

// Issued is a freshly minted session token. RememberMe asks the client layer to
// also keep it in a long-lived credential.
type Issued struct {
	Token      string
	RememberMe bool
	ExpiresAt  time.Time
}

type Manager struct {
	storage StorageInterface
	bus     PublisherInterface
	audit   audit.RecorderInterface

	cfg Config
	now func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (m *Manager) Issue(ctx context.Context, principal *types.Principal, rememberMe bool) (*Issued, error) {
	ctx, span := m.tracer.Start(ctx, "session.Manager.Issue")
	defer span.End()

	token, hash, err := secret.NewToken()
	if err != nil {
		return nil, err
	}

	sessionID, err := newSessionID()
	if err != nil {
		return nil, err
	}

	now := m.now().UTC()
	t := &types.SessionToken{
		Hash:            hash,
		SessionID:       sessionID,
		PrincipalID:     principal.ID,
		Context:         types.ContextSession,
		CreatedAt:       now,
		AuthenticatedAt: now,
	}

	if err := m.storage.CreateSessionToken(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to store session token: %w", err)
	}

	m.count("session_issued", "success")

	return &Issued{Token: token, RememberMe: rememberMe, ExpiresAt: now.Add(m.cfg.InactivityTimeout)}, nil
}

// Validate resolves a token to a fresh scope. Expired tokens are left for
// PurgeExpired, sessions of inactive principals are removed on sight. A value
// replaced by a reissue keeps resolving, without rotating again, for
// RotationGrace.
func (m *Manager) Validate(ctx context.Context, token string) (*types.SessionResolution, error) {
	ctx, span := m.tracer.Start(ctx, "session.Manager.Validate")
	defer span.End()

	if token == "" {
		return nil, types.ErrSessionNotFound
	}

	hash := secret.Hash(token)

	t, err := m.storage.GetSessionToken(ctx, hash, types.ContextSession)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, types.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up session token: %w", err)
	}

	p, err := m.storage.GetPrincipalByID(ctx, t.PrincipalID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up principal: %w", err)
	}

	if !p.IsActive() {
		if err := m.storage.DeleteSession(ctx, t.SessionID); err != nil {
			m.logger.Errorf("failed to drop session of inactive principal %s: %v", t.PrincipalID, err)
		}
		return nil, types.ErrSessionNotFound
	}

	now := m.now().UTC()

	if now.Sub(t.AuthenticatedAt) > m.cfg.InactivityTimeout {
		m.logger.Security().SessionExpired(p.ID)
		m.count("session_expired", "rejected")
		return nil, types.ErrSessionExpired
	}

	res := &types.SessionResolution{Scope: types.NewScope(p), SessionID: t.SessionID, TokenHash: hash}

	if t.ReplacedAt != nil {
		if !m.inGrace(*t.ReplacedAt, now) {
			return nil, types.ErrSessionNotFound
		}
		return res, nil
	}

	if now.Sub(t.CreatedAt) <= m.cfg.ReissueAge {
		return res, nil
	}

	rotated, err := m.reissue(ctx, t, now)
	if errors.Is(err, storage.ErrNotFound) {
		// another request reissued or revoked it first
		if !m.replacedInGrace(ctx, hash, now) {
			return nil, types.ErrSessionNotFound
		}
		return res, nil
	}
	if err != nil {
		return nil, err
	}

	res.RotatedToken = rotated.token
	res.TokenHash = rotated.hash
	span.SetAttributes(attribute.Bool("session.rotated", true))

	return res, nil
}

func (m *Manager) inGrace(replacedAt, now time.Time) bool {
	return now.Sub(replacedAt) <= m.cfg.RotationGrace
}

func (m *Manager) replacedInGrace(ctx context.Context, hash string, now time.Time) bool {
	t, err := m.storage.GetSessionToken(ctx, hash, types.ContextSession)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.Errorf("failed to reload reissued session token: %v", err)
		}
		return false
	}

	return t.ReplacedAt != nil && m.inGrace(*t.ReplacedAt, now)
}

type rotation struct {
	token string
	hash  string
}

// reissue adds a new value to the session, keeping the original authentication
// time, and marks t replaced. storage.ErrNotFound means t was no longer current.
func (m *Manager) reissue(ctx context.Context, t *types.SessionToken, now time.Time) (*rotation, error) {
	token, hash, err := secret.NewToken()
	if err != nil {
		return nil, err
	}

	replacement := &types.SessionToken{
		Hash:            hash,
		SessionID:       t.SessionID,
		PrincipalID:     t.PrincipalID,
		Context:         t.Context,
		CreatedAt:       now,
		AuthenticatedAt: t.AuthenticatedAt,
	}

	err = m.storage.ReplaceSessionToken(ctx, t.Hash, now, replacement)
	if errors.Is(err, storage.ErrNotFound) {
		m.count("session_reissued", "lost")
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reissue session token: %w", err)
	}

	m.count("session_reissued", "success")

	return &rotation{token: token, hash: hash}, nil
}

// Revoke ends the session the token belongs to, whichever of its values it is.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	ctx, span := m.tracer.Start(ctx, "session.Manager.Revoke")
	defer span.End()

	hash := secret.Hash(token)

	t, err := m.storage.GetSessionToken(ctx, hash, types.ContextSession)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up session token: %w", err)
	}

	if err := m.storage.DeleteSession(ctx, t.SessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	m.disconnect(ctx, t.PrincipalID, t.SessionID, ReasonLogout)

	return nil
}

// RevokeAllExcept deletes every session of the principal but the one carried by
// currentToken, asks live connections on the others to drop and records one
// summary entry. The count is in sessions, not token values.
func (m *Manager) RevokeAllExcept(ctx context.Context, principalID, currentToken string) (int, error) {
	ctx, span := m.tracer.Start(ctx, "session.Manager.RevokeAllExcept")
	defer span.End()

	except, err := m.currentSession(ctx, principalID, currentToken)
	if err != nil {
		return 0, err
	}

	sessions, err := m.storage.DeleteSessionTokensByPrincipal(ctx, principalID, []types.TokenContext{types.ContextSession}, except)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions: %w", err)
	}

	for _, id := range sessions {
		m.disconnect(ctx, principalID, id, ReasonRevoked)
	}

	span.SetAttributes(attribute.Int("session.revoked", len(sessions)))

	m.logger.Security().SessionRevoked(principalID, len(sessions))
	m.count("session_revoked", "success")

	m.audit.Record(ctx, m.actor(ctx), audit.ActionSessionsRevoked, audit.Attrs{
		TenantID:     m.tenantOf(ctx, principalID),
		ResourceType: audit.ResourceSession,
		ResourceID:   principalID,
		Diff: map[string]interface{}{
			"count":        len(sessions),
			"kept_current": except != "",
		},
	})

	return len(sessions), nil
}

// currentSession is empty when the token is unknown or belongs to someone else.
func (m *Manager) currentSession(ctx context.Context, principalID, token string) (string, error) {
	if token == "" {
		return "", nil
	}

	t, err := m.storage.GetSessionToken(ctx, secret.Hash(token), types.ContextSession)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up session token: %w", err)
	}

	if t.PrincipalID != principalID {
		return "", nil
	}
	return t.SessionID, nil
}

func (m *Manager) RevokeAll(ctx context.Context, principalID string) (int, error) {
	return m.RevokeAllExcept(ctx, principalID, "")
}

// PurgeExpired removes session tokens past the inactivity window, replaced
// values past the grace period and stale magic links.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	ctx, span := m.tracer.Start(ctx, "session.Manager.PurgeExpired")
	defer span.End()

	now := m.now().UTC()

	sessions, err := m.storage.DeleteSessionTokensAuthenticatedBefore(ctx, types.ContextSession, now.Add(-m.cfg.InactivityTimeout))
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}

	replaced, err := m.storage.DeleteReplacedSessionTokens(ctx, now.Add(-m.cfg.RotationGrace))
	if err != nil {
		return sessions, fmt.Errorf("failed to purge replaced session tokens: %w", err)
	}

	links, err := m.storage.DeleteSessionTokensAuthenticatedBefore(ctx, types.ContextMagicLink, now.Add(-m.cfg.MagicLinkTTL))
	if err != nil {
		return sessions + replaced, fmt.Errorf("failed to purge magic links: %w", err)
	}

	return sessions + replaced + links, nil
}

// IssueMagicLink creates a single use sign-in token, valid for MagicLinkTTL.
func (m *Manager) IssueMagicLink(ctx context.Context, principal *types.Principal) (string, error) {
	ctx, span := m.tracer.Start(ctx, "session.Manager.IssueMagicLink")
	defer span.End()

	if !principal.IsActive() {
		return "", types.ErrPrincipalInactive
	}

	token, hash, err := secret.NewToken()
	if err != nil {
		return "", err
	}

	linkID, err := newSessionID()
	if err != nil {
		return "", err
	}

	now := m.now().UTC()
	t := &types.SessionToken{
		Hash:            hash,
		SessionID:       linkID,
		PrincipalID:     principal.ID,
		Context:         types.ContextMagicLink,
		CreatedAt:       now,
		AuthenticatedAt: now,
	}

	if err := m.storage.CreateSessionToken(ctx, t); err != nil {
		return "", fmt.Errorf("failed to store magic link: %w", err)
	}

	return token, nil
}

// ConsumeMagicLink burns the token whatever the outcome.
func (m *Manager) ConsumeMagicLink(ctx context.Context, token string) (*types.Principal, error) {
	ctx, span := m.tracer.Start(ctx, "session.Manager.ConsumeMagicLink")
	defer span.End()

	t, err := m.storage.ConsumeSessionToken(ctx, secret.Hash(token), types.ContextMagicLink)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, types.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume magic link: %w", err)
	}

	if m.now().UTC().Sub(t.CreatedAt) > m.cfg.MagicLinkTTL {
		return nil, types.ErrInvalidCredentials
	}

	p, err := m.storage.GetPrincipalByID(ctx, t.PrincipalID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up principal: %w", err)
	}

	if !p.IsActive() {
		return nil, types.ErrInvalidCredentials
	}

	return p, nil
}

func (m *Manager) disconnect(ctx context.Context, principalID, sessionID, reason string) {
	e := events.DisconnectEvent{
		PrincipalID: principalID,
		SessionID:   sessionID,
		Reason:      reason,
		At:          m.now().UTC(),
	}

	if err := m.bus.Publish(ctx, e); err != nil {
		m.logger.Warnf("failed to publish disconnect for principal %s: %v", principalID, err)
	}
}

func (m *Manager) actor(ctx context.Context) *types.Principal {
	if scope, ok := authentication.ScopeFromContext(ctx); ok {
		return scope.Principal
	}
	return nil
}

func (m *Manager) tenantOf(ctx context.Context, principalID string) string {
	p, err := m.storage.GetPrincipalByID(ctx, principalID)
	if err != nil {
		return ""
	}
	return p.TenantID
}

func (m *Manager) count(event, outcome string) {
	if err := m.monitor.IncrementEventCounter(map[string]string{"event": event, "outcome": outcome}); err != nil {
		m.logger.Debugf("failed to record %s metric: %v", event, err)
	}
}

func newSessionID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return id.String(), nil
}

func NewManager(storage StorageInterface, bus PublisherInterface, recorder audit.RecorderInterface, cfg Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Manager {
	m := new(Manager)

	m.storage = storage
	m.bus = bus
	m.audit = recorder
	m.cfg = cfg
	m.now = time.Now

	m.tracer = tracer
	m.monitor = monitor
	m.logger = logger

	if cfg.ReissueAge >= cfg.InactivityTimeout {
		logger.Warnf("session reissue age %s is not below the inactivity timeout %s, tokens will expire before they rotate", cfg.ReissueAge, cfg.InactivityTimeout)
	}

	return m
}
