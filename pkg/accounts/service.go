// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/storage"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/internal/types"
	"github.com/canonical/inventory-identity/internal/validation"
	"github.com/canonical/inventory-identity/pkg/audit"
	"github.com/canonical/inventory-identity/pkg/authentication"
	"github.com/canonical/inventory-identity/pkg/credentials"
	"github.com/canonical/inventory-identity/pkg/guard"
	"github.com/canonical/inventory-identity/pkg/invitation"
	"github.com/canonical/inventory-identity/pkg/session"
)

const (
	opManageAdmin = "principal.manage_admin"
)

var (
	_ ServiceInterface                        = (*Service)(nil)
	_ authentication.SessionResolverInterface = (*Service)(nil)
)

type Config struct {
	PublicBaseURL     string
	MinPasswordLength int
}

type Service struct {
	storage     StorageInterface
	credentials credentials.StoreInterface
	sessions    session.ManagerInterface
	invitations invitation.ManagerInterface
	guard       guard.GuardInterface
	audit       audit.ServiceInterface
	mailer      MailerInterface

	cfg           Config
	invitationURL invitation.URLBuilder
	now           func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Authenticate never tells the caller which part of the credentials was wrong,
// the reason only ends up in the audit log.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*types.Scope, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.Authenticate")
	defer span.End()

	normalized := validation.NormalizeEmail(email)

	p, err := s.credentials.Verify(ctx, normalized, password)
	if err != nil {
		reason := ""
		switch {
		case errors.Is(err, types.ErrInvalidCredentials):
			reason = "invalid_credentials"
		case errors.Is(err, types.ErrPrincipalInactive):
			reason = "inactive"
		default:
			return nil, fmt.Errorf("failed to verify credentials: %w", err)
		}

		s.logger.Security().AuthnLoginFail(normalized, logging.WithContext("reason", reason))
		s.count("login", "failure")
		s.audit.Record(ctx, nil, audit.ActionLoginFailed, audit.Attrs{
			ResourceType: audit.ResourcePrincipal,
			Diff:         map[string]interface{}{"email": normalized, "reason": reason},
		})

		return nil, types.ErrInvalidCredentials
	}

	s.loggedIn(ctx, p, "password")

	return types.NewScope(p), nil
}

func (s *Service) IssueSession(ctx context.Context, principal *types.Principal, rememberMe bool) (*session.Issued, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.IssueSession")
	defer span.End()

	return s.sessions.Issue(ctx, principal, rememberMe)
}

func (s *Service) ResolveSession(ctx context.Context, token string) (*types.SessionResolution, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.ResolveSession")
	defer span.End()

	return s.sessions.Validate(ctx, token)
}

func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.Logout")
	defer span.End()

	if err := s.sessions.Revoke(ctx, token); err != nil {
		return err
	}

	scope, _ := authentication.ScopeFromContext(ctx)
	if scope != nil {
		s.logger.Security().AuthnLogout(scope.PrincipalID())
		s.audit.Record(ctx, scope.Principal, audit.ActionLogout, audit.Attrs{
			ResourceType: audit.ResourceSession,
			ResourceID:   scope.PrincipalID(),
		})
	}

	return nil
}

func (s *Service) Authorize(ctx context.Context, scope *types.Scope, action types.Action, resourceTenant string) error {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.Authorize")
	defer span.End()

	return s.guard.Check(ctx, scope, action, resourceTenant)
}

// Register is the privileged creation path. Uniqueness is checked up front for a
// readable error and enforced again by the storage constraint.
func (s *Service) Register(ctx context.Context, scope *types.Scope, attrs types.PrincipalAttrs) (*types.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.Register")
	defer span.End()

	v, err := validation.Principal(attrs, s.cfg.MinPasswordLength)
	if err != nil {
		return nil, err
	}

	if err := s.guard.CheckAssignRole(ctx, scope, v.Role, v.TenantID); err != nil {
		return nil, err
	}

	exists, err := s.storage.EmailExists(ctx, v.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, types.ErrDuplicateEmail
	}

	hash := ""
	if v.Password != "" {
		if hash, err = s.credentials.Hash(v.Password); err != nil {
			return nil, err
		}
	}

	created, err := s.storage.CreatePrincipal(ctx, &types.Principal{
		Email:        v.Email,
		PasswordHash: hash,
		Role:         v.Role,
		TenantID:     v.TenantID,
		Status:       types.StatusActive,
	})
	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		return nil, types.ErrDuplicateEmail
	case errors.Is(err, storage.ErrForeignKeyViolation):
		return nil, types.ErrTenantNotFound
	case errors.Is(err, storage.ErrCheckViolation):
		verr := types.NewValidationError()
		verr.Add("tenant_id", "root_admin_no_tenant")
		return nil, verr
	case err != nil:
		return nil, fmt.Errorf("failed to create principal: %w", err)
	}

	s.logger.Security().UserCreated(scope.PrincipalID(), created.ID, logging.WithContext("role", string(created.Role), "tenant_id", created.TenantID))
	s.count("user_created", "success")
	s.audit.Record(ctx, scope.Principal, audit.ActionUserCreated, audit.Attrs{
		TenantID:     created.TenantID,
		ResourceType: audit.ResourcePrincipal,
		ResourceID:   created.ID,
		Diff: map[string]interface{}{
			"email": created.Email,
			"role":  string(created.Role),
		},
	})

	return created, nil
}

// BootstrapRoot creates a root-admin outside of any session, for first install.
// The principal must change the returned temporary password at first login.
func (s *Service) BootstrapRoot(ctx context.Context, email string) (*types.Principal, string, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.BootstrapRoot")
	defer span.End()

	v, err := validation.Principal(types.PrincipalAttrs{Email: email, Role: string(types.RoleRootAdmin)}, s.cfg.MinPasswordLength)
	if err != nil {
		return nil, "", err
	}

	created, err := s.storage.CreatePrincipal(ctx, &types.Principal{
		Email:  v.Email,
		Role:   types.RoleRootAdmin,
		Status: types.StatusActive,
	})
	if errors.Is(err, storage.ErrDuplicateKey) {
		return nil, "", types.ErrDuplicateEmail
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to create principal: %w", err)
	}

	updated, temporary, err := s.credentials.ResetToTemporary(ctx, created)
	if err != nil {
		return nil, "", err
	}

	s.logger.Security().UserCreated("", created.ID, logging.WithContext("role", string(types.RoleRootAdmin), "bootstrap", "true"))
	s.audit.Record(ctx, nil, audit.ActionUserCreated, audit.Attrs{
		ResourceType: audit.ResourcePrincipal,
		ResourceID:   created.ID,
		Diff: map[string]interface{}{
			"email":     created.Email,
			"role":      string(created.Role),
			"bootstrap": true,
		},
	})

	return updated, temporary, nil
}

func (s *Service) GetPrincipal(ctx context.Context, scope *types.Scope, id string) (*types.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.GetPrincipal")
	defer span.End()

	if scope != nil && scope.Principal != nil && scope.PrincipalID() == id {
		return scope.Principal, nil
	}

	return s.target(ctx, scope, id)
}

func (s *Service) ChangeRole(ctx context.Context, scope *types.Scope, id, role string) (*types.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.ChangeRole")
	defer span.End()

	r, err := types.ParseRole(role)
	if err != nil {
		verr := types.NewValidationError()
		verr.Add("role", "is not a known role")
		return nil, verr
	}

	target, err := s.target(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	// root-admin and tenant bound roles never swap, the tenant reference would break
	if (r == types.RoleRootAdmin) != (target.TenantID == "") {
		verr := types.NewValidationError()
		verr.Add("role", "cannot move a principal between root and tenant roles")
		return nil, verr
	}

	if err := s.guard.CheckAssignRole(ctx, scope, r, target.TenantID); err != nil {
		return nil, err
	}

	if target.Role == r {
		return target, nil
	}

	if err := s.storage.UpdatePrincipalRole(ctx, target.ID, r); err != nil {
		return nil, s.mapError(err)
	}

	s.logger.Security().UserUpdated(scope.PrincipalID(), target.ID, logging.WithContext("role", string(r)))
	s.audit.Record(ctx, scope.Principal, audit.ActionUserRoleChanged, audit.Attrs{
		TenantID:     target.TenantID,
		ResourceType: audit.ResourcePrincipal,
		ResourceID:   target.ID,
		Diff: map[string]interface{}{
			"role": map[string]interface{}{"from": string(target.Role), "to": string(r)},
		},
	})

	updated := *target
	updated.Role = r

	return &updated, nil
}

// SetStatus signs a deactivated principal out everywhere.
func (s *Service) SetStatus(ctx context.Context, scope *types.Scope, id, status string) (*types.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.SetStatus")
	defer span.End()

	st, err := types.ParseStatus(status)
	if err != nil {
		verr := types.NewValidationError()
		verr.Add("status", "must be active or inactive")
		return nil, verr
	}

	if st == types.StatusInactive && scope.PrincipalID() == id {
		verr := types.NewValidationError()
		verr.Add("status", "cannot deactivate yourself")
		return nil, verr
	}

	target, err := s.target(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if target.Status == st {
		return target, nil
	}

	if err := s.storage.UpdatePrincipalStatus(ctx, target.ID, st); err != nil {
		return nil, s.mapError(err)
	}

	if st == types.StatusInactive {
		if _, err := s.sessions.RevokeAll(ctx, target.ID); err != nil {
			s.logger.Errorf("failed to revoke sessions of deactivated principal %s: %v", target.ID, err)
		}
	}

	s.logger.Security().UserUpdated(scope.PrincipalID(), target.ID, logging.WithContext("status", string(st)))
	s.audit.Record(ctx, scope.Principal, audit.ActionUserStatusChanged, audit.Attrs{
		TenantID:     target.TenantID,
		ResourceType: audit.ResourcePrincipal,
		ResourceID:   target.ID,
		Diff: map[string]interface{}{
			"status": map[string]interface{}{"from": string(target.Status), "to": string(st)},
		},
	})

	updated := *target
	updated.Status = st

	return &updated, nil
}

// DeletePrincipal keeps the audit history readable, entries carry their own
// snapshot of the actor.
func (s *Service) DeletePrincipal(ctx context.Context, scope *types.Scope, id string) error {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.DeletePrincipal")
	defer span.End()

	if scope.PrincipalID() == id {
		verr := types.NewValidationError()
		verr.Add("id", "cannot delete yourself")
		return verr
	}

	target, err := s.target(ctx, scope, id)
	if err != nil {
		return err
	}

	if _, err := s.sessions.RevokeAll(ctx, target.ID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	if err := s.storage.DeletePrincipal(ctx, target.ID); err != nil {
		return s.mapError(err)
	}

	s.logger.Security().UserDeleted(scope.PrincipalID(), target.ID)
	s.audit.Record(ctx, scope.Principal, audit.ActionUserDeleted, audit.Attrs{
		TenantID:     target.TenantID,
		ResourceType: audit.ResourcePrincipal,
		ResourceID:   target.ID,
		Diff: map[string]interface{}{
			"email": target.Email,
			"role":  string(target.Role),
		},
	})

	return nil
}

// CreateInvitation defaults to the inviter's own tenant. Mail delivery failures
// are logged, the invitation itself stands.
func (s *Service) CreateInvitation(ctx context.Context, scope *types.Scope, email, role, tenantID string) (*invitation.Created, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.CreateInvitation")
	defer span.End()

	if tenantID == "" && scope != nil {
		tenantID = scope.TenantID
	}

	if err := s.guard.Check(ctx, scope, types.ActionManageUsers, tenantID); err != nil {
		return nil, err
	}

	created, err := s.invitations.Create(ctx, email, role, tenantID, scope.Principal, s.invitationURL)
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendInvitation(ctx, created.Invitation.Email, created.URL, created.Invitation.ExpiresAt); err != nil {
		s.logger.Errorf("failed to deliver invitation %s: %v", created.Invitation.ID, err)
	}

	return created, nil
}

func (s *Service) RedeemInvitation(ctx context.Context, token string, attrs types.RedeemAttrs) (*types.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.RedeemInvitation")
	defer span.End()

	return s.invitations.Redeem(ctx, token, attrs)
}

// ResetPassword returns the temporary password once, delivery is up to the caller.
func (s *Service) ResetPassword(ctx context.Context, scope *types.Scope, principalID string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.ResetPassword")
	defer span.End()

	target, err := s.target(ctx, scope, principalID)
	if err != nil {
		return "", err
	}

	_, temporary, err := s.credentials.ResetToTemporary(ctx, target)
	if err != nil {
		return "", err
	}

	s.logger.Security().PasswordReset(scope.PrincipalID(), target.ID)
	s.audit.Record(ctx, scope.Principal, audit.ActionPasswordReset, audit.Attrs{
		TenantID:     target.TenantID,
		ResourceType: audit.ResourcePrincipal,
		ResourceID:   target.ID,
	})

	return temporary, nil
}

func (s *Service) ChangePassword(ctx context.Context, scope *types.Scope, attrs types.PasswordChangeAttrs, currentToken string) (*types.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.ChangePassword")
	defer span.End()

	if scope == nil || scope.Principal == nil {
		return nil, types.ErrSessionNotFound
	}

	updated, err := s.credentials.ChangePassword(ctx, scope.Principal, attrs, currentToken)
	if err != nil {
		return nil, err
	}

	s.logger.Security().PasswordChanged(updated.ID)
	s.audit.Record(ctx, updated, audit.ActionPasswordChanged, audit.Attrs{
		ResourceType: audit.ResourcePrincipal,
		ResourceID:   updated.ID,
	})

	return updated, nil
}

// RequestMagicLink answers the same way whether or not the address is known.
func (s *Service) RequestMagicLink(ctx context.Context, email string) error {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.RequestMagicLink")
	defer span.End()

	p, err := s.storage.GetPrincipalByEmail(ctx, validation.NormalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Debugf("magic link requested for unknown address")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up principal: %w", err)
	}

	token, err := s.sessions.IssueMagicLink(ctx, p)
	if errors.Is(err, types.ErrPrincipalInactive) {
		s.logger.Debugf("magic link requested for inactive principal %s", p.ID)
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.mailer.SendMagicLink(ctx, p.Email, s.magicLinkURL(token)); err != nil {
		s.logger.Errorf("failed to deliver magic link to %s: %v", p.ID, err)
	}

	s.audit.Record(ctx, p, audit.ActionMagicLinkIssued, audit.Attrs{
		ResourceType: audit.ResourceSession,
		ResourceID:   p.ID,
	})

	return nil
}

func (s *Service) ConsumeMagicLink(ctx context.Context, token string, rememberMe bool) (*types.Scope, *session.Issued, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.ConsumeMagicLink")
	defer span.End()

	p, err := s.sessions.ConsumeMagicLink(ctx, token)
	if err != nil {
		if errors.Is(err, types.ErrInvalidCredentials) {
			s.count("login", "failure")
			s.audit.Record(ctx, nil, audit.ActionLoginFailed, audit.Attrs{
				ResourceType: audit.ResourceSession,
				Diff:         map[string]interface{}{"method": "magic_link"},
			})
		}
		return nil, nil, err
	}

	s.loggedIn(ctx, p, "magic_link")

	issued, err := s.sessions.Issue(ctx, p, rememberMe)
	if err != nil {
		return nil, nil, err
	}

	return types.NewScope(p), issued, nil
}

func (s *Service) Record(ctx context.Context, actor *types.Principal, action string, attrs audit.Attrs) {
	s.audit.Record(ctx, actor, action, attrs)
}

// QueryAuditLog needs view-audit-logs on the tenant being read. Non root callers
// always read their own tenant whatever the filter says.
func (s *Service) QueryAuditLog(ctx context.Context, scope *types.Scope, filter types.AuditFilter) ([]*types.AuditEntry, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.QueryAuditLog")
	defer span.End()

	tenantID := filter.TenantID
	if scope != nil && scope.Role() != types.RoleRootAdmin {
		tenantID = scope.TenantID
	}

	if err := s.guard.Check(ctx, scope, types.ActionViewAuditLogs, tenantID); err != nil {
		return nil, err
	}

	return s.audit.Query(ctx, scope, filter)
}

// target loads a principal the caller wants to administer and checks the caller
// may manage users in its tenant. Admin principals are managed by root-admin only.
func (s *Service) target(ctx context.Context, scope *types.Scope, id string) (*types.Principal, error) {
	p, err := s.storage.GetPrincipalByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err)
	}

	if err := s.guard.Check(ctx, scope, types.ActionManageUsers, p.TenantID); err != nil {
		return nil, err
	}

	if p.Role == types.RoleTenantAdmin || p.Role == types.RoleRootAdmin {
		if err := s.guard.RequireRoot(ctx, scope, opManageAdmin, p.TenantID); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (s *Service) loggedIn(ctx context.Context, p *types.Principal, method string) {
	if err := s.storage.TouchLastLogin(ctx, p.ID, s.now().UTC()); err != nil {
		s.logger.Warnf("failed to update last login of %s: %v", p.ID, err)
	}

	s.logger.Security().AuthnLoginSuccess(p.ID, logging.WithContext("method", method))
	s.count("login", "success")
	s.audit.Record(ctx, p, audit.ActionLoginSucceeded, audit.Attrs{
		ResourceType: audit.ResourcePrincipal,
		ResourceID:   p.ID,
		Diff:         map[string]interface{}{"method": method},
	})
}

func (s *Service) magicLinkURL(token string) string {
	return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/auth/magic-link?token=" + url.QueryEscape(token)
}

func (s *Service) mapError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return types.ErrPrincipalNotFound
	}
	return err
}

func (s *Service) count(event, outcome string) {
	if err := s.monitor.IncrementEventCounter(map[string]string{"event": event, "outcome": outcome}); err != nil {
		s.logger.Debugf("failed to record %s metric: %v", event, err)
	}
}

func NewService(
	storage StorageInterface,
	creds credentials.StoreInterface,
	sessions session.ManagerInterface,
	invitations invitation.ManagerInterface,
	g guard.GuardInterface,
	auditor audit.ServiceInterface,
	mailer MailerInterface,
	cfg Config,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	s := new(Service)

	s.storage = storage
	s.credentials = creds
	s.sessions = sessions
	s.invitations = invitations
	s.guard = g
	s.audit = auditor
	s.mailer = mailer

	if cfg.MinPasswordLength < validation.DefaultPasswordMinLength {
		cfg.MinPasswordLength = validation.DefaultPasswordMinLength
	}
	s.cfg = cfg
	s.invitationURL = invitation.NewURLBuilder(cfg.PublicBaseURL)
	s.now = time.Now

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
