// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package accounts

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/inventory-identity/internal/http/types"
	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/internal/types"
	"github.com/canonical/inventory-identity/pkg/authentication"
	"github.com/canonical/inventory-identity/pkg/session"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

type magicLinkRequest struct {
	Email string `json:"email"`
}

type consumeRequest struct {
	Token      string `json:"token"`
	RememberMe bool   `json:"remember_me"`
}

type invitationRequest struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id,omitempty"`
}

type redeemRequest struct {
	Token string `json:"token"`
	types.RedeemAttrs
}

type roleRequest struct {
	Role string `json:"role"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type sessionResponse struct {
	Principal *types.Principal `json:"principal"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
}

type invitationResponse struct {
	Invitation *types.Invitation `json:"invitation"`
	URL        string            `json:"url"`
}

type API struct {
	service      ServiceInterface
	cookies      *authentication.Cookies
	authenticate func(http.Handler) http.Handler
	throttle     func(http.Handler) http.Handler

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Group(func(r chi.Router) {
		r.Use(a.throttle)
		r.Post("/api/v0/auth/login", a.login)
		r.Post("/api/v0/auth/magic-link", a.requestMagicLink)
		r.Post("/api/v0/auth/magic-link/consume", a.consumeMagicLink)
		r.Post("/api/v0/invitations/redeem", a.redeemInvitation)
	})

	mux.Group(func(r chi.Router) {
		r.Use(a.authenticate)
		r.Post("/api/v0/auth/logout", a.logout)
		r.Get("/api/v0/auth/me", a.me)
		r.Post("/api/v0/auth/password", a.changePassword)

		r.Post("/api/v0/invitations", a.createInvitation)

		r.Post("/api/v0/users", a.createUser)
		r.Get("/api/v0/users/{id}", a.getUser)
		r.Put("/api/v0/users/{id}/role", a.changeRole)
		r.Put("/api/v0/users/{id}/status", a.setStatus)
		r.Delete("/api/v0/users/{id}", a.deleteUser)
		r.Post("/api/v0/users/{id}/password-reset", a.resetPassword)

		r.Get("/api/v0/audit", a.queryAudit)
	})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "accounts.API.login")
	defer span.End()

	var req loginRequest
	if !a.decode(w, r, &req) {
		return
	}

	scope, err := a.service.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		a.writeError(w, err)
		return
	}

	issued, err := a.service.IssueSession(ctx, scope.Principal, req.RememberMe)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeSession(w, scope.Principal, issued)
}

func (a *API) requestMagicLink(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "accounts.API.requestMagicLink")
	defer span.End()

	var req magicLinkRequest
	if !a.decode(w, r, &req) {
		return
	}

	if err := a.service.RequestMagicLink(ctx, req.Email); err != nil {
		a.writeError(w, err)
		return
	}

	_ = httptypes.WriteJSON(w, http.StatusAccepted, httptypes.Response{Message: "if the address is known a link is on its way"})
}

func (a *API) consumeMagicLink(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "accounts.API.consumeMagicLink")
	defer span.End()

	var req consumeRequest
	if !a.decode(w, r, &req) {
		return
	}

	scope, issued, err := a.service.ConsumeMagicLink(ctx, req.Token, req.RememberMe)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeSession(w, scope.Principal, issued)
}

func (a *API) redeemInvitation(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "accounts.API.redeemInvitation")
	defer span.End()

	var req redeemRequest
	if !a.decode(w, r, &req) {
		return
	}

	p, err := a.service.RedeemInvitation(ctx, req.Token, req.RedeemAttrs)
	if err != nil {
		status, res := httptypes.InviteeErrorResponse(err)
		if status == http.StatusInternalServerError {
			a.logger.Errorf("invitation redeem failed: %v", err)
		}
		_ = httptypes.WriteJSON(w, status, res)
		return
	}

	_ = httptypes.WriteJSON(w, http.StatusCreated, httptypes.Response{Data: p, Message: "account created"})
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "accounts.API.logout")
	defer span.End()

	token, _ := authentication.SessionTokenFromContext(ctx)

	if err := a.service.Logout(ctx, token); err != nil {
		a.writeError(w, err)
		return
	}

	a.cookies.Clear(w)

	_ = httptypes.WriteJSON(w, http.StatusOK, httptypes.Response{Message: "logged out"})
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	scope, _ := authentication.ScopeFromContext(r.Context())

	_ = httptypes.WriteJSON(w, http.StatusOK, httptypes.Response{Data: scope.Principal})
}

func (a *API) changePassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "accounts.API.changePassword")
	defer span.End()

	var attrs types.PasswordChangeAttrs
	if !a.decode(w, r, &attrs) {
		return
	}

	scope, _ := authentication.ScopeFromContext(ctx)
	token, _ := authentication.SessionTokenFromContext(ctx)

	p, err := a.service.ChangePassword(ctx, scope, attrs, token)
	if err != nil {
		a.writeError(w, err)
		return
	}

	_ = httptypes.WriteJSON(w, http.StatusOK, httptypes.Response{Data: p, Message: "password changed"})
}

func (a *API) createInvitation(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "accounts.API.createInvitation")
	defer span.End()

	var req invitationRequest
	if !a.decode(w, r, &req) {
		return
	}

	scope, _ := authentication.ScopeFromContext(ctx)

	created, err := a.service.CreateInvitation(ctx, scope, req.Email, req.Role, req.TenantID)
	if err != nil {
		a.writeError(w, err)
		return
	}

	_ = httptypes.WriteJSON(w, http.StatusCreated, httptypes.Response{
		Data:    invitationResponse{Invitation: created.Invitation, URL: created.URL},
		Message: "invitation created",
	})
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "accounts.API.createUser")
	defer span.End()

	var attrs types.PrincipalAttrs
	if !a.decode(w, r, &attrs) {
		return
	}

	scope, _ := authentication.ScopeFromContext(ctx)

	p, err := a.service.Register(ctx, scope, attrs)
	if err != nil {
		a.writeError(w, err)
		return
	}

	_ = httptypes.WriteJSON(w, http.StatusCreated, httptypes.Response{Data: p, Message: "user created"})
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "accounts.API.getUser")
	defer span.End()

	scope, _ := authentication.ScopeFromContext(ctx)

	p, err := a.service.GetPrincipal(ctx, scope, chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	_ = httptypes.WriteJSON(w, http.StatusOK, httptypes.Response{Data: p})
}

func (a *API) changeRole(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "accounts.API.changeRole")
	defer span.End()

	var req roleRequest
	if !a.decode(w, r, &req) {
		return
	}

	scope, _ := authentication.ScopeFromContext(ctx)

	p, err := a.service.ChangeRole(ctx, scope, chi.URLParam(r, "id"), req.Role)
	if err != nil {
		a.writeError(w, err)
		return
	}

	_ = httptypes.WriteJSON(w, http.StatusOK, httptypes.Response{Data: p})
}

func (a *API) setStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "accounts.API.setStatus")
	defer span.End()

	var req statusRequest
	if !a.decode(w, r, &req) {
		return
	}

	scope, _ := authentication.ScopeFromContext(ctx)

	p, err := a.service.SetStatus(ctx, scope, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		a.writeError(w, err)
		return
	}

	_ = httptypes.WriteJSON(w, http.StatusOK, httptypes.Response{Data: p})
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "accounts.API.deleteUser")
	defer span.End()

	scope, _ := authentication.ScopeFromContext(ctx)

	if err := a.service.DeletePrincipal(ctx, scope, chi.URLParam(r, "id")); err != nil {
		a.writeError(w, err)
		return
	}

	_ = httptypes.WriteJSON(w, http.StatusOK, httptypes.Response{Message: "user deleted"})
}

func (a *API) resetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "accounts.API.resetPassword")
	defer span.End()

	scope, _ := authentication.ScopeFromContext(ctx)

	temporary, err := a.service.ResetPassword(ctx, scope, chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	_ = httptypes.WriteJSON(w, http.StatusOK, httptypes.Response{
		Data:    map[string]string{"temporary_password": temporary},
		Message: "password reset",
	})
}

func (a *API) queryAudit(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "accounts.API.queryAudit")
	defer span.End()

	filter, page, err := parseAuditFilter(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	scope, _ := authentication.ScopeFromContext(ctx)

	entries, err := a.service.QueryAuditLog(ctx, scope, *filter)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []*types.AuditEntry{}
	}

	_ = httptypes.WriteJSON(w, http.StatusOK, httptypes.Response{Data: entries, Meta: page})
}

// parseAuditFilter reads filters and page/size, time bounds are RFC 3339.
func parseAuditFilter(r *http.Request) (*types.AuditFilter, *httptypes.Pagination, error) {
	q := r.URL.Query()
	verr := types.NewValidationError()

	filter := &types.AuditFilter{
		TenantID:     q.Get("tenant_id"),
		Action:       q.Get("action"),
		ResourceType: q.Get("resource_type"),
		ActorID:      q.Get("actor_id"),
	}

	for name, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			verr.Add(name, "must be an RFC 3339 timestamp")
			continue
		}
		*dst = &t
	}

	page := &httptypes.Pagination{Page: 1, Size: defaultPageSize}

	if v := q.Get("page"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			verr.Add("page", "must be a positive integer")
		} else {
			page.Page = n
		}
	}

	if v := q.Get("size"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 || n > maxPageSize {
			verr.Add("size", "must be between 1 and 500")
		} else {
			page.Size = n
		}
	}

	if err := verr.OrNil(); err != nil {
		return nil, nil, err
	}

	filter.Limit = uint64(page.Size)
	filter.Offset = uint64((page.Page - 1) * page.Size)

	return filter, page, nil
}

func (a *API) writeSession(w http.ResponseWriter, p *types.Principal, issued *session.Issued) {
	a.cookies.Set(w, issued.Token, issued.RememberMe)
	w.Header().Set(authentication.TokenHeader, issued.Token)

	_ = httptypes.WriteJSON(w, http.StatusOK, httptypes.Response{
		Data:    sessionResponse{Principal: p, Token: issued.Token, ExpiresAt: issued.ExpiresAt},
		Message: "logged in",
	})
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		_ = httptypes.WriteJSON(w, http.StatusBadRequest, httptypes.Response{Message: "invalid request body"})
		return false
	}
	return true
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status, res := httptypes.ErrorResponse(err)
	if status == http.StatusInternalServerError {
		a.logger.Errorf("accounts request failed: %v", err)
	}
	_ = httptypes.WriteJSON(w, status, res)
}

func passthrough(next http.Handler) http.Handler {
	return next
}

// NewAPI wires the account routes. throttle guards the unauthenticated entry
// points and may be nil.
func NewAPI(
	service ServiceInterface,
	cookies *authentication.Cookies,
	authenticate func(http.Handler) http.Handler,
	throttle func(http.Handler) http.Handler,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *API {
	a := new(API)

	a.service = service
	a.cookies = cookies
	a.authenticate = authenticate
	a.throttle = throttle
	if a.throttle == nil {
		a.throttle = passthrough
	}

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
