// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/inventory-identity/internal/http/types"
	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/internal/types"
	"github.com/canonical/inventory-identity/pkg/authentication"
)

type API struct {
	service      ServiceInterface
	authenticate func(http.Handler) http.Handler

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

type statusRequest struct {
	Active *bool `json:"active"`
}

func NewAPI(
	service ServiceInterface,
	authenticate func(http.Handler) http.Handler,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *API {
	return &API{
		service:      service,
		authenticate: authenticate,
		tracer:       tracer,
		monitor:      monitor,
		logger:       logger,
	}
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Route("/api/v0/tenants", func(r chi.Router) {
		r.Use(a.authenticate)
		r.Get("/", a.list)
		r.Post("/", a.create)
		r.Get("/{tenantID}", a.get)
		r.Put("/{tenantID}/status", a.setStatus)
	})
}

func (a *API) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.list")
	defer span.End()

	scope, _ := authentication.ScopeFromContext(ctx)

	tenants, err := a.service.ListTenants(ctx, scope)
	if err != nil {
		a.writeError(w, err)
		return
	}

	_ = httptypes.WriteJSON(w, http.StatusOK, httptypes.Response{Data: tenants})
}

func (a *API) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.create")
	defer span.End()

	var attrs types.TenantAttrs
	if err := json.NewDecoder(r.Body).Decode(&attrs); err != nil {
		_ = httptypes.WriteJSON(w, http.StatusBadRequest, httptypes.Response{Message: "invalid request body"})
		return
	}

	scope, _ := authentication.ScopeFromContext(ctx)

	t, err := a.service.CreateTenant(ctx, scope, attrs)
	if err != nil {
		a.writeError(w, err)
		return
	}

	_ = httptypes.WriteJSON(w, http.StatusCreated, httptypes.Response{Data: t, Message: "tenant created"})
}

func (a *API) get(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.get")
	defer span.End()

	scope, _ := authentication.ScopeFromContext(ctx)

	t, err := a.service.GetTenant(ctx, scope, chi.URLParam(r, "tenantID"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	_ = httptypes.WriteJSON(w, http.StatusOK, httptypes.Response{Data: t})
}

func (a *API) setStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.setStatus")
	defer span.End()

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
		_ = httptypes.WriteJSON(w, http.StatusBadRequest, httptypes.Response{Message: "active is required"})
		return
	}

	scope, _ := authentication.ScopeFromContext(ctx)

	t, err := a.service.SetTenantActive(ctx, scope, chi.URLParam(r, "tenantID"), *req.Active)
	if err != nil {
		a.writeError(w, err)
		return
	}

	_ = httptypes.WriteJSON(w, http.StatusOK, httptypes.Response{Data: t})
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status, res := httptypes.ErrorResponse(err)
	if status == http.StatusInternalServerError {
		a.logger.Errorf("tenant request failed: %v", err)
	}
	_ = httptypes.WriteJSON(w, status, res)
}
