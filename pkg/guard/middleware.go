// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package guard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/inventory-identity/internal/http/types"
	"github.com/canonical/inventory-identity/internal/types"
	"github.com/canonical/inventory-identity/pkg/authentication"
)

// TenantResolver extracts the tenant a request targets.
type TenantResolver func(r *http.Request, scope *types.Scope) string

// OwnTenant targets the caller's own tenant.
func OwnTenant(_ *http.Request, scope *types.Scope) string {
	return scope.TenantID
}

// URLParamTenant targets the tenant named by a chi route parameter.
func URLParamTenant(name string) TenantResolver {
	return func(r *http.Request, _ *types.Scope) string {
		return chi.URLParam(r, name)
	}
}

// Require must run after authentication.Middleware.Authenticate.
func Require(g GuardInterface, action types.Action, tenant TenantResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, _ := authentication.ScopeFromContext(r.Context())

			resourceTenant := ""
			if scope != nil {
				resourceTenant = tenant(r, scope)
			}

			if err := g.Check(r.Context(), scope, action, resourceTenant); err != nil {
				status, res := httptypes.ErrorResponse(err)
				_ = httptypes.WriteJSON(w, status, res)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
