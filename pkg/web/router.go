// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/canonical/inventory-identity/internal/clientinfo"
	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/pkg/authentication"
	"github.com/canonical/inventory-identity/pkg/metrics"
)

// APIInterface is implemented by every package that exposes routes.
type APIInterface interface {
	RegisterEndpoints(mux *chi.Mux)
}

func NewRouter(
	allowedOrigins []string,
	clientInfo *clientinfo.Middleware,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
	apis ...APIInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		middleware.RealIP,
		clientInfo.HTTPMiddleware,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS(allowedOrigins),
	)

	router.Use(middlewares...)

	metrics.NewAPI(logger).RegisterEndpoints(router)

	for _, api := range apis {
		api.RegisterEndpoints(router)
	}

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}

func middlewareCORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(
		cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", authentication.TokenHeader},
			ExposedHeaders:   []string{authentication.TokenHeader},
			AllowCredentials: true,
			MaxAge:           300,
		},
	)
}
