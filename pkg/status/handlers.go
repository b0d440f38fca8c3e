// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/inventory-identity/internal/http/types"
	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/internal/version"
)

const readyTimeout = 2 * time.Second

type Status struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type API struct {
	dependencies map[string]DependencyInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Get("/api/v0/status", a.alive)
	mux.Get("/api/v0/ready", a.ready)
	mux.Get("/api/v0/version", a.version)
}

func (a *API) alive(w http.ResponseWriter, r *http.Request) {
	_ = httptypes.WriteJSON(w, http.StatusOK, httptypes.Response{Data: Status{Status: "ok", Version: version.Version}})
}

// ready pings every dependency and reports the ones that failed.
func (a *API) ready(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "status.API.ready")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()

	failed := make(map[string][]string)
	for name, dep := range a.dependencies {
		tags := map[string]string{"component": name}

		if err := dep.Ping(ctx); err != nil {
			a.logger.Warnf("dependency %s is not ready: %v", name, err)
			failed[name] = []string{err.Error()}
			_ = a.monitor.SetDependencyAvailability(tags, 0)
			continue
		}

		_ = a.monitor.SetDependencyAvailability(tags, 1)
	}

	if len(failed) > 0 {
		_ = httptypes.WriteJSON(w, http.StatusServiceUnavailable, httptypes.Response{
			Data:    Status{Status: "not_ready", Version: version.Version},
			Message: "dependencies unavailable",
			Fields:  failed,
		})
		return
	}

	_ = httptypes.WriteJSON(w, http.StatusOK, httptypes.Response{Data: Status{Status: "ready", Version: version.Version}})
}

func (a *API) version(w http.ResponseWriter, r *http.Request) {
	_ = httptypes.WriteJSON(w, http.StatusOK, httptypes.Response{Data: map[string]string{"version": version.Version, "revision": version.Revision()}})
}

// NewAPI builds the health endpoints, dependencies may be empty when everything runs in process.
func NewAPI(dependencies map[string]DependencyInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.dependencies = dependencies
	if a.dependencies == nil {
		a.dependencies = make(map[string]DependencyInterface)
	}

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
