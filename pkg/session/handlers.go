// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/inventory-identity/internal/http/types"
	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/pkg/authentication"
)

const defaultHeartbeat = 25 * time.Second

// API streams session lifecycle events to browsers so a revoked session is
// closed on the client as soon as it is revoked on the server.
type API struct {
	registry     *Registry
	authenticate func(http.Handler) http.Handler
	heartbeat    time.Duration

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.With(a.authenticate).Get("/api/v0/auth/events", a.events)
}

func (a *API) events(w http.ResponseWriter, r *http.Request) {
	scope, ok := authentication.ScopeFromContext(r.Context())
	sessionID, hasSession := authentication.SessionIDFromContext(r.Context())
	if !ok || !hasSession {
		_ = httptypes.WriteJSON(w, http.StatusUnauthorized, httptypes.Response{Message: httptypes.MessageLoginAgain})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		_ = httptypes.WriteJSON(w, http.StatusInternalServerError, httptypes.Response{Message: "streaming unsupported"})
		return
	}

	// the server write timeout would otherwise cut the stream
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		a.logger.Debugf("failed to lift write deadline: %v", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	conn := a.registry.Register(sessionID, scope.PrincipalID())
	defer a.registry.Unregister(conn)

	_, _ = w.Write([]byte(": stream started\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(a.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case <-conn.Done():
			payload, err := json.Marshal(map[string]string{"reason": conn.Reason()})
			if err != nil {
				a.logger.Errorf("failed to encode disconnect event: %v", err)
				return
			}
			_, _ = fmt.Fprintf(w, "event: disconnect\ndata: %s\n\n", payload)
			flusher.Flush()
			return
		}
	}
}

func NewAPI(registry *Registry, authenticate func(http.Handler) http.Handler, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.registry = registry
	a.authenticate = authenticate
	a.heartbeat = defaultHeartbeat

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
