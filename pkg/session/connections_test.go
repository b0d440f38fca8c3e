// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/inventory-identity/internal/events"
	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/internal/types"
	"github.com/canonical/inventory-identity/pkg/audit"
	"github.com/canonical/inventory-identity/pkg/authentication"
)

func newTestRegistry() *Registry {
	logger := logging.NewNoopLogger()
	return NewRegistry(monitoring.NewNoopMonitor("test", logger), logger)
}

func closed(c *Connection) bool {
	select {
	case <-c.Done():
		return true
	default:
		return false
	}
}

func TestRegistry_Handle(t *testing.T) {
	r := newTestRegistry()

	a1 := r.Register("session-a", "alice")
	a2 := r.Register("session-a", "alice")
	a3 := r.Register("session-a2", "alice")
	b := r.Register("session-b", "bob")

	if r.Count() != 4 {
		t.Fatalf("expected 4 connections, got %d", r.Count())
	}

	r.Handle(events.DisconnectEvent{PrincipalID: "alice", SessionID: "session-a", Reason: ReasonRevoked})

	if !closed(a1) || !closed(a2) {
		t.Errorf("expected every connection of the session to close")
	}
	if closed(a3) || closed(b) {
		t.Errorf("expected other sessions to stay open")
	}
	if a1.Reason() != ReasonRevoked {
		t.Errorf("unexpected reason %q", a1.Reason())
	}

	r.Handle(events.DisconnectEvent{PrincipalID: "alice", Reason: ReasonRevoked})

	if !closed(a3) {
		t.Errorf("expected a principal wide event to close every alice connection")
	}
	if closed(b) {
		t.Errorf("expected bob to stay connected")
	}

	// closing twice is harmless
	r.Handle(events.DisconnectEvent{PrincipalID: "alice", SessionID: "session-a", Reason: ReasonLogout})
	if a1.Reason() != ReasonRevoked {
		t.Errorf("expected the first reason to stick, got %q", a1.Reason())
	}

	for _, c := range []*Connection{a1, a2, a3, b} {
		r.Unregister(c)
	}
	if r.Count() != 0 {
		t.Errorf("expected registry to be empty, got %d", r.Count())
	}
}

func TestRegistry_ListenDropsRevokedSessions(t *testing.T) {
	logger := logging.NewNoopLogger()
	bus := events.NewMemoryBus(logger)
	r := newTestRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop, err := r.Listen(ctx, bus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stop()

	f := newFixture(t, testConfig)
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test", logger)
	f.manager = NewManager(f.store, bus, audit.NewService(f.store, tracer, monitor, logger), testConfig, tracer, monitor, logger)

	p := f.principal(t, "op@acme.example", types.StatusActive)
	current := f.issue(t, p)
	stale := f.issue(t, p)

	kept := r.Register(f.sessionOf(t, current), p.ID)
	dropped := r.Register(f.sessionOf(t, stale), p.ID)

	if _, err := f.manager.RevokeAllExcept(context.Background(), p.ID, current); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-dropped.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected the revoked connection to be dropped")
	}

	if closed(kept) {
		t.Errorf("expected the current connection to stay open")
	}
}

func TestRegistry_ConnectionSurvivesReissueUntilRevoked(t *testing.T) {
	logger := logging.NewNoopLogger()
	bus := events.NewMemoryBus(logger)
	r := newTestRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop, err := r.Listen(ctx, bus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stop()

	f := newFixture(t, testConfig)
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test", logger)
	f.manager = NewManager(f.store, bus, audit.NewService(f.store, tracer, monitor, logger), testConfig, tracer, monitor, logger)

	p := f.principal(t, "op@acme.example", types.StatusActive)
	token := f.issue(t, p)

	opened, err := f.manager.Validate(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	conn := r.Register(opened.SessionID, p.ID)

	// the stream outlives the value it was opened with
	f.advance(2 * time.Hour)
	rotated, err := f.manager.Validate(context.Background(), token)
	if err != nil || rotated.RotatedToken == "" {
		t.Fatalf("expected a reissue, got %+v, %v", rotated, err)
	}
	if closed(conn) {
		t.Fatal("a reissue must not drop the connection")
	}

	if _, err := f.manager.RevokeAll(context.Background(), p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-conn.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected the connection opened before the reissue to be dropped")
	}
	if conn.Reason() != ReasonRevoked {
		t.Errorf("unexpected reason %q", conn.Reason())
	}
}

func TestAPI_Events(t *testing.T) {
	logger := logging.NewNoopLogger()
	r := newTestRegistry()

	principal := &types.Principal{ID: "p-1", Role: types.RoleViewer, TenantID: "t1", Status: types.StatusActive}

	fakeAuth := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := authentication.WithScope(req.Context(), types.NewScope(principal))
			ctx = authentication.WithSessionToken(ctx, "live-token")
			ctx = authentication.WithSessionID(ctx, "session-live")
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}

	api := NewAPI(r, fakeAuth, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger)

	mux := chi.NewMux()
	api.RegisterEndpoints(mux)

	srv := httptest.NewServer(mux)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/api/v0/auth/events")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer res.Body.Close()

	if res.Header.Get("Content-Type") != "text/event-stream" {
		t.Fatalf("unexpected content type %q", res.Header.Get("Content-Type"))
	}

	reader := bufio.NewReader(res.Body)
	if line, _ := reader.ReadString('\n'); !strings.HasPrefix(line, ": stream started") {
		t.Fatalf("unexpected first line %q", line)
	}

	deadline := time.Now().Add(2 * time.Second)
	for r.Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	r.Handle(events.DisconnectEvent{PrincipalID: "p-1", SessionID: "session-live", Reason: ReasonRevoked})

	var got strings.Builder
	for {
		line, err := reader.ReadString('\n')
		got.WriteString(line)
		if err != nil {
			break
		}
	}

	if !strings.Contains(got.String(), "event: disconnect") || !strings.Contains(got.String(), `"reason":"revoked"`) {
		t.Errorf("expected a disconnect event, got %q", got.String())
	}
}

func TestRegistry_CloseAll(t *testing.T) {
	r := newTestRegistry()

	a := r.Register("hash-a", "alice")
	b := r.Register("hash-b", "bob")

	r.CloseAll(ReasonShutdown)

	if !closed(a) || !closed(b) {
		t.Fatalf("expected every connection to close")
	}
	if a.Reason() != ReasonShutdown {
		t.Errorf("unexpected reason %q", a.Reason())
	}
}
