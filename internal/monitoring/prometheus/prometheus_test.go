// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/canonical/inventory-identity/internal/logging"
)

func TestMonitorIncrementEventCounter(t *testing.T) {
	m := NewMonitor("test-events", logging.NewNoopLogger())

	if err := m.IncrementEventCounter(map[string]string{"event": "login", "outcome": "success"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.IncrementEventCounter(map[string]string{"event": "login", "outcome": "success"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v := testutil.ToFloat64(m.events.WithLabelValues("login", "success")); v != 2 {
		t.Fatalf("expected counter at 2, got %v", v)
	}

	if err := m.IncrementEventCounter(map[string]string{"outcome": "success"}); err == nil {
		t.Fatal("expected error when event tag is missing")
	}
}

func TestMonitorSetters(t *testing.T) {
	m := NewMonitor("test-setters", logging.NewNoopLogger())

	if err := m.SetResponseTimeMetric(map[string]string{"route": "/api/v0/status", "status": "OK"}, 0.1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.SetDependencyAvailability(map[string]string{"component": "database"}, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := m.SetLiveConnections(map[string]string{"transport": "sse"}, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := testutil.ToFloat64(m.liveConnections.WithLabelValues("sse")); v != 3 {
		t.Fatalf("expected 3 live connections, got %v", v)
	}

	if m.GetService() != "test-setters" {
		t.Fatalf("unexpected service %s", m.GetService())
	}
}
