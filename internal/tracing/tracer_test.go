// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
)

func TestNewTracerDisabled(t *testing.T) {
	tracer := NewTracer(NewNoopConfig())

	ctx, span := tracer.Start(context.Background(), "tracing.Test")
	defer span.End()

	if ctx == nil {
		t.Fatal("expected a context")
	}
	if span.SpanContext().IsSampled() {
		t.Fatal("noop tracer must not sample spans")
	}
}

func TestOpenTelemetryMiddleware(t *testing.T) {
	mdw := NewMiddleware(monitoring.NewNoopMonitor("test", logging.NewNoopLogger()), logging.NewNoopLogger())

	called := false
	h := mdw.OpenTelemetry(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if !called {
		t.Fatal("expected wrapped handler to be called")
	}
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}

	if mdw.GRPCServerOption() == nil {
		t.Fatal("expected a grpc server option")
	}
}

func TestConfigSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{ratio: 0, want: "ParentBased{root:AlwaysOffSampler"},
		{ratio: 1, want: "ParentBased{root:AlwaysOnSampler"},
		{ratio: 5, want: "ParentBased{root:AlwaysOnSampler"},
		{ratio: 0.25, want: "ParentBased{root:TraceIDRatioBased{0.25}"},
	}

	for _, tt := range tests {
		c := NewConfig(true, "", "", tt.ratio, logging.NewNoopLogger())

		if got := c.sampler().Description(); !strings.HasPrefix(got, tt.want) {
			t.Errorf("ratio %v: expected sampler %q, got %q", tt.ratio, tt.want, got)
		}
	}
}
