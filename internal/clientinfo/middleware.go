// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package clientinfo

import (
	"context"
	"net"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"

	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/internal/types"
)

const maxAgentLength = 512

// Middleware records the network origin of a request so audit entries can carry it.
type Middleware struct {
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewMiddleware(tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

// HTTPMiddleware expects chi's RealIP to have run first.
func (m *Middleware) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := m.tracer.Start(r.Context(), "clientinfo.Middleware.HTTPMiddleware")
		defer span.End()

		info := types.ClientInfo{
			Addr:  hostOnly(r.RemoteAddr),
			Agent: truncate(r.UserAgent()),
		}

		next.ServeHTTP(w, r.WithContext(types.ContextWithClientInfo(ctx, info)))
	})
}

func (m *Middleware) GRPCInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	ctx, span := m.tracer.Start(ctx, "clientinfo.Middleware.GRPCInterceptor")
	defer span.End()

	client := types.ClientInfo{}

	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		client.Addr = hostOnly(p.Addr.String())
	}

	// Metadata keys are lowercased
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get("x-forwarded-for"); len(values) > 0 && values[0] != "" {
			client.Addr = strings.TrimSpace(strings.Split(values[0], ",")[0])
		}
		if values := md.Get("user-agent"); len(values) > 0 {
			client.Agent = truncate(values[0])
		}
	}

	return handler(types.ContextWithClientInfo(ctx, client), req)
}

func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func truncate(agent string) string {
	if len(agent) > maxAgentLength {
		return agent[:maxAgentLength]
	}
	return agent
}
