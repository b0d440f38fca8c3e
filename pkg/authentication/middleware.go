// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	httptypes "github.com/canonical/inventory-identity/internal/http/types"
	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/tracing"
)

const healthServicePrefix = "/grpc.health.v1.Health/"

type Middleware struct {
	resolver SessionResolverInterface
	cookies  *Cookies

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Authenticate rejects requests without a live session. A reissued token is sent
// back in the X-Session-Token header and, for browser sessions, in the cookies.
func (m *Middleware) Authenticate() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := m.tracer.Start(r.Context(), "authentication.Middleware.Authenticate")
			defer span.End()

			token, fromCookie, remembered := m.token(r)
			if token == "" {
				m.unauthorizedResponse(w)
				return
			}

			res, err := m.resolver.ResolveSession(ctx, token)
			if err != nil {
				code, body := httptypes.ErrorResponse(err)
				if code != http.StatusUnauthorized {
					// the session may still be valid, keep the cookies
					m.logger.Errorf("session resolution failed: %v", err)
					m.writeResponse(w, code, body)
					return
				}

				m.logger.Debugf("session resolution failed: %v", err)

				if fromCookie {
					m.cookies.Clear(w)
				}

				m.unauthorizedResponse(w)
				return
			}

			if res.RotatedToken != "" {
				token = res.RotatedToken
				w.Header().Set(TokenHeader, token)

				if fromCookie {
					m.cookies.Set(w, token, remembered)
				}
			}

			ctx = WithScope(ctx, res.Scope)
			ctx = WithSessionToken(ctx, token)
			ctx = WithSessionID(ctx, res.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GRPCInterceptor is a unary interceptor resolving the session from the
// authorization metadata, the health service stays public.
func (m *Middleware) GRPCInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if strings.HasPrefix(info.FullMethod, healthServicePrefix) {
		return handler(ctx, req)
	}

	ctx, span := m.tracer.Start(ctx, "authentication.Middleware.GRPCInterceptor")
	defer span.End()

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, httptypes.MessageLoginAgain)
	}

	token := ""
	if values := md.Get("authorization"); len(values) > 0 {
		token, _ = bearerToken(values[0])
	}

	if token == "" {
		return nil, status.Error(codes.Unauthenticated, httptypes.MessageLoginAgain)
	}

	res, err := m.resolver.ResolveSession(ctx, token)
	if err != nil {
		code, message := httptypes.GRPCCode(err)
		if code != codes.Unauthenticated {
			m.logger.Errorf("gRPC session resolution failed: %v", err)
		} else {
			m.logger.Debugf("gRPC session resolution failed: %v", err)
		}
		return nil, status.Error(code, message)
	}

	if res.RotatedToken != "" {
		token = res.RotatedToken
		if err := grpc.SetHeader(ctx, metadata.Pairs(strings.ToLower(TokenHeader), token)); err != nil {
			m.logger.Errorf("failed to send rotated session token: %v", err)
		}
	}

	ctx = WithScope(ctx, res.Scope)
	ctx = WithSessionToken(ctx, token)
	ctx = WithSessionID(ctx, res.SessionID)
	return handler(ctx, req)
}

// token prefers an explicit bearer token over cookies.
func (m *Middleware) token(r *http.Request) (token string, fromCookie, remembered bool) {
	if token, ok := m.getBearerToken(r.Header); ok {
		return token, false, false
	}

	token, remembered = m.cookies.Read(r)
	return token, token != "", remembered
}

func (m *Middleware) getBearerToken(headers http.Header) (string, bool) {
	return bearerToken(headers.Get("Authorization"))
}

// bearerToken only supports the "Bearer <token>" format (RFC 6750)
func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func (m *Middleware) unauthorizedResponse(w http.ResponseWriter) {
	m.writeResponse(w, http.StatusUnauthorized, httptypes.Response{Message: httptypes.MessageLoginAgain})
}

func (m *Middleware) writeResponse(w http.ResponseWriter, code int, body httptypes.Response) {
	if err := httptypes.WriteJSON(w, code, body); err != nil {
		m.logger.Errorf("failed to encode %d response: %v", code, err)
	}
}

func NewMiddleware(resolver SessionResolverInterface, cookies *Cookies, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		resolver: resolver,
		cookies:  cookies,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
