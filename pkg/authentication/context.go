// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"

	"github.com/canonical/inventory-identity/internal/types"
)

type scopeKey struct{}
type tokenKey struct{}
type sessionIDKey struct{}

// WithScope attaches the scope resolved for the current request.
func WithScope(ctx context.Context, scope *types.Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFromContext returns nil and false on unauthenticated requests.
func ScopeFromContext(ctx context.Context) (*types.Scope, bool) {
	scope, ok := ctx.Value(scopeKey{}).(*types.Scope)
	return scope, ok && scope != nil
}

// WithSessionToken stores the plaintext token the request is authenticated with,
// after any rotation.
func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func SessionTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

// WithSessionID stores the identifier shared by every token of the session,
// it does not change when the token is reissued.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey{}).(string)
	return id, ok && id != ""
}
