// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"context"
	"time"

	"github.com/canonical/inventory-identity/internal/events"
	"github.com/canonical/inventory-identity/internal/types"
)

type ManagerInterface interface {
	Issue(ctx context.Context, principal *types.Principal, rememberMe bool) (*Issued, error)
	Validate(ctx context.Context, token string) (*types.SessionResolution, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllExcept(ctx context.Context, principalID, currentToken string) (int, error)
	RevokeAll(ctx context.Context, principalID string) (int, error)
	PurgeExpired(ctx context.Context) (int64, error)
	IssueMagicLink(ctx context.Context, principal *types.Principal) (string, error)
	ConsumeMagicLink(ctx context.Context, token string) (*types.Principal, error)
}

type StorageInterface interface {
	GetPrincipalByID(ctx context.Context, id string) (*types.Principal, error)

	CreateSessionToken(ctx context.Context, t *types.SessionToken) error
	GetSessionToken(ctx context.Context, hash string, tokenContext types.TokenContext) (*types.SessionToken, error)
	ReplaceSessionToken(ctx context.Context, oldHash string, replacedAt time.Time, t *types.SessionToken) error
	DeleteSession(ctx context.Context, sessionID string) error
	ConsumeSessionToken(ctx context.Context, hash string, tokenContext types.TokenContext) (*types.SessionToken, error)
	DeleteSessionTokensByPrincipal(ctx context.Context, principalID string, contexts []types.TokenContext, exceptSessionID string) ([]string, error)
	DeleteSessionTokensAuthenticatedBefore(ctx context.Context, tokenContext types.TokenContext, before time.Time) (int64, error)
	DeleteReplacedSessionTokens(ctx context.Context, before time.Time) (int64, error)
}

type PublisherInterface interface {
	Publish(ctx context.Context, e events.DisconnectEvent) error
}

type SubscriberInterface interface {
	Subscribe(ctx context.Context, h events.Handler) (func(), error)
}
