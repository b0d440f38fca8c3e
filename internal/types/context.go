// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"context"
)

type clientInfoKey struct{}

func ContextWithClientInfo(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, info)
}

// ClientInfoFromContext returns an empty ClientInfo when none was attached.
func ClientInfoFromContext(ctx context.Context) ClientInfo {
	if info, ok := ctx.Value(clientInfoKey{}).(ClientInfo); ok {
		return info
	}
	return ClientInfo{}
}
