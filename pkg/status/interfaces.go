// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import "context"

// DependencyInterface is anything the service cannot serve requests without.
type DependencyInterface interface {
	Ping(context.Context) error
}

// DependencyFunc adapts a plain check function.
type DependencyFunc func(context.Context) error

func (f DependencyFunc) Ping(ctx context.Context) error {
	return f(ctx)
}
