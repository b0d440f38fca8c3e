// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"

	"github.com/canonical/inventory-identity/internal/types"
)

type AuthorizerInterface interface {
	Check(context.Context, *types.Scope, types.Action, string) bool
	CheckAssignRole(context.Context, *types.Scope, types.Role, string) bool
}
