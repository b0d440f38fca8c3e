// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"context"

	"github.com/canonical/inventory-identity/internal/types"
)

// RecorderInterface is what every other component depends on, it cannot fail.
type RecorderInterface interface {
	Record(ctx context.Context, actor *types.Principal, action string, attrs Attrs)
}

type ServiceInterface interface {
	RecorderInterface
	Query(ctx context.Context, scope *types.Scope, filter types.AuditFilter) ([]*types.AuditEntry, error)
}

type StorageInterface interface {
	AppendAuditEntry(ctx context.Context, e *types.AuditEntry) error
	ListAuditEntries(ctx context.Context, filter types.AuditFilter) ([]*types.AuditEntry, error)
}
