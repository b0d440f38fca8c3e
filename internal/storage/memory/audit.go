// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package memory

import (
	"context"

	"github.com/canonical/inventory-identity/internal/types"
)

func (s *Store) AppendAuditEntry(_ context.Context, e *types.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	e.ID = s.nextID

	stored := *e
	stored.Diff = copyDiff(e.Diff)
	s.data.audit = append(s.data.audit, stored)
	return nil
}

// ListAuditEntries returns newest first, matching the postgres ordering.
func (s *Store) ListAuditEntries(_ context.Context, filter types.AuditFilter) ([]*types.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*types.AuditEntry
	for i := len(s.data.audit) - 1; i >= 0; i-- {
		e := s.data.audit[i]
		if !matches(e, filter) {
			continue
		}
		e.Diff = copyDiff(e.Diff)
		out = append(out, &e)
	}

	if filter.Offset >= uint64(len(out)) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && uint64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matches(e types.AuditEntry, f types.AuditFilter) bool {
	switch {
	case f.TenantID != "" && e.TenantID != f.TenantID:
		return false
	case f.Action != "" && e.Action != f.Action:
		return false
	case f.ResourceType != "" && e.ResourceType != f.ResourceType:
		return false
	case f.ActorID != "" && e.ActorID != f.ActorID:
		return false
	case f.From != nil && e.OccurredAt.Before(*f.From):
		return false
	case f.To != nil && !e.OccurredAt.Before(*f.To):
		return false
	}
	return true
}

func copyDiff(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
