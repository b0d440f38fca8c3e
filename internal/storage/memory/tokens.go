// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package memory

import (
	"context"
	"sort"
	"time"

	"github.com/canonical/inventory-identity/internal/storage"
	"github.com/canonical/inventory-identity/internal/types"
)

func (s *Store) CreateSessionToken(_ context.Context, t *types.SessionToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.sessions[t.Hash]; ok {
		return storage.ErrDuplicateKey
	}
	if _, ok := s.data.principals[t.PrincipalID]; !ok {
		return storage.ErrForeignKeyViolation
	}
	s.data.sessions[t.Hash] = *t
	return nil
}

func (s *Store) GetSessionToken(_ context.Context, hash string, tokenContext types.TokenContext) (*types.SessionToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.data.sessions[hash]
	if !ok || t.Context != tokenContext {
		return nil, storage.ErrNotFound
	}
	return &t, nil
}

func (s *Store) ReplaceSessionToken(_ context.Context, oldHash string, replacedAt time.Time, t *types.SessionToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.data.sessions[oldHash]
	if !ok || old.ReplacedAt != nil {
		return storage.ErrNotFound
	}
	if _, ok := s.data.sessions[t.Hash]; ok {
		return storage.ErrDuplicateKey
	}

	at := replacedAt
	old.ReplacedAt = &at
	s.data.sessions[oldHash] = old
	s.data.sessions[t.Hash] = *t
	return nil
}

func (s *Store) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for h, t := range s.data.sessions {
		if t.SessionID == sessionID {
			delete(s.data.sessions, h)
		}
	}
	return nil
}

func (s *Store) ConsumeSessionToken(_ context.Context, hash string, tokenContext types.TokenContext) (*types.SessionToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.data.sessions[hash]
	if !ok || t.Context != tokenContext {
		return nil, storage.ErrNotFound
	}
	delete(s.data.sessions, hash)
	return &t, nil
}

func (s *Store) DeleteSessionTokensByPrincipal(_ context.Context, principalID string, contexts []types.TokenContext, exceptSessionID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[types.TokenContext]bool, len(contexts))
	for _, c := range contexts {
		wanted[c] = true
	}

	seen := make(map[string]bool)
	var ids []string
	for h, t := range s.data.sessions {
		if t.PrincipalID != principalID || !wanted[t.Context] || (exceptSessionID != "" && t.SessionID == exceptSessionID) {
			continue
		}
		delete(s.data.sessions, h)
		if !seen[t.SessionID] {
			seen[t.SessionID] = true
			ids = append(ids, t.SessionID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) DeleteSessionTokensAuthenticatedBefore(_ context.Context, tokenContext types.TokenContext, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for h, t := range s.data.sessions {
		if t.Context == tokenContext && t.AuthenticatedAt.Before(before) {
			delete(s.data.sessions, h)
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteReplacedSessionTokens(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for h, t := range s.data.sessions {
		if t.ReplacedAt != nil && t.ReplacedAt.Before(before) {
			delete(s.data.sessions, h)
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateInvitation(_ context.Context, i *types.Invitation) (*types.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.data.invitations {
		if existing.TokenHash == i.TokenHash {
			return nil, storage.ErrDuplicateKey
		}
	}
	if _, ok := s.data.tenants[i.TenantID]; !ok {
		return nil, storage.ErrForeignKeyViolation
	}

	created := *i
	created.ID = newID()
	created.Status = types.InvitationPending
	created.AcceptedAt = nil
	s.data.invitations[created.ID] = created

	out := created
	return &out, nil
}

func (s *Store) GetInvitationByTokenHash(_ context.Context, hash string, _ bool) (*types.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, i := range s.data.invitations {
		if i.TokenHash == hash {
			i := i
			return &i, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) transition(id string, fn func(*types.Invitation)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.data.invitations[id]
	if !ok || i.Status != types.InvitationPending {
		return false
	}
	fn(&i)
	s.data.invitations[id] = i
	return true
}

func (s *Store) MarkInvitationExpired(_ context.Context, id string) (bool, error) {
	return s.transition(id, func(i *types.Invitation) { i.Status = types.InvitationExpired }), nil
}

func (s *Store) MarkInvitationAccepted(_ context.Context, id string, at time.Time) (bool, error) {
	return s.transition(id, func(i *types.Invitation) {
		t := at
		i.Status = types.InvitationAccepted
		i.AcceptedAt = &t
	}), nil
}

func (s *Store) ExpirePendingInvitations(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, i := range s.data.invitations {
		if i.Status == types.InvitationPending && i.ExpiredAt(now) {
			i.Status = types.InvitationExpired
			s.data.invitations[id] = i
			n++
		}
	}
	return n, nil
}
