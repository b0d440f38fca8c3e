// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package memory is a process local implementation of the storage interfaces.
// It mirrors the relational constraints (unique email, unique slug, conditional
// invitation transitions) so services behave the same against it as against postgres.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/canonical/inventory-identity/internal/storage"
	"github.com/canonical/inventory-identity/internal/types"
)

var _ storage.StorageInterface = (*Store)(nil)

type txKey struct{}

type state struct {
	tenants     map[string]types.Tenant
	principals  map[string]types.Principal
	sessions    map[string]types.SessionToken
	invitations map[string]types.Invitation
	audit       []types.AuditEntry
}

func (s *state) clone() *state {
	c := &state{
		tenants:     make(map[string]types.Tenant, len(s.tenants)),
		principals:  make(map[string]types.Principal, len(s.principals)),
		sessions:    make(map[string]types.SessionToken, len(s.sessions)),
		invitations: make(map[string]types.Invitation, len(s.invitations)),
		audit:       s.audit,
	}
	for k, v := range s.tenants {
		c.tenants[k] = v
	}
	for k, v := range s.principals {
		c.principals[k] = v
	}
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	for k, v := range s.invitations {
		c.invitations[k] = v
	}
	return c
}

type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	data   *state
	nextID int64

	now func() time.Time
}

func NewStore() *Store {
	s := new(Store)
	s.data = &state{
		tenants:     make(map[string]types.Tenant),
		principals:  make(map[string]types.Principal),
		sessions:    make(map[string]types.SessionToken),
		invitations: make(map[string]types.Invitation),
	}
	s.now = time.Now
	return s
}

// WithTx serializes transactions and restores the previous state when fn fails.
// The audit trail survives a rollback, it is written outside the business transaction.
func (s *Store) WithTx(ctx context.Context, fn func(context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		snapshot.audit = s.data.audit
		s.data = snapshot
		s.mu.Unlock()
		return err
	}

	return nil
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (s *Store) CreateTenant(_ context.Context, t *types.Tenant) (*types.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.data.tenants {
		if existing.Slug == t.Slug {
			return nil, storage.ErrDuplicateKey
		}
	}

	created := *t
	created.ID = newID()
	created.CreatedAt = s.now()
	created.Settings = copySettings(t.Settings)
	s.data.tenants[created.ID] = created

	out := created
	return &out, nil
}

func (s *Store) GetTenantByID(_ context.Context, id string) (*types.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.data.tenants[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	t.Settings = copySettings(t.Settings)
	return &t, nil
}

func (s *Store) ListTenants(context.Context) ([]*types.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*types.Tenant, 0, len(s.data.tenants))
	for _, t := range s.data.tenants {
		t := t
		t.Settings = copySettings(t.Settings)
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) SetTenantActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.data.tenants[id]
	if !ok {
		return storage.ErrNotFound
	}
	t.Active = active
	s.data.tenants[id] = t
	return nil
}

func (s *Store) CreatePrincipal(_ context.Context, p *types.Principal) (*types.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.data.principals {
		if strings.EqualFold(existing.Email, p.Email) {
			return nil, storage.ErrDuplicateKey
		}
	}
	if p.TenantID != "" {
		if _, ok := s.data.tenants[p.TenantID]; !ok {
			return nil, storage.ErrForeignKeyViolation
		}
	}

	created := *p
	created.ID = newID()
	if created.Status == "" {
		created.Status = types.StatusActive
	}
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt
	s.data.principals[created.ID] = created

	out := created
	return &out, nil
}

func (s *Store) GetPrincipalByID(_ context.Context, id string) (*types.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data.principals[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

func (s *Store) GetPrincipalByEmail(_ context.Context, email string) (*types.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.data.principals {
		if strings.EqualFold(p.Email, email) {
			p := p
			return &p, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.GetPrincipalByEmail(ctx, email)
	if err == storage.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) mutatePrincipal(id string, fn func(*types.Principal)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data.principals[id]
	if !ok {
		return storage.ErrNotFound
	}
	fn(&p)
	p.UpdatedAt = s.now()
	s.data.principals[id] = p
	return nil
}

func (s *Store) UpdatePrincipalRole(_ context.Context, id string, role types.Role) error {
	return s.mutatePrincipal(id, func(p *types.Principal) { p.Role = role })
}

func (s *Store) UpdatePrincipalStatus(_ context.Context, id string, status types.Status) error {
	return s.mutatePrincipal(id, func(p *types.Principal) { p.Status = status })
}

func (s *Store) UpdatePrincipalPassword(_ context.Context, id, passwordHash string, mustChange bool) error {
	return s.mutatePrincipal(id, func(p *types.Principal) {
		p.PasswordHash = passwordHash
		p.MustChangePassword = mustChange
	})
}

func (s *Store) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	return s.mutatePrincipal(id, func(p *types.Principal) {
		t := at
		p.LastLoginAt = &t
	})
}

func (s *Store) DeletePrincipal(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.principals[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.data.principals, id)

	for h, t := range s.data.sessions {
		if t.PrincipalID == id {
			delete(s.data.sessions, h)
		}
	}
	return nil
}

func copySettings(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
