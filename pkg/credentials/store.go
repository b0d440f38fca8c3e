// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package credentials

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/storage"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/internal/types"
	"github.com/canonical/inventory-identity/internal/validation"
)

// temporaryPasswordBytes gives a 24 character url-safe secret.
const temporaryPasswordBytes = 18

var _ StoreInterface = (*Store)(nil)

// Store verifies and rotates passwords. It never tells its caller whether an
// email exists.
type Store struct {
	storage StorageInterface
	revoker SessionRevokerInterface

	minLength int
	cost      int
	dummyHash []byte

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Verify returns ErrInvalidCredentials for unknown emails, passwordless accounts
// and wrong passwords alike, spending one bcrypt comparison in every case.
// ErrPrincipalInactive is only returned once the password matched.
func (s *Store) Verify(ctx context.Context, email, password string) (*types.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "credentials.Store.Verify")
	defer span.End()

	p, err := s.storage.GetPrincipalByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up principal: %w", err)
	}

	if !p.HasPassword() {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, types.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return nil, types.ErrInvalidCredentials
	}

	if !p.IsActive() {
		return nil, types.ErrPrincipalInactive
	}

	return p, nil
}

func (s *Store) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// ResetToTemporary replaces the password with a random one the principal must
// change at next login. The plaintext is returned once and never stored.
func (s *Store) ResetToTemporary(ctx context.Context, principal *types.Principal) (*types.Principal, string, error) {
	ctx, span := s.tracer.Start(ctx, "credentials.Store.ResetToTemporary")
	defer span.End()

	buf := make([]byte, temporaryPasswordBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, "", fmt.Errorf("failed to generate temporary password: %w", err)
	}
	temporary := base64.RawURLEncoding.EncodeToString(buf)

	hash, err := s.Hash(temporary)
	if err != nil {
		return nil, "", err
	}

	if err := s.storage.UpdatePrincipalPassword(ctx, principal.ID, hash, true); err != nil {
		return nil, "", s.mapError(err)
	}

	if _, err := s.revoker.RevokeAll(ctx, principal.ID); err != nil {
		s.logger.Errorf("failed to revoke sessions after password reset for %s: %v", principal.ID, err)
	}

	updated, err := s.storage.GetPrincipalByID(ctx, principal.ID)
	if err != nil {
		return nil, "", s.mapError(err)
	}

	return updated, temporary, nil
}

// ChangePassword checks the current password when one is set, stores the new
// one, clears the forced-change flag and signs out every other session.
func (s *Store) ChangePassword(ctx context.Context, principal *types.Principal, attrs types.PasswordChangeAttrs, currentToken string) (*types.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "credentials.Store.ChangePassword")
	defer span.End()

	if principal.HasPassword() {
		if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(attrs.CurrentPassword)); err != nil {
			verr := types.NewValidationError()
			verr.Add("current_password", "is not valid")
			return nil, verr
		}
	}

	password, err := validation.Password(attrs.Password, attrs.PasswordConfirmation, s.minLength)
	if err != nil {
		return nil, err
	}

	hash, err := s.Hash(password)
	if err != nil {
		return nil, err
	}

	if err := s.storage.UpdatePrincipalPassword(ctx, principal.ID, hash, false); err != nil {
		return nil, s.mapError(err)
	}

	if _, err := s.revoker.RevokeAllExcept(ctx, principal.ID, currentToken); err != nil {
		s.logger.Errorf("failed to revoke sessions after password change for %s: %v", principal.ID, err)
	}

	updated, err := s.storage.GetPrincipalByID(ctx, principal.ID)
	if err != nil {
		return nil, s.mapError(err)
	}

	return updated, nil
}

func (s *Store) mapError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return types.ErrPrincipalNotFound
	}
	return err
}

// NewStore hashes with bcrypt.DefaultCost, minLength below 12 is raised to 12.
func NewStore(storage StorageInterface, revoker SessionRevokerInterface, minLength int, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Store {
	s := new(Store)

	s.storage = storage
	s.revoker = revoker
	s.minLength = max(minLength, validation.DefaultPasswordMinLength)
	s.cost = bcrypt.DefaultCost

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	s.setDummyHash()

	return s
}

func (s *Store) setDummyHash() {
	hash, err := bcrypt.GenerateFromPassword([]byte("timing-equalizer-not-a-password"), s.cost)
	if err != nil {
		s.logger.Fatalf("failed to prepare dummy password hash: %v", err)
	}
	s.dummyHash = hash
}
