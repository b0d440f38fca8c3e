// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrSessionExpired            = errors.New("session expired")
	ErrSessionNotFound           = errors.New("session not found")
	ErrUnauthorized              = errors.New("unauthorized")
	ErrInvitationNotFound        = errors.New("invitation not found")
	ErrInvitationExpired         = errors.New("invitation expired")
	ErrInvitationAlreadyAccepted = errors.New("invitation already accepted")
	ErrDuplicateEmail            = errors.New("email already taken")
	ErrValidationFailed          = errors.New("validation failed")
	ErrPrincipalInactive         = errors.New("principal inactive")
	ErrPrincipalNotFound         = errors.New("principal not found")
	ErrTenantNotFound            = errors.New("tenant not found")
)

// ValidationError maps field names to the reasons they were rejected.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

func (e *ValidationError) Add(field, reason string) {
	e.Fields[field] = append(e.Fields[field], reason)
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// OrNil returns nil when nothing was added, so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], ", ")))
	}

	return fmt.Sprintf("%s: %s", ErrValidationFailed, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
