// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicateKey        = errors.New("duplicate key violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	// ErrCheckViolation means a row broke a table invariant, such as a
	// root-admin carrying a tenant.
	ErrCheckViolation = errors.New("check constraint violation")
)

const (
	pgErrCodeUniqueViolation     = "23505"
	pgErrCodeForeignKeyViolation = "23503"
	pgErrCodeCheckViolation      = "23514"
)

var constraintErrors = map[string]error{
	pgErrCodeUniqueViolation:     ErrDuplicateKey,
	pgErrCodeForeignKeyViolation: ErrForeignKeyViolation,
	pgErrCodeCheckViolation:      ErrCheckViolation,
}

// mapWriteError translates constraint violations into the storage sentinels,
// naming the violated constraint when the driver reports one.
func mapWriteError(err error, context string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", context, err)
	}

	sentinel, ok := constraintErrors[pgErr.Code]
	if !ok {
		return fmt.Errorf("%s: %w", context, err)
	}

	if pgErr.ConstraintName != "" {
		return fmt.Errorf("%s (%s): %w", context, pgErr.ConstraintName, sentinel)
	}
	return fmt.Errorf("%s: %w", context, sentinel)
}

// isNoRows covers both database/sql and native pgx scans.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}
