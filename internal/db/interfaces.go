// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
)

var _ DBClientInterface = (*DBClient)(nil)

type DBClientInterface interface {
	Statement(context.Context) sq.StatementBuilderType
	WithTx(context.Context, func(context.Context) error) error
	Ping(context.Context) error
	Close()
}
