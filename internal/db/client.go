// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/tracing"
)

const (
	applicationName  = "inventory-identity"
	defaultTxTimeout = 30 * time.Second
)

type lazyTxContextKey struct{}

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	// StatementTimeout is enforced server side, zero keeps the server default.
	StatementTimeout time.Duration
	TracingEnabled   bool
}

// lazyTx begins its transaction on the first statement. A failed begin is
// kept so every later statement of the same WithTx fails too.
type lazyTx struct {
	db        *sql.DB
	tx        *sql.Tx
	err       error
	committed bool
	cancel    context.CancelFunc
}

func (lt *lazyTx) get() (*sql.Tx, error) {
	if lt.tx != nil || lt.err != nil {
		return lt.tx, lt.err
	}

	// outlives the request context, bounded by defaultTxTimeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTxTimeout)
	tx, err := lt.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		cancel()
		lt.err = fmt.Errorf("failed to begin transaction: %w", err)
		return nil, lt.err
	}

	lt.tx = tx
	lt.cancel = cancel
	return tx, nil
}

func (lt *lazyTx) finish(logger logging.LoggerInterface) {
	if lt.tx != nil && !lt.committed {
		if err := lt.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			logger.Errorf("failed to rollback transaction: %v", err)
		}
	}

	if lt.cancel != nil {
		lt.cancel()
	}
}

type DBClient struct {
	// pool is only set when the client owns it
	pool *pgxpool.Pool
	db   *sql.DB

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Statement returns a Dollar placeholder builder bound to the transaction of
// ctx when inside WithTx, to the pool otherwise. When the transaction cannot
// begin the builder fails every statement with the begin error.
func (d *DBClient) Statement(ctx context.Context) sq.StatementBuilderType {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	lt, ok := ctx.Value(lazyTxContextKey{}).(*lazyTx)
	if !ok {
		return builder.RunWith(d.db)
	}

	tx, err := lt.get()
	if err != nil {
		d.logger.Errorf("%v", err)
		return builder.RunWith(failedRunner{err: err})
	}

	return builder.RunWith(tx)
}

// WithTx runs fn in a transaction committed when fn returns nil. Nested calls
// join the outermost transaction, so row locks taken by a caller are visible
// to the storage methods it invokes.
func (d *DBClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := ctx.Value(lazyTxContextKey{}).(*lazyTx); ok {
		return fn(ctx)
	}

	lt := &lazyTx{db: d.db}
	defer lt.finish(d.logger)

	if err := fn(context.WithValue(ctx, lazyTxContextKey{}, lt)); err != nil {
		return err
	}

	if lt.err != nil {
		return lt.err
	}

	if lt.tx == nil {
		return nil
	}

	if err := lt.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}
	lt.committed = true

	return nil
}

// Ping reports whether the database is reachable and updates the availability gauge.
func (d *DBClient) Ping(ctx context.Context) error {
	ctx, span := d.tracer.Start(ctx, "db.DBClient.Ping")
	defer span.End()

	err := d.db.PingContext(ctx)

	availability := 1.0
	if err != nil {
		availability = 0
	}
	if mErr := d.monitor.SetDependencyAvailability(map[string]string{"component": "database"}, availability); mErr != nil {
		d.logger.Debugf("failed to record database availability: %v", mErr)
	}

	return err
}

func (d *DBClient) Close() {
	if d.db != nil {
		_ = d.db.Close()
	}

	if d.pool != nil {
		d.pool.Close()
	}
}

func poolConfig(cfg Config) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("invalid DSN: %v", err)
	}

	if cfg.TracingEnabled {
		config.ConnConfig.Tracer = otelpgx.NewTracer()
	}

	params := config.ConnConfig.RuntimeParams
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = applicationName
	}
	if cfg.StatementTimeout > 0 {
		params["statement_timeout"] = strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)
	}

	config.MaxConns = cfg.MaxConns
	config.MinConns = cfg.MinConns
	config.MaxConnLifetime = cfg.MaxConnLifetime
	config.MaxConnLifetimeJitter = cfg.MaxConnLifetime / 10
	config.MaxConnIdleTime = cfg.MaxConnIdleTime

	return config, nil
}

// NewDBClient opens a pgx pool and exposes it through database/sql for squirrel.
func NewDBClient(cfg Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*DBClient, error) {
	config, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create db pool: %v", err)
	}

	if cfg.TracingEnabled {
		if err := otelpgx.RecordStats(pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to start metrics collection for database: %v", err)
		}
	}

	d := NewDBClientFromDB(stdlib.OpenDBFromPool(pool), tracer, monitor, logger)
	d.pool = pool

	if err := d.Ping(context.Background()); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to connect to the database: %v", err)
	}

	return d, nil
}

// NewDBClientFromDB wraps an already opened *sql.DB.
func NewDBClientFromDB(db *sql.DB, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *DBClient {
	d := new(DBClient)
	d.db = db

	d.tracer = tracer
	d.monitor = monitor
	d.logger = logger

	return d
}
