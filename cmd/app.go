// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/canonical/inventory-identity/internal/authorization"
	"github.com/canonical/inventory-identity/internal/cache"
	"github.com/canonical/inventory-identity/internal/config"
	"github.com/canonical/inventory-identity/internal/db"
	"github.com/canonical/inventory-identity/internal/events"
	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/redis"
	"github.com/canonical/inventory-identity/internal/storage"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/pkg/accounts"
	"github.com/canonical/inventory-identity/pkg/audit"
	"github.com/canonical/inventory-identity/pkg/credentials"
	"github.com/canonical/inventory-identity/pkg/guard"
	"github.com/canonical/inventory-identity/pkg/invitation"
	"github.com/canonical/inventory-identity/pkg/session"
	"github.com/canonical/inventory-identity/pkg/status"
	"github.com/canonical/inventory-identity/pkg/sweeper"
	"github.com/canonical/inventory-identity/pkg/tenant"
)

// app is the dependency graph shared by serve and the one-shot commands.
type app struct {
	specs *config.EnvSpec

	dbClient    *db.DBClient
	redisClient *goredis.Client

	storage     *storage.Storage
	bus         events.BusInterface
	audit       *audit.Service
	sessions    *session.Manager
	credentials *credentials.Store
	invitations *invitation.Manager
	guard       *guard.Guard
	accounts    *accounts.Service
	tenants     *tenant.Service
	sweeper     *sweeper.Sweeper

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// dependencies lists what the readiness check pings.
func (a *app) dependencies() map[string]status.DependencyInterface {
	deps := map[string]status.DependencyInterface{
		"database": a.dbClient,
	}

	if a.redisClient != nil {
		deps["redis"] = status.DependencyFunc(func(ctx context.Context) error {
			return a.redisClient.Ping(ctx).Err()
		})
	}

	return deps
}

func (a *app) Close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Errorf("failed to close redis client: %v", err)
		}
	}

	a.dbClient.Close()
}

func newApp(ctx context.Context, specs *config.EnvSpec, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*app, error) {
	a := new(app)

	a.specs = specs
	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	dbClient, err := db.NewDBClient(
		db.Config{
			DSN:              specs.DSN,
			MaxConns:         specs.DBMaxConns,
			MinConns:         specs.DBMinConns,
			MaxConnLifetime:  specs.DBMaxConnLifetime,
			MaxConnIdleTime:  specs.DBMaxConnIdleTime,
			StatementTimeout: specs.DBStatementTimeout,
			TracingEnabled:   specs.TracingEnabled,
		},
		tracer, monitor, logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create database client: %v", err)
	}
	a.dbClient = dbClient
	a.storage = storage.NewStorage(dbClient, tracer, monitor, logger)

	var c cache.CacheInterface

	if specs.RedisAddr != "" {
		rdb, err := redis.NewClient(ctx, redis.Config{Addr: specs.RedisAddr, Password: specs.RedisPassword, DB: specs.RedisDB}, monitor, logger)
		if err != nil {
			dbClient.Close()
			return nil, fmt.Errorf("failed to create redis client: %v", err)
		}
		a.redisClient = rdb

		c = cache.NewRedisCache(rdb, tracer, logger)
		a.bus = events.NewRedisBus(rdb, tracer, logger)
		logger.Info("using redis for cache and disconnect events")
	} else {
		mc, err := cache.NewMemoryCache(specs.CacheSize)
		if err != nil {
			dbClient.Close()
			return nil, fmt.Errorf("failed to create cache: %v", err)
		}
		c = mc
		a.bus = events.NewMemoryBus(logger)
		logger.Info("using in-process cache and disconnect events")
	}

	a.audit = audit.NewService(a.storage, tracer, monitor, logger)

	a.sessions = session.NewManager(
		a.storage,
		a.bus,
		a.audit,
		session.Config{
			InactivityTimeout: specs.SessionInactivityTimeout,
			ReissueAge:        specs.SessionReissueAge,
			RotationGrace:     specs.SessionRotationGrace,
			MagicLinkTTL:      specs.MagicLinkTTL,
		},
		tracer, monitor, logger,
	)

	a.credentials = credentials.NewStore(a.storage, a.sessions, specs.PasswordMinLength, tracer, monitor, logger)
	a.invitations = invitation.NewManager(a.storage, a.credentials, a.audit, specs.InvitationLifetime, specs.PasswordMinLength, tracer, monitor, logger)

	a.guard = guard.NewGuard(
		authorization.NewAuthorizer(tracer, monitor, logger),
		a.storage,
		c,
		specs.CacheTTL,
		a.audit,
		tracer, monitor, logger,
	)

	a.accounts = accounts.NewService(
		a.storage,
		a.credentials,
		a.sessions,
		a.invitations,
		a.guard,
		a.audit,
		accounts.NewLogMailer(logger),
		accounts.Config{PublicBaseURL: specs.PublicBaseURL, MinPasswordLength: specs.PasswordMinLength},
		tracer, monitor, logger,
	)

	a.tenants = tenant.NewService(a.storage, a.guard, a.audit, tracer, monitor, logger)
	a.sweeper = sweeper.NewSweeper(a.invitations, a.sessions, specs.SweepInterval, tracer, monitor, logger)

	return a, nil
}
