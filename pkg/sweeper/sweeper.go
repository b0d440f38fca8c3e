// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package sweeper

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/tracing"
)

// Result counts what a single pass removed.
type Result struct {
	ExpiredInvitations int64
	PurgedTokens       int64
}

// Sweeper periodically expires stale invitations and purges dead session tokens.
// Lazy checks on read keep correctness, this only keeps the tables small.
type Sweeper struct {
	invitations InvitationSweeperInterface
	sessions    SessionPurgerInterface
	interval    time.Duration

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Infof("sweeper started, interval %s", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Errorf("sweep failed: %v", err)
			}
		}
	}
}

func (s *Sweeper) RunOnce(ctx context.Context) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "sweeper.Sweeper.RunOnce")
	defer span.End()

	res := new(Result)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.invitations.Sweep(gctx)
		if err != nil {
			return fmt.Errorf("invitations: %w", err)
		}
		res.ExpiredInvitations = n
		return nil
	})

	g.Go(func() error {
		n, err := s.sessions.PurgeExpired(gctx)
		if err != nil {
			return fmt.Errorf("session tokens: %w", err)
		}
		res.PurgedTokens = n
		return nil
	})

	err := g.Wait()

	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	if merr := s.monitor.IncrementEventCounter(map[string]string{"event": "sweep", "outcome": outcome}); merr != nil {
		s.logger.Debugf("failed to record sweep metric: %v", merr)
	}

	if err != nil {
		return res, err
	}

	s.logger.Debugf("sweep removed %d invitations and %d tokens", res.ExpiredInvitations, res.PurgedTokens)

	return res, nil
}

func NewSweeper(invitations InvitationSweeperInterface, sessions SessionPurgerInterface, interval time.Duration, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Sweeper {
	s := new(Sweeper)

	s.invitations = invitations
	s.sessions = sessions
	s.interval = interval
	if s.interval <= 0 {
		s.interval = 10 * time.Minute
	}

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
