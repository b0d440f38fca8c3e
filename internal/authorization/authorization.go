// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
	"github.com/canonical/inventory-identity/internal/tracing"
	"github.com/canonical/inventory-identity/internal/types"
)

var _ AuthorizerInterface = (*Authorizer)(nil)

// Authorizer wraps the pure decision functions with tracing and metrics.
type Authorizer struct {
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *Authorizer) Check(ctx context.Context, scope *types.Scope, action types.Action, resourceTenant string) bool {
	_, span := a.tracer.Start(ctx, "authorization.Authorizer.Check")
	defer span.End()

	allowed := Can(scope, action, resourceTenant)

	span.SetAttributes(
		attribute.String("action", string(action)),
		attribute.String("role", string(scope.Role())),
		attribute.Bool("allowed", allowed),
	)

	outcome := "allowed"
	if !allowed {
		outcome = "denied"
	}
	if err := a.monitor.IncrementEventCounter(map[string]string{"event": "authz_check", "outcome": outcome}); err != nil {
		a.logger.Debugf("failed to record authorization metric: %v", err)
	}

	return allowed
}

func (a *Authorizer) CheckAssignRole(ctx context.Context, scope *types.Scope, role types.Role, targetTenant string) bool {
	_, span := a.tracer.Start(ctx, "authorization.Authorizer.CheckAssignRole")
	defer span.End()

	return CanAssignRole(scope, role, targetTenant)
}

func NewAuthorizer(tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Authorizer {
	a := new(Authorizer)

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
