// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package monitoring

import (
	"github.com/canonical/inventory-identity/internal/logging"
)

type NoopMonitor struct {
	service string

	logger logging.LoggerInterface
}

func (m *NoopMonitor) GetService() string {
	return m.service
}

func (m *NoopMonitor) SetResponseTimeMetric(map[string]string, float64) error {
	return nil
}

func (m *NoopMonitor) SetDependencyAvailability(map[string]string, float64) error {
	return nil
}

func (m *NoopMonitor) SetLiveConnections(map[string]string, float64) error {
	return nil
}

func (m *NoopMonitor) IncrementEventCounter(map[string]string) error {
	return nil
}

func NewNoopMonitor(service string, logger logging.LoggerInterface) *NoopMonitor {
	m := new(NoopMonitor)

	m.service = service
	m.logger = logger

	return m
}
