// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package monitoring

// MonitorInterface records the service metrics. Tags are label values keyed by label name.
type MonitorInterface interface {
	GetService() string
	SetResponseTimeMetric(map[string]string, float64) error
	SetDependencyAvailability(map[string]string, float64) error
	// SetLiveConnections expects a "transport" tag.
	SetLiveConnections(map[string]string, float64) error
	IncrementEventCounter(map[string]string) error
}
