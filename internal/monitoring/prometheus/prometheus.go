// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
)

var _ monitoring.MonitorInterface = (*Monitor)(nil)

type Monitor struct {
	service string

	responseTime           *prometheus.HistogramVec
	dependencyAvailability *prometheus.GaugeVec
	liveConnections        *prometheus.GaugeVec
	events                 *prometheus.CounterVec

	logger logging.LoggerInterface
}

func (m *Monitor) GetService() string {
	return m.service
}

func (m *Monitor) SetResponseTimeMetric(tags map[string]string, value float64) error {
	if m.responseTime == nil {
		return fmt.Errorf("metric not instantiated")
	}

	m.responseTime.With(tags).Observe(value)

	return nil
}

func (m *Monitor) SetDependencyAvailability(tags map[string]string, value float64) error {
	if m.dependencyAvailability == nil {
		return fmt.Errorf("metric not instantiated")
	}

	m.dependencyAvailability.With(tags).Set(value)

	return nil
}

func (m *Monitor) SetLiveConnections(tags map[string]string, value float64) error {
	if m.liveConnections == nil {
		return fmt.Errorf("metric not instantiated")
	}

	m.liveConnections.With(tags).Set(value)

	return nil
}

// IncrementEventCounter expects an "event" tag, "outcome" is optional
func (m *Monitor) IncrementEventCounter(tags map[string]string) error {
	if m.events == nil {
		return fmt.Errorf("metric not instantiated")
	}

	event, ok := tags["event"]
	if !ok {
		return fmt.Errorf("missing event tag")
	}

	m.events.With(prometheus.Labels{"event": event, "outcome": tags["outcome"]}).Inc()

	return nil
}

func (m *Monitor) registerHistograms() {
	m.responseTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "http_response_time_seconds",
			Help:        "http_response_time_seconds",
			ConstLabels: prometheus.Labels{"service": m.service},
		},
		[]string{"route", "status"},
	)

	m.register(m.responseTime)
}

func (m *Monitor) registerGauges() {
	m.dependencyAvailability = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "dependency_available",
			Help:        "dependency_available",
			ConstLabels: prometheus.Labels{"service": m.service},
		},
		[]string{"component"},
	)

	m.liveConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "live_connections",
			Help:        "session bound connections currently open",
			ConstLabels: prometheus.Labels{"service": m.service},
		},
		[]string{"transport"},
	)

	m.register(m.dependencyAvailability)
	m.register(m.liveConnections)
}

func (m *Monitor) registerCounters() {
	m.events = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "identity_events_total",
			Help:        "logins, revocations, sweeps and authorization denials",
			ConstLabels: prometheus.Labels{"service": m.service},
		},
		[]string{"event", "outcome"},
	)

	m.register(m.events)
}

func (m *Monitor) register(c prometheus.Collector) {
	if err := prometheus.Register(c); err != nil {
		m.logger.Debugf("metric already registered: %s", err)
	}
}

func NewMonitor(service string, logger logging.LoggerInterface) *Monitor {
	m := new(Monitor)

	m.service = service
	m.logger = logger

	m.registerHistograms()
	m.registerGauges()
	m.registerCounters()

	return m
}
