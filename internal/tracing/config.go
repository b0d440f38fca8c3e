// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tracing

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/version"
)

type Config struct {
	OtelHTTPEndpoint string
	OtelGRPCEndpoint string
	// SampleRatio applies to root spans only, children follow their parent.
	SampleRatio    float64
	ServiceVersion string
	Logger         logging.LoggerInterface

	Enabled bool
}

func NewConfig(enabled bool, otelGRPCEndpoint, otelHTTPEndpoint string, sampleRatio float64, logger logging.LoggerInterface) *Config {
	c := new(Config)

	c.OtelGRPCEndpoint = otelGRPCEndpoint
	c.OtelHTTPEndpoint = otelHTTPEndpoint
	c.SampleRatio = sampleRatio
	c.ServiceVersion = version.Version
	c.Logger = logger
	c.Enabled = enabled

	return c
}

func NewNoopConfig() *Config {
	c := new(Config)
	c.Enabled = false
	c.Logger = logging.NewNoopLogger()
	return c
}

func (c *Config) sampler() sdktrace.Sampler {
	switch {
	case c.SampleRatio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	case c.SampleRatio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.SampleRatio))
}
