// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tracing

import (
	"context"

	"go.opentelemetry.io/contrib/propagators/jaeger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/canonical/inventory-identity/internal/logging"
)

const serviceName = "inventory-identity"

type Tracer struct {
	tracer trace.Tracer

	logger logging.LoggerInterface
}

func (t *Tracer) Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, spanName, opts...)
}

func (t *Tracer) init(service string, cfg *Config, e sdktrace.SpanExporter) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(e),
		sdktrace.WithSampler(cfg.sampler()),
		sdktrace.WithResource(
			resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceNameKey.String(service),
				semconv.ServiceVersionKey.String(cfg.ServiceVersion),
			),
		),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
			jaeger.Jaeger{},
		),
	)

	t.tracer = otel.Tracer(service)
}

func (t *Tracer) exporter(cfg *Config) sdktrace.SpanExporter {
	var err error
	var exporter sdktrace.SpanExporter

	switch {
	case cfg.OtelGRPCEndpoint != "":
		exporter, err = otlptrace.New(
			context.Background(),
			otlptracegrpc.NewClient(
				otlptracegrpc.WithEndpoint(cfg.OtelGRPCEndpoint),
				otlptracegrpc.WithInsecure(),
			),
		)
	case cfg.OtelHTTPEndpoint != "":
		exporter, err = otlptrace.New(
			context.Background(),
			otlptracehttp.NewClient(
				otlptracehttp.WithEndpoint(cfg.OtelHTTPEndpoint),
				otlptracehttp.WithInsecure(),
			),
		)
	default:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	}

	if err != nil {
		t.logger.Errorf("unable to initialize tracing exporter: %s", err)
		return nil
	}

	return exporter
}

// NewTracer builds an OTLP exporting tracer, falling back to a noop one when disabled or misconfigured
func NewTracer(cfg *Config) *Tracer {
	t := new(Tracer)
	t.logger = cfg.Logger

	if !cfg.Enabled {
		t.tracer = noop.NewTracerProvider().Tracer(serviceName)
		return t
	}

	e := t.exporter(cfg)
	if e == nil {
		t.tracer = noop.NewTracerProvider().Tracer(serviceName)
		return t
	}

	t.init(serviceName, cfg, e)

	return t
}

// NewNoopTracer is used by tests and one-shot CLI commands
func NewNoopTracer() *Tracer {
	t := new(Tracer)
	t.tracer = noop.NewTracerProvider().Tracer(serviceName)
	t.logger = logging.NewNoopLogger()

	return t
}
