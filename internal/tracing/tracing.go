// Package tracing wires up the OpenTelemetry SDK the way every service in
// this codebase does: a single named tracer per process, spans around the
// HTTP handlers and the Remote Vacancy Client's transport calls, exported
// over OTLP/gRPC when a collector endpoint is configured.
package tracing

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Shutdown stops the tracer provider, flushing any buffered spans.
type Shutdown func(context.Context) error

// InitTracing configures the global tracer provider for serviceName. If
// endpoint is empty, spans are still created but discarded by a no-op
// provider — tracing degrades gracefully rather than failing startup.
func InitTracing(serviceName, endpoint string) (Shutdown, error) {
	// Installed unconditionally: the Remote Vacancy Client injects trace
	// headers on every split-mode hop regardless of whether this process
	// exports spans anywhere, and the default no-op propagator would
	// silently drop them.
	otel.SetTextMapPropagator(propagation.TraceContext{})

	if endpoint == "" {
		slog.Info("tracing disabled: no OTLP endpoint configured", "service", serviceName)
		return func(context.Context) error { return nil }, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return func(context.Context) error { return nil }, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return func(context.Context) error { return nil }, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(provider)

	slog.Info("tracing initialized", "service", serviceName, "endpoint", endpoint)

	return provider.Shutdown, nil
}

// StartSpan starts a span on the calling service's tracer. serviceName
// should match the name passed to InitTracing.
func StartSpan(ctx context.Context, serviceName, spanName string) (context.Context, trace.Span) {
	return otel.Tracer(serviceName).Start(ctx, spanName)
}

// GetTraceID extracts the active trace id from ctx, or "" if none.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().HasTraceID() {
		return ""
	}
	return span.SpanContext().TraceID().String()
}
