package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the tracer name used for client spans.
const InstrumentationName = "github.com/platformbuilds/weaviate-client-go"

// TracerProvider manages the lifecycle of the OpenTelemetry tracer
type TracerProvider struct {
	tp *sdktrace.TracerProvider
}

// NewTracerProvider creates an OTLP/gRPC backed tracer provider and installs
// it as the global provider.
func NewTracerProvider(ctx context.Context, serviceName, serviceVersion, otlpEndpoint string, insecure bool) (*TracerProvider, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(otlpEndpoint)}
	if insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &TracerProvider{tp: tp}, nil
}

// Shutdown flushes and stops the provider.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	return tp.tp.Shutdown(ctx)
}

// StartRequestSpan starts a client span for one round trip.
func StartRequestSpan(ctx context.Context, protocol, method, path string) (context.Context, trace.Span) {
	return otel.Tracer(InstrumentationName).Start(ctx, "weaviate."+protocol,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("weaviate.protocol", protocol),
			attribute.String("weaviate.method", method),
			attribute.String("weaviate.path", path),
		),
	)
}

// EndRequestSpan records the outcome on span and ends it.
func EndRequestSpan(span trace.Span, status int, duration time.Duration, err error) {
	span.SetAttributes(
		attribute.Int("weaviate.status_code", status),
		attribute.Int64("weaviate.duration_ms", duration.Milliseconds()),
	)
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case status == 0 || status >= 400:
		span.SetStatus(codes.Error, fmt.Sprintf("status %d", status))
	}
	span.End()
}
