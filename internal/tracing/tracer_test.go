package tracing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func TestRequestSpan_Success(t *testing.T) {
	rec := withRecorder(t)

	_, span := StartRequestSpan(context.Background(), "rest", "GET", "/v1/meta")
	EndRequestSpan(span, 200, 3*time.Millisecond, nil)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "weaviate.rest", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestRequestSpan_Failure(t *testing.T) {
	rec := withRecorder(t)

	_, span := StartRequestSpan(context.Background(), "grpc", "BatchObjects", "/weaviate.v1.Weaviate/BatchObjects")
	EndRequestSpan(span, 0, time.Millisecond, errors.New("unavailable"))

	_, span = StartRequestSpan(context.Background(), "rest", "GET", "/v1/schema/Pizza")
	EndRequestSpan(span, 500, time.Millisecond, nil)

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "unavailable", spans[0].Status().Description)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
