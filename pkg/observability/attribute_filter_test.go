package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/ivtree/pkg/observability"
)

func newFilteredProvider(logger *slog.Logger) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	filter := observability.NewAttributeFilter(sdktrace.NewSimpleSpanProcessor(exporter), logger)

	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(filter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	), exporter
}

// spanAttrMap converts a span's attributes into a map for easy assertion.
func spanAttrMap(s tracetest.SpanStub) map[string]any {
	m := make(map[string]any, len(s.Attributes))
	for _, a := range s.Attributes {
		m[string(a.Key)] = a.Value.AsInterface()
	}

	return m
}

func TestAttributeFilter_AllowsKnownPrefixes(t *testing.T) {
	t.Parallel()

	tp, exporter := newFilteredProvider(nil)

	_, span := tp.Tracer("test").Start(context.Background(), "step")
	span.SetAttributes(
		attribute.String(observability.AttrStepOp, "insert"),
		attribute.String(observability.AttrStepInterval, "[0, 9]"),
		attribute.Int(observability.AttrTreeSize, 4),
		attribute.String("error.type", "parse"),
	)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	attrs := spanAttrMap(spans[0])
	assert.Equal(t, "insert", attrs["step.op"])
	assert.Equal(t, "[0, 9]", attrs["step.interval"])
	assert.Equal(t, int64(4), attrs["tree.size"])
	assert.Equal(t, "parse", attrs["error.type"])
}

func TestAttributeFilter_DropsUnknownAndBlocked(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tp, exporter := newFilteredProvider(logger)

	_, span := tp.Tracer("test").Start(context.Background(), "step")
	span.SetAttributes(
		attribute.String(observability.AttrStepResult, "[[0, 9] [5, 14]]"),
		attribute.String("user.name", "x"),
		attribute.String(observability.AttrStepOutcome, "true"),
	)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	attrs := spanAttrMap(spans[0])
	assert.NotContains(t, attrs, "step.result")
	assert.NotContains(t, attrs, "user.name")
	assert.Equal(t, "true", attrs["step.outcome"])

	assert.Contains(t, buf.String(), "step.result")
	assert.Contains(t, buf.String(), "user.name")
}
