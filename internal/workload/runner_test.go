package workload_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/ivtree/internal/workload"
	"github.com/Sumatoshi-tech/ivtree/pkg/alg/interval"
	"github.com/Sumatoshi-tech/ivtree/pkg/config"
	"github.com/Sumatoshi-tech/ivtree/pkg/observability"
)

const testFailingSteps = 5

func loadScript(t *testing.T, path string) *workload.Script {
	t.Helper()

	script, err := workload.LoadFile(path)
	require.NoError(t, err)

	return script
}

func TestRun_OverlapScript(t *testing.T) {
	t.Parallel()

	script := loadScript(t, "testdata/overlap.yaml")

	report, err := workload.Run(context.Background(), script.ResolveDomain(config.DefaultDomain), script,
		workload.Options{Validate: script.ResolveValidate(false), Events: true})
	require.NoError(t, err)
	require.NoError(t, report.Err())

	assert.Equal(t, "int64", report.Domain)
	require.Len(t, report.Steps, testOverlapSteps)
	assert.Empty(t, report.Failures())
	assert.Equal(t, 0, report.Size)

	assert.Equal(t, []string{"Created([0, 9])"}, report.Steps[0].Events)
	assert.Equal(t, []string{"Created([20, 29])", "Balanced(RR, [0, 9])"}, report.Steps[2].Events)
	assert.Empty(t, report.Steps[4].Events)
	assert.Equal(t, []string{"Cleared()"}, report.Steps[13].Events)

	assert.Equal(t, "[[5, 14] [10, 19]]", report.Steps[5].Outcome)
	assert.Equal(t, "4", report.Steps[7].Outcome)
	assert.Equal(t, "none", report.Steps[14].Outcome)
	assert.False(t, report.Steps[2].Checked)
}

func TestRun_OtherDomains(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"testdata/big.yaml", "testdata/float.yaml"} {
		script := loadScript(t, path)

		report, err := workload.Run(context.Background(), script.Domain, script, workload.Options{Validate: true})
		require.NoError(t, err, path)
		require.NoError(t, report.Err(), path)
		assert.Equal(t, script.Domain, report.Domain)
		assert.Equal(t, 3, report.Size)
	}
}

func TestRun_FailingScript(t *testing.T) {
	t.Parallel()

	script := loadScript(t, "testdata/failing.yaml")

	report, err := workload.Run(context.Background(), config.DomainInt64, script, workload.Options{})
	require.NoError(t, err)
	require.Len(t, report.Steps, testFailingSteps)

	failed := report.Failures()
	require.Len(t, failed, 3)

	assert.Equal(t, observability.StatusMismatch, failed[0].Status())
	assert.Equal(t, "false", failed[0].Outcome)
	assert.Equal(t, "true", failed[0].Expected)

	assert.Equal(t, "1", failed[1].Outcome)
	assert.Equal(t, "2", failed[1].Expected)

	assert.Equal(t, observability.StatusError, failed[2].Status())
	require.ErrorIs(t, failed[2].Err, interval.ErrInvalidInterval)

	// Steps after a failure still run.
	assert.True(t, report.Steps[4].Passed())

	runErr := report.Err()
	require.ErrorIs(t, runErr, workload.ErrExpectation)
	require.ErrorIs(t, runErr, interval.ErrInvalidInterval)
	assert.Contains(t, runErr.Error(), "3 of 5 steps")
}

func TestRun_UnknownDomain(t *testing.T) {
	t.Parallel()

	_, err := workload.Run(context.Background(), "complex", &workload.Script{}, workload.Options{})
	require.ErrorIs(t, err, config.ErrInvalidDomain)
}

func TestRun_SpansAndMetrics(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	t.Cleanup(func() {
		require.NoError(t, tp.Shutdown(ctx))
		require.NoError(t, mp.Shutdown(ctx))
	})

	metrics, err := observability.NewTreeMetrics(mp.Meter("test"))
	require.NoError(t, err)

	var logs bytes.Buffer

	script := loadScript(t, "testdata/failing.yaml")

	_, err = workload.Run(ctx, config.DomainInt64, script, workload.Options{
		Tracer:  tp.Tracer("test"),
		Metrics: metrics,
		Logger:  slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, testFailingSteps)

	assert.Equal(t, "workload.step.insert", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String(observability.AttrStepOutcome, observability.StatusOK))
	assert.Contains(t, spans[0].Attributes(), attribute.String(observability.AttrStepInterval, "[1, 2]"))

	assert.Equal(t, "workload.step.find", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Contains(t, spans[1].Attributes(), attribute.String(observability.AttrStepOutcome, observability.StatusMismatch))

	assert.Equal(t, codes.Error, spans[3].Status().Code)
	assert.NotEmpty(t, spans[3].Events())

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(ctx, &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}

	assert.True(t, names["ivtree.tree.changes.total"])
	assert.True(t, names["ivtree.steps.total"])
	assert.True(t, names["ivtree.tree.size"])

	assert.Contains(t, logs.String(), "workload step")
	assert.Contains(t, logs.String(), "tree change")
}
