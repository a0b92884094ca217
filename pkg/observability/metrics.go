package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricChangesTotal   = "ivtree.tree.changes.total"
	metricTreeSize       = "ivtree.tree.size"
	metricOverlapResults = "ivtree.overlap.results"
	metricStepsTotal     = "ivtree.steps.total"
	metricStepDuration   = "ivtree.step.duration.seconds"

	attrKind   = "kind"
	attrCase   = "case"
	attrOp     = "op"
	attrStatus = "status"
)

// Span attribute keys set by the workload runner.
const (
	AttrWorkloadDomain = "workload.domain"
	AttrStepIndex      = "step.index"
	AttrStepOp         = "step.op"
	AttrStepInterval   = "step.interval"
	AttrStepOutcome    = "step.outcome"
	AttrStepResult     = "step.result"
	AttrTreeSize       = "tree.size"
)

// Step statuses recorded by RecordStep.
const (
	StatusOK       = "ok"
	StatusMismatch = "mismatch"
	StatusError    = "error"
)

// durationBucketBoundaries covers 1µs to 1s; single tree operations are
// sub-millisecond even on large trees.
var durationBucketBoundaries = []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 1e-2, 0.1, 1}

// resultBucketBoundaries buckets overlap result counts.
var resultBucketBoundaries = []float64{0, 1, 2, 4, 8, 16, 64, 256, 1024}

// TreeMetrics holds the OTel instruments describing tree activity.
type TreeMetrics struct {
	changesTotal   metric.Int64Counter
	treeSize       metric.Int64Gauge
	overlapResults metric.Int64Histogram
	stepsTotal     metric.Int64Counter
	stepDuration   metric.Float64Histogram
}

// NewTreeMetrics creates tree metric instruments from the given meter.
func NewTreeMetrics(mt metric.Meter) (*TreeMetrics, error) {
	changes, err := mt.Int64Counter(metricChangesTotal,
		metric.WithDescription("Structural change events emitted by the tree"),
		metric.WithUnit("{change}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricChangesTotal, err)
	}

	size, err := mt.Int64Gauge(metricTreeSize,
		metric.WithDescription("Number of intervals stored after the last step"),
		metric.WithUnit("{interval}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricTreeSize, err)
	}

	results, err := mt.Int64Histogram(metricOverlapResults,
		metric.WithDescription("Intervals returned per overlap query"),
		metric.WithUnit("{interval}"),
		metric.WithExplicitBucketBoundaries(resultBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricOverlapResults, err)
	}

	steps, err := mt.Int64Counter(metricStepsTotal,
		metric.WithDescription("Workload steps executed"),
		metric.WithUnit("{step}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricStepsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricStepDuration,
		metric.WithDescription("Workload step duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricStepDuration, err)
	}

	return &TreeMetrics{
		changesTotal:   changes,
		treeSize:       size,
		overlapResults: results,
		stepsTotal:     steps,
		stepDuration:   duration,
	}, nil
}

// RecordChange counts one change event. c is empty for Created and Cleared.
func (tm *TreeMetrics) RecordChange(ctx context.Context, kind, c string) {
	tm.changesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrKind, kind),
		attribute.String(attrCase, c),
	))
}

// RecordSize records the current number of stored intervals.
func (tm *TreeMetrics) RecordSize(ctx context.Context, size int) {
	tm.treeSize.Record(ctx, int64(size))
}

// RecordOverlap records the result count of one overlap query.
func (tm *TreeMetrics) RecordOverlap(ctx context.Context, results int) {
	tm.overlapResults.Record(ctx, int64(results))
}

// RecordStep records a completed workload step with its operation, status, and duration.
func (tm *TreeMetrics) RecordStep(ctx context.Context, op, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	tm.stepsTotal.Add(ctx, 1, attrs)
	tm.stepDuration.Record(ctx, duration.Seconds(), attrs)
}
