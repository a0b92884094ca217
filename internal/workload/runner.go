package workload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/ivtree/pkg/alg/interval"
	"github.com/Sumatoshi-tech/ivtree/pkg/alg/intervaltree"
	"github.com/Sumatoshi-tech/ivtree/pkg/config"
	"github.com/Sumatoshi-tech/ivtree/pkg/observability"
)

// noneOutcome renders an absent minimum or maximum.
const noneOutcome = "none"

const spanPrefix = "workload.step."

// Options configures a run.
type Options struct {
	// Tracer receives one span per step. Nil disables tracing.
	Tracer trace.Tracer
	// Metrics records changes, steps and sizes. Nil disables metrics.
	Metrics *observability.TreeMetrics
	// Logger receives debug output and listener panics. Nil discards.
	Logger *slog.Logger
	// Validate checks the tree invariants after every mutation.
	Validate bool
	// Events keeps the rendered change events of each step in the report.
	Events bool
}

// StepResult is the outcome of one step.
type StepResult struct {
	Op       Op
	Arg      string
	Outcome  string
	Expected string
	Err      error
	Events   []string
	Duration time.Duration
	Index    int
	Line     int
	// Checked is set when the step carried an expectation.
	Checked bool
}

// Passed reports whether the step ran and met its expectation, if any.
func (r StepResult) Passed() bool {
	return r.Err == nil && (!r.Checked || r.Outcome == r.Expected)
}

// Status is the metric and span status of the step.
func (r StepResult) Status() string {
	switch {
	case r.Err != nil:
		return observability.StatusError
	case !r.Passed():
		return observability.StatusMismatch
	default:
		return observability.StatusOK
	}
}

// Report summarizes a run.
type Report struct {
	Domain   string
	Steps    []StepResult
	Events   int
	Size     int
	Duration time.Duration
}

// Failures returns the steps that errored or missed their expectation.
func (r *Report) Failures() []StepResult {
	var failed []StepResult

	for _, s := range r.Steps {
		if !s.Passed() {
			failed = append(failed, s)
		}
	}

	return failed
}

// Err returns an error wrapping ErrExpectation when any step failed.
func (r *Report) Err() error {
	failed := r.Failures()
	if len(failed) == 0 {
		return nil
	}

	errs := make([]error, 0, len(failed))
	for _, s := range failed {
		if s.Err != nil {
			errs = append(errs, fmt.Errorf("step %d (line %d): %w", s.Index, s.Line, s.Err))
		} else {
			errs = append(errs, fmt.Errorf("step %d (line %d): %s %s: got %s, want %s",
				s.Index, s.Line, s.Op, s.Arg, s.Outcome, s.Expected))
		}
	}

	return fmt.Errorf("%w: %d of %d steps\n%w", ErrExpectation, len(failed), len(r.Steps), errors.Join(errs...))
}

// Run executes script in the named domain.
func Run(ctx context.Context, domain string, script *Script, opts Options) (*Report, error) {
	switch domain {
	case config.DomainInt64:
		return run(ctx, Int64, script, opts)
	case config.DomainBig:
		return run(ctx, Big, script, opts)
	case config.DomainFloat:
		return run(ctx, Float, script, opts)
	default:
		return nil, config.ValidateDomain(domain)
	}
}

// runner holds the state of one run over a single tree.
type runner[I interval.Value[I]] struct {
	domain  Domain[I]
	tree    *intervaltree.Tree[I]
	opts    Options
	tracer  trace.Tracer
	logger  *slog.Logger
	pending []string
	events  int
}

func run[I interval.Value[I]](ctx context.Context, d Domain[I], script *Script, opts Options) (*Report, error) {
	r := &runner[I]{domain: d, opts: opts, tracer: opts.Tracer, logger: opts.Logger}

	if r.tracer == nil {
		r.tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}

	var counter func(intervaltree.Change[I])
	if opts.Metrics != nil {
		counter = observability.ChangeCounter[I](ctx, opts.Metrics)
	}

	r.tree = intervaltree.New(
		intervaltree.WithValidation[I](opts.Validate),
		intervaltree.WithLogger[I](r.logger),
		intervaltree.WithChangeListener(observability.Tee(
			r.record,
			counter,
			observability.ChangeLogger[I](ctx, r.logger),
		)),
	)

	report := &Report{Domain: d.Name, Steps: make([]StepResult, 0, len(script.Steps))}
	start := time.Now()

	for i, step := range script.Steps {
		result, err := r.step(ctx, i, step)
		report.Steps = append(report.Steps, result)

		if err != nil {
			report.Events = r.events
			report.Size = r.tree.Len()
			report.Duration = time.Since(start)

			return report, err
		}
	}

	report.Events = r.events
	report.Size = r.tree.Len()
	report.Duration = time.Since(start)

	return report, nil
}

func (r *runner[I]) record(c intervaltree.Change[I]) {
	r.events++

	if r.opts.Events {
		r.pending = append(r.pending, c.String())
	}
}

// step runs one step. The returned error is non-nil only when the tree
// reported an invariant violation and the run cannot continue.
func (r *runner[I]) step(ctx context.Context, index int, step Step) (result StepResult, fatal error) {
	ctx, span := r.tracer.Start(ctx, spanPrefix+string(step.Op), trace.WithAttributes(
		attribute.String(observability.AttrWorkloadDomain, r.domain.Name),
		attribute.Int(observability.AttrStepIndex, index),
		attribute.String(observability.AttrStepOp, string(step.Op)),
	))
	defer span.End()

	if step.Arg != "" {
		span.SetAttributes(attribute.String(observability.AttrStepInterval, step.Arg))
	}

	result = StepResult{Index: index, Line: step.Line, Op: step.Op, Arg: step.Arg, Checked: step.Expect != nil}
	r.pending = nil
	start := time.Now()

	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}

		violation, ok := recovered.(error)
		if !ok || !errors.Is(violation, intervaltree.ErrInvariantViolation) {
			panic(recovered)
		}

		result.Err = violation
		result.Events = r.pending
		fatal = fmt.Errorf("step %d (line %d): %w", index, step.Line, violation)

		span.RecordError(violation)
		span.SetStatus(codes.Error, violation.Error())
	}()

	result.Outcome, result.Err = r.execute(ctx, step)
	result.Duration = time.Since(start)
	result.Events = r.pending

	if result.Err == nil && result.Checked {
		result.Expected, result.Err = r.expectation(step)
	}

	r.finish(ctx, span, result)

	return result, nil
}

func (r *runner[I]) finish(ctx context.Context, span trace.Span, result StepResult) {
	status := result.Status()

	span.SetAttributes(
		attribute.String(observability.AttrStepOutcome, status),
		attribute.String(observability.AttrStepResult, result.Outcome),
		attribute.Int(observability.AttrTreeSize, r.tree.Len()),
	)

	switch status {
	case observability.StatusError:
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Err.Error())
	case observability.StatusMismatch:
		span.SetStatus(codes.Error, "expectation mismatch")
	}

	if r.opts.Metrics != nil {
		r.opts.Metrics.RecordStep(ctx, string(result.Op), status, result.Duration)
		r.opts.Metrics.RecordSize(ctx, r.tree.Len())
	}

	r.logger.DebugContext(ctx, "workload step",
		"index", result.Index, "op", result.Op, "outcome", result.Outcome, "status", status)
}

func (r *runner[I]) execute(ctx context.Context, step Step) (string, error) {
	var arg I

	if step.Op.takesInterval() {
		parsed, err := r.domain.Parse(step.Arg)
		if err != nil {
			return "", err
		}

		arg = parsed
	}

	switch step.Op {
	case OpInsert:
		return strconv.FormatBool(r.tree.Insert(arg)), nil
	case OpRemove:
		return strconv.FormatBool(r.tree.Remove(arg)), nil
	case OpFind:
		return strconv.FormatBool(r.tree.Find(arg)), nil
	case OpOverlap:
		found := r.tree.Overlapping(arg)

		if r.opts.Metrics != nil {
			r.opts.Metrics.RecordOverlap(ctx, len(found))
		}

		return renderList(found), nil
	case OpMin:
		return renderOptional(r.tree.Minimum()), nil
	case OpMax:
		return renderOptional(r.tree.Maximum()), nil
	case OpSize:
		return strconv.Itoa(r.tree.Len()), nil
	case OpList:
		return renderList(r.tree.Slice()), nil
	case OpClear:
		r.tree.Clear()

		return "", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOp, step.Op)
	}
}

// expectation renders the step's expectation in the same form as its
// outcome. Interval texts are parsed so spacing does not matter.
func (r *runner[I]) expectation(step Step) (string, error) {
	node := step.Expect

	switch step.Op {
	case OpInsert, OpRemove, OpFind:
		var want bool

		if err := node.Decode(&want); err != nil {
			return "", fmt.Errorf("expect: %w", err)
		}

		return strconv.FormatBool(want), nil
	case OpSize:
		var want int

		if err := node.Decode(&want); err != nil {
			return "", fmt.Errorf("expect: %w", err)
		}

		return strconv.Itoa(want), nil
	case OpMin, OpMax:
		if node.Tag == "!!null" {
			return noneOutcome, nil
		}

		want, err := r.domain.Parse(node.Value)
		if err != nil {
			return "", fmt.Errorf("expect: %w", err)
		}

		return want.String(), nil
	case OpOverlap, OpList:
		return r.expectList(node)
	default:
		return "", fmt.Errorf("%w: %s takes no expectation", ErrExpectation, step.Op)
	}
}

func (r *runner[I]) expectList(node *yaml.Node) (string, error) {
	var texts []string

	if err := node.Decode(&texts); err != nil {
		return "", fmt.Errorf("expect: %w", err)
	}

	want := make([]I, 0, len(texts))

	for _, text := range texts {
		parsed, err := r.domain.Parse(text)
		if err != nil {
			return "", fmt.Errorf("expect: %w", err)
		}

		want = append(want, parsed)
	}

	return renderList(want), nil
}

func renderList[I fmt.Stringer](xs []I) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = x.String()
	}

	return "[" + strings.Join(parts, " ") + "]"
}

func renderOptional[I fmt.Stringer](x I, ok bool) string {
	if !ok {
		return noneOutcome
	}

	return x.String()
}
