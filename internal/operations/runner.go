package operations

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"rentalfigs/internal/config"
	apperrors "rentalfigs/internal/errors"
	"rentalfigs/internal/exporter"
	"rentalfigs/internal/infrastructure"
)

const skippedAfterFailure = "not started after an earlier failure"

// RunnerConfig controls how steps are scheduled
type RunnerConfig struct {
	// Workers is the maximum number of steps running at once. Values below 1
	// run the steps one at a time.
	Workers int
	// FailFast stops starting new steps after the first failure
	FailFast bool
}

// Runner executes the steps of a registry and records a RunManifest
type Runner struct {
	registry *Registry
	paths    *config.Paths
	cfg      RunnerConfig
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *infrastructure.FigureMetrics
	exporter *exporter.FigureExporter
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = infrastructure.WithComponent(logger, "operations")
		}
	}
}

// WithTracer sets the tracer used for the per-figure spans
func WithTracer(tracer trace.Tracer) RunnerOption {
	return func(r *Runner) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// WithMetrics sets the figure metrics
func WithMetrics(metrics *infrastructure.FigureMetrics) RunnerOption {
	return func(r *Runner) { r.metrics = metrics }
}

// WithExporter writes the figure data workbook at the end of the run. It
// must be the exporter the figure steps were created with.
func WithExporter(exp *exporter.FigureExporter) RunnerOption {
	return func(r *Runner) { r.exporter = exp }
}

// NewRunner creates a runner for the registered steps
func NewRunner(registry *Registry, paths *config.Paths, cfg RunnerConfig, opts ...RunnerOption) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	r := &Runner{
		registry: registry,
		paths:    paths,
		cfg:      cfg,
		logger:   infrastructure.WithComponent(slog.Default(), "operations"),
		tracer:   noop.NewTracerProvider().Tracer(infrastructure.InstrumentScope),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every step and writes the manifest. The returned manifest is
// always non-nil; the error is a *RunError when any step failed.
func (r *Runner) Run(ctx context.Context) (*RunManifest, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	runID := infrastructure.RunIDFromContext(ctx)

	steps := r.registry.List()
	manifest := NewRunManifest(runID, r.paths.DataDir, r.paths.OutDir)
	for _, step := range steps {
		manifest.AddStep(step)
	}

	ctx, span := r.tracer.Start(ctx, "figures.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.figures", len(steps)),
			attribute.Int("run.workers", r.cfg.Workers),
		),
	)
	defer span.End()

	r.logger.InfoContext(ctx, "figure run started",
		slog.Int("figures", len(steps)),
		slog.Int("workers", r.cfg.Workers),
		slog.Bool("fail_fast", r.cfg.FailFast),
		slog.String("out_dir", r.paths.OutDir))

	if err := r.paths.EnsureDirectories(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return manifest, apperrors.NewStorageError("failed to create output directory", err)
	}

	var (
		mu       sync.Mutex
		failures []StepFailure
		failed   bool
	)
	hasFailed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return failed
	}

	g := new(errgroup.Group)
	g.SetLimit(r.cfg.Workers)

	for _, step := range steps {
		if r.cfg.FailFast && hasFailed() {
			r.skipStep(ctx, manifest, step, skippedAfterFailure)
			continue
		}
		step := step
		g.Go(func() error {
			if r.cfg.FailFast && hasFailed() {
				r.skipStep(ctx, manifest, step, skippedAfterFailure)
				return nil
			}
			if err := r.runStep(ctx, manifest, step); err != nil {
				mu.Lock()
				failures = append(failures, StepFailure{StepID: step.ID(), Err: err})
				failed = true
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if r.exporter != nil && len(r.exporter.Charts()) > 0 {
		path, err := r.exporter.WriteWorkbook(r.registry.IDs())
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to write figure data workbook", slog.String("error", err.Error()))
			failures = append(failures, StepFailure{StepID: "workbook", Err: err})
		} else {
			manifest.SetWorkbook(path)
			r.logger.InfoContext(ctx, "figure data workbook saved", slog.String("path", path))
		}
	}

	manifest.Finish()
	if err := manifest.SaveToFile(r.paths.ManifestFile); err != nil {
		r.logger.ErrorContext(ctx, "failed to save run manifest", slog.String("error", err.Error()))
		failures = append(failures, StepFailure{StepID: "manifest", Err: apperrors.NewStorageError("failed to save run manifest", err)})
	}

	r.metrics.RecordRun(ctx, len(failures) == 0)
	counts := manifest.Counts()
	span.SetAttributes(
		attribute.Int("run.completed", counts[StepStatusCompleted]),
		attribute.Int("run.failed", counts[StepStatusFailed]),
		attribute.Int("run.skipped", counts[StepStatusSkipped]),
	)

	if len(failures) > 0 {
		runErr := &RunError{Failures: sortFailures(failures, r.registry.IDs())}
		span.SetStatus(codes.Error, runErr.Error())
		r.logger.ErrorContext(ctx, "figure run finished with failures",
			slog.Int("failed", len(failures)),
			slog.String("error", runErr.Error()))
		return manifest, runErr
	}

	r.logger.InfoContext(ctx, "All figures saved.",
		slog.Int("completed", counts[StepStatusCompleted]),
		slog.Int("skipped", counts[StepStatusSkipped]))
	return manifest, nil
}

// runStep executes one step and records its outcome. The returned error is
// the step failure, if any.
func (r *Runner) runStep(ctx context.Context, manifest *RunManifest, step Step) error {
	ctx = infrastructure.WithFigure(ctx, step.ID())
	ctx, span := r.tracer.Start(ctx, "figure."+step.ID(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("figure.id", step.ID()),
			attribute.String("figure.output", step.OutputFile()),
		),
	)
	defer span.End()

	state := NewStepState(step.ID(), step.Name())
	state.Start()

	finish := func(status StepStatus) {
		manifest.RecordStep(state)
		span.SetAttributes(attribute.String("figure.status", string(status)))
		r.metrics.RecordFigure(ctx, step.ID(), string(status), state.Duration())
	}

	for _, req := range step.RequiredInputs() {
		if config.FileExists(req.Path) {
			continue
		}
		if req.Optional {
			reason := fmt.Sprintf("%s not found; skipping %s.", req.Path, step.Name())
			r.logger.WarnContext(ctx, reason, slog.String("input", req.Path))
			state.Skip(reason)
			finish(StepStatusSkipped)
			return nil
		}
		err := apperrors.NewNotFoundError(req.Path)
		r.failStep(ctx, span, state, err)
		finish(StepStatusFailed)
		return err
	}

	r.logger.DebugContext(ctx, "rendering figure", slog.String("output", step.OutputFile()))
	if err := step.Execute(ctx, state); err != nil {
		r.failStep(ctx, span, state, err)
		finish(StepStatusFailed)
		return err
	}

	state.Complete()
	finish(StepStatusCompleted)
	r.logger.InfoContext(ctx, "figure saved",
		slog.String("output", step.OutputFile()),
		slog.Duration("duration", state.Duration().Round(time.Millisecond)))
	return nil
}

func (r *Runner) failStep(ctx context.Context, span trace.Span, state *StepState, err error) {
	state.Fail(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	r.logger.ErrorContext(ctx, "figure failed", slog.String("error", err.Error()))
}

func (r *Runner) skipStep(ctx context.Context, manifest *RunManifest, step Step, reason string) {
	state := NewStepState(step.ID(), step.Name())
	state.Skip(reason)
	manifest.RecordStep(state)
	r.metrics.RecordFigure(ctx, step.ID(), string(StepStatusSkipped), 0)
	r.logger.WarnContext(infrastructure.WithFigure(ctx, step.ID()), "figure skipped", slog.String("reason", reason))
}

// sortFailures orders failures by registration order, run-level failures last
func sortFailures(failures []StepFailure, order []string) []StepFailure {
	rank := make(map[string]int, len(order))
	for i, id := range order {
		rank[id] = i
	}
	sorted := make([]StepFailure, 0, len(failures))
	for _, id := range order {
		for _, f := range failures {
			if f.StepID == id {
				sorted = append(sorted, f)
			}
		}
	}
	for _, f := range failures {
		if _, ok := rank[f.StepID]; !ok {
			sorted = append(sorted, f)
		}
	}
	return sorted
}
