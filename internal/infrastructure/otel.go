package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"rentalfigs/internal/config"
)

const (
	ServiceName     = config.AppName
	ServiceVersion  = config.AppVersion
	InstrumentScope = "rentalfigs"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	Environment   string
	EnableMetrics bool
	EnableTracing bool
	TraceExporter string // "stdout", "none"
	// TraceWriter receives stdout spans; defaults to os.Stdout
	TraceWriter io.Writer
}

// OTelConfigFrom converts the telemetry section of the application config
func OTelConfigFrom(cfg config.TelemetryConfig) *OTelConfig {
	return &OTelConfig{
		Environment:   cfg.Environment,
		EnableMetrics: cfg.EnableMetrics,
		EnableTracing: cfg.EnableTracing,
		TraceExporter: cfg.TraceExporter,
	}
}

// OTelProviders holds the OpenTelemetry providers. Tracer and Meter are
// always usable; they are no-ops when the matching signal is disabled.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	// PrometheusHTTP serves the metrics registry; nil when metrics are disabled
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// InitializeOTel builds tracer and meter providers for a figure run.
// Providers are not installed globally; callers pass them explicitly.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = &OTelConfig{EnableMetrics: true, TraceExporter: "none", Environment: "development"}
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()
	res := createResource(cfg)

	providers := &OTelProviders{
		Tracer: tracenoop.NewTracerProvider().Tracer(InstrumentScope),
		Meter:  metricnoop.NewMeterProvider().Meter(InstrumentScope),
		Logger: logger,
	}

	if cfg.EnableTracing && cfg.TraceExporter != "none" {
		if err := initializeTracing(cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	logger.DebugContext(ctx, "OpenTelemetry initialized",
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", providers.TracerProvider != nil),
		slog.Bool("metrics_enabled", providers.MeterProvider != nil))

	return providers, nil
}

func createResource(cfg *OTelConfig) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	)
}

func initializeTracing(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter

	switch cfg.TraceExporter {
	case "stdout":
		w := cfg.TraceWriter
		if w == nil {
			w = os.Stdout
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		exporter = exp
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	// Figure runs are short lived, so spans are exported synchronously
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(InstrumentScope, trace.WithInstrumentationVersion(ServiceVersion))
	return nil
}

func initializeMetrics(res *resource.Resource, providers *OTelProviders) error {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.MeterProvider = mp
	providers.Meter = mp.Meter(InstrumentScope, metric.WithInstrumentationVersion(ServiceVersion))
	providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return nil
}

// FigureMetrics holds the instruments recorded by a figure run
type FigureMetrics struct {
	FiguresRendered metric.Int64Counter
	RenderDuration  metric.Float64Histogram
	RunsTotal       metric.Int64Counter
}

// CreateFigureMetrics registers the figure instruments on meter
func CreateFigureMetrics(meter metric.Meter) (*FigureMetrics, error) {
	rendered, err := meter.Int64Counter(
		"figures_rendered_total",
		metric.WithDescription("Total number of figures processed, by outcome"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"figure_render_duration_seconds",
		metric.WithDescription("Time spent producing a single figure"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	runs, err := meter.Int64Counter(
		"figure_runs_total",
		metric.WithDescription("Total number of figure generation runs"),
	)
	if err != nil {
		return nil, err
	}

	return &FigureMetrics{
		FiguresRendered: rendered,
		RenderDuration:  duration,
		RunsTotal:       runs,
	}, nil
}

// RecordFigure records the outcome and duration of one figure
func (m *FigureMetrics) RecordFigure(ctx context.Context, figure, status string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("figure", figure),
		attribute.String("status", status),
	)
	m.FiguresRendered.Add(ctx, 1, attrs)
	m.RenderDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRun records a completed run
func (m *FigureMetrics) RecordRun(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.RunsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// Shutdown flushes and stops the providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}
	return nil
}

func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts the span trace ID from context for log correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
