package telemetry

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/actionlab/actionlab/internal/logging"
)

// Config controls telemetry setup.
type Config struct {
	Enabled  bool
	Endpoint string
	Protocol string // grpc | http
	Service  string
	Version  string
}

// Provider wires tracer/meter providers and exposes helpers.
type Provider struct {
	Enabled bool
	tracer  trace.Tracer
	meter   metric.Meter

	runsCounter           metric.Int64Counter
	runDuration           metric.Float64Histogram
	stageDuration         metric.Float64Histogram
	eventsCounter         metric.Int64Counter
	riskStrength          metric.Float64Histogram
	reportsDropped        metric.Int64Counter
	shutdownTraceProvider func(context.Context) error
	shutdownMeterProvider func(context.Context) error
}

// Noop returns a disabled provider.
func Noop() *Provider {
	p := &Provider{
		tracer: tracenoop.NewTracerProvider().Tracer(""),
		meter:  metricnoop.NewMeterProvider().Meter(""),
	}
	p.initInstruments()
	return p
}

// WithTracerProvider traces through tp and drops metrics. Used to capture
// spans in-process.
func WithTracerProvider(tp trace.TracerProvider) *Provider {
	p := &Provider{
		Enabled: true,
		tracer:  tp.Tracer("actionlab"),
		meter:   metricnoop.NewMeterProvider().Meter(""),
	}
	p.initInstruments()
	return p
}

// NewProvider configures OTEL exporters + providers. When disabled, returns no-op providers.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !cfg.Enabled {
		return Noop(), nil
	}

	logging.New("telemetry").Info("telemetry enabled; upload warnings are expected when no collector is listening",
		"protocol", strings.ToLower(cfg.Protocol), "endpoint", cfg.Endpoint)

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			attribute.String("service.name", cfg.Service),
			attribute.String("service.version", cfg.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}

	var (
		traceExp  sdktrace.SpanExporter
		metricExp sdkmetric.Exporter
	)
	switch strings.ToLower(cfg.Protocol) {
	case "", "grpc":
		if traceExp, err = otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(cfg.Endpoint), otlptracegrpc.WithInsecure()); err != nil {
			return nil, fmt.Errorf("otlp trace exporter: %w", err)
		}
		if metricExp, err = otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpoint(cfg.Endpoint), otlpmetricgrpc.WithInsecure()); err != nil {
			return nil, fmt.Errorf("otlp metric exporter: %w", err)
		}
	case "http":
		if traceExp, err = otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(cfg.Endpoint), otlptracehttp.WithInsecure()); err != nil {
			return nil, fmt.Errorf("otlp trace exporter: %w", err)
		}
		if metricExp, err = otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpoint(cfg.Endpoint), otlpmetrichttp.WithInsecure()); err != nil {
			return nil, fmt.Errorf("otlp metric exporter: %w", err)
		}
	default:
		return nil, fmt.Errorf("telemetry protocol %q not supported", cfg.Protocol)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res), sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp)))
	otel.SetMeterProvider(mp)

	p := &Provider{
		Enabled:               true,
		tracer:                tp.Tracer("actionlab"),
		meter:                 mp.Meter("actionlab"),
		shutdownTraceProvider: tp.Shutdown,
		shutdownMeterProvider: mp.Shutdown,
	}
	p.initInstruments()
	return p, nil
}

func (p *Provider) initInstruments() {
	if p == nil {
		return
	}
	// Instrument errors are ignored; telemetry is best-effort.
	p.runsCounter, _ = p.meter.Int64Counter("actionlab_runs_total")
	p.runDuration, _ = p.meter.Float64Histogram("actionlab_run_duration_ms")
	p.stageDuration, _ = p.meter.Float64Histogram("actionlab_stage_duration_ms")
	p.eventsCounter, _ = p.meter.Int64Counter("actionlab_events_detected_total")
	p.riskStrength, _ = p.meter.Float64Histogram("actionlab_risk_signal_strength")
	p.reportsDropped, _ = p.meter.Int64Counter("actionlab_reports_dropped_total")
}

// Tracer returns the tracer.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil {
		return tracenoop.NewTracerProvider().Tracer("")
	}
	return p.tracer
}

// Meter returns the meter.
func (p *Provider) Meter() metric.Meter {
	if p == nil {
		return metricnoop.NewMeterProvider().Meter("")
	}
	return p.meter
}

// Shutdown flushes providers.
func (p *Provider) Shutdown(ctx context.Context) {
	if p == nil {
		return
	}
	if p.shutdownTraceProvider != nil {
		_ = p.shutdownTraceProvider(ctx)
	}
	if p.shutdownMeterProvider != nil {
		_ = p.shutdownMeterProvider(ctx)
	}
}

// RunStats summarises one analysis run for metrics.
type RunStats struct {
	Verdict    string
	ActionType string
	RiskLevel  string
	DurationMs float64
	Events     map[string]string // kind -> method
	Risks      map[string]float64
}

// RecordRun emits per-run counters/histograms with low-cardinality labels.
func (p *Provider) RecordRun(ctx context.Context, s RunStats) {
	if p == nil || p.runsCounter == nil {
		return
	}
	labels := metric.WithAttributes(
		attribute.String("actionlab.elbow_verdict", s.Verdict),
		attribute.String("actionlab.action_type", s.ActionType),
		attribute.String("actionlab.risk_level", s.RiskLevel),
	)
	p.runsCounter.Add(ctx, 1, labels)
	p.runDuration.Record(ctx, s.DurationMs, labels)
	for kind, method := range s.Events {
		p.eventsCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("actionlab.event", kind),
			attribute.String("actionlab.method", method),
		))
	}
	for id, v := range s.Risks {
		p.riskStrength.Record(ctx, v, metric.WithAttributes(attribute.String("actionlab.risk_id", id)))
	}
}

// RecordStage records one pipeline stage duration.
func (p *Provider) RecordStage(ctx context.Context, stage string, durMs float64) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.Record(ctx, durMs, metric.WithAttributes(attribute.String("actionlab.stage", stage)))
}

// RecordReportDrop counts a report the emitter could not queue.
func (p *Provider) RecordReportDrop(ctx context.Context, sink string) {
	if p == nil || p.reportsDropped == nil {
		return
	}
	p.reportsDropped.Add(ctx, 1, metric.WithAttributes(attribute.String("actionlab.sink", sink)))
}
