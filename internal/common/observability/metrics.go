package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"edpsych-connect/internal/common/logger"
)

// Observability owns the OpenTelemetry meter and tracer providers.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer

	requestCounter  otelmetric.Int64Counter
	requestDuration otelmetric.Float64Histogram
	jobCounter      otelmetric.Int64Counter
}

// New registers global meter and tracer providers. Metrics are exported on
// the default Prometheus registry; finished spans are written to log.
func New(serviceName string, log logger.Logger) *Observability {
	o := &Observability{tracer: noop.NewTracerProvider().Tracer(serviceName)}

	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("Failed to create Prometheus exporter", map[string]interface{}{"error": err.Error()})
	} else {
		o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter))
		otel.SetMeterProvider(o.meterProvider)
		o.meter = o.meterProvider.Meter(serviceName)

		o.requestCounter, _ = o.meter.Int64Counter(
			"http.requests",
			otelmetric.WithDescription("Number of HTTP requests handled"),
		)
		o.requestDuration, _ = o.meter.Float64Histogram(
			"http.duration",
			otelmetric.WithDescription("HTTP request duration"),
			otelmetric.WithUnit("ms"),
		)
		o.jobCounter, _ = o.meter.Int64Counter(
			"jobs.processed",
			otelmetric.WithDescription("Number of jobs processed"),
		)
	}

	o.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(NewLogSpanExporter(log)),
	)
	otel.SetTracerProvider(o.tracerProvider)
	o.tracer = o.tracerProvider.Tracer(serviceName)

	return o
}

// StartSpan starts a span on the service tracer.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordRequest(ctx context.Context, route string, status int, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	if o.requestCounter != nil {
		o.requestCounter.Add(ctx, 1, attrs)
	}
	if o.requestDuration != nil {
		o.requestDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
