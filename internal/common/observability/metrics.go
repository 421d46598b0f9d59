package observability

import (
	"context"
	"time"

	"cost-analysis-engine/internal/common/config"
	"cost-analysis-engine/internal/common/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "cost-analysis-engine"

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	jobCounter     otelmetric.Int64Counter
	jobDuration    otelmetric.Float64Histogram
	stageDuration  otelmetric.Float64Histogram
}

// New wires the otel meter provider to the prometheus exporter and, when
// tracing is enabled, an OTLP/HTTP span exporter. Failures degrade to no-op
// instruments.
func New(ctx context.Context, serviceName string, tracing config.TracingConfig, log logger.Logger) *Observability {
	log = logger.ForComponent(log, "observability")
	o := &Observability{tracer: otel.Tracer(instrumentationName)}

	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("Failed to create Prometheus exporter", map[string]interface{}{"error": err})
	} else {
		o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter))
		otel.SetMeterProvider(o.meterProvider)
	}

	if tracing.Enabled {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(tracing.Endpoint)}
		if tracing.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		spanExporter, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			log.Warn("Failed to create OTLP trace exporter", map[string]interface{}{"error": err})
		} else {
			res := resource.NewSchemaless(attribute.String("service.name", serviceName))
			o.tracerProvider = sdktrace.NewTracerProvider(
				sdktrace.WithBatcher(spanExporter),
				sdktrace.WithResource(res),
				sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(tracing.SampleRatio))),
			)
			otel.SetTracerProvider(o.tracerProvider)
			o.tracer = o.tracerProvider.Tracer(instrumentationName)
		}
	}

	o.meter = otel.Meter(serviceName)
	o.jobCounter, _ = o.meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of analyze-cost jobs processed"),
	)
	o.jobDuration, _ = o.meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)
	o.stageDuration, _ = o.meter.Float64Histogram(
		"analysis.stage.duration",
		otelmetric.WithDescription("Duration of a single analysis stage"),
		otelmetric.WithUnit("ms"),
	)
	return o
}

// Tracer returns the package tracer; it is a no-op until tracing is enabled.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// StartSpan opens a span named after an analysis stage and returns a
// function that ends it and records the stage duration.
func (o *Observability) StartSpan(ctx context.Context, stage string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	tracer := o.tracer
	if tracer == nil {
		tracer = Tracer()
	}
	start := time.Now()
	ctx, span := tracer.Start(ctx, stage, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
		if o.stageDuration != nil {
			o.stageDuration.Record(ctx, float64(time.Since(start).Milliseconds()),
				otelmetric.WithAttributes(attribute.String("stage", stage)))
		}
	}
}

func (o *Observability) RecordJobProcessed(ctx context.Context, status string) {
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, duration time.Duration, status string) {
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
}
