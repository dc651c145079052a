// Package telemetry configures OpenTelemetry tracing for the process.
package telemetry

import (
	"context"

	"github.com/abgdnv/shopmate/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// NewTracerProvider installs a global tracer provider and propagator.
// With telemetry disabled the provider never samples, so spans cost almost nothing and are not exported.
func NewTracerProvider(ctx context.Context, serviceName string, cfg config.TelemetryConfig) (*tracesdk.TracerProvider, error) {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	var tp *tracesdk.TracerProvider
	if !cfg.Enabled {
		tp = tracesdk.NewTracerProvider(
			tracesdk.WithSampler(tracesdk.NeverSample()),
			tracesdk.WithResource(res),
		)
	} else {
		collectorOpts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(cfg.Traces.OtlpHttp.Endpoint),
			otlptracehttp.WithTimeout(cfg.Traces.OtlpHttp.Timeout),
		}
		if cfg.Traces.OtlpHttp.Insecure {
			collectorOpts = append(collectorOpts, otlptracehttp.WithInsecure())
		}

		exporter, err := otlptracehttp.New(ctx, collectorOpts...)
		if err != nil {
			return nil, err
		}
		tp = tracesdk.NewTracerProvider(
			tracesdk.WithBatcher(exporter),
			tracesdk.WithResource(res),
		)
	}
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp, nil
}
