package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ProviderConfig configures the process tracer provider.
type ProviderConfig struct {
	ServiceName    string
	ServiceVersion string

	// SampleRatio is the fraction of root traces sampled, 0 to 1.
	// Child spans follow their parent's decision.
	SampleRatio float64

	// Exporters receive finished spans in batches. With none, spans still carry
	// trace ids for logs and the X-Trace-Id header but are not shipped anywhere.
	Exporters []sdktrace.SpanExporter
}

// Install builds an SDK tracer provider from cfg, registers it and the W3C
// propagators globally, and returns it. Callers must Shutdown the provider
// before exit to flush pending spans.
func Install(cfg ProviderConfig) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	}
	for _, exp := range cfg.Exporters {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp
}
