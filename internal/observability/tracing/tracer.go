package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name used for every span this module creates.
const TracerName = "disclosure-feed"

// GetTracer returns the tracer from the current global provider.
// It is looked up on each call so a provider installed after startup is honoured.
func GetTracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartSpan starts an internal span with the given attributes.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordError marks span as failed with err. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
