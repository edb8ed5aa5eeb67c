// Package tracing provides OpenTelemetry tracing integration.
//
// Spans are created through the global tracer provider, so nothing is exported
// unless the process installs a provider. Incoming HTTP requests get a server
// span via Middleware; the extraction loop opens child spans per listing page.
//
//	ctx, span := tracing.StartSpan(ctx, "disclosure.extract_all",
//	    attribute.String("disclosure.date", date))
//	defer span.End()
package tracing
