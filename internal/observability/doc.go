// Package observability groups the logging, metrics and tracing helpers.
//
// Subpackages:
//   - logging: slog constructors and context propagation
//   - metrics: Prometheus counters for listing fetches and extraction
//   - tracing: OpenTelemetry spans for HTTP requests and pagination
package observability
