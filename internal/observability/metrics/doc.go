// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the disclosure scraping metrics:
//   - Page fetches by outcome (ok, not_found, error) and their latency
//   - Records extracted and table rows skipped by the sentinel filter
//   - Pagination terminations by reason (exhausted, ceiling, canceled)
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "disclosure-feed/internal/observability/metrics"
//
//	func fetch(ctx context.Context, page int) {
//	    start := time.Now()
//	    // ... fetch the page ...
//	    metrics.RecordPageFetch("ok", time.Since(start))
//	}
package metrics
