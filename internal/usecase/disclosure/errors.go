// Package disclosure provides the use case that walks the paginated TDnet
// listing for one date and collects every disclosure record in order.
package disclosure

import "errors"

// Sentinel errors for disclosure use case operations.
var (
	// ErrFetcherNotConfigured indicates that the Service was built without a PageFetcher.
	ErrFetcherNotConfigured = errors.New("page fetcher not configured")

	// ErrExtractorNotConfigured indicates that the Service was built without a RowExtractor.
	ErrExtractorNotConfigured = errors.New("row extractor not configured")
)
