package scraper

import (
	"errors"
	"fmt"
)

var (
	// ErrTableNotFound indicates the page has no disclosure list table.
	ErrTableNotFound = errors.New("disclosure list table not found")

	// ErrBodyTooLarge indicates the page exceeded Config.MaxBodySize.
	ErrBodyTooLarge = errors.New("response body too large")
)

// HTTPStatusError reports a listing response with an unexpected status code.
type HTTPStatusError struct {
	StatusCode int
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}
