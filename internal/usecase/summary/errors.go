// Package summary provides the use case that turns a disclosure PDF into a
// short Japanese summary, using an AI model when one is configured and a
// keyword-based summary otherwise.
package summary

import "errors"

// Sentinel errors for summary use case operations.
var (
	// ErrPDFURLRequired indicates the request named no document.
	ErrPDFURLRequired = errors.New("PDF URL is required")

	// ErrInvalidPDFURL indicates the document URL is not an absolute http(s) URL.
	ErrInvalidPDFURL = errors.New("PDF URL must be an absolute http or https URL")

	// ErrDownloadFailed indicates the document could not be retrieved.
	ErrDownloadFailed = errors.New("pdf download failed")

	// ErrDownloadTimeout indicates the document download ran out of time.
	ErrDownloadTimeout = errors.New("pdf download timed out")

	// ErrExtractFailed indicates the document could not be read as a PDF.
	ErrExtractFailed = errors.New("pdf text extraction failed")
)
