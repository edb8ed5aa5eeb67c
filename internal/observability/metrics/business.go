package metrics

import "time"

// Pagination stop reasons.
const (
	StopExhausted = "exhausted"
	StopCeiling   = "ceiling"
	StopCanceled  = "canceled"
)

// RecordPageFetch records the outcome and latency of one listing page fetch.
// Status is one of "ok", "not_found" or "error".
func RecordPageFetch(status string, duration time.Duration) {
	PageFetchesTotal.WithLabelValues(status).Inc()
	PageFetchDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordRecordsExtracted adds count accepted records.
func RecordRecordsExtracted(count int) {
	if count <= 0 {
		return
	}
	RecordsExtractedTotal.Add(float64(count))
}

// RecordRowSkipped records one table row dropped by the extractor.
func RecordRowSkipped(reason string) {
	RowsSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordPaginationStop records how an extraction loop ended and how many pages it fetched.
func RecordPaginationStop(reason string, pages int) {
	PaginationStopsTotal.WithLabelValues(reason).Inc()
	PagesPerExtraction.Observe(float64(pages))
}

// Summary request outcomes.
const (
	SummaryAI       = "ai"
	SummaryFallback = "fallback"
	SummaryEmpty    = "empty"
	SummaryError    = "error"
)

// RecordSummaryRequest records how one PDF summary request was answered.
func RecordSummaryRequest(method string) {
	SummaryRequestsTotal.WithLabelValues(method).Inc()
}
