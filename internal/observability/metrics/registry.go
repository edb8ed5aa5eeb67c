package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scrape metrics track listing page fetches and table extraction
var (
	// PageFetchesTotal counts listing page fetches by outcome
	PageFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "disclosure_page_fetches_total",
			Help: "Total number of listing page fetches by status",
		},
		[]string{"status"},
	)

	// PageFetchDuration measures how long one listing page fetch takes
	PageFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "disclosure_page_fetch_duration_seconds",
			Help:    "Duration of listing page fetches in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"status"},
	)

	// RecordsExtractedTotal counts disclosure records accepted from listing tables
	RecordsExtractedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "disclosure_records_extracted_total",
			Help: "Total number of disclosure records extracted",
		},
	)

	// RowsSkippedTotal counts table rows rejected before becoming records
	RowsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "disclosure_rows_skipped_total",
			Help: "Total number of listing table rows skipped by reason",
		},
		[]string{"reason"},
	)

	// PaginationStopsTotal counts how extraction loops terminated
	PaginationStopsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "disclosure_pagination_stops_total",
			Help: "Total number of pagination loop terminations by reason",
		},
		[]string{"reason"},
	)

	// PagesPerExtraction observes how many pages one extraction fetched
	PagesPerExtraction = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "disclosure_pages_per_extraction",
			Help:    "Number of listing pages fetched per extraction",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
		},
	)
)

// Summary metrics track PDF summary requests
var (
	// SummaryRequestsTotal counts summary requests by how they were answered
	SummaryRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "disclosure_summary_requests_total",
			Help: "Total number of PDF summary requests by method",
		},
		[]string{"method"},
	)
)
