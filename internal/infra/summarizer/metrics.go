package summarizer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Call outcomes.
const (
	CallSuccess = "success"
	CallFailure = "failure"
)

// Metrics records AI summarization calls. A nil *Metrics records nothing.
type Metrics struct {
	CallsTotal         *prometheus.CounterVec
	CallDuration       *prometheus.HistogramVec
	SummaryLength      prometheus.Histogram
	LimitExceededTotal prometheus.Counter
}

// NewMetrics registers the summarizer metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "summarizer_calls_total",
			Help: "Total number of AI summarization calls by provider and status",
		}, []string{"provider", "status"}),
		CallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "summarizer_call_duration_seconds",
			Help:    "Time taken to generate a summary via AI API",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"provider"}),
		SummaryLength: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "summarizer_summary_length_characters",
			Help:    "Distribution of summary lengths in characters (Unicode runes)",
			Buckets: []float64{100, 300, 500, 700, 900, 1100, 1500, 2000},
		}),
		LimitExceededTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "summarizer_limit_exceeded_total",
			Help: "Total number of summaries exceeding the configured character limit",
		}),
	}
}

// RecordCall records one provider call and its latency.
func (m *Metrics) RecordCall(provider string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := CallSuccess
	if err != nil {
		status = CallFailure
	}
	m.CallsTotal.WithLabelValues(provider, status).Inc()
	m.CallDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordSummary records the length of a generated summary against limit.
func (m *Metrics) RecordSummary(length, limit int) {
	if m == nil {
		return
	}
	m.SummaryLength.Observe(float64(length))
	if length > limit {
		m.LimitExceededTotal.Inc()
	}
}
