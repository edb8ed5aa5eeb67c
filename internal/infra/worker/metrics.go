package worker

import (
	"time"

	"disclosure-feed/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job run outcomes.
const (
	JobSuccess = "success"
	JobFailure = "failure"
)

// WorkerMetrics exposes the configuration metrics plus snapshot job metrics:
//   - worker_job_runs_total{status}
//   - worker_job_duration_seconds
//   - worker_job_records_written_total
//   - worker_job_last_success_timestamp
type WorkerMetrics struct {
	*config.ConfigMetrics

	JobRunsTotal         *prometheus.CounterVec
	JobDurationSeconds   prometheus.Histogram
	RecordsWrittenTotal  prometheus.Counter
	LastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics registers the worker metrics with reg.
// Pass prometheus.DefaultRegisterer in production.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	f := promauto.With(reg)
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics(reg, "worker"),

		JobRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Total number of snapshot job runs by status (success/failure)",
		}, []string{"status"}),

		JobDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of snapshot job execution in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),

		RecordsWrittenTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "worker_job_records_written_total",
			Help: "Total number of disclosure records written to snapshot files",
		}),

		LastSuccessTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful snapshot job",
		}),
	}
}

// RecordJob records the outcome and duration of one run.
func (m *WorkerMetrics) RecordJob(status string, d time.Duration) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
	m.JobDurationSeconds.Observe(d.Seconds())
	if status == JobSuccess {
		m.LastSuccessTimestamp.SetToCurrentTime()
	}
}

// RecordRecordsWritten adds n written records.
func (m *WorkerMetrics) RecordRecordsWritten(n int) {
	if n > 0 {
		m.RecordsWrittenTotal.Add(float64(n))
	}
}
