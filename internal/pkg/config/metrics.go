package config

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ConfigMetrics tracks configuration loading for one component.
// Metric names are prefixed with the component name, e.g. worker_config_fallbacks_total.
type ConfigMetrics struct {
	LoadTimestamp         prometheus.Gauge
	ValidationErrorsTotal *prometheus.CounterVec
	FallbacksTotal        *prometheus.CounterVec
	FallbackActive        prometheus.Gauge
}

// NewConfigMetrics registers the configuration metrics for component with reg.
// Each component name may be registered once per registry.
func NewConfigMetrics(reg prometheus.Registerer, component string) *ConfigMetrics {
	f := promauto.With(reg)
	return &ConfigMetrics{
		LoadTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_load_timestamp", component),
			Help: fmt.Sprintf("Unix timestamp of last %s configuration load", component),
		}),
		ValidationErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_validation_errors_total", component),
			Help: fmt.Sprintf("Total number of %s configuration validation errors", component),
		}, []string{"field"}),
		FallbacksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_fallbacks_total", component),
			Help: fmt.Sprintf("Total number of %s configuration fallback operations", component),
		}, []string{"field"}),
		FallbackActive: f.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_fallback_active", component),
			Help: fmt.Sprintf("1 if any %s configuration fallback is active, 0 otherwise", component),
		}),
	}
}

// RecordLoadTimestamp marks the time of the latest load.
func (m *ConfigMetrics) RecordLoadTimestamp() {
	m.LoadTimestamp.SetToCurrentTime()
}

// RecordFallback counts one rejected value for field.
func (m *ConfigMetrics) RecordFallback(field string) {
	m.ValidationErrorsTotal.WithLabelValues(field).Inc()
	m.FallbacksTotal.WithLabelValues(field).Inc()
}

// SetFallbackActive reports whether the loaded configuration contains any default substitution.
func (m *ConfigMetrics) SetFallbackActive(active bool) {
	if active {
		m.FallbackActive.Set(1)
		return
	}
	m.FallbackActive.Set(0)
}
