// Package worker runs the scheduled disclosure snapshot: a cron job that
// extracts the day's listing and writes it as a CSV file, plus the health
// server the job is checked through.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"disclosure-feed/internal/pkg/config"
)

// WorkerConfig holds the settings of the snapshot worker.
//
// Environment variables:
//   - CRON_SCHEDULE: five-field cron expression (default: "30 23 * * 1-5")
//   - WORKER_TIMEZONE: IANA name the schedule and the snapshot date use (default: "Asia/Tokyo")
//   - JOB_TIMEOUT: duration, 1m to 2h (default: 10m)
//   - WORKER_HEALTH_PORT: 1024-65535 (default: 9091)
//   - OUTPUT_DIR: directory CSV files are written to (default: "data")
type WorkerConfig struct {
	// CronSchedule fires the snapshot job. The default runs after the
	// trading day's listing has settled, Monday to Friday.
	CronSchedule string

	Timezone string

	// JobTimeout bounds one extraction plus file write.
	JobTimeout time.Duration

	HealthPort int

	OutputDir string
}

// DefaultConfig returns the production defaults.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule: "30 23 * * 1-5",
		Timezone:     "Asia/Tokyo",
		JobTimeout:   10 * time.Minute,
		HealthPort:   9091,
		OutputDir:    "data",
	}
}

// Validate checks every field and reports all failures together.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := validateJobTimeout(c.JobTimeout); err != nil {
		errs = append(errs, fmt.Errorf("job timeout: %w", err))
	}
	if err := validateHealthPort(c.HealthPort); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateOutputDir(c.OutputDir); err != nil {
		errs = append(errs, fmt.Errorf("output dir: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// Location returns the configured timezone, or UTC if it cannot be loaded.
func (c *WorkerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func validateJobTimeout(d time.Duration) error {
	return config.ValidateDuration(d, time.Minute, 2*time.Hour)
}

func validateHealthPort(p int) error {
	return config.ValidateIntRange(p, 1024, 65535)
}

// LoadConfigFromEnv loads the worker configuration fail-open: each invalid
// value is replaced by its default, logged and counted. The returned
// configuration is always valid.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) *WorkerConfig {
	cfg := DefaultConfig()
	fallback := false

	note := func(field, warning string) {
		fallback = true
		metrics.RecordFallback(field)
		logger.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}

	if r := config.LoadEnvString("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule); r.FallbackApplied {
		note("cron_schedule", r.Warning)
	} else {
		cfg.CronSchedule = r.Value
	}

	if r := config.LoadEnvString("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone); r.FallbackApplied {
		note("timezone", r.Warning)
	} else {
		cfg.Timezone = r.Value
	}

	if r := config.LoadEnvDuration("JOB_TIMEOUT", cfg.JobTimeout, validateJobTimeout); r.FallbackApplied {
		note("job_timeout", r.Warning)
	} else {
		cfg.JobTimeout = r.Value
	}

	if r := config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, validateHealthPort); r.FallbackApplied {
		note("health_port", r.Warning)
	} else {
		cfg.HealthPort = r.Value
	}

	if r := config.LoadEnvString("OUTPUT_DIR", cfg.OutputDir, config.ValidateOutputDir); r.FallbackApplied {
		note("output_dir", r.Warning)
	} else {
		cfg.OutputDir = r.Value
	}

	metrics.SetFallbackActive(fallback)
	metrics.RecordLoadTimestamp()

	return &cfg
}
