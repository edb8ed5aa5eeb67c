package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"disclosure-feed/internal/domain/entity"
	"disclosure-feed/internal/handler/http/respond"
	"disclosure-feed/internal/infra/export"
	"disclosure-feed/internal/infra/notifier"
	"disclosure-feed/internal/observability/logging"
	"disclosure-feed/internal/usecase/disclosure"
)

// Extractor is the part of disclosure.Service the job depends on.
type Extractor interface {
	ExtractAllWithStats(ctx context.Context, date string) ([]entity.Disclosure, *disclosure.ExtractStats, error)
}

// SnapshotJob extracts one day's listing and writes it to OutputDir.
type SnapshotJob struct {
	Svc       Extractor
	OutputDir string
	Timeout   time.Duration
	Location  *time.Location
	Metrics   *WorkerMetrics
	Logger    *slog.Logger

	// Notifier receives the outcome of every run. Nil disables notifications.
	Notifier notifier.Notifier

	// Now is overridable in tests.
	Now func() time.Time
}

// NewSnapshotJob wires a job from cfg.
func NewSnapshotJob(svc Extractor, cfg *WorkerConfig, metrics *WorkerMetrics, logger *slog.Logger, n notifier.Notifier) *SnapshotJob {
	return &SnapshotJob{
		Svc:       svc,
		OutputDir: cfg.OutputDir,
		Timeout:   cfg.JobTimeout,
		Location:  cfg.Location(),
		Metrics:   metrics,
		Logger:    logger,
		Notifier:  n,
		Now:       time.Now,
	}
}

// Date returns today's listing date in the job's timezone, formatted YYYYMMDD.
func (j *SnapshotJob) Date() string {
	loc := j.Location
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	return now().In(loc).Format("20060102")
}

// Run performs one snapshot and returns the written path.
// A day without disclosures writes no file and returns an empty path.
func (j *SnapshotJob) Run(ctx context.Context) (string, error) {
	start := time.Now()
	date := j.Date()
	logger := j.Logger.With(slog.String("date", date))
	ctx = logging.WithLogger(ctx, logger)

	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	logger.Info("snapshot started")

	path, n, err := j.snapshot(ctx, date)
	elapsed := time.Since(start)
	if err != nil {
		// 機密情報をマスクしてログ出力
		logger.Error("snapshot failed", slog.Any("error", respond.SanitizeError(err)))
		j.Metrics.RecordJob(JobFailure, elapsed)
		j.notify(logger, notifier.Summary{Date: date, Duration: elapsed, Err: errors.New(respond.SanitizeError(err))})
		return "", err
	}

	j.Metrics.RecordJob(JobSuccess, elapsed)
	j.Metrics.RecordRecordsWritten(n)
	logger.Info("snapshot completed",
		slog.Int("records", n),
		slog.String("path", path),
		slog.Duration("duration", elapsed))
	j.notify(logger, notifier.Summary{Date: date, Records: n, Path: path, Duration: elapsed})
	return path, nil
}

// notify delivers s on a fresh context so a timed-out run can still report.
func (j *SnapshotJob) notify(logger *slog.Logger, s notifier.Summary) {
	if j.Notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := j.Notifier.Notify(ctx, s); err != nil {
		logger.Warn("snapshot notification failed", slog.Any("error", respond.SanitizeError(err)))
	}
}

func (j *SnapshotJob) snapshot(ctx context.Context, date string) (string, int, error) {
	records, stats, err := j.Svc.ExtractAllWithStats(ctx, date)
	if err != nil {
		return "", 0, fmt.Errorf("extract: %w", err)
	}
	if len(records) == 0 {
		j.Logger.Info("no disclosures for date, skipping file",
			slog.String("date", date),
			slog.Int("pages", stats.Pages),
			slog.String("stop", stats.Stop))
		return "", 0, nil
	}

	path := filepath.Join(j.OutputDir, export.FileName(date))
	if err := export.WriteCSVFile(path, records); err != nil {
		return "", 0, fmt.Errorf("write snapshot: %w", err)
	}
	return path, len(records), nil
}
