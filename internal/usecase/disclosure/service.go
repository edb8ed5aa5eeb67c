package disclosure

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"disclosure-feed/internal/domain/entity"
	"disclosure-feed/internal/observability/logging"
	"disclosure-feed/internal/observability/metrics"
	"disclosure-feed/internal/observability/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// PageStatus classifies the outcome of fetching one listing page.
type PageStatus int

const (
	// StatusOK means the page was retrieved and its body is available.
	StatusOK PageStatus = iota
	// StatusNotFound means the listing has no such page; this is the normal end of pagination.
	StatusNotFound
	// StatusError covers transport failures and any other non-success response.
	StatusError
)

// String returns the metric/log label of the status.
func (s PageStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// PageFetcher retrieves one listing page for a date.
// A missing page is reported as StatusNotFound with a nil error.
type PageFetcher interface {
	FetchPage(ctx context.Context, page int, date string) ([]byte, PageStatus, error)
}

// RowExtractor turns a listing page body into disclosure records in table order.
type RowExtractor interface {
	Extract(body []byte) ([]entity.Disclosure, error)
}

// Service walks the listing pages for a date until a page yields no records.
type Service struct {
	Fetcher   PageFetcher
	Extractor RowExtractor
	// MaxPages caps the number of page fetches per extraction. Zero means unbounded.
	MaxPages int
}

// NewService creates a disclosure Service.
func NewService(fetcher PageFetcher, extractor RowExtractor, maxPages int) *Service {
	return &Service{
		Fetcher:   fetcher,
		Extractor: extractor,
		MaxPages:  maxPages,
	}
}

// ExtractStats summarizes one extraction run.
type ExtractStats struct {
	Pages    int
	Records  int
	Stop     string
	Duration time.Duration
}

// ExtractAll fetches pages 1, 2, ... for date and returns every record in
// page order. It stops at the first page that yields nothing (not found,
// fetch error, missing table or no qualifying rows) or once MaxPages fetches
// have been made. The result is never nil.
//
// Page-level failures are logged and end pagination without an error; only an
// invalid date, a misconfigured Service or a canceled context is returned.
func (s *Service) ExtractAll(ctx context.Context, date string) ([]entity.Disclosure, error) {
	records, _, err := s.ExtractAllWithStats(ctx, date)
	return records, err
}

// ExtractAllWithStats is ExtractAll that also reports run statistics.
func (s *Service) ExtractAllWithStats(ctx context.Context, date string) ([]entity.Disclosure, *ExtractStats, error) {
	if s.Fetcher == nil {
		return nil, nil, ErrFetcherNotConfigured
	}
	if s.Extractor == nil {
		return nil, nil, ErrExtractorNotConfigured
	}
	if err := entity.ValidateDisclosureDate(date); err != nil {
		return nil, nil, fmt.Errorf("extract disclosures: %w", err)
	}

	ctx, span := tracing.StartSpan(ctx, "disclosure.extract_all",
		attribute.String("disclosure.date", date),
		attribute.Int("disclosure.max_pages", s.MaxPages),
	)
	defer span.End()

	logger := logging.FromContext(ctx).With(slog.String("date", date))
	start := time.Now()
	stats := &ExtractStats{}
	all := make([]entity.Disclosure, 0)

	for page := 1; ; page++ {
		if s.MaxPages > 0 && page > s.MaxPages {
			stats.Stop = metrics.StopCeiling
			logger.Warn("page ceiling reached, stopping pagination",
				slog.Int("max_pages", s.MaxPages))
			break
		}
		if err := ctx.Err(); err != nil {
			metrics.RecordPaginationStop(metrics.StopCanceled, stats.Pages)
			tracing.RecordError(span, err)
			return nil, nil, fmt.Errorf("extract disclosures: %w", err)
		}

		records := s.processPage(ctx, logger, page, date)
		stats.Pages++

		if len(records) == 0 {
			// A fetch aborted by cancellation must not pass for a normal end of data.
			if err := ctx.Err(); err != nil {
				metrics.RecordPaginationStop(metrics.StopCanceled, stats.Pages)
				tracing.RecordError(span, err)
				return nil, nil, fmt.Errorf("extract disclosures: %w", err)
			}
			stats.Stop = metrics.StopExhausted
			break
		}
		all = append(all, records...)
	}

	stats.Records = len(all)
	stats.Duration = time.Since(start)
	metrics.RecordPaginationStop(stats.Stop, stats.Pages)
	span.SetAttributes(
		attribute.Int("disclosure.pages", stats.Pages),
		attribute.Int("disclosure.records", stats.Records),
		attribute.String("disclosure.stop", stats.Stop),
	)

	logger.Info("extraction completed",
		slog.Int("pages", stats.Pages),
		slog.Int("records", stats.Records),
		slog.String("stop", stats.Stop),
		slog.Duration("duration", stats.Duration))

	return all, stats, nil
}

// processPage fetches and extracts one page. Every failure collapses into an
// empty result; the distinction survives only in logs, metrics and the span.
func (s *Service) processPage(ctx context.Context, logger *slog.Logger, page int, date string) []entity.Disclosure {
	ctx, span := tracing.StartSpan(ctx, "disclosure.page",
		attribute.Int("disclosure.page", page))
	defer span.End()

	start := time.Now()
	body, status, err := s.Fetcher.FetchPage(ctx, page, date)
	if err != nil && status == StatusOK {
		status = StatusError
	}
	metrics.RecordPageFetch(status.String(), time.Since(start))
	span.SetAttributes(attribute.String("disclosure.page_status", status.String()))

	switch status {
	case StatusNotFound:
		logger.Info("page not found, stopping pagination", slog.Int("page", page))
		return nil
	case StatusError:
		tracing.RecordError(span, err)
		logger.Warn("page fetch failed, stopping pagination",
			slog.Int("page", page),
			slog.Any("error", err))
		return nil
	}

	records, err := s.Extractor.Extract(body)
	if err != nil {
		tracing.RecordError(span, err)
		logger.Warn("page extraction failed",
			slog.Int("page", page),
			slog.Any("error", err))
		return nil
	}

	metrics.RecordRecordsExtracted(len(records))
	logger.Debug("page extracted",
		slog.Int("page", page),
		slog.Int("records", len(records)))

	return records
}
