package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"disclosure-feed/internal/observability/logging"
	"disclosure-feed/internal/observability/metrics"
	"disclosure-feed/internal/observability/tracing"
)

// Summary methods reported to clients.
const (
	MethodAI       = "ai"
	MethodFallback = "fallback"
)

// User-facing texts appended to or replacing a summary.
const (
	msgNoText    = "申し訳ございませんが、このPDFからテキストを抽出できませんでした。画像ベースのPDFか、保護されたPDFの可能性があります。"
	noteNoAI     = "\n\n※ より詳細な分析のため、AI API キーを設定してください。"
	noteAIFailed = "\n\n※ AI分析に失敗したため、基本的な要約を表示しています。"
)

// Downloader retrieves a document by URL.
type Downloader interface {
	Download(ctx context.Context, rawURL string) ([]byte, error)
}

// TextExtractor returns the plain text of a PDF.
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// Summarizer produces a summary of one document.
type Summarizer interface {
	Summarize(ctx context.Context, title, text string) (string, error)
	Engine() string
}

// Result is one generated summary.
type Result struct {
	Summary string
	// TextLength is the extracted text length in characters; zero when no text was found.
	TextLength int
	// Method is MethodAI or MethodFallback; empty when no text was found.
	Method string
}

// Service downloads a PDF, extracts its text and summarizes it.
type Service struct {
	Downloader Downloader
	Extractor  TextExtractor
	// AI is optional. When nil every summary comes from Fallback.
	AI       Summarizer
	Fallback Summarizer

	// Location is used for the analysis timestamp. Nil means UTC.
	Location *time.Location
	// Now is overridable in tests.
	Now func() time.Time
}

// NewService creates a summary Service stamping times in Asia/Tokyo.
func NewService(d Downloader, e TextExtractor, ai, fallback Summarizer) *Service {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		loc = time.UTC
	}
	return &Service{
		Downloader: d,
		Extractor:  e,
		AI:         ai,
		Fallback:   fallback,
		Location:   loc,
		Now:        time.Now,
	}
}

// Summarize produces the summary of the PDF at pdfURL.
//
// An AI failure is not an error: the fallback summary is returned with a note.
// Download and parse failures are returned wrapped in ErrDownloadTimeout,
// ErrDownloadFailed or ErrExtractFailed.
func (s *Service) Summarize(ctx context.Context, pdfURL, title string) (*Result, error) {
	if err := ValidatePDFURL(pdfURL); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "summary.Summarize",
		attribute.String("summary.title", title))
	defer span.End()
	logger := logging.FromContext(ctx)

	data, err := s.Downloader.Download(ctx, pdfURL)
	if err != nil {
		tracing.RecordError(span, err)
		metrics.RecordSummaryRequest(metrics.SummaryError)
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %w", ErrDownloadTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	text, err := s.Extractor.ExtractText(data)
	if err != nil {
		tracing.RecordError(span, err)
		metrics.RecordSummaryRequest(metrics.SummaryError)
		return nil, fmt.Errorf("%w: %w", ErrExtractFailed, err)
	}

	if strings.TrimSpace(text) == "" {
		logger.Info("no text in document", slog.Int("bytes", len(data)))
		metrics.RecordSummaryRequest(metrics.SummaryEmpty)
		return &Result{Summary: msgNoText}, nil
	}

	length := utf8.RuneCountInString(text)
	span.SetAttributes(attribute.Int("summary.text_length", length))

	if s.AI == nil {
		return s.fallback(ctx, title, text, length, noteNoAI)
	}

	summary, err := s.AI.Summarize(ctx, title, text)
	if err != nil {
		logger.Warn("AI summary failed, using fallback",
			slog.String("engine", s.AI.Engine()),
			slog.Any("error", err))
		return s.fallback(ctx, title, text, length, noteAIFailed)
	}

	metrics.RecordSummaryRequest(metrics.SummaryAI)
	return &Result{
		Summary:    summary + s.analysisFooter(length, s.AI.Engine()),
		TextLength: length,
		Method:     MethodAI,
	}, nil
}

func (s *Service) fallback(ctx context.Context, title, text string, length int, note string) (*Result, error) {
	summary, err := s.Fallback.Summarize(ctx, title, text)
	if err != nil {
		return nil, fmt.Errorf("fallback summary: %w", err)
	}
	metrics.RecordSummaryRequest(metrics.SummaryFallback)
	return &Result{
		Summary:    summary + note,
		TextLength: length,
		Method:     MethodFallback,
	}, nil
}

var countPrinter = message.NewPrinter(language.Japanese)

func (s *Service) analysisFooter(length int, engine string) string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return "\n\n──────────────────\n■ 分析情報\n" +
		countPrinter.Sprintf("- 文字数: %d文字\n", length) +
		"- 分析日時: " + now().In(loc).Format("2006/1/2 15:04:05") + "\n" +
		"- 分析エンジン: " + engine
}

// ValidatePDFURL accepts absolute http and https URLs.
func ValidatePDFURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrPDFURLRequired
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidPDFURL
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
