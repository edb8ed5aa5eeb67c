// Package pdftext downloads disclosure PDFs and extracts their plain text.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"disclosure-feed/pkg/config"
)

var (
	// ErrTooLarge indicates the document exceeded Config.MaxSize.
	ErrTooLarge = errors.New("pdf exceeds size limit")

	// ErrUnreadable indicates the bytes could not be parsed as a PDF.
	ErrUnreadable = errors.New("pdf could not be parsed")
)

// StatusError reports a document response with an unexpected status code.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// Config bounds one document download.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	MaxSize   int64
}

// DefaultConfig returns the download settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		UserAgent: "Mozilla/5.0 (compatible; TDnet-Viewer/1.0)",
		Timeout:   30 * time.Second,
		MaxSize:   20 << 20,
	}
}

// LoadConfigFromEnv reads PDF_USER_AGENT, PDF_FETCH_TIMEOUT and PDF_MAX_SIZE.
func LoadConfigFromEnv() Config {
	def := DefaultConfig()
	return Config{
		UserAgent: config.GetEnvString("PDF_USER_AGENT", def.UserAgent),
		Timeout:   config.GetEnvDuration("PDF_FETCH_TIMEOUT", def.Timeout),
		MaxSize:   config.GetEnvInt64("PDF_MAX_SIZE", def.MaxSize),
	}
}

// Downloader fetches a document with a single GET.
type Downloader struct {
	client    *http.Client
	userAgent string
	maxSize   int64
}

// NewDownloader creates a Downloader whose client is bounded by cfg.Timeout.
func NewDownloader(cfg Config) *Downloader {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = def.MaxSize
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	return &Downloader{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		maxSize:   cfg.MaxSize,
	}
}

// Download returns the body of rawURL. Non-2xx responses yield *StatusError.
func (d *Downloader) Download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, d.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > d.maxSize {
		return nil, ErrTooLarge
	}
	return body, nil
}
