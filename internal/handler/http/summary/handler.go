// Package summary exposes PDF summaries of disclosure documents over HTTP.
package summary

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"disclosure-feed/internal/handler/http/respond"
	"disclosure-feed/internal/observability/logging"
	summaryUC "disclosure-feed/internal/usecase/summary"
)

// Client-facing messages.
const (
	msgMethodNotAllowed = "Only POST method is allowed"
	msgPDFURLRequired   = "PDF URL is required"
	msgBodyTooLarge     = "Request body too large"
	msgDownloadFailed   = "PDFのダウンロードに失敗しました。URLが正しいか確認してください。"
	msgDownloadTimeout  = "PDFのダウンロードがタイムアウトしました。"
	msgSummaryFailed    = "サマリーの生成に失敗しました。"
)

// Summarizer produces the summary of one document.
type Summarizer interface {
	Summarize(ctx context.Context, pdfURL, title string) (*summaryUC.Result, error)
}

// Request is the POST body.
type Request struct {
	PDFURL string `json:"pdfUrl"`
	Title  string `json:"title"`
}

// Response is the success body. TextLength and Method are omitted when the
// document had no extractable text.
type Response struct {
	Success    bool   `json:"success"`
	Summary    string `json:"summary"`
	TextLength int    `json:"textLength,omitempty"`
	Method     string `json:"method,omitempty"`
}

// Handler serves POST {"pdfUrl": "...", "title": "..."}.
type Handler struct {
	Svc    Summarizer
	Logger *slog.Logger
	// Timeout bounds one summary including download and model call.
	Timeout time.Duration
}

// Register mounts the summary endpoint on mux.
func Register(mux *http.ServeMux, svc Summarizer, timeout time.Duration, logger *slog.Logger) {
	mux.Handle("/api/summary", Handler{Svc: svc, Logger: logger, Timeout: timeout})
}

// ServeHTTP 開示資料PDFの要約を生成
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	if h.Logger != nil {
		logger = logging.WithRequestID(r.Context(), h.Logger)
	}

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		respond.Error(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		respond.Error(w, http.StatusBadRequest, msgPDFURLRequired)
		return
	}

	ctx := logging.WithLogger(r.Context(), logger)
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	res, err := h.Svc.Summarize(ctx, req.PDFURL, req.Title)
	if err != nil {
		status, msg := classify(err)
		if status >= http.StatusInternalServerError {
			logger.Error("summary failed",
				slog.String("title", req.Title),
				slog.String("error", respond.SanitizeError(err)))
		}
		respond.Error(w, status, msg)
		return
	}

	respond.JSON(w, http.StatusOK, Response{
		Success:    true,
		Summary:    res.Summary,
		TextLength: res.TextLength,
		Method:     res.Method,
	})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, summaryUC.ErrPDFURLRequired):
		return http.StatusBadRequest, msgPDFURLRequired
	case errors.Is(err, summaryUC.ErrInvalidPDFURL):
		return http.StatusBadRequest, summaryUC.ErrInvalidPDFURL.Error()
	case errors.Is(err, summaryUC.ErrDownloadTimeout):
		return http.StatusInternalServerError, msgDownloadTimeout
	case errors.Is(err, summaryUC.ErrDownloadFailed):
		return http.StatusInternalServerError, msgDownloadFailed
	default:
		return http.StatusInternalServerError, msgSummaryFailed
	}
}
