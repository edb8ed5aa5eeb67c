// Package disclosure exposes the disclosure extraction over HTTP.
package disclosure

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"disclosure-feed/internal/domain/entity"
	"disclosure-feed/internal/handler/http/respond"
	"disclosure-feed/internal/observability/logging"
)

// Client-facing messages.
const (
	msgMethodNotAllowed = "Only POST method is allowed"
	msgDateRequired     = "Date is required in request body"
	msgDateFormat       = "Date must be in YYYYMMDD format"
	msgBodyTooLarge     = "Request body too large"
)

// Lister runs a full extraction for one date.
type Lister interface {
	ExtractAll(ctx context.Context, date string) ([]entity.Disclosure, error)
}

// ListRequest is the POST body. Date is decoded loosely so a non-string value
// is reported as a format error rather than a decode failure.
type ListRequest struct {
	Date any `json:"date"`
}

// ListResponse is the success body.
type ListResponse struct {
	Success bool                `json:"success"`
	Data    []entity.Disclosure `json:"data"`
	Count   int                 `json:"count"`
	Date    string              `json:"date"`
}

// ListHandler serves POST {"date":"YYYYMMDD"} with every disclosure for that date.
type ListHandler struct {
	Svc    Lister
	Logger *slog.Logger
	// Timeout bounds one extraction; zero leaves only the client's own deadline.
	Timeout time.Duration
}

// ServeHTTP 指定日の適時開示一覧を取得
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	if h.Logger != nil {
		logger = logging.WithRequestID(r.Context(), h.Logger)
	}

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		respond.Error(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}

	date, status, msg := parseDate(r)
	if status != 0 {
		logger.Warn("invalid disclosure request",
			slog.Int("status", status),
			slog.String("reason", msg))
		respond.Error(w, status, msg)
		return
	}

	ctx := r.Context()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	records, err := h.Svc.ExtractAll(ctx, date)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidDate) || errors.Is(err, entity.ErrDateRequired) {
			respond.Error(w, http.StatusBadRequest, msgDateFormat)
			return
		}
		logger.Error("disclosure extraction failed",
			slog.String("date", date),
			slog.String("error", respond.SanitizeError(err)))
		respond.Failure(w, err)
		return
	}

	if records == nil {
		records = []entity.Disclosure{}
	}
	respond.JSON(w, http.StatusOK, ListResponse{
		Success: true,
		Data:    records,
		Count:   len(records),
		Date:    date,
	})
}

// parseDate decodes and validates the body. On failure it returns the status
// and message to send; status is 0 when date is usable.
func parseDate(r *http.Request) (string, int, string) {
	var req ListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", http.StatusRequestEntityTooLarge, msgBodyTooLarge
		}
		return "", http.StatusBadRequest, msgDateRequired
	}

	if req.Date == nil {
		return "", http.StatusBadRequest, msgDateRequired
	}
	date, ok := req.Date.(string)
	if !ok {
		return "", http.StatusBadRequest, msgDateFormat
	}

	switch err := entity.ValidateDisclosureDate(date); {
	case errors.Is(err, entity.ErrDateRequired):
		return "", http.StatusBadRequest, msgDateRequired
	case err != nil:
		return "", http.StatusBadRequest, msgDateFormat
	}
	return date, 0, ""
}
