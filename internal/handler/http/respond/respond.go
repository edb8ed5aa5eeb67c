// Package respond provides utilities for sending HTTP responses in JSON format.
// It includes error handling with sanitization to prevent leaking sensitive information.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorBody is the shape of client-facing errors.
type ErrorBody struct {
	Error string `json:"error"`
}

// FailureBody is the shape of internal failures raised while serving a request.
type FailureBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// ヘッダー送信済みのためログのみ
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes {"error": msg} with the given status code.
func Error(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, ErrorBody{Error: msg})
}

// SafeError writes a generic "internal server error" body for 5xx codes and
// logs the sanitized cause. Lower codes echo err's message.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	if code < http.StatusInternalServerError {
		Error(w, code, err.Error())
		return
	}
	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	Error(w, code, "internal server error")
}

// Failure writes {"success": false, "error": "Internal server error", "message": ...}
// with status 500. The message carries the sanitized cause.
func Failure(w http.ResponseWriter, err error) {
	JSON(w, http.StatusInternalServerError, FailureBody{
		Success: false,
		Error:   "Internal server error",
		Message: SanitizeError(err),
	})
}
