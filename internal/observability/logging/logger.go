// Package logging provides structured logging utilities using the standard library's log/slog package.
// It offers helper functions for creating loggers with consistent configuration and context propagation.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"disclosure-feed/internal/handler/http/requestid"
)

// level reads LOG_LEVEL; only "debug" lowers the default info level.
func level() slog.Level {
	if os.Getenv("LOG_LEVEL") == "debug" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// NewLogger creates a new structured logger with JSON output on stdout.
// The log level can be controlled via the LOG_LEVEL environment variable.
func NewLogger() *slog.Logger {
	lv := level()
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     lv,
		AddSource: lv <= slog.LevelWarn,
	}))
}

// NewTextLogger creates a human-readable logger writing to w.
// The CLI passes os.Stderr so stdout stays free for record previews.
func NewTextLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level()}))
}

// WithRequestID returns a new logger that includes the request ID from the context.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}

// FromContext retrieves the logger from the context, or returns the default logger if not found.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

type contextKey string

const loggerContextKey contextKey = "logger"
