// Package config reads process settings from environment variables.
//
// Unlike internal/pkg/config these helpers return plain values: a malformed
// value is logged at warn level and replaced by the default.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// GetEnvString returns the value of key, or defaultValue when unset or empty.
func GetEnvString(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvInt returns key parsed as a base-10 integer.
func GetEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid integer value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Int("default", defaultValue),
			slog.String("error", err.Error()))
		return defaultValue
	}
	return v
}

// GetEnvInt64 returns key parsed as a base-10 int64.
func GetEnvInt64(key string, defaultValue int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		slog.Warn("invalid integer value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Int64("default", defaultValue),
			slog.String("error", err.Error()))
		return defaultValue
	}
	return v
}

// GetEnvDuration returns key parsed by time.ParseDuration.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.String("default", defaultValue.String()),
			slog.String("error", err.Error()))
		return defaultValue
	}
	return v
}
