// Package config provides fail-open environment loading for long-running components.
//
// A value that is missing falls back to its default silently. A value that is
// present but unparsable or rejected by its validator also falls back, and the
// result carries a warning so the caller can log it and count it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Result is the outcome of loading one environment variable.
type Result[T any] struct {
	Value           T
	Warning         string
	FallbackApplied bool
}

// LoadEnvString loads a string value, validating it when validator is non-nil.
func LoadEnvString(envKey, defaultValue string, validator func(string) error) Result[string] {
	return load(envKey, defaultValue, func(s string) (string, error) { return s, nil }, validator)
}

// LoadEnvInt loads a base-10 integer.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) Result[int] {
	return load(envKey, defaultValue, strconv.Atoi, validator)
}

// LoadEnvDuration loads a time.ParseDuration string such as "30m".
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) Result[time.Duration] {
	return load(envKey, defaultValue, time.ParseDuration, validator)
}

func load[T any](envKey string, defaultValue T, parse func(string) (T, error), validator func(T) error) Result[T] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return Result[T]{Value: defaultValue}
	}

	fallback := func(err error) Result[T] {
		return Result[T]{
			Value:           defaultValue,
			Warning:         fmt.Sprintf("invalid %s=%q: %v, falling back to default '%v'", envKey, raw, err, defaultValue),
			FallbackApplied: true,
		}
	}

	v, err := parse(raw)
	if err != nil {
		return fallback(err)
	}
	if validator != nil {
		if err := validator(v); err != nil {
			return fallback(err)
		}
	}
	return Result[T]{Value: v}
}
