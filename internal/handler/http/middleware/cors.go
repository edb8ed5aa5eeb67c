// Package middleware holds HTTP middleware that is configured per deployment.
package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// Wildcard allows every origin.
const Wildcard = "*"

// CORSConfig holds the configuration for CORS middleware.
type CORSConfig struct {
	// AllowedOrigins lists permitted origins. "*" allows any origin and is
	// answered with a literal "*" rather than an echo.
	AllowedOrigins []string

	// AllowedMethods is returned on preflight responses.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string

	// AllowedHeaders is returned on preflight responses.
	// Default: ["Content-Type"]
	AllowedHeaders []string

	// MaxAge is how long, in seconds, browsers may cache a preflight result.
	// Default: 3600
	MaxAge int

	// Logger receives rejected-origin warnings. Nil disables them.
	Logger *slog.Logger
}

// DefaultCORSConfig allows any origin to POST JSON.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{Wildcard},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         3600,
	}
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or "" if not allowed.
func (c CORSConfig) allowOrigin(origin string) string {
	for _, o := range c.AllowedOrigins {
		if o == Wildcard {
			return Wildcard
		}
		if origin != "" && o == origin {
			return origin
		}
	}
	return ""
}

// CORS returns middleware that sets CORS headers on every response and
// answers OPTIONS preflight requests with 204 without calling next.
//
// Behavior:
//   - With a wildcard origin, headers are set even when the request has no Origin.
//   - With a whitelist, the matching origin is echoed and "Vary: Origin" is added.
//   - A disallowed origin gets no CORS headers; the browser blocks the response.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := config.allowOrigin(origin)

			if allowed != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowed)
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				if allowed != Wildcard {
					w.Header().Add("Vary", "Origin")
				}
			} else if origin != "" && config.Logger != nil {
				config.Logger.Warn("CORS: origin not allowed",
					slog.String("origin", origin),
					slog.String("path", r.URL.Path),
					slog.String("method", r.Method))
			}

			if r.Method == http.MethodOptions {
				if allowed != "" {
					w.Header().Set("Access-Control-Max-Age", maxAge)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
