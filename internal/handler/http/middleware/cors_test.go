package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS_WildcardPreflight(t *testing.T) {
	var called bool
	handler := CORS(DefaultCORSConfig())(okHandler(&called))

	req := httptest.NewRequest(http.MethodOptions, "/api/tdnet", nil)
	req.Header.Set("Origin", "https://viewer.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.False(t, called, "preflight must not reach the handler")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rr.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "3600", rr.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, rr.Body.String())
}

func TestCORS_WildcardWithoutOriginHeader(t *testing.T) {
	var called bool
	handler := CORS(DefaultCORSConfig())(okHandler(&called))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/tdnet", nil))

	assert.True(t, called)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rr.Header().Get("Access-Control-Max-Age"), "max age is preflight only")
}

func TestCORS_Whitelist(t *testing.T) {
	var logBuf bytes.Buffer
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://viewer.example.com"}
	cfg.Logger = slog.New(slog.NewJSONHandler(&logBuf, nil))

	tests := []struct {
		name       string
		origin     string
		wantOrigin string
		wantVary   string
	}{
		{name: "allowed origin is echoed", origin: "https://viewer.example.com", wantOrigin: "https://viewer.example.com", wantVary: "Origin"},
		{name: "other origin gets nothing", origin: "https://evil.example.com", wantOrigin: "", wantVary: ""},
		{name: "no origin gets nothing", origin: "", wantOrigin: "", wantVary: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			handler := CORS(cfg)(okHandler(&called))

			req := httptest.NewRequest(http.MethodPost, "/api/tdnet", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.True(t, called)
			assert.Equal(t, tt.wantOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantVary, rr.Header().Get("Vary"))
		})
	}

	assert.Contains(t, logBuf.String(), "origin not allowed")
	assert.Contains(t, logBuf.String(), "https://evil.example.com")
}

func TestCORS_DisallowedPreflightStillShortCircuits(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://viewer.example.com"}

	var called bool
	handler := CORS(cfg)(okHandler(&called))

	req := httptest.NewRequest(http.MethodOptions, "/api/tdnet", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoadCORSConfig_Defaults(t *testing.T) {
	for _, k := range []string{"CORS_ALLOWED_ORIGINS", "CORS_ALLOWED_METHODS", "CORS_ALLOWED_HEADERS", "CORS_MAX_AGE"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadCORSConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"GET", "POST", "OPTIONS"}, cfg.AllowedMethods)
	assert.Equal(t, []string{"Content-Type"}, cfg.AllowedHeaders)
	assert.Equal(t, 3600, cfg.MaxAge)
}

func TestLoadCORSConfig_FromEnv(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://viewer.example.com")
	t.Setenv("CORS_ALLOWED_METHODS", "post,options")
	t.Setenv("CORS_ALLOWED_HEADERS", "Content-Type, X-Request-ID")
	t.Setenv("CORS_MAX_AGE", "600")

	cfg, err := LoadCORSConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"http://localhost:3000", "https://viewer.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"POST", "OPTIONS"}, cfg.AllowedMethods)
	assert.Equal(t, []string{"Content-Type", "X-Request-ID"}, cfg.AllowedHeaders)
	assert.Equal(t, 600, cfg.MaxAge)
}

func TestLoadCORSConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "ftp origin", key: "CORS_ALLOWED_ORIGINS", val: "ftp://example.com"},
		{name: "origin with path", key: "CORS_ALLOWED_ORIGINS", val: "https://example.com/app"},
		{name: "origin without host", key: "CORS_ALLOWED_ORIGINS", val: "https://"},
		{name: "non numeric max age", key: "CORS_MAX_AGE", val: "an hour"},
		{name: "max age out of range", key: "CORS_MAX_AGE", val: "100000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := LoadCORSConfig()
			assert.Error(t, err)
		})
	}
}
