package middleware

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// LoadCORSConfig builds a CORSConfig from the environment on top of DefaultCORSConfig.
//
// Environment variables:
//   - CORS_ALLOWED_ORIGINS: comma-separated origins or "*" (default: "*")
//   - CORS_ALLOWED_METHODS: comma-separated methods (default: GET,POST,OPTIONS)
//   - CORS_ALLOWED_HEADERS: comma-separated headers (default: Content-Type)
//   - CORS_MAX_AGE: preflight cache seconds, 0-86400 (default: 3600)
func LoadCORSConfig() (CORSConfig, error) {
	cfg := DefaultCORSConfig()

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); strings.TrimSpace(v) != "" {
		origins, err := parseOrigins(v)
		if err != nil {
			return cfg, err
		}
		cfg.AllowedOrigins = origins
	}

	if v := splitList(os.Getenv("CORS_ALLOWED_METHODS")); len(v) > 0 {
		for i := range v {
			v[i] = strings.ToUpper(v[i])
		}
		cfg.AllowedMethods = v
	}

	if v := splitList(os.Getenv("CORS_ALLOWED_HEADERS")); len(v) > 0 {
		cfg.AllowedHeaders = v
	}

	if v := strings.TrimSpace(os.Getenv("CORS_MAX_AGE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid CORS_MAX_AGE: %v", err)
		}
		if n < 0 || n > 86400 {
			return cfg, fmt.Errorf("CORS_MAX_AGE must be between 0 and 86400, got %d", n)
		}
		cfg.MaxAge = n
	}

	return cfg, nil
}

// parseOrigins validates each origin: "*" or a bare http(s) scheme and host.
func parseOrigins(raw string) ([]string, error) {
	list := splitList(raw)
	origins := make([]string, 0, len(list))
	for _, o := range list {
		if o == Wildcard {
			origins = append(origins, o)
			continue
		}

		u, err := url.Parse(o)
		if err != nil {
			return nil, fmt.Errorf("invalid origin URL '%s': %w", o, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("origin must use http or https scheme: %s", o)
		}
		if u.Host == "" {
			return nil, fmt.Errorf("origin must include a host: %s", o)
		}
		if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
			return nil, fmt.Errorf("origin must not include path, query or fragment: %s", o)
		}
		origins = append(origins, o)
	}
	return origins, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
