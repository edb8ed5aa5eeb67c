// Package scraper fetches TDnet listing pages and extracts disclosure rows from them.
package scraper

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

const (
	// DefaultBaseURL is the public TDnet host.
	DefaultBaseURL = "https://www.release.tdnet.info"

	// DefaultUserAgent identifies this client to TDnet.
	DefaultUserAgent = "Mozilla/5.0 (compatible; TDnet-Viewer/1.0; +https://github.com/shunsukeishikawa/tdnet-viewer)"

	// DefaultMaxPages is the page ceiling for hosted extraction.
	DefaultMaxPages = 20

	maxBodySizeLimit = 100 * 1024 * 1024
	minBodySizeLimit = 1024
	maxPagesLimit    = 1000
)

// Config holds the settings for talking to the TDnet listing.
type Config struct {
	// BaseURL is the scheme and host pages are fetched from and relative links are resolved against.
	BaseURL string

	// UserAgent is sent with every page request.
	UserAgent string

	// Timeout bounds one page request, connection through body.
	// Default: 30s
	Timeout time.Duration

	// MaxPages caps fetches per extraction; 0 means no ceiling.
	// Default: 20
	MaxPages int

	// MaxBodySize rejects listing pages larger than this many bytes.
	// Default: 10485760 (10MB)
	MaxBodySize int64
}

// DefaultConfig returns the hosted defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		UserAgent:   DefaultUserAgent,
		Timeout:     30 * time.Second,
		MaxPages:    DefaultMaxPages,
		MaxBodySize: 10 * 1024 * 1024, // 10MB
	}
}

// Validate checks if the configuration values are usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base url is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base url must use http or https, got %q", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base url must have a host, got %q", c.BaseURL)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user agent must not be empty")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	if c.MaxPages < 0 || c.MaxPages > maxPagesLimit {
		return fmt.Errorf("max pages must be between 0 and %d, got %d", maxPagesLimit, c.MaxPages)
	}

	if c.MaxBodySize < minBodySizeLimit || c.MaxBodySize > maxBodySizeLimit {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d",
			minBodySizeLimit, maxBodySizeLimit, c.MaxBodySize)
	}

	return nil
}

// LoadConfigFromEnv loads configuration from environment variables on top of DefaultConfig.
// A malformed value is an error rather than a silent fallback.
//
// Environment variables:
//   - TDNET_BASE_URL: listing host (default: https://www.release.tdnet.info)
//   - TDNET_USER_AGENT: request User-Agent
//   - TDNET_FETCH_TIMEOUT: duration string, e.g. "30s"
//   - TDNET_MAX_PAGES: integer, 0 for no ceiling (default: 20)
//   - TDNET_MAX_BODY_SIZE: integer in bytes (default: 10485760)
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if val := os.Getenv("TDNET_BASE_URL"); val != "" {
		cfg.BaseURL = val
	}

	if val := os.Getenv("TDNET_USER_AGENT"); val != "" {
		cfg.UserAgent = val
	}

	if val := os.Getenv("TDNET_FETCH_TIMEOUT"); val != "" {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid TDNET_FETCH_TIMEOUT: %v (expected format: '30s', '1m')", err)
		}
		cfg.Timeout = parsed
	}

	if val := os.Getenv("TDNET_MAX_PAGES"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid TDNET_MAX_PAGES: %v", err)
		}
		cfg.MaxPages = parsed
	}

	if val := os.Getenv("TDNET_MAX_BODY_SIZE"); val != "" {
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid TDNET_MAX_BODY_SIZE: %v", err)
		}
		cfg.MaxBodySize = parsed
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
