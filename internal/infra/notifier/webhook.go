package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// WebhookConfig configures one webhook notifier.
type WebhookConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

// webhook is the transport shared by the Discord and Slack notifiers.
type webhook struct {
	service string
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

func newWebhook(service string, cfg WebhookConfig, limit rate.Limit, burst int) webhook {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return webhook{
		service: service,
		url:     cfg.WebhookURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
	}
}

// post sends payload as JSON once.
func (w webhook) post(ctx context.Context, payload any) error {
	requestID := uuid.New().String()
	logger := slog.With(
		slog.String("service", w.service),
		slog.String("request_id", requestID))

	if err := throttle(ctx, w.limiter, w.service); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", w.service, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", w.service, redactURL(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		err = redactURL(err)
		logger.Warn("webhook request failed", slog.Any("error", err))
		return fmt.Errorf("%s webhook: %w", w.service, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		logger.Info("webhook notification sent", slog.Int("status", resp.StatusCode))
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	err = &WebhookError{Service: w.service, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	logger.Warn("webhook notification rejected", slog.Any("error", err))
	return err
}

// redactURL masks the path of the URL carried by a transport error.
// Discord and Slack put the webhook token in the path.
func redactURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = redactedWebhookURL(urlErr.URL)
	}
	return err
}

func redactedWebhookURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "[redacted]"
	}
	return u.Scheme + "://" + u.Host + "/****"
}

// ValidateWebhookURL checks that raw is an https URL on host whose path starts with pathPrefix.
// Webhook URLs embed their credentials, so a typo must not send them elsewhere.
func ValidateWebhookURL(raw, host, pathPrefix string) error {
	if raw == "" {
		return fmt.Errorf("webhook URL is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("webhook URL is malformed: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("webhook URL must use https")
	}
	if u.Host != host {
		return fmt.Errorf("webhook host must be %s, got %s", host, u.Host)
	}
	if !strings.HasPrefix(u.Path, pathPrefix) {
		return fmt.Errorf("webhook path must start with %s", pathPrefix)
	}
	return nil
}
