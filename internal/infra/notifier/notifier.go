// Package notifier posts snapshot job outcomes to chat webhooks.
//
// Each notifier sends one request per call and throttles itself to the
// webhook's documented limit; a failed post is reported, not retried.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Summary describes one finished snapshot run.
type Summary struct {
	Date     string
	Records  int
	Path     string
	Duration time.Duration
	// Err is set when the run failed.
	Err error
}

// Headline is the one-line text used as a title or fallback.
func (s Summary) Headline() string {
	switch {
	case s.Err != nil:
		return fmt.Sprintf("TDnet snapshot %s failed", s.Date)
	case s.Records == 0:
		return fmt.Sprintf("TDnet snapshot %s: no disclosures", s.Date)
	default:
		return fmt.Sprintf("TDnet snapshot %s: %d disclosures", s.Date, s.Records)
	}
}

// Notifier delivers a Summary somewhere a human will read it.
type Notifier interface {
	Notify(ctx context.Context, s Summary) error
}

// Multi fans a Summary out to every notifier and joins their errors.
type Multi []Notifier

// Notify calls each notifier in order. One failing does not stop the rest.
func (m Multi) Notify(ctx context.Context, s Summary) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Noop discards every Summary.
type Noop struct{}

// Notify does nothing.
func (Noop) Notify(context.Context, Summary) error { return nil }

// WebhookError is a non-2xx answer from a webhook.
type WebhookError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *WebhookError) Error() string {
	return fmt.Sprintf("%s webhook returned %d: %s", e.Service, e.StatusCode, e.Body)
}

// throttle waits for a token from l and logs when the wait fails.
func throttle(ctx context.Context, l *rate.Limiter, service string) error {
	if err := l.Wait(ctx); err != nil {
		slog.Warn("webhook throttle wait failed",
			slog.String("service", service),
			slog.Any("error", err))
		return fmt.Errorf("%s rate limiter: %w", service, err)
	}
	return nil
}

// truncate cuts text to at most max runes, ending with suffix when cut.
func truncate(text string, max int, suffix string) string {
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	keep := max - len([]rune(suffix))
	if keep < 0 {
		keep = 0
	}
	return string(r[:keep]) + suffix
}
