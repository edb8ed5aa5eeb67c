package notifier

import (
	"log/slog"
	"os"
	"time"

	"disclosure-feed/pkg/config"
)

const defaultTimeout = 30 * time.Second

// LoadFromEnv builds the notifiers enabled in the environment. A channel whose
// URL fails validation is disabled with a warning rather than failing startup.
// With nothing enabled it returns Noop.
//
// Environment variables:
//   - DISCORD_ENABLED, DISCORD_WEBHOOK_URL
//   - SLACK_ENABLED, SLACK_WEBHOOK_URL
//   - NOTIFY_TIMEOUT: duration per webhook call (default: 30s)
func LoadFromEnv(logger *slog.Logger) Notifier {
	timeout := config.GetEnvDuration("NOTIFY_TIMEOUT", defaultTimeout)
	if timeout <= 0 {
		logger.Warn("non-positive NOTIFY_TIMEOUT, using default", slog.Duration("value", timeout))
		timeout = defaultTimeout
	}

	var out Multi

	if os.Getenv("DISCORD_ENABLED") == "true" {
		u := os.Getenv("DISCORD_WEBHOOK_URL")
		if err := ValidateDiscordURL(u); err != nil {
			logger.Warn("Discord notifications disabled", slog.Any("error", err))
		} else {
			out = append(out, NewDiscordNotifier(WebhookConfig{WebhookURL: u, Timeout: timeout}))
			logger.Info("Discord channel initialized")
		}
	}

	if os.Getenv("SLACK_ENABLED") == "true" {
		u := os.Getenv("SLACK_WEBHOOK_URL")
		if err := ValidateSlackURL(u); err != nil {
			logger.Warn("Slack notifications disabled", slog.Any("error", err))
		} else {
			out = append(out, NewSlackNotifier(WebhookConfig{WebhookURL: u, Timeout: timeout}))
			logger.Info("Slack channel initialized")
		}
	}

	if len(out) == 0 {
		return Noop{}
	}
	return out
}
