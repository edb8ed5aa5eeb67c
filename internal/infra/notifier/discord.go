package notifier

import (
	"context"
	"fmt"
	"time"
)

const (
	discordHost       = "discord.com"
	discordPathPrefix = "/api/webhooks/"

	maxEmbedTitle       = 256
	maxEmbedDescription = 4096

	// Discord blurple (#5865F2) and red (#ED4245)
	discordBlue = 5793266
	discordRed  = 15548997
)

// DiscordNotifier posts summaries as a single Discord embed.
type DiscordNotifier struct {
	hook webhook
	now  func() time.Time
}

// NewDiscordNotifier creates a notifier limited to 0.5 req/s with burst 3,
// the webhook's 30-per-minute allowance.
func NewDiscordNotifier(cfg WebhookConfig) *DiscordNotifier {
	return &DiscordNotifier{hook: newWebhook("discord", cfg, 0.5, 3), now: time.Now}
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Color       int                `json:"color"`
	Footer      discordEmbedFooter `json:"footer"`
	Timestamp   string             `json:"timestamp"`
}

type discordEmbedFooter struct {
	Text string `json:"text"`
}

func (d *DiscordNotifier) payload(s Summary) discordPayload {
	embed := discordEmbed{
		Title:     truncate(s.Headline(), maxEmbedTitle, "..."),
		Color:     discordBlue,
		Footer:    discordEmbedFooter{Text: "disclosure-feed"},
		Timestamp: d.now().UTC().Format(time.RFC3339),
	}
	if s.Err != nil {
		embed.Color = discordRed
		embed.Description = truncate(s.Err.Error(), maxEmbedDescription, "...")
	} else {
		embed.Description = fmt.Sprintf("records: %d\nfile: %s\nduration: %s",
			s.Records, orDash(s.Path), s.Duration.Round(time.Millisecond))
	}
	return discordPayload{Embeds: []discordEmbed{embed}}
}

// Notify posts s to the Discord webhook.
func (d *DiscordNotifier) Notify(ctx context.Context, s Summary) error {
	return d.hook.post(ctx, d.payload(s))
}

// ValidateDiscordURL checks a Discord webhook URL.
func ValidateDiscordURL(raw string) error {
	return ValidateWebhookURL(raw, discordHost, discordPathPrefix)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
