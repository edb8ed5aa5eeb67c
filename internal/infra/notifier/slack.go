package notifier

import (
	"context"
	"fmt"
	"time"
)

const (
	slackHost       = "hooks.slack.com"
	slackPathPrefix = "/services/"

	maxSectionText = 3000
	maxFallback    = 150
)

// SlackNotifier posts summaries as Block Kit messages.
type SlackNotifier struct {
	hook webhook
}

// NewSlackNotifier creates a notifier limited to 1 req/s.
func NewSlackNotifier(cfg WebhookConfig) *SlackNotifier {
	return &SlackNotifier{hook: newWebhook("slack", cfg, 1, 1)}
}

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string       `json:"type"`
	Text     *slackText   `json:"text,omitempty"`
	Elements []*slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (s *SlackNotifier) payload(sum Summary) slackPayload {
	var section string
	if sum.Err != nil {
		section = fmt.Sprintf(":x: *%s*\n```%s```", sum.Headline(), sum.Err.Error())
	} else {
		section = fmt.Sprintf(":white_check_mark: *%s*\nfile: `%s`", sum.Headline(), orDash(sum.Path))
	}

	return slackPayload{
		Text: truncate(sum.Headline(), maxFallback, "..."),
		Blocks: []slackBlock{
			{Type: "section", Text: &slackText{Type: "mrkdwn", Text: truncate(section, maxSectionText, "...")}},
			{Type: "context", Elements: []*slackText{{
				Type: "mrkdwn",
				Text: fmt.Sprintf("disclosure-feed • %s", sum.Duration.Round(time.Millisecond)),
			}}},
		},
	}
}

// Notify posts sum to the Slack webhook.
func (s *SlackNotifier) Notify(ctx context.Context, sum Summary) error {
	return s.hook.post(ctx, s.payload(sum))
}

// ValidateSlackURL checks a Slack incoming-webhook URL.
func ValidateSlackURL(raw string) error {
	return ValidateWebhookURL(raw, slackHost, slackPathPrefix)
}
