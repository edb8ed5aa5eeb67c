package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"disclosure-feed/internal/observability/logging"
)

// Claude implements Summarizer using Anthropic's Messages API.
// Each call is a single attempt; the caller falls back on failure.
type Claude struct {
	client  anthropic.Client
	cfg     Config
	metrics *Metrics
}

// NewClaude creates a Claude summarizer from cfg.
func NewClaude(cfg Config, metrics *Metrics) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Claude{
		client:  anthropic.NewClient(opts...),
		cfg:     cfg,
		metrics: metrics,
	}
}

// Engine returns the model label, e.g. "Claude (claude-sonnet-4-5-20250929)".
func (c *Claude) Engine() string {
	return fmt.Sprintf("Claude (%s)", c.cfg.Model)
}

// Summarize asks Claude for a summary of text.
func (c *Claude) Summarize(ctx context.Context, title, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	logger := logging.FromContext(ctx).With(
		slog.String("provider", ProviderClaude),
		slog.String("request_id", uuid.NewString()))
	logger.Info("starting summarization",
		slog.Int("input_length", utf8.RuneCountInString(text)),
		slog.Int("character_limit", c.cfg.CharacterLimit))

	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: int64(c.cfg.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(title, text, c.cfg.CharacterLimit))),
		},
	})
	if err == nil && len(message.Content) == 0 {
		err = errors.New("claude api returned empty response")
	}
	var summary string
	if err == nil {
		block, ok := message.Content[0].AsAny().(anthropic.TextBlock)
		if !ok {
			err = errors.New("claude api returned unexpected response type")
		}
		summary = block.Text
	}
	elapsed := time.Since(start)
	c.metrics.RecordCall(ProviderClaude, elapsed, err)

	if err != nil {
		logger.Warn("summarization failed", slog.Duration("duration", elapsed), slog.Any("error", err))
		return "", fmt.Errorf("claude api error: %w", err)
	}

	length := utf8.RuneCountInString(summary)
	c.metrics.RecordSummary(length, c.cfg.CharacterLimit)
	logger.Info("summarization completed",
		slog.Int("summary_length", length),
		slog.Bool("within_limit", length <= c.cfg.CharacterLimit),
		slog.Duration("duration", elapsed))
	return summary, nil
}
