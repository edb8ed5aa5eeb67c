package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"disclosure-feed/internal/observability/logging"
)

// OpenAI implements Summarizer using the Chat Completions API.
type OpenAI struct {
	client  *openai.Client
	cfg     Config
	metrics *Metrics
}

// NewOpenAI creates an OpenAI summarizer from cfg.
func NewOpenAI(cfg Config, metrics *Metrics) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAI{
		client:  openai.NewClientWithConfig(clientCfg),
		cfg:     cfg,
		metrics: metrics,
	}
}

// Engine returns the model label, e.g. "OpenAI (gpt-4o-mini)".
func (o *OpenAI) Engine() string {
	return fmt.Sprintf("OpenAI (%s)", o.cfg.Model)
}

// Summarize asks the chat model for a summary of text.
func (o *OpenAI) Summarize(ctx context.Context, title, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	logger := logging.FromContext(ctx).With(
		slog.String("provider", ProviderOpenAI),
		slog.String("request_id", uuid.NewString()))
	logger.Info("starting summarization",
		slog.Int("input_length", utf8.RuneCountInString(text)),
		slog.Int("character_limit", o.cfg.CharacterLimit))

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.cfg.Model,
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: buildPrompt(title, text, o.cfg.CharacterLimit),
		}},
	})
	// Choices が空だと添字アクセスで panic する
	if err == nil && len(resp.Choices) == 0 {
		err = errors.New("openai api returned empty response")
	}
	elapsed := time.Since(start)
	o.metrics.RecordCall(ProviderOpenAI, elapsed, err)

	if err != nil {
		logger.Warn("summarization failed", slog.Duration("duration", elapsed), slog.Any("error", err))
		return "", fmt.Errorf("openai api error: %w", err)
	}

	summary := resp.Choices[0].Message.Content
	length := utf8.RuneCountInString(summary)
	o.metrics.RecordSummary(length, o.cfg.CharacterLimit)
	logger.Info("summarization completed",
		slog.Int("summary_length", length),
		slog.Bool("within_limit", length <= o.cfg.CharacterLimit),
		slog.Duration("duration", elapsed))
	return summary, nil
}
