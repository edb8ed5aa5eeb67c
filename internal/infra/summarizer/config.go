// Package summarizer provides AI-powered summaries of disclosure documents.
// It includes adapters for Claude (Anthropic) and OpenAI plus a keyword-based
// Fallback that needs no API at all.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"

	"disclosure-feed/pkg/config"
)

// Provider names accepted by SUMMARIZER_TYPE.
const (
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

const (
	minCharLimit = 100
	maxCharLimit = 5000

	// maxInputRunes bounds the document text sent to a model.
	maxInputRunes = 30000
)

// Summarizer produces a Japanese summary of one document.
type Summarizer interface {
	Summarize(ctx context.Context, title, text string) (string, error)
	// Engine is the human-readable name shown next to generated summaries.
	Engine() string
}

// Config selects and tunes the AI provider.
type Config struct {
	// Provider is ProviderClaude, ProviderOpenAI or ProviderNone.
	Provider string
	APIKey   string
	Model    string
	// BaseURL overrides the provider endpoint; empty uses the SDK default.
	BaseURL string

	// CharacterLimit is the summary length requested in the prompt (100-5000).
	CharacterLimit int
	MaxTokens      int
	Timeout        time.Duration
}

// ValidateCharacterLimit validates that the character limit is within 100-5000.
func ValidateCharacterLimit(limit int) error {
	if limit < minCharLimit {
		return fmt.Errorf("character limit %d is below minimum %d", limit, minCharLimit)
	}
	if limit > maxCharLimit {
		return fmt.Errorf("character limit %d exceeds maximum %d", limit, maxCharLimit)
	}
	return nil
}

// Validate checks c. A disabled provider is always valid.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderNone:
		return nil
	case ProviderClaude, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown summarizer type %q (want claude, openai or none)", c.Provider)
	}

	var errs []error
	if c.APIKey == "" {
		errs = append(errs, fmt.Errorf("API key is required when SUMMARIZER_TYPE=%s", c.Provider))
	}
	if err := ValidateCharacterLimit(c.CharacterLimit); err != nil {
		errs = append(errs, fmt.Errorf("invalid character limit: %w", err))
	}
	if c.Model == "" {
		errs = append(errs, errors.New("model cannot be empty"))
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %v", c.Timeout))
	}
	return errors.Join(errs...)
}

// LoadConfigFromEnv reads the summarizer settings.
//
// Environment variables:
//   - SUMMARIZER_TYPE: claude, openai or none. When unset the provider follows
//     whichever of ANTHROPIC_API_KEY / OPENAI_API_KEY is present, else none.
//   - ANTHROPIC_API_KEY, OPENAI_API_KEY
//   - SUMMARIZER_MODEL: provider model id (default per provider)
//   - SUMMARIZER_BASE_URL: endpoint override
//   - SUMMARIZER_CHAR_LIMIT: requested summary length (default: 900)
//   - SUMMARIZER_MAX_TOKENS: response token cap (default: 1500)
//   - SUMMARIZER_TIMEOUT: per-call timeout (default: 60s)
func LoadConfigFromEnv() (Config, error) {
	cfg := Config{
		Provider:       os.Getenv("SUMMARIZER_TYPE"),
		BaseURL:        os.Getenv("SUMMARIZER_BASE_URL"),
		CharacterLimit: config.GetEnvInt("SUMMARIZER_CHAR_LIMIT", 900),
		MaxTokens:      config.GetEnvInt("SUMMARIZER_MAX_TOKENS", 1500),
		Timeout:        config.GetEnvDuration("SUMMARIZER_TIMEOUT", 60*time.Second),
	}

	if cfg.Provider == "" {
		switch {
		case os.Getenv("ANTHROPIC_API_KEY") != "":
			cfg.Provider = ProviderClaude
		case os.Getenv("OPENAI_API_KEY") != "":
			cfg.Provider = ProviderOpenAI
		default:
			cfg.Provider = ProviderNone
		}
	}

	switch cfg.Provider {
	case ProviderClaude:
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		cfg.Model = config.GetEnvString("SUMMARIZER_MODEL", string(anthropic.ModelClaudeSonnet4_5_20250929))
	case ProviderOpenAI:
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		cfg.Model = config.GetEnvString("SUMMARIZER_MODEL", openai.GPT4oMini)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid summarizer configuration: %w", err)
	}
	return cfg, nil
}

// New builds the summarizer cfg names. It returns nil for ProviderNone, in
// which case callers use Fallback alone.
func New(cfg Config, metrics *Metrics) (Summarizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ProviderClaude:
		return NewClaude(cfg, metrics), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg, metrics), nil
	default:
		return nil, nil
	}
}

// buildPrompt asks for a Japanese summary of title/text within limit characters.
//
// Example output:
//
//	"以下の適時開示資料「決算短信」を日本語で900文字以内で要約してください。…\n{text}"
func buildPrompt(title, text string, limit int) string {
	return fmt.Sprintf("以下の適時開示資料「%s」を日本語で%d文字以内で要約してください。"+
		"投資家にとって重要な数値や変更点を優先してください：\n%s",
		title, limit, truncateRunes(text, maxInputRunes, "...\n(内容が長いため切り詰めました)"))
}

func truncateRunes(s string, limit int, suffix string) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + suffix
}
