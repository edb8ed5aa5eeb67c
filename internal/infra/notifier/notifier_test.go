package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// capture records the last JSON body posted to it and answers with status.
func capture(t *testing.T, status int) (*httptest.Server, *map[string]any) {
	t.Helper()
	got := map[string]any{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(status)
		if status >= 400 {
			_, _ = w.Write([]byte(`{"message":"Unknown Webhook"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestSummary_Headline(t *testing.T) {
	assert.Equal(t, "TDnet snapshot 20250611: 42 disclosures", Summary{Date: "20250611", Records: 42}.Headline())
	assert.Equal(t, "TDnet snapshot 20250611: no disclosures", Summary{Date: "20250611"}.Headline())
	assert.Equal(t, "TDnet snapshot 20250611 failed", Summary{Date: "20250611", Records: 3, Err: errors.New("x")}.Headline())
}

func TestDiscordNotifier_Success(t *testing.T) {
	srv, got := capture(t, http.StatusNoContent)
	d := NewDiscordNotifier(WebhookConfig{WebhookURL: srv.URL, Timeout: time.Second})
	d.now = func() time.Time { return time.Date(2025, 6, 11, 14, 30, 0, 0, time.UTC) }

	err := d.Notify(context.Background(), Summary{Date: "20250611", Records: 42, Path: "data/tdnet_data_20250611.csv", Duration: 1500 * time.Millisecond})
	require.NoError(t, err)

	embeds := (*got)["embeds"].([]any)
	require.Len(t, embeds, 1)
	embed := embeds[0].(map[string]any)
	assert.Equal(t, "TDnet snapshot 20250611: 42 disclosures", embed["title"])
	assert.Contains(t, embed["description"], "data/tdnet_data_20250611.csv")
	assert.Equal(t, float64(discordBlue), embed["color"])
	assert.Equal(t, "2025-06-11T14:30:00Z", embed["timestamp"])
}

func TestDiscordNotifier_FailureUsesRed(t *testing.T) {
	srv, got := capture(t, http.StatusOK)
	d := NewDiscordNotifier(WebhookConfig{WebhookURL: srv.URL})

	require.NoError(t, d.Notify(context.Background(), Summary{Date: "20250611", Err: errors.New("context deadline exceeded")}))

	embed := (*got)["embeds"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(discordRed), embed["color"])
	assert.Equal(t, "context deadline exceeded", embed["description"])
}

func TestSlackNotifier_Payload(t *testing.T) {
	srv, got := capture(t, http.StatusOK)
	s := NewSlackNotifier(WebhookConfig{WebhookURL: srv.URL})

	require.NoError(t, s.Notify(context.Background(), Summary{Date: "20250611", Records: 5, Path: "out.csv"}))

	assert.Equal(t, "TDnet snapshot 20250611: 5 disclosures", (*got)["text"])
	blocks := (*got)["blocks"].([]any)
	require.Len(t, blocks, 2)
	section := blocks[0].(map[string]any)["text"].(map[string]any)
	assert.Equal(t, "mrkdwn", section["type"])
	assert.Contains(t, section["text"], "`out.csv`")
}

func TestWebhook_NonSuccessStatus(t *testing.T) {
	srv, _ := capture(t, http.StatusNotFound)
	s := NewSlackNotifier(WebhookConfig{WebhookURL: srv.URL})

	err := s.Notify(context.Background(), Summary{Date: "20250611"})

	var whErr *WebhookError
	require.True(t, errors.As(err, &whErr))
	assert.Equal(t, "slack", whErr.Service)
	assert.Equal(t, http.StatusNotFound, whErr.StatusCode)
	assert.Contains(t, whErr.Body, "Unknown Webhook")
}

func TestWebhook_CanceledContext(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewDiscordNotifier(WebhookConfig{WebhookURL: srv.URL}).Notify(ctx, Summary{Date: "20250611"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, hits)
}

func TestWebhook_TransportErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	hookURL := srv.URL + "/services/T000/B000/secret-token"
	srv.Close()

	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	defer slog.SetDefault(prev)

	err := NewSlackNotifier(WebhookConfig{WebhookURL: hookURL, Timeout: time.Second}).
		Notify(context.Background(), Summary{Date: "20250611"})

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-token")
	assert.Contains(t, err.Error(), strings.TrimPrefix(srv.URL, "http://")+"/****")
	assert.Contains(t, logs.String(), "webhook request failed")
	assert.NotContains(t, logs.String(), "secret-token")
}

func TestRedactedWebhookURL(t *testing.T) {
	assert.Equal(t, "https://discord.com/****", redactedWebhookURL("https://discord.com/api/webhooks/1/abc"))
	assert.Equal(t, "[redacted]", redactedWebhookURL("not a url"))
}

type recordingNotifier struct {
	calls int
	err   error
}

func (r *recordingNotifier) Notify(context.Context, Summary) error {
	r.calls++
	return r.err
}

func TestMulti_CallsAllAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	a := &recordingNotifier{err: boom}
	b := &recordingNotifier{}

	err := Multi{a, b}.Notify(context.Background(), Summary{})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
	assert.NoError(t, Multi{b}.Notify(context.Background(), Summary{}))
}

func TestValidateWebhookURLs(t *testing.T) {
	assert.NoError(t, ValidateDiscordURL("https://discord.com/api/webhooks/123/abc"))
	assert.NoError(t, ValidateSlackURL("https://hooks.slack.com/services/T/B/x"))

	for _, bad := range []string{
		"",
		"http://discord.com/api/webhooks/123/abc",
		"https://discord.com.evil.example/api/webhooks/1/a",
		"https://discord.com/api/other/1",
		"://nope",
	} {
		assert.Error(t, ValidateDiscordURL(bad), bad)
	}
	assert.Error(t, ValidateSlackURL("https://hooks.slack.com/other/T"))
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("nothing enabled", func(t *testing.T) {
		assert.IsType(t, Noop{}, LoadFromEnv(discardLogger()))
	})

	t.Run("invalid URL disables channel", func(t *testing.T) {
		t.Setenv("DISCORD_ENABLED", "true")
		t.Setenv("DISCORD_WEBHOOK_URL", "https://example.com/hook")
		assert.IsType(t, Noop{}, LoadFromEnv(discardLogger()))
	})

	t.Run("both enabled", func(t *testing.T) {
		t.Setenv("DISCORD_ENABLED", "true")
		t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.com/api/webhooks/1/a")
		t.Setenv("SLACK_ENABLED", "true")
		t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/x")

		n := LoadFromEnv(discardLogger())
		m, ok := n.(Multi)
		require.True(t, ok)
		assert.Len(t, m, 2)
	})

	for _, raw := range []string{"soon", "-5s", "0s"} {
		t.Run("bad NOTIFY_TIMEOUT "+raw, func(t *testing.T) {
			t.Setenv("NOTIFY_TIMEOUT", raw)
			t.Setenv("SLACK_ENABLED", "true")
			t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/x")

			n := LoadFromEnv(discardLogger())
			m, ok := n.(Multi)
			require.True(t, ok)
			require.Len(t, m, 1)
			assert.Equal(t, defaultTimeout, m[0].(*SlackNotifier).hook.client.Timeout)
		})
	}

	t.Run("NOTIFY_TIMEOUT applied", func(t *testing.T) {
		t.Setenv("NOTIFY_TIMEOUT", "5s")
		t.Setenv("SLACK_ENABLED", "true")
		t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/x")

		m := LoadFromEnv(discardLogger()).(Multi)
		assert.Equal(t, 5*time.Second, m[0].(*SlackNotifier).hook.client.Timeout)
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5, "..."))
	assert.Equal(t, "ab...", truncate("abcdefg", 5, "..."))
	assert.Equal(t, "決算...", truncate(strings.Repeat("決算短信", 3), 5, "..."))
}
