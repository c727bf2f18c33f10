package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"district-digest/internal/domain/entity"
)

func discordTestDigest() *entity.Digest {
	return &entity.Digest{
		ID:           7,
		District:     "Krishna",
		Date:         "2026-03-14",
		Provider:     "google-news",
		ArticleCount: 1,
		Articles: []entity.Article{
			{Title: "Chain snatching near market", URL: "https://example.com/7", Category: entity.CategoryTheft},
		},
		CreatedAt: time.Date(2026, 3, 14, 6, 30, 0, 0, time.UTC),
	}
}

func TestDiscordNotifier_buildEmbedPayload(t *testing.T) {
	t.Run("should build embed with all fields", func(t *testing.T) {
		// Arrange
		notifier := NewDiscordNotifier(DiscordConfig{
			Enabled:    true,
			WebhookURL: "https://discord.com/api/webhooks/test",
			Timeout:    10 * time.Second,
		})

		// Act
		payload := notifier.buildEmbedPayload(discordTestDigest())

		// Assert
		if len(payload.Embeds) != 1 {
			t.Fatalf("expected 1 embed, got %d", len(payload.Embeds))
		}

		embed := payload.Embeds[0]
		if embed.Title != "News digest: Krishna - 2026-03-14" {
			t.Errorf("unexpected title %q", embed.Title)
		}
		if !strings.Contains(embed.Description, "[Chain snatching near market](https://example.com/7)") {
			t.Errorf("description missing headline link: %q", embed.Description)
		}
		if embed.Color != discordBlueColor {
			t.Errorf("expected discord blue, got %d", embed.Color)
		}
		if embed.Footer.Text != "provider: google-news" {
			t.Errorf("unexpected footer %q", embed.Footer.Text)
		}
		if embed.Timestamp != "2026-03-14T06:30:00Z" {
			t.Errorf("unexpected timestamp %q", embed.Timestamp)
		}
	})

	t.Run("should mark mock results in the footer", func(t *testing.T) {
		notifier := NewDiscordNotifier(DiscordConfig{Enabled: true})

		d := discordTestDigest()
		d.Provider = "mock"
		d.IsMock = true

		payload := notifier.buildEmbedPayload(d)

		if got := payload.Embeds[0].Footer.Text; got != "provider: mock (mock data)" {
			t.Errorf("unexpected footer %q", got)
		}
	})

	t.Run("should fall back to now for a zero creation time", func(t *testing.T) {
		notifier := NewDiscordNotifier(DiscordConfig{Enabled: true})

		d := discordTestDigest()
		d.CreatedAt = time.Time{}

		payload := notifier.buildEmbedPayload(d)

		if payload.Embeds[0].Timestamp == "" {
			t.Error("expected a non-empty timestamp")
		}
	})

	t.Run("should truncate oversized description", func(t *testing.T) {
		notifier := NewDiscordNotifier(DiscordConfig{Enabled: true})

		d := discordTestDigest()
		d.Articles = []entity.Article{{
			Title:    strings.Repeat("y", maxDescriptionLength),
			URL:      "https://example.com/long",
			Category: entity.CategoryCrime,
		}}

		payload := notifier.buildEmbedPayload(d)

		if got := len(payload.Embeds[0].Description); got > maxDescriptionLength {
			t.Errorf("description length %d exceeds limit %d", got, maxDescriptionLength)
		}
	})
}

func TestTruncateSummary(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxLength int
		suffix    string
		want      string
	}{
		{"no truncation needed", "short", 10, "...", "short"},
		{"truncation with suffix", "abcdefghij", 8, "...", "abcde..."},
		{"suffix longer than limit", "abcdef", 2, "...", "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateSummary(tt.text, tt.maxLength, tt.suffix); got != tt.want {
				t.Errorf("truncateSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDiscordNotifier_sendWebhookRequest(t *testing.T) {
	t.Run("should succeed with 204 No Content", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("expected Content-Type=application/json, got %q", r.Header.Get("Content-Type"))
			}

			body, _ := io.ReadAll(r.Body)
			var payload DiscordWebhookPayload
			if err := json.Unmarshal(body, &payload); err != nil {
				t.Errorf("failed to parse request body: %v", err)
			}
			if len(payload.Embeds) != 1 {
				t.Errorf("expected 1 embed, got %d", len(payload.Embeds))
			}

			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		notifier := NewDiscordNotifier(DiscordConfig{
			Enabled:    true,
			WebhookURL: server.URL,
			Timeout:    10 * time.Second,
		})

		// Act
		err := notifier.sendWebhookRequest(context.Background(), discordTestDigest())

		// Assert
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("should classify 429 as RateLimitError with retry_after body", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message": "You are being rate limited.", "retry_after": 1.5, "code": 0}`))
		}))
		defer server.Close()

		notifier := NewDiscordNotifier(DiscordConfig{
			Enabled:    true,
			WebhookURL: server.URL,
			Timeout:    10 * time.Second,
		})

		// Act
		err := notifier.sendWebhookRequest(context.Background(), discordTestDigest())

		// Assert
		var rateLimitErr *RateLimitError
		if !errors.As(err, &rateLimitErr) {
			t.Fatalf("expected RateLimitError, got %v", err)
		}
		if rateLimitErr.RetryAfter != 1500*time.Millisecond {
			t.Errorf("expected retry after 1.5s, got %v", rateLimitErr.RetryAfter)
		}
	})

	t.Run("should classify 404 as ClientError", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "Unknown Webhook", "code": 10015}`))
		}))
		defer server.Close()

		notifier := NewDiscordNotifier(DiscordConfig{
			Enabled:    true,
			WebhookURL: server.URL,
			Timeout:    10 * time.Second,
		})

		// Act
		err := notifier.sendWebhookRequest(context.Background(), discordTestDigest())

		// Assert
		var clientErr *ClientError
		if !errors.As(err, &clientErr) {
			t.Fatalf("expected ClientError, got %v", err)
		}
		if clientErr.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", clientErr.StatusCode)
		}
	})

	t.Run("should classify 503 as ServerError", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		notifier := NewDiscordNotifier(DiscordConfig{
			Enabled:    true,
			WebhookURL: server.URL,
			Timeout:    10 * time.Second,
		})

		// Act
		err := notifier.sendWebhookRequest(context.Background(), discordTestDigest())

		// Assert
		var serverErr *ServerError
		if !errors.As(err, &serverErr) {
			t.Fatalf("expected ServerError, got %v", err)
		}
	})
}

func TestExtractRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		header string
		want   time.Duration
	}{
		{
			name: "from JSON body",
			body: `{"retry_after": 2.5}`,
			want: 2500 * time.Millisecond,
		},
		{
			name:   "from Retry-After header",
			body:   `not json`,
			header: "3",
			want:   3 * time.Second,
		},
		{
			name: "default when absent",
			body: `{}`,
			want: 5 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tt.header != "" {
				resp.Header.Set("Retry-After", tt.header)
			}

			if got := extractRetryAfter(resp, []byte(tt.body)); got != tt.want {
				t.Errorf("extractRetryAfter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiscordNotifier_NotifyDigest(t *testing.T) {
	t.Run("should deliver the digest through the webhook", func(t *testing.T) {
		// Arrange
		received := make(chan DiscordWebhookPayload, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			var payload DiscordWebhookPayload
			_ = json.Unmarshal(body, &payload)
			received <- payload
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		notifier := NewDiscordNotifier(DiscordConfig{
			Enabled:    true,
			WebhookURL: server.URL,
			Timeout:    10 * time.Second,
		})

		// Act
		err := notifier.NotifyDigest(context.Background(), discordTestDigest())

		// Assert
		if err != nil {
			t.Fatalf("NotifyDigest() error = %v", err)
		}
		select {
		case payload := <-received:
			if !strings.Contains(payload.Embeds[0].Title, "Krishna") {
				t.Errorf("embed title missing district: %q", payload.Embeds[0].Title)
			}
		case <-time.After(time.Second):
			t.Fatal("webhook was never called")
		}
	})
}

func TestNewDiscordNotifier(t *testing.T) {
	config := DiscordConfig{
		Enabled:    true,
		WebhookURL: "https://discord.com/api/webhooks/test",
		Timeout:    20 * time.Second,
	}

	notifier := NewDiscordNotifier(config)

	if notifier.config.WebhookURL != config.WebhookURL {
		t.Error("config not stored")
	}
	if notifier.httpClient.Timeout != 20*time.Second {
		t.Errorf("expected client timeout 20s, got %v", notifier.httpClient.Timeout)
	}
	if notifier.rateLimiter == nil {
		t.Error("rate limiter not initialized")
	}
}

func TestErrorTypes(t *testing.T) {
	rateLimit := &RateLimitError{RetryAfter: 2 * time.Second}
	if !strings.Contains(rateLimit.Error(), "retry after 2s") {
		t.Errorf("unexpected error text %q", rateLimit.Error())
	}

	client := &ClientError{StatusCode: 400, Message: "bad payload"}
	if client.Error() != "bad payload" {
		t.Errorf("unexpected error text %q", client.Error())
	}

	server := &ServerError{StatusCode: 502, Message: "bad gateway"}
	if server.Error() != "bad gateway" {
		t.Errorf("unexpected error text %q", server.Error())
	}
}
