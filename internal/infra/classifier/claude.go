package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"district-digest/internal/observability/metrics"
	"district-digest/internal/resilience/circuitbreaker"
	"district-digest/internal/resilience/retry"
	"district-digest/internal/utils/text"
)

// ClaudeName is the identifier of the Claude classifier.
const ClaudeName = "claude"

// claudeTimeout bounds a single classification API call. Classification is
// a single-token answer, so this is far shorter than a generation budget.
const claudeTimeout = 15 * time.Second

// maxInputRunes caps the headline and description sent to the model.
// District news headlines are short; anything longer is a scraped article
// body that leaked into the description field.
const maxInputRunes = 2000

// Claude implements Classifier using Anthropic's Claude API.
// It includes circuit breaker and retry logic, and degrades to the keyword
// rule whenever the API cannot answer.
type Claude struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	model          string
}

// NewClaude creates a Claude classifier with the given API key.
func NewClaude(apiKey string) *Claude {
	model := string(anthropic.ModelClaudeSonnet4_5_20250929)

	slog.Info("initialized claude classifier",
		slog.String("model", model))

	return &Claude{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		model:          model,
	}
}

// Name returns the classifier identifier.
func (c *Claude) Name() string { return ClaudeName }

// Classify asks Claude for a single category label. On any failure after
// retries the keyword rule answers instead, so the returned error is always
// nil; failures surface through logs and the fallback metric label.
func (c *Claude) Classify(ctx context.Context, title, description string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, claudeTimeout)
	defer cancel()

	start := time.Now()

	var category string
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doClassify(ctx, title, description)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, request rejected",
					slog.String("service", "claude-api"),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}
		category = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		slog.Warn("claude classification failed, falling back to keyword rule",
			slog.Any("error", retryErr))
		category = keywordCategory(title, description)
		metrics.RecordArticleClassified(ClaudeName+"_fallback", category)
		return category, nil
	}

	metrics.RecordClassificationDuration(ClaudeName, time.Since(start))
	metrics.RecordArticleClassified(ClaudeName, category)
	return category, nil
}

// doClassify performs the actual API call without retry or circuit breaker.
func (c *Claude) doClassify(ctx context.Context, title, description string) (string, error) {
	requestID := uuid.New().String()
	prompt := buildClassifyPrompt(title, description)

	slog.DebugContext(ctx, "starting classification",
		slog.String("request_id", requestID),
		slog.Int("input_length", text.CountRunes(prompt)))

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 16,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected response type")
	}

	return normalizeCategory(textBlock.Text), nil
}

// buildClassifyPrompt constructs the single-label classification prompt
// shared by the AI classifiers. Inputs are truncated rune-safely so Telugu
// and Hindi headlines are not cut mid-character.
func buildClassifyPrompt(title, description string) string {
	input := strings.TrimSpace(title + "\n" + description)
	if runes := []rune(input); len(runes) > maxInputRunes {
		input = string(runes[:maxInputRunes])
	}
	return fmt.Sprintf(
		"Classify this news item into exactly one category: %s.\n"+
			"Answer with the category name only.\n\n%s",
		strings.Join(Categories, ", "), input)
}
