package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"district-digest/internal/observability/metrics"
	"district-digest/internal/resilience/circuitbreaker"
	"district-digest/internal/resilience/retry"
)

// OpenAIName is the identifier of the OpenAI classifier.
const OpenAIName = "openai"

const openAITimeout = 15 * time.Second

// OpenAI implements Classifier using OpenAI's chat completions API.
// Reliability handling mirrors the Claude classifier: circuit breaker,
// retry with backoff, and keyword fallback on exhaustion.
type OpenAI struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	model          string
}

// NewOpenAI creates an OpenAI classifier with the given API key.
func NewOpenAI(apiKey string) *OpenAI {
	model := openai.GPT4oMini

	slog.Info("initialized openai classifier",
		slog.String("model", model))

	return &OpenAI{
		client:         openai.NewClient(apiKey),
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		model:          model,
	}
}

// Name returns the classifier identifier.
func (o *OpenAI) Name() string { return OpenAIName }

// Classify asks the model for a single category label, degrading to the
// keyword rule on failure. The returned error is always nil.
func (o *OpenAI) Classify(ctx context.Context, title, description string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, openAITimeout)
	defer cancel()

	start := time.Now()

	var category string
	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doClassify(ctx, title, description)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, request rejected",
					slog.String("service", "openai-api"),
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}
		category = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		slog.Warn("openai classification failed, falling back to keyword rule",
			slog.Any("error", retryErr))
		category = keywordCategory(title, description)
		metrics.RecordArticleClassified(OpenAIName+"_fallback", category)
		return category, nil
	}

	metrics.RecordClassificationDuration(OpenAIName, time.Since(start))
	metrics.RecordArticleClassified(OpenAIName, category)
	return category, nil
}

// doClassify performs the actual API call without retry or circuit breaker.
func (o *OpenAI) doClassify(ctx context.Context, title, description string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: 16,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: buildClassifyPrompt(title, description),
		}},
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai api returned empty response")
	}
	return normalizeCategory(resp.Choices[0].Message.Content), nil
}
