// Package classifier assigns a category to each fetched article.
// It includes a keyword rule matching the categories users filter by, plus
// AI-backed implementations for Claude (Anthropic) and OpenAI with circuit
// breaker and retry reliability patterns. The AI classifiers fall back to
// the keyword rule on any failure, so classification itself never fails a
// digest fetch.
package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"district-digest/internal/domain/entity"
)

// Classifier assigns one of the digest categories to an article.
type Classifier interface {
	// Name returns the stable classifier identifier used in logs and metrics.
	Name() string

	// Classify returns the category for an article given its title and
	// description. The returned category is always one of
	// entity.CategoryCrime, entity.CategoryTheft, entity.CategoryPublicNoise.
	Classify(ctx context.Context, title, description string) (string, error)
}

// Categories lists the labels a classifier may return, in display order.
var Categories = []string{
	entity.CategoryCrime,
	entity.CategoryTheft,
	entity.CategoryPublicNoise,
}

// normalizeCategory maps free-form classifier output onto a known category.
// AI models occasionally answer with extra words or different casing; anything
// unrecognizable degrades to Crime, the broadest label.
func normalizeCategory(raw string) string {
	cleaned := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `."'`))
	for _, c := range Categories {
		if strings.EqualFold(cleaned, c) {
			return c
		}
	}
	// Model answered with a sentence; look for a label inside it.
	lowered := strings.ToLower(cleaned)
	switch {
	case strings.Contains(lowered, "theft"):
		return entity.CategoryTheft
	case strings.Contains(lowered, "noise"):
		return entity.CategoryPublicNoise
	}
	return entity.CategoryCrime
}

// FromEnv builds the classifier selected by CLASSIFIER_TYPE.
//
// Supported values:
//
//	keyword  substring rule, no external calls (default)
//	claude   Anthropic API, requires ANTHROPIC_API_KEY
//	openai   OpenAI API, requires OPENAI_API_KEY
//	noop     always Crime, for tests and diagnostics
//
// An AI classifier with a missing key degrades to the keyword rule with a
// warning instead of failing startup; classification is not worth crashing
// the service over.
func FromEnv(logger *slog.Logger) (Classifier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	kind := strings.ToLower(strings.TrimSpace(os.Getenv("CLASSIFIER_TYPE")))
	switch kind {
	case "", "keyword":
		return NewKeyword(), nil
	case "claude":
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			logger.Warn("CLASSIFIER_TYPE=claude but ANTHROPIC_API_KEY is empty, using keyword rule")
			return NewKeyword(), nil
		}
		return NewClaude(key), nil
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			logger.Warn("CLASSIFIER_TYPE=openai but OPENAI_API_KEY is empty, using keyword rule")
			return NewKeyword(), nil
		}
		return NewOpenAI(key), nil
	case "noop":
		return NewNoOp(), nil
	}
	return nil, fmt.Errorf("unknown CLASSIFIER_TYPE %q", kind)
}
