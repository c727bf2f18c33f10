package classifier

import (
	"context"
	"strings"
	"time"

	"district-digest/internal/domain/entity"
	"district-digest/internal/observability/metrics"
)

// KeywordName is the identifier of the keyword classifier.
const KeywordName = "keyword"

// Keyword classifies articles by substring matching over title and
// description. The rule is deliberately simple: "theft" wins over "noise",
// and everything else is general Crime. It needs no API key and is the
// default classifier.
type Keyword struct{}

// NewKeyword creates the keyword rule classifier.
func NewKeyword() *Keyword {
	return &Keyword{}
}

// Name returns the classifier identifier.
func (k *Keyword) Name() string { return KeywordName }

// Classify applies the substring rule, case-insensitively.
func (k *Keyword) Classify(_ context.Context, title, description string) (string, error) {
	start := time.Now()
	category := keywordCategory(title, description)
	metrics.RecordClassificationDuration(KeywordName, time.Since(start))
	metrics.RecordArticleClassified(KeywordName, category)
	return category, nil
}

// keywordCategory holds the actual rule so the AI classifiers can reuse it
// as their fallback without double-recording metrics.
func keywordCategory(title, description string) string {
	text := strings.ToLower(title + " " + description)
	switch {
	case strings.Contains(text, "theft"):
		return entity.CategoryTheft
	case strings.Contains(text, "noise"):
		return entity.CategoryPublicNoise
	}
	return entity.CategoryCrime
}
