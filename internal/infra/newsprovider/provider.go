// Package newsprovider provides implementations for fetching district crime news.
// It defines the Provider interface which allows different news backends
// (Currents API, Google News RSS, scraped HTML pages, sample data) to be used
// interchangeably and composed into a fallback chain.
//
// Providers return articles in the wire shape of the digest API: normalization
// of missing fields happens here, so downstream layers never see empty titles
// or timestamps.
package newsprovider

import (
	"context"
	"errors"
	"strings"
	"time"

	"district-digest/internal/domain/entity"
)

// relatedLimit caps the related articles attached to one article.
const relatedLimit = 3

// searchWindowDays is how far back the search window for a digest date reaches.
const searchWindowDays = 30

// Sentinel errors returned by providers. The chain treats all of them as a
// signal to move on to the next provider.
var (
	// ErrNoAPIKey indicates the provider has no usable API key and cannot serve live results.
	ErrNoAPIKey = errors.New("news provider: missing or invalid api key")

	// ErrNotConfigured indicates the provider has no configuration for the requested district.
	ErrNotConfigured = errors.New("news provider: not configured for district")

	// ErrUnsupported indicates the provider cannot serve the requested operation.
	ErrUnsupported = errors.New("news provider: operation not supported")
)

// Provider is an interface for fetching district crime news.
// Implementations should handle rate limiting, retries, and error logging internally.
type Provider interface {
	// Name returns the stable provider identifier used in logs, metrics,
	// and stored digests.
	Name() string

	// FetchNews returns articles for the district and digest date, in the
	// order the backend returned them. Articles are normalized but not yet
	// classified. An empty slice with a nil error means the provider
	// answered and found nothing; the chain treats that as a miss.
	FetchNews(ctx context.Context, district, date string) ([]entity.Article, error)

	// FetchRelated returns up to three articles related to the given
	// category, searched over the same window as FetchNews.
	FetchRelated(ctx context.Context, category, district, date string) ([]entity.RelatedArticle, error)
}

// Normalization fallbacks applied to provider payloads.
const (
	fallbackTitle      = "No Title"
	fallbackSourceName = "Unknown"
	fallbackPublished  = "Unknown Date"
)

// orFallback substitutes fallback when value is empty or whitespace.
func orFallback(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// searchWindow computes the [from, to] date strings for a digest date.
// Both ends are inclusive YYYY-MM-DD dates, with from 30 days before to.
func searchWindow(date string) (from, to string, err error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", "", err
	}
	return day.AddDate(0, 0, -searchWindowDays).Format("2006-01-02"), date, nil
}

// toRelated strips articles down to the related-article shape and caps the
// result at relatedLimit.
func toRelated(articles []entity.Article) []entity.RelatedArticle {
	limit := len(articles)
	if limit > relatedLimit {
		limit = relatedLimit
	}
	related := make([]entity.RelatedArticle, 0, limit)
	for _, a := range articles[:limit] {
		related = append(related, entity.RelatedArticle{
			Title:       a.Title,
			URL:         a.URL,
			Source:      a.Source,
			PublishedAt: a.PublishedAt,
		})
	}
	return related
}
