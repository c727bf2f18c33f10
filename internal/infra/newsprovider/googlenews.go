package newsprovider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"district-digest/internal/domain/entity"
	"district-digest/internal/resilience/circuitbreaker"
	"district-digest/internal/resilience/retry"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
)

// GoogleNewsName is the chain identifier of the Google News RSS provider.
const GoogleNewsName = "google-news"

const defaultGoogleNewsBaseURL = "https://news.google.com/rss/search"

// GoogleNews implements Provider using the Google News RSS search feed.
// It needs no API key, which makes it the live fallback when the Currents
// key is missing or exhausted. Feeds are parsed with gofeed and wrapped in
// circuit breaker and retry logic.
type GoogleNews struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	baseURL        string
}

// NewGoogleNews creates a Google News provider with the given HTTP client.
// An empty baseURL falls back to the public feed endpoint.
func NewGoogleNews(client *http.Client, baseURL string) *GoogleNews {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = defaultGoogleNewsBaseURL
	}
	return &GoogleNews{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
		baseURL:        baseURL,
	}
}

// Name implements Provider.
func (p *GoogleNews) Name() string { return GoogleNewsName }

// FetchNews retrieves crime news for the district via RSS search.
func (p *GoogleNews) FetchNews(ctx context.Context, district, date string) ([]entity.Article, error) {
	from, to, err := searchWindow(date)
	if err != nil {
		return nil, fmt.Errorf("invalid digest date %q: %w", date, err)
	}

	query := fmt.Sprintf("crime %s %q after:%s before:%s", district, "Andhra Pradesh", from, to)
	return p.fetch(ctx, query)
}

// FetchRelated retrieves up to three articles related to the category.
func (p *GoogleNews) FetchRelated(ctx context.Context, category, district, date string) ([]entity.RelatedArticle, error) {
	from, to, err := searchWindow(date)
	if err != nil {
		return nil, fmt.Errorf("invalid digest date %q: %w", date, err)
	}

	query := fmt.Sprintf("%s %s after:%s before:%s", category, district, from, to)
	articles, err := p.fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	return toRelated(articles), nil
}

// fetch runs one feed query through the retry and circuit breaker layers.
func (p *GoogleNews) fetch(ctx context.Context, query string) ([]entity.Article, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en-IN")
	params.Set("gl", "IN")
	params.Set("ceid", "IN:en")
	feedURL := p.baseURL + "?" + params.Encode()

	var articles []entity.Article

	retryErr := retry.WithBackoff(ctx, p.retryConfig, func() error {
		cbResult, err := p.circuitBreaker.Execute(func() (interface{}, error) {
			return p.doFetch(ctx, feedURL)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("google news circuit breaker open, request rejected",
					slog.String("service", GoogleNewsName),
					slog.String("state", p.circuitBreaker.State().String()))
				return err
			}
			return err
		}

		articles = cbResult.([]entity.Article)
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}
	return articles, nil
}

// doFetch performs the actual feed fetch without retry or circuit breaker.
func (p *GoogleNews) doFetch(ctx context.Context, feedURL string) ([]entity.Article, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = "DistrictDigestBot"
	fp.Client = p.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	articles := make([]entity.Article, 0, len(feed.Items))
	for _, it := range feed.Items {
		headline, outlet := splitHeadline(it.Title)

		publishedAt := it.Published
		if it.PublishedParsed != nil {
			publishedAt = it.PublishedParsed.UTC().Format(time.RFC3339)
		}

		articles = append(articles, entity.Article{
			Title:       orFallback(headline, fallbackTitle),
			Description: it.Description,
			URL:         it.Link,
			Source:      entity.ArticleSource{Name: orFallback(outlet, fallbackSourceName)},
			PublishedAt: orFallback(publishedAt, fallbackPublished),
		})
	}
	return articles, nil
}

// splitHeadline separates a Google News item title into headline and outlet.
// Feed titles carry the publisher after the last " - " separator.
func splitHeadline(title string) (headline, outlet string) {
	idx := strings.LastIndex(title, " - ")
	if idx < 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+3:])
}
