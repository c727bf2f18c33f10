package newsprovider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"district-digest/internal/domain/entity"
	"district-digest/internal/observability/metrics"
	"district-digest/internal/resilience/retry"
)

// Result is the outcome of one chain fetch.
type Result struct {
	Articles []entity.Article
	Provider string
	IsMock   bool
}

// Chain walks an ordered list of providers until one produces articles.
// A provider error or an empty result both advance to the next provider.
// With the mock provider at the end, FetchNews only fails when the caller's
// context dies first.
type Chain struct {
	providers []Provider
	logger    *slog.Logger
}

// NewChain creates a chain over the given providers, tried in order.
func NewChain(logger *slog.Logger, providers ...Provider) (*Chain, error) {
	if len(providers) == 0 {
		return nil, errors.New("news provider chain needs at least one provider")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{providers: providers, logger: logger}, nil
}

// Providers returns the provider names in chain order.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// FetchNews walks the chain for the district and date.
func (c *Chain) FetchNews(ctx context.Context, district, date string) (*Result, error) {
	var lastErr error

	for i, provider := range c.providers {
		// A dead parent context means the client gave up; stop walking.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		articles, err := provider.FetchNews(ctx, district, date)
		metrics.RecordNewsFetch(provider.Name(), time.Since(start))

		if err != nil {
			lastErr = err
			metrics.RecordNewsFetchError(provider.Name(), errorType(err))
			c.logger.Warn("news provider failed",
				slog.String("provider", provider.Name()),
				slog.String("district", district),
				slog.String("date", date),
				slog.Any("error", err))
		} else if len(articles) == 0 {
			c.logger.Info("news provider returned no articles",
				slog.String("provider", provider.Name()),
				slog.String("district", district),
				slog.String("date", date))
		} else {
			metrics.RecordArticlesFetched(provider.Name(), district, len(articles))
			isMock := provider.Name() == MockName
			if isMock {
				metrics.RecordMockResult(district)
			}
			return &Result{
				Articles: articles,
				Provider: provider.Name(),
				IsMock:   isMock,
			}, nil
		}

		if i+1 < len(c.providers) {
			metrics.RecordProviderFallback(provider.Name(), c.providers[i+1].Name())
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("all news providers failed: %w", lastErr)
	}
	return nil, errors.New("no news provider produced articles")
}

// FetchRelated asks the named provider for related articles and falls back
// to the terminal provider on any failure. Related articles are decoration
// on an already successful fetch, so this never returns an error; the worst
// outcome is an empty list.
func (c *Chain) FetchRelated(ctx context.Context, providerName, category, district, date string) []entity.RelatedArticle {
	if provider, ok := c.byName(providerName); ok {
		related, err := provider.FetchRelated(ctx, category, district, date)
		if err == nil {
			return related
		}
		c.logger.Warn("related articles fetch failed, using sample data",
			slog.String("provider", providerName),
			slog.String("category", category),
			slog.Any("error", err))
	}

	terminal := c.providers[len(c.providers)-1]
	related, err := terminal.FetchRelated(ctx, category, district, date)
	if err != nil {
		c.logger.Warn("terminal provider failed to serve related articles",
			slog.String("provider", terminal.Name()),
			slog.Any("error", err))
		return nil
	}
	return related
}

func (c *Chain) byName(name string) (Provider, bool) {
	for _, p := range c.providers {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// errorType maps a provider error to a stable metrics label.
func errorType(err error) string {
	switch {
	case isTimeout(err):
		return "timeout"
	case errors.Is(err, ErrNoAPIKey):
		return "no_api_key"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrUnsupported):
		return "unsupported"
	}

	var httpErr *retry.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == http.StatusTooManyRequests {
			return "rate_limited"
		}
		return "http_error"
	}
	return "error"
}
