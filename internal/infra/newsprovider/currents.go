package newsprovider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"district-digest/internal/domain/entity"
	"district-digest/internal/resilience/circuitbreaker"
	"district-digest/internal/resilience/retry"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// CurrentsName is the chain identifier of the Currents API provider.
const CurrentsName = "currents"

const defaultCurrentsBaseURL = "https://api.currentsapi.services"

// CurrentsConfig holds configuration for the Currents API provider.
type CurrentsConfig struct {
	// APIKey authenticates against the Currents API. An empty key makes
	// every fetch fail with ErrNoAPIKey so the chain can fall through.
	APIKey string

	// BaseURL is the API origin. Defaults to the public endpoint;
	// overridable for tests.
	BaseURL string

	// Timeout bounds a single API request. Default: 5 seconds.
	Timeout time.Duration

	// RequestsPerSecond and Burst feed the client-side token bucket.
	// Defaults: 2 requests per second with a burst of 5.
	RequestsPerSecond float64
	Burst             int
}

// Currents implements Provider using the Currents news API.
// It includes circuit breaker, retry, and client-side rate limiting.
type Currents struct {
	config         CurrentsConfig
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	limiter        *rate.Limiter

	// Key validation result is cached for the process lifetime to avoid
	// burning quota on every fetch.
	mu       sync.Mutex
	keyValid *bool
}

// NewCurrents creates a Currents provider with the given configuration.
// A nil client falls back to http.DefaultClient.
func NewCurrents(cfg CurrentsConfig, client *http.Client) *Currents {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultCurrentsBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2.0
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &Currents{
		config:         cfg,
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.NewsAPIConfig()),
		retryConfig:    retry.NewsAPIConfig(),
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// Name implements Provider.
func (p *Currents) Name() string { return CurrentsName }

// FetchNews retrieves crime news for the district and date window.
// The district-scoped query runs first; on an API error it retries once with
// a generic state-wide query before giving up. Timeouts are not broadened,
// they surface immediately so the chain can fall through.
func (p *Currents) FetchNews(ctx context.Context, district, date string) ([]entity.Article, error) {
	if !p.validateKey(ctx) {
		return nil, ErrNoAPIKey
	}

	from, to, err := searchWindow(date)
	if err != nil {
		return nil, fmt.Errorf("invalid digest date %q: %w", date, err)
	}

	query := fmt.Sprintf("crime %s %q", district, "Andhra Pradesh")
	articles, err := p.search(ctx, query, from, to)
	if err == nil {
		return articles, nil
	}
	if isTimeout(err) {
		return nil, err
	}

	// Broaden to the state-wide query before giving up on the API.
	generic := fmt.Sprintf("crime %q", "Andhra Pradesh")
	slog.Warn("currents district query failed, trying generic query",
		slog.String("district", district),
		slog.Any("error", err))

	articles, genericErr := p.search(ctx, generic, from, to)
	if genericErr != nil {
		return nil, genericErr
	}
	return articles, nil
}

// FetchRelated retrieves up to three articles related to the category over
// the same window. The district parameter is unused here; the category query
// matches what users drill into from a classified article.
func (p *Currents) FetchRelated(ctx context.Context, category, _, date string) ([]entity.RelatedArticle, error) {
	if !p.validateKey(ctx) {
		return nil, ErrNoAPIKey
	}

	from, to, err := searchWindow(date)
	if err != nil {
		return nil, fmt.Errorf("invalid digest date %q: %w", date, err)
	}

	articles, err := p.search(ctx, category, from, to)
	if err != nil {
		return nil, err
	}
	return toRelated(articles), nil
}

// search runs one query through the rate limiter, retry, and circuit breaker.
func (p *Currents) search(ctx context.Context, query, from, to string) ([]entity.Article, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("currents rate limiter: %w", err)
	}

	var articles []entity.Article

	retryErr := retry.WithBackoff(ctx, p.retryConfig, func() error {
		cbResult, err := p.circuitBreaker.Execute(func() (interface{}, error) {
			return p.doSearch(ctx, query, from, to)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("currents api circuit breaker open, request rejected",
					slog.String("service", CurrentsName),
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

// currentsArticle is the wire shape of one /v1/search result.
type currentsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	Published   string `json:"published"`
}

// currentsResponse is the wire shape of a /v1/search response.
type currentsResponse struct {
	Status  string            `json:"status"`
	News    []currentsArticle `json:"news"`
	Message string            `json:"message"`
}

// doSearch performs one API call without retry or circuit breaker.
func (p *Currents) doSearch(ctx context.Context, query, from, to string) ([]entity.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	params := url.Values{}
	params.Set("keywords", query)
	params.Set("start_date", from)
	params.Set("end_date", to)
	params.Set("language", "en")
	params.Set("apiKey", p.config.APIKey)

	endpoint := p.config.BaseURL + "/v1/search?" + params.Encode()

	body, err := p.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var decoded currentsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("currents api: decode response: %w", err)
	}
	if decoded.Status != "" && decoded.Status != "ok" {
		return nil, fmt.Errorf("currents api error: %s", orFallback(decoded.Message, "Unknown error"))
	}

	articles := make([]entity.Article, 0, len(decoded.News))
	for _, a := range decoded.News {
		articles = append(articles, entity.Article{
			Title:       orFallback(a.Title, fallbackTitle),
			Description: a.Description,
			URL:         a.URL,
			Source:      entity.ArticleSource{Name: orFallback(a.Author, orFallback(a.Publisher, fallbackSourceName))},
			PublishedAt: orFallback(a.Published, fallbackPublished),
		})
	}
	return articles, nil
}

// get issues an HTTP GET and returns the body, mapping non-200 statuses to
// retry.HTTPError so the retry layer can tell transient failures apart.
func (p *Currents) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	return body, nil
}

// validateKey checks the API key against the latest-news endpoint once and
// caches the result for the process lifetime.
func (p *Currents) validateKey(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.keyValid != nil {
		return *p.keyValid
	}

	valid := p.doValidateKey(ctx)
	p.keyValid = &valid
	return valid
}

func (p *Currents) doValidateKey(ctx context.Context) bool {
	if strings.TrimSpace(p.config.APIKey) == "" {
		slog.Error("no currents api key configured")
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	params := url.Values{}
	params.Set("language", "en")
	params.Set("apiKey", p.config.APIKey)

	body, err := p.get(ctx, p.config.BaseURL+"/v1/latest-news?"+params.Encode())
	if err != nil {
		slog.Error("currents api key validation failed", slog.Any("error", err))
		return false
	}

	var decoded currentsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		slog.Error("currents api key validation failed", slog.Any("error", err))
		return false
	}
	if decoded.Status != "ok" {
		slog.Error("currents api key rejected",
			slog.String("message", orFallback(decoded.Message, "Unknown error")))
		return false
	}
	return true
}

// isTimeout reports whether err comes from a deadline, either a context
// cancellation or a network-level timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
