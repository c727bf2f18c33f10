package newsprovider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"district-digest/internal/domain/entity"
	"district-digest/internal/resilience/circuitbreaker"
	"district-digest/internal/resilience/retry"

	"github.com/PuerkitoBio/goquery"
	"github.com/sony/gobreaker"
)

// HTMLPageName is the chain identifier of the scraped listing page provider.
const HTMLPageName = "html-page"

// maxPageBytes caps how much of a listing page is read.
const maxPageBytes = 2 << 20 // 2MB

// PageConfig describes one district news listing page and the CSS selectors
// that locate articles on it. Pages are operator-configured, so URLs here are
// trusted configuration rather than user input.
type PageConfig struct {
	District string `yaml:"district"`
	URL      string `yaml:"url"`

	// ItemSelector matches one article entry on the page. The remaining
	// selectors are evaluated relative to each matched item.
	ItemSelector      string `yaml:"item"`
	TitleSelector     string `yaml:"title"`
	LinkSelector      string `yaml:"link"`
	PublishedSelector string `yaml:"published"`

	// SourceName is the outlet name attached to scraped articles.
	SourceName string `yaml:"source"`
}

func (c PageConfig) validate() error {
	if !entity.IsValidDistrict(c.District) {
		return fmt.Errorf("unknown district %q", c.District)
	}
	if c.URL == "" {
		return fmt.Errorf("page for %s has no url", c.District)
	}
	if c.ItemSelector == "" {
		return fmt.Errorf("page for %s has no item selector", c.District)
	}
	return nil
}

// HTMLPage implements Provider by scraping configured district listing pages
// with goquery. Listing pages show current stories, so the requested date
// window is not enforced here; the prefetch worker only asks for today.
type HTMLPage struct {
	pages          map[string]PageConfig
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewHTMLPage creates a scraping provider over the given page configurations.
func NewHTMLPage(pages []PageConfig, client *http.Client) (*HTMLPage, error) {
	if client == nil {
		client = http.DefaultClient
	}

	byDistrict := make(map[string]PageConfig, len(pages))
	for _, page := range pages {
		if err := page.validate(); err != nil {
			return nil, fmt.Errorf("invalid page config: %w", err)
		}
		byDistrict[page.District] = page
	}

	return &HTMLPage{
		pages:          byDistrict,
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.WebScraperConfig()),
		retryConfig:    retry.WebScraperConfig(),
	}, nil
}

// Name implements Provider.
func (p *HTMLPage) Name() string { return HTMLPageName }

// FetchNews scrapes the configured listing page for the district.
// Districts without a configured page fail with ErrNotConfigured.
func (p *HTMLPage) FetchNews(ctx context.Context, district, _ string) ([]entity.Article, error) {
	page, ok := p.pages[district]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, district)
	}

	var articles []entity.Article

	retryErr := retry.WithBackoff(ctx, p.retryConfig, func() error {
		cbResult, err := p.circuitBreaker.Execute(func() (interface{}, error) {
			return p.doScrape(ctx, page)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("page scraper circuit breaker open, request rejected",
					slog.String("service", HTMLPageName),
					slog.String("district", district),
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

// FetchRelated is unsupported; listing pages cannot be searched by category.
// The chain falls back to its terminal provider for related articles.
func (p *HTMLPage) FetchRelated(context.Context, string, string, string) ([]entity.RelatedArticle, error) {
	return nil, ErrUnsupported
}

// doScrape fetches and parses one listing page without retry or circuit breaker.
func (p *HTMLPage) doScrape(ctx context.Context, page PageConfig) ([]entity.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "DistrictDigestBot")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}

	base, err := url.Parse(page.URL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	var articles []entity.Article
	doc.Find(page.ItemSelector).Each(func(_ int, item *goquery.Selection) {
		title := strings.TrimSpace(item.Find(page.TitleSelector).First().Text())
		link := resolveLink(base, item.Find(page.LinkSelector).First().AttrOr("href", ""))

		published := item.Find(page.PublishedSelector).First().AttrOr("datetime", "")
		if published == "" {
			published = strings.TrimSpace(item.Find(page.PublishedSelector).First().Text())
		}

		articles = append(articles, entity.Article{
			Title:       orFallback(title, fallbackTitle),
			URL:         link,
			Source:      entity.ArticleSource{Name: orFallback(page.SourceName, orFallback(base.Hostname(), fallbackSourceName))},
			PublishedAt: orFallback(published, fallbackPublished),
		})
	})
	return articles, nil
}

// resolveLink makes a scraped href absolute against the page URL.
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
