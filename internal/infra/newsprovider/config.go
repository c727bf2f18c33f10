package newsprovider

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"district-digest/pkg/config"

	"gopkg.in/yaml.v3"
)

// ChainConfig controls which providers join the fetch chain and how they are
// constructed. Loaded from environment variables:
//
//	NEWS_PROVIDERS         comma-separated chain order (default: currents,google-news,mock)
//	CURRENTS_API_KEY       Currents API key (empty key falls through to the next provider)
//	CURRENTS_BASE_URL      Currents API origin override
//	GOOGLE_NEWS_BASE_URL   Google News RSS origin override
//	NEWS_SOURCES_FILE      YAML file of scraped listing pages for the html-page provider
//	NEWS_PROVIDER_TIMEOUT  per-request timeout for API providers (default: 5s)
type ChainConfig struct {
	Order             []string
	CurrentsAPIKey    string
	CurrentsBaseURL   string
	GoogleNewsBaseURL string
	SourcesFile       string
	Timeout           time.Duration
}

// LoadChainConfig reads the chain configuration from the environment.
func LoadChainConfig() ChainConfig {
	return ChainConfig{
		Order:             config.GetEnvStringList("NEWS_PROVIDERS", []string{CurrentsName, GoogleNewsName, MockName}),
		CurrentsAPIKey:    config.GetEnvString("CURRENTS_API_KEY", ""),
		CurrentsBaseURL:   config.GetEnvString("CURRENTS_BASE_URL", ""),
		GoogleNewsBaseURL: config.GetEnvString("GOOGLE_NEWS_BASE_URL", ""),
		SourcesFile:       config.GetEnvString("NEWS_SOURCES_FILE", ""),
		Timeout:           config.GetEnvDuration("NEWS_PROVIDER_TIMEOUT", 5*time.Second),
	}
}

// Build constructs the provider chain from the configuration.
// Unknown provider names are rejected. The mock provider is appended when
// missing so the chain always terminates with a provider that cannot fail.
func (cfg ChainConfig) Build(client *http.Client, logger *slog.Logger) (*Chain, error) {
	order := cfg.Order
	if len(order) == 0 {
		order = []string{CurrentsName, GoogleNewsName, MockName}
	}

	providers := make([]Provider, 0, len(order)+1)
	hasMock := false

	for _, name := range order {
		switch name {
		case CurrentsName:
			providers = append(providers, NewCurrents(CurrentsConfig{
				APIKey:  cfg.CurrentsAPIKey,
				BaseURL: cfg.CurrentsBaseURL,
				Timeout: cfg.Timeout,
			}, client))
		case GoogleNewsName:
			providers = append(providers, NewGoogleNews(client, cfg.GoogleNewsBaseURL))
		case HTMLPageName:
			if cfg.SourcesFile == "" {
				return nil, fmt.Errorf("provider %q requires NEWS_SOURCES_FILE", HTMLPageName)
			}
			pages, err := LoadPageConfigs(cfg.SourcesFile)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", cfg.SourcesFile, err)
			}
			scraper, err := NewHTMLPage(pages, client)
			if err != nil {
				return nil, err
			}
			providers = append(providers, scraper)
		case MockName:
			providers = append(providers, NewMock())
			hasMock = true
		default:
			return nil, fmt.Errorf("unknown news provider %q", name)
		}
	}

	if !hasMock {
		providers = append(providers, NewMock())
	}

	return NewChain(logger, providers...)
}

// sourcesFile is the YAML document shape of NEWS_SOURCES_FILE.
type sourcesFile struct {
	Pages []PageConfig `yaml:"pages"`
}

// LoadPageConfigs reads listing page configurations from a YAML file.
//
// Example file:
//
//	pages:
//	  - district: Guntur
//	    url: https://news.example.in/guntur/crime
//	    item: "article.story"
//	    title: "h2"
//	    link: "h2 a"
//	    published: "time"
//	    source: Example News
func LoadPageConfigs(path string) ([]PageConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator configuration
	if err != nil {
		return nil, err
	}

	var doc sourcesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}

	for _, page := range doc.Pages {
		if err := page.validate(); err != nil {
			return nil, err
		}
	}
	return doc.Pages, nil
}
