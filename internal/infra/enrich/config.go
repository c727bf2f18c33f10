package enrich

import (
	"fmt"
	"time"

	"district-digest/pkg/config"
)

// Config holds the configuration for article content fetching.
type Config struct {
	// Enabled controls whether PDF generation fetches article bodies at all.
	// When false the PDF carries headlines and metadata only.
	Enabled bool

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// Parallelism caps concurrent fetches during one PDF render.
	Parallelism int

	// MaxBodySize caps the HTTP response body in bytes. Enforced while
	// reading, not from the Content-Length header.
	MaxBodySize int64

	// MaxRedirects caps the redirect chain; every target is re-validated.
	MaxRedirects int

	// DenyPrivateIPs blocks URLs resolving to private, loopback, or
	// link-local addresses. Always true in production.
	DenyPrivateIPs bool

	// SnippetRunes caps the extracted text kept per article.
	SnippetRunes int
}

// DefaultConfig returns the default content fetch configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		Timeout:        10 * time.Second,
		Parallelism:    5,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		SnippetRunes:   600,
	}
}

// LoadConfig reads the content fetch configuration from the environment.
//
// Environment variables:
//
//	PDF_INCLUDE_CONTENT       "true" to fetch article bodies (default: false)
//	PDF_CONTENT_TIMEOUT       per-request timeout (default: 10s)
//	PDF_CONTENT_PARALLELISM   concurrent fetches per render (default: 5)
//	PDF_CONTENT_MAX_BODY      response body cap in bytes (default: 10MB)
//	PDF_CONTENT_SNIPPET       runes of text kept per article (default: 600)
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	cfg.Enabled = config.GetEnvBool("PDF_INCLUDE_CONTENT", cfg.Enabled)
	cfg.Timeout = config.GetEnvDuration("PDF_CONTENT_TIMEOUT", cfg.Timeout)
	cfg.Parallelism = config.GetEnvInt("PDF_CONTENT_PARALLELISM", cfg.Parallelism)
	cfg.MaxBodySize = int64(config.GetEnvInt("PDF_CONTENT_MAX_BODY", int(cfg.MaxBodySize)))
	cfg.SnippetRunes = config.GetEnvInt("PDF_CONTENT_SNIPPET", cfg.SnippetRunes)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration values for safe ranges.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.Parallelism < 1 || c.Parallelism > 50 {
		return fmt.Errorf("parallelism must be between 1 and 50, got %d", c.Parallelism)
	}
	const (
		minBody = int64(1024)
		maxBody = int64(100 * 1024 * 1024)
	)
	if c.MaxBodySize < minBody || c.MaxBodySize > maxBody {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBody, maxBody, c.MaxBodySize)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	if c.SnippetRunes < 100 {
		return fmt.Errorf("snippet length must be at least 100 runes, got %d", c.SnippetRunes)
	}
	return nil
}
