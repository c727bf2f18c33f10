// Package enrich fetches article body text for PDF rendering.
// Providers return headlines and short descriptions; when a digest PDF is
// asked to include content, this package pulls the article page and extracts
// readable text with the Mozilla Readability algorithm.
package enrich

import "errors"

// Sentinel errors for content fetching. Callers treat every one of them as
// "render the PDF without body text for this article".
var (
	// ErrInvalidURL indicates the URL format is invalid or uses an unsupported scheme.
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the URL resolves to a private IP address (SSRF prevention).
	ErrPrivateIP = errors.New("private IP access denied")

	// ErrTooManyRedirects indicates the redirect chain exceeded the configured maximum.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("request timeout")

	// ErrExtractionFailed indicates readability could not find article text.
	ErrExtractionFailed = errors.New("content extraction failed")
)
