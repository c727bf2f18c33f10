// Package digest provides the use case for building a district news digest:
// walking the provider chain, classifying articles, attaching related
// articles, and persisting the result.
package digest

import "errors"

// Sentinel errors for digest use case operations.
var (
	// ErrFetchFailed indicates no provider could produce articles.
	// With the mock provider terminating the chain this only happens when
	// the caller's context dies mid-fetch.
	ErrFetchFailed = errors.New("failed to fetch news for district")

	// ErrDigestNotFound indicates the requested stored digest does not exist.
	ErrDigestNotFound = errors.New("digest not found")
)
