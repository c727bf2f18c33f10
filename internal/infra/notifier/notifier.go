// Package notifier provides abstraction for sending notifications about
// completed digests. It defines the Notifier interface which allows different
// notification mechanisms (Discord, Slack, etc.) to be used interchangeably
// through dependency injection.
//
// The package includes implementations for Discord and Slack webhooks and a
// no-op notifier for when notifications are disabled.
package notifier

import (
	"context"

	"district-digest/internal/domain/entity"
)

// Notifier is an interface for sending digest notifications.
// Implementations should handle rate limiting, retries, and error logging internally.
type Notifier interface {
	// NotifyDigest sends a notification about a freshly assembled digest.
	// The notification should include the district, date, article count, and
	// the provider the articles came from.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - digest: The digest to notify about (must not be nil)
	//
	// Returns:
	//   - error: Non-nil if the notification failed after all retry attempts
	//
	// Implementations should:
	//   - Generate a unique request ID for tracing
	//   - Apply rate limiting to prevent API abuse
	//   - Retry transient failures with exponential backoff
	//   - Log all attempts with the request ID for debugging
	//   - Respect context cancellation
	NotifyDigest(ctx context.Context, digest *entity.Digest) error
}
