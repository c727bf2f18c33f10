// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, size)
//   - Business metrics (news fetches, classification, digests, PDFs)
//   - Database query metrics
//   - Application performance metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "district-digest/internal/observability/metrics"
//
//	func fetchNews(provider, district string) {
//	    start := time.Now()
//	    // ... fetch articles ...
//	    count := 10
//
//	    metrics.RecordArticlesFetched(provider, district, count)
//	    metrics.RecordNewsFetch(provider, time.Since(start))
//	}
package metrics
