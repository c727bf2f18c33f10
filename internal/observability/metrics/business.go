package metrics

import (
	"time"
)

// RecordArticlesFetched records the number of articles fetched from a news provider.
// This metric helps track provider activity and per-district coverage.
func RecordArticlesFetched(provider, district string, count int) {
	ArticlesFetchedTotal.WithLabelValues(provider, district).Add(float64(count))
}

// RecordNewsFetch records the time taken to fetch news from a provider.
func RecordNewsFetch(provider string, duration time.Duration) {
	NewsFetchDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordNewsFetchError records an error during news fetching.
// The errorType should be a stable classification such as "timeout",
// "rate_limited", "http_error", or "decode_error".
func RecordNewsFetchError(provider, errorType string) {
	NewsFetchErrors.WithLabelValues(provider, errorType).Inc()
}

// RecordProviderFallback records a fallback from one provider to the next in the chain.
func RecordProviderFallback(fromProvider, toProvider string) {
	ProviderFallbacksTotal.WithLabelValues(fromProvider, toProvider).Inc()
}

// RecordMockResult records a response served from sample data instead of a live provider.
func RecordMockResult(district string) {
	MockResultsTotal.WithLabelValues(district).Inc()
}

// RecordArticleClassified records the category assigned to an article.
func RecordArticleClassified(classifier, category string) {
	ArticlesClassifiedTotal.WithLabelValues(classifier, category).Inc()
}

// RecordClassificationDuration records the time taken to classify an article.
// This helps identify performance issues with AI-backed classifiers.
func RecordClassificationDuration(classifier string, duration time.Duration) {
	ClassificationDuration.WithLabelValues(classifier).Observe(duration.Seconds())
}

// RecordPDFGenerated records the result of a PDF generation attempt.
// Status is either "success" or "failure".
func RecordPDFGenerated(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	PDFsGeneratedTotal.WithLabelValues(status).Inc()
}

// RecordPDFGenerationDuration records the time taken to render a digest PDF.
func RecordPDFGenerationDuration(duration time.Duration) {
	PDFGenerationDuration.Observe(duration.Seconds())
}

// RecordPDFSize records the size of a rendered PDF document in bytes.
func RecordPDFSize(sizeBytes int) {
	PDFSizeBytes.Observe(float64(sizeBytes))
}

// UpdateDigestsTotal updates the total count of digests in the database.
// This gauge should be updated periodically to reflect the current state.
func UpdateDigestsTotal(count int) {
	DigestsTotal.Set(float64(count))
}

// RecordContentFetchSuccess records a successful article content fetch.
// This tracks both the duration and size of fetched content.
//
// Example:
//
//	start := time.Now()
//	content, err := fetcher.FetchContent(ctx, url)
//	if err == nil {
//	    RecordContentFetchSuccess(time.Since(start), len(content))
//	}
func RecordContentFetchSuccess(duration time.Duration, size int) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
	ContentFetchSize.Observe(float64(size))
}

// RecordContentFetchFailed records a failed article content fetch.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchSkipped records a skipped content fetch.
// This occurs when the provider already returned enough article text.
func RecordContentFetchSkipped() {
	ContentFetchAttemptsTotal.WithLabelValues("skipped").Inc()
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "select_digests", "upsert_digest").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
