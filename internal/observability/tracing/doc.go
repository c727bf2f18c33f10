// Package tracing provides OpenTelemetry tracing integration.
//
// Features:
//   - Automatic HTTP request tracing via Middleware
//   - Manual spans for fetch, classify, and PDF operations via StartSpan
//   - W3C Trace Context propagation from incoming requests
//   - Trace ID exposure in the X-Trace-Id response header
//
// Example usage:
//
//	import "district-digest/internal/observability/tracing"
//
//	func main() {
//	    mux := http.NewServeMux()
//	    handler := tracing.Middleware(mux)
//	    http.ListenAndServe(":8080", handler)
//	}
//
//	func fetchNews(ctx context.Context) {
//	    ctx, span := tracing.StartSpan(ctx, "fetch-news")
//	    defer span.End()
//	    // ... fetch articles ...
//	}
package tracing
