// Package resilience provides reliability and fault tolerance patterns for the application.
// It includes circuit breakers and retry logic for the external services the digest
// depends on: the Currents news API, RSS feeds, scraped news pages, and the AI
// classification vendors.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.NewsAPIConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callExternalService()
//	})
//
//	retryConfig := retry.DefaultConfig()
//	err := retry.WithBackoff(ctx, retryConfig, func() error {
//	    return performOperation()
//	})
package resilience
