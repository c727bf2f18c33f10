package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ProviderChain is the part of the news provider chain the health endpoint
// needs: the ordered provider names.
type ProviderChain interface {
	Providers() []string
}

// ProviderHealthHandler reports the configured news provider chain.
type ProviderHealthHandler struct {
	chain ProviderChain
}

// NewProviderHealthHandler creates a health check handler for the provider chain.
func NewProviderHealthHandler(chain ProviderChain) *ProviderHealthHandler {
	return &ProviderHealthHandler{chain: chain}
}

// ProviderHealthResponse represents the response for the provider health endpoint.
type ProviderHealthResponse struct {
	Status    string   `json:"status"`
	Providers []string `json:"providers"`
	MockOnly  bool     `json:"mock_only"`
	Message   string   `json:"message,omitempty"`
}

// Health returns the state of the news provider chain.
// GET /health/providers
// Returns 200 with the ordered provider list. The endpoint reports "degraded"
// when only the mock provider is configured: the service still answers, but
// every result will be sample data.
func (h *ProviderHealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.chain == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		response := ProviderHealthResponse{
			Status:  "unhealthy",
			Message: "provider chain not configured",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			slog.Error("failed to encode provider health response", slog.Any("error", err))
		}
		return
	}

	providers := h.chain.Providers()
	mockOnly := len(providers) == 1 && providers[0] == "mock"

	response := ProviderHealthResponse{
		Status:    "healthy",
		Providers: providers,
		MockOnly:  mockOnly,
	}
	if mockOnly {
		response.Status = "degraded"
		response.Message = "only the mock provider is configured; results will be sample data"
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("failed to encode provider health response", slog.Any("error", err))
	}
}
