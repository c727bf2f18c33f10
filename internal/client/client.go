// Package client is a typed API client for the district digest service.
// It implements the request/response cycle of the digest endpoints: JSON
// POSTs with a fixed per-call timeout, a read-body-as-text-first response
// strategy, and a two-stage decode for error bodies.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"district-digest/internal/domain/entity"
)

// requestTimeout bounds every digest call independent of the caller's
// context. Login carries no timeout; authentication latency is the
// server's problem to bound.
const requestTimeout = 15 * time.Second

// noResponseBody substitutes for a body that could not be read.
const noResponseBody = "No response body"

// ErrTimeout indicates the client-side deadline expired before the server
// answered. Mapped at the transport boundary so callers need no knowledge
// of context errors.
var ErrTimeout = errors.New("request timed out")

// StatusError is an HTTP failure with the server's error text when the body
// carried a decodable {error} envelope. Message is empty when the body was
// missing, non-JSON, or lacked the field; callers then pick a generic text.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP %d", e.Code)
}

// errorEnvelope is the error body shape of the digest API.
type errorEnvelope struct {
	Error string `json:"error"`
}

// Client calls the digest service. One Client per base URL; after a
// successful Login it sends the bearer token on every request.
// Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The per-call timeout
// still applies through request contexts.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the bearer token retained from the last successful login,
// or the empty string.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// FetchNews fetches articles for a district and date.
// HTTP failures return a *StatusError; timeouts return ErrTimeout.
func (c *Client) FetchNews(ctx context.Context, query entity.NewsQuery) (*entity.NewsResult, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	body, err := c.post(ctx, "/fetch_news", query)
	if err != nil {
		return nil, err
	}

	var result entity.NewsResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode news result: %w", err)
	}
	return &result, nil
}

// GeneratePDF renders the digest server-side and returns the PDF bytes.
func (c *Client) GeneratePDF(ctx context.Context, req entity.PdfRequest) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	return c.post(ctx, "/generate_pdf", req)
}

// Login authenticates and, on success, retains the returned bearer token
// for subsequent calls. No client-side timeout is applied.
func (c *Client) Login(ctx context.Context, creds entity.Credentials) (*entity.LoginResult, error) {
	body, err := c.post(ctx, "/login", creds)

	// The login endpoint reports bad credentials as a non-2xx with the
	// same {success, message} body; surface that as a result, not an error.
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized {
		return &entity.LoginResult{Success: false, Message: statusErr.Message}, nil
	}
	if err != nil {
		return nil, err
	}

	var result entity.LoginResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode login result: %w", err)
	}

	if result.Success && result.Token != "" {
		c.mu.Lock()
		c.token = result.Token
		c.mu.Unlock()
	}
	return &result, nil
}

// post issues one JSON POST and returns the raw response body.
// The body is always read as text first, so error bodies survive even when
// they fail to decode; a body read failure substitutes a placeholder.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrTimeout)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		raw = []byte(noResponseBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeStatusError(resp.StatusCode, raw)
	}
	return raw, nil
}

// decodeStatusError is the two-stage decode for failure bodies: attempt the
// structured {error} envelope, fall back to an empty Message on any parse
// failure so callers substitute their generic text.
func decodeStatusError(code int, raw []byte) *StatusError {
	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
		return &StatusError{Code: code, Message: envelope.Error}
	}
	return &StatusError{Code: code}
}

// isTimeout reports whether err is a deadline expiry, from either the
// request context or the transport.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
