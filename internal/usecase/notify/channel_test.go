package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"district-digest/internal/domain/entity"
)

// mockChannel is a test implementation of the Channel interface
type mockChannel struct {
	name        string
	enabled     bool
	sendError   error
	sendDelay   time.Duration
	panicOnSend bool
	sendCalled  int
	lastDigest  *entity.Digest
	mu          sync.Mutex
}

func (m *mockChannel) Name() string {
	return m.name
}

func (m *mockChannel) IsEnabled() bool {
	return m.enabled
}

func (m *mockChannel) Send(ctx context.Context, digest *entity.Digest) error {
	m.mu.Lock()
	m.sendCalled++
	m.lastDigest = digest
	shouldPanic := m.panicOnSend
	m.mu.Unlock()

	if shouldPanic {
		panic("mock panic in Send()")
	}

	if !m.enabled {
		return ErrChannelDisabled
	}
	if digest == nil {
		return ErrInvalidDigest
	}

	if m.sendDelay > 0 {
		select {
		case <-time.After(m.sendDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	err := m.sendError
	m.mu.Unlock()
	return err
}

func (m *mockChannel) getSendCalledCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sendCalled
}

func (m *mockChannel) getLastDigest() *entity.Digest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastDigest
}

func (m *mockChannel) setSendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendError = err
}

// testDigest returns a valid digest for notification tests.
func testDigest() *entity.Digest {
	return &entity.Digest{
		ID:           1,
		District:     "Guntur",
		Date:         "2026-03-14",
		Provider:     "currents",
		ArticleCount: 2,
		Articles: []entity.Article{
			{Title: "Burglary reported", URL: "https://example.com/1", Category: entity.CategoryTheft},
			{Title: "Loudspeaker complaint", URL: "https://example.com/2", Category: entity.CategoryPublicNoise},
		},
	}
}

// TestChannelInterface verifies that mockChannel implements Channel interface
func TestChannelInterface(t *testing.T) {
	var _ Channel = (*mockChannel)(nil)
}

// TestMockChannel_Name tests the Name method
func TestMockChannel_Name(t *testing.T) {
	ch := &mockChannel{name: "test-channel"}
	if got := ch.Name(); got != "test-channel" {
		t.Errorf("Name() = %v, want %v", got, "test-channel")
	}
}

// TestMockChannel_IsEnabled tests the IsEnabled method
func TestMockChannel_IsEnabled(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		want    bool
	}{
		{"enabled channel", true, true},
		{"disabled channel", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &mockChannel{enabled: tt.enabled}
			if got := ch.IsEnabled(); got != tt.want {
				t.Errorf("IsEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestMockChannel_Send tests the Send method with various scenarios
func TestMockChannel_Send(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		enabled   bool
		digest    *entity.Digest
		sendError error
		wantErr   error
	}{
		{
			name:    "successful send",
			enabled: true,
			digest:  testDigest(),
			wantErr: nil,
		},
		{
			name:    "disabled channel",
			enabled: false,
			digest:  testDigest(),
			wantErr: ErrChannelDisabled,
		},
		{
			name:    "nil digest",
			enabled: true,
			digest:  nil,
			wantErr: ErrInvalidDigest,
		},
		{
			name:      "send error",
			enabled:   true,
			digest:    testDigest(),
			sendError: errors.New("network error"),
			wantErr:   errors.New("network error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &mockChannel{
				enabled:   tt.enabled,
				sendError: tt.sendError,
			}

			err := ch.Send(ctx, tt.digest)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Send() error = %v, want nil", err)
				}
			} else {
				if err == nil {
					t.Errorf("Send() error = nil, want %v", tt.wantErr)
				} else if !errors.Is(err, tt.wantErr) && err.Error() != tt.wantErr.Error() {
					t.Errorf("Send() error = %v, want %v", err, tt.wantErr)
				}
			}
		})
	}
}
