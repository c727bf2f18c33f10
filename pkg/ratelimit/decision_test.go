package ratelimit

import (
	"strings"
	"testing"
	"time"
)

func TestNewAllowedDecision(t *testing.T) {
	resetAt := time.Now().Add(time.Minute)
	d := NewAllowedDecision("192.0.2.1", "ip", 100, 42, resetAt)

	if !d.Allowed {
		t.Error("Allowed = false, want true")
	}
	if d.Key != "192.0.2.1" {
		t.Errorf("Key = %q, want %q", d.Key, "192.0.2.1")
	}
	if d.Limit != 100 || d.Remaining != 42 {
		t.Errorf("Limit/Remaining = %d/%d, want 100/42", d.Limit, d.Remaining)
	}
	if d.LimiterType != "ip" {
		t.Errorf("LimiterType = %q, want %q", d.LimiterType, "ip")
	}
	if d.RetryAfter < 0 {
		t.Errorf("RetryAfter = %v, want >= 0", d.RetryAfter)
	}
}

func TestNewDeniedDecision(t *testing.T) {
	resetAt := time.Now().Add(30 * time.Second)
	d := NewDeniedDecision("user-7", "user", 50, resetAt)

	if d.Allowed {
		t.Error("Allowed = true, want false")
	}
	if d.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", d.Remaining)
	}
	if d.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %v, want > 0", d.RetryAfter)
	}
}

func TestDecision_RetryAfterSeconds(t *testing.T) {
	d := &RateLimitDecision{RetryAfter: 90 * time.Second}
	if got := d.RetryAfterSeconds(); got != 90 {
		t.Errorf("RetryAfterSeconds() = %d, want 90", got)
	}

	// Negative durations clamp to zero for the Retry-After header
	d = &RateLimitDecision{RetryAfter: -5 * time.Second}
	if got := d.RetryAfterSeconds(); got != 0 {
		t.Errorf("RetryAfterSeconds() = %d, want 0", got)
	}
}

func TestDecision_ResetAtUnix(t *testing.T) {
	resetAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d := &RateLimitDecision{ResetAt: resetAt}
	if got := d.ResetAtUnix(); got != resetAt.Unix() {
		t.Errorf("ResetAtUnix() = %d, want %d", got, resetAt.Unix())
	}
}

func TestDecision_String(t *testing.T) {
	allowed := NewAllowedDecision("k", "ip", 10, 3, time.Now().Add(time.Minute))
	if s := allowed.String(); !strings.Contains(s, "Allowed: true") {
		t.Errorf("String() = %q, want it to mention Allowed: true", s)
	}

	denied := NewDeniedDecision("k", "ip", 10, time.Now().Add(time.Minute))
	if s := denied.String(); !strings.Contains(s, "Allowed: false") {
		t.Errorf("String() = %q, want it to mention Allowed: false", s)
	}
}
