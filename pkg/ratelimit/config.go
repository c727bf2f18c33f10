package ratelimit

import (
	"fmt"
	"time"
)

// RateLimitConfig holds all settings for the IP and user rate limiters.
type RateLimitConfig struct {
	// DefaultIPLimit is the request budget per IP within DefaultIPWindow.
	DefaultIPLimit  int
	DefaultIPWindow time.Duration

	// DefaultUserLimit is the request budget per authenticated user within
	// DefaultUserWindow, used when no tier limit matches.
	DefaultUserLimit  int
	DefaultUserWindow time.Duration

	// TierLimits assigns per-role budgets to authenticated users.
	TierLimits []TierRateLimitConfig

	// MaxActiveKeys bounds the number of keys held in memory before LRU
	// eviction kicks in.
	MaxActiveKeys int

	// CleanupInterval is how often expired entries are swept.
	CleanupInterval time.Duration

	// CleanupMaxAge is the age beyond which entries are swept.
	CleanupMaxAge time.Duration

	// Circuit breaker settings for the limiter's own failure handling.
	CircuitBreakerFailureThreshold int
	CircuitBreakerResetTimeout     time.Duration

	// Enabled turns rate limiting on or off globally.
	Enabled bool
}

// TierRateLimitConfig is the request budget for one user tier.
type TierRateLimitConfig struct {
	Tier   UserTier
	Limit  int
	Window time.Duration
}

// UserTier represents a user's service tier. Tiers mirror the two roles the
// API issues tokens for.
type UserTier string

const (
	// TierAdmin gets the highest budget.
	TierAdmin UserTier = "admin"

	// TierViewer is the read-mostly tier every ordinary user lands in.
	TierViewer UserTier = "viewer"
)

func (t UserTier) String() string {
	return string(t)
}

// IsValid reports whether the tier is a recognized value.
func (t UserTier) IsValid() bool {
	switch t {
	case TierAdmin, TierViewer:
		return true
	default:
		return false
	}
}

// Validate checks the configuration for negative or malformed values.
func (c *RateLimitConfig) Validate() error {
	if c.DefaultIPLimit < 0 {
		return fmt.Errorf("DefaultIPLimit must be non-negative, got %d", c.DefaultIPLimit)
	}
	if c.DefaultIPWindow < 0 {
		return fmt.Errorf("DefaultIPWindow must be non-negative, got %s", c.DefaultIPWindow)
	}
	if c.DefaultUserLimit < 0 {
		return fmt.Errorf("DefaultUserLimit must be non-negative, got %d", c.DefaultUserLimit)
	}
	if c.DefaultUserWindow < 0 {
		return fmt.Errorf("DefaultUserWindow must be non-negative, got %s", c.DefaultUserWindow)
	}
	if c.MaxActiveKeys < 0 {
		return fmt.Errorf("MaxActiveKeys must be non-negative, got %d", c.MaxActiveKeys)
	}
	if c.CleanupInterval < 0 {
		return fmt.Errorf("CleanupInterval must be non-negative, got %s", c.CleanupInterval)
	}
	if c.CleanupMaxAge < 0 {
		return fmt.Errorf("CleanupMaxAge must be non-negative, got %s", c.CleanupMaxAge)
	}
	if c.CircuitBreakerFailureThreshold < 0 {
		return fmt.Errorf("CircuitBreakerFailureThreshold must be non-negative, got %d", c.CircuitBreakerFailureThreshold)
	}
	if c.CircuitBreakerResetTimeout < 0 {
		return fmt.Errorf("CircuitBreakerResetTimeout must be non-negative, got %s", c.CircuitBreakerResetTimeout)
	}

	for i, tierLimit := range c.TierLimits {
		if !tierLimit.Tier.IsValid() {
			return fmt.Errorf("TierLimits[%d].Tier has invalid value %q", i, tierLimit.Tier)
		}
		if tierLimit.Limit < 0 {
			return fmt.Errorf("TierLimits[%d].Limit must be non-negative, got %d", i, tierLimit.Limit)
		}
		if tierLimit.Window < 0 {
			return fmt.Errorf("TierLimits[%d].Window must be non-negative, got %s", i, tierLimit.Window)
		}
	}

	return nil
}

// ApplyDefaults fills zero values with safe defaults so a partially
// configured limiter still functions.
func (c *RateLimitConfig) ApplyDefaults() {
	if c.DefaultIPLimit == 0 {
		c.DefaultIPLimit = 100
	}
	if c.DefaultIPWindow == 0 {
		c.DefaultIPWindow = 1 * time.Minute
	}
	if c.DefaultUserLimit == 0 {
		c.DefaultUserLimit = 1000
	}
	if c.DefaultUserWindow == 0 {
		c.DefaultUserWindow = 1 * time.Hour
	}
	if c.MaxActiveKeys == 0 {
		c.MaxActiveKeys = 10000
	}
	if c.CleanupInterval == 0 {
		c.CleanupInterval = 5 * time.Minute
	}
	if c.CleanupMaxAge == 0 {
		c.CleanupMaxAge = 1 * time.Hour
	}
	if c.CircuitBreakerFailureThreshold == 0 {
		c.CircuitBreakerFailureThreshold = 10
	}
	if c.CircuitBreakerResetTimeout == 0 {
		c.CircuitBreakerResetTimeout = 30 * time.Second
	}
	if !c.Enabled {
		c.Enabled = true
	}
}

// GetTierLimit returns the budget for a tier, falling back to the default
// user limit when the tier has no entry.
func (c *RateLimitConfig) GetTierLimit(tier UserTier) (limit int, window time.Duration) {
	for _, tierLimit := range c.TierLimits {
		if tierLimit.Tier == tier {
			return tierLimit.Limit, tierLimit.Window
		}
	}
	return c.DefaultUserLimit, c.DefaultUserWindow
}

// DefaultConfig returns a config with all defaults applied.
func DefaultConfig() *RateLimitConfig {
	config := &RateLimitConfig{}
	config.ApplyDefaults()
	return config
}
