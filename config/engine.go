package config

import (
	"fmt"
	"time"
)

// EngineConfig tunes optimization behavior.
type EngineConfig struct {
	// DefaultTimezone is used when a stakeholder has no stored timezone.
	DefaultTimezone string `json:"default_timezone"`
	// CacheTTLHours overrides the pattern cache lifetime. Zero keeps the
	// built-in 24 hours.
	CacheTTLHours int `json:"cache_ttl_hours"`
	// SlotCount is the number of proposed times per request.
	SlotCount int `json:"slot_count"`
}

// SetDefaults applies sane defaults.
func (c *EngineConfig) SetDefaults() {
	if c.DefaultTimezone == "" {
		c.DefaultTimezone = "UTC"
	}
	if c.SlotCount == 0 {
		c.SlotCount = 3
	}
}

// Validate checks the timezone resolves and numeric fields are in range.
func (c EngineConfig) Validate() error {
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		return fmt.Errorf("invalid default_timezone: %w", err)
	}
	if c.CacheTTLHours < 0 {
		return fmt.Errorf("cache_ttl_hours must not be negative")
	}
	if c.SlotCount < 1 {
		return fmt.Errorf("slot_count must be at least 1")
	}
	return nil
}

// CacheTTL returns the configured TTL, or zero when the default applies.
func (c EngineConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}
