package webpush_service

import (
	"fmt"
	"time"
)

// Config represents the configuration for the Web Push service
type Config struct {
	// VAPID credentials
	VAPIDPublicKey  string `yaml:"vapid_public_key" json:"vapid_public_key"`
	VAPIDPrivateKey string `yaml:"vapid_private_key" json:"vapid_private_key"`
	Subscriber      string `yaml:"subscriber" json:"subscriber"` // Contact email, webpush-go adds mailto:

	// Delivery settings
	TTL     int           `yaml:"ttl" json:"ttl"`         // Seconds the push service keeps the message
	Timeout time.Duration `yaml:"timeout" json:"timeout"` // Request timeout
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		TTL:     60 * 60 * 24, // 24 hours
		Timeout: 30 * time.Second,
	}
}

// ApplyDefaults applies default values to missing configuration fields
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()

	if c.TTL == 0 {
		c.TTL = defaults.TTL
	}
	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.VAPIDPublicKey == "" || c.VAPIDPrivateKey == "" {
		return fmt.Errorf("vapid keys are required")
	}
	if c.Subscriber == "" {
		return fmt.Errorf("subscriber email is required")
	}
	return nil
}
