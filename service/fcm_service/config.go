package fcm_service

import (
	"fmt"
	"time"
)

// Config represents the configuration for the FCM push service
type Config struct {
	// Authentication
	ServerKey string `yaml:"server_key" json:"server_key"` // FCM legacy server key (required)

	// HTTP client settings
	Endpoint   string        `yaml:"endpoint" json:"endpoint"`       // Override for tests
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`         // Request timeout
	MaxRetries int           `yaml:"max_retries" json:"max_retries"` // Maximum number of retries
	BaseDelay  time.Duration `yaml:"base_delay" json:"base_delay"`   // Base delay for exponential backoff

	// Push notification settings
	DefaultPriority string `yaml:"default_priority" json:"default_priority"` // normal or high
	DefaultTTL      int    `yaml:"default_ttl" json:"default_ttl"`           // Default TTL in seconds

	// Batch processing settings
	BatchSize int `yaml:"batch_size" json:"batch_size"` // Batch size for bulk operations

	// Rate limiting
	MaxConcurrency int `yaml:"max_concurrency" json:"max_concurrency"` // Maximum concurrent batch requests
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Endpoint:        SendURL,
		Timeout:         30 * time.Second,
		MaxRetries:      3,
		BaseDelay:       500 * time.Millisecond,
		DefaultPriority: "high",
		DefaultTTL:      3600, // 1 hour
		BatchSize:       MaxTokensPerRequest,
		MaxConcurrency:  4,
	}
}

// ApplyDefaults applies default values to missing configuration fields
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()

	if c.Endpoint == "" {
		c.Endpoint = defaults.Endpoint
	}
	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaults.MaxRetries
	}
	if c.BaseDelay == 0 {
		c.BaseDelay = defaults.BaseDelay
	}
	if c.DefaultPriority == "" {
		c.DefaultPriority = defaults.DefaultPriority
	}
	if c.DefaultTTL == 0 {
		c.DefaultTTL = defaults.DefaultTTL
	}
	if c.BatchSize == 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = defaults.MaxConcurrency
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.ServerKey == "" {
		return fmt.Errorf("server_key is required")
	}
	if c.Timeout < 0 {
		c.Timeout = DefaultConfig().Timeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseDelay < 0 {
		c.BaseDelay = DefaultConfig().BaseDelay
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultConfig().BatchSize
	}
	if c.BatchSize > MaxTokensPerRequest {
		c.BatchSize = MaxTokensPerRequest
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = DefaultConfig().MaxConcurrency
	}

	// Validate priority
	if c.DefaultPriority != "normal" && c.DefaultPriority != "high" {
		c.DefaultPriority = "high"
	}

	return nil
}
