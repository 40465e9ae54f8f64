package fcm_service

import (
	"context"
	"fmt"
	"sync"
)

// Manager manages the FCM push service with configuration
type Manager struct {
	service *Service
	config  *Config
	mu      sync.RWMutex
}

// NewManagerWithConfig creates a new manager with custom configuration
func NewManagerWithConfig(config *Config) (*Manager, error) {
	if config == nil {
		config = DefaultConfig()
	} else {
		config.ApplyDefaults()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := NewClientWithConfig(config.ServerKey, config.Endpoint, config.Timeout)
	service := NewServiceWithConfig(client, config.MaxRetries, config.BaseDelay)

	return &Manager{
		service: service,
		config:  config,
	}, nil
}

// HasCredentials reports whether the underlying client has a server key
func (m *Manager) HasCredentials() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.service.client.HasCredentials()
}

// SendNotification sends a notification to a single token
func (m *Manager) SendNotification(ctx context.Context, token string, notification *Notification, data map[string]interface{}) (*SendNotificationResult, error) {
	if !ValidateToken(token) {
		return nil, fmt.Errorf("invalid push token: %s", token)
	}

	m.mu.RLock()
	service := m.service
	m.mu.RUnlock()

	return service.SendToToken(ctx, token, notification, data), nil
}

// SendBulkNotifications sends a notification to multiple tokens
func (m *Manager) SendBulkNotifications(ctx context.Context, tokens []string, notification *Notification, data map[string]interface{}) ([]*SendNotificationResult, error) {
	// Validate tokens
	validTokens := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if ValidateToken(token) {
			validTokens = append(validTokens, token)
		}
	}

	if len(validTokens) == 0 {
		return nil, fmt.Errorf("no valid push tokens provided")
	}

	m.mu.RLock()
	service := m.service
	m.mu.RUnlock()

	return service.SendToTokens(ctx, validTokens, notification, data), nil
}

// SendCustomRequest sends a prepared request (custom priority, collapse key,
// silent delivery) with the service retry policy
func (m *Manager) SendCustomRequest(ctx context.Context, request *SendRequest) []*SendNotificationResult {
	m.mu.RLock()
	service := m.service
	m.mu.RUnlock()

	return service.SendRequestWithRetry(ctx, request)
}

// UpdateConfig updates the manager configuration
func (m *Manager) UpdateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.config = config

	client := NewClientWithConfig(config.ServerKey, config.Endpoint, config.Timeout)
	m.service = NewServiceWithConfig(client, config.MaxRetries, config.BaseDelay)

	return nil
}

// GetConfig returns a copy of the current configuration
func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	configCopy := *m.config
	return &configCopy
}
