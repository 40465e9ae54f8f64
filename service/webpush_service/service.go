package webpush_service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"wolf-push-service/models"
)

// Service delivers payloads over the Web Push protocol with VAPID auth
type Service struct {
	config *Config
}

// NewService creates a new Web Push service
func NewService(config *Config) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	} else {
		config.ApplyDefaults()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Service{config: config}, nil
}

// HasCredentials reports whether VAPID keys are configured
func (s *Service) HasCredentials() bool {
	return s.config.VAPIDPublicKey != "" && s.config.VAPIDPrivateKey != ""
}

// PublicKey returns the VAPID public key handed to browser clients
func (s *Service) PublicKey() string {
	return s.config.VAPIDPublicKey
}

// SendResult represents the outcome of one web push delivery
type SendResult struct {
	Success    bool
	StatusCode int
	Error      error
	// Subscription is dead and should be removed from storage
	SubscriptionGone bool
}

// Send delivers a notification payload to one browser subscription
func (s *Service) Send(ctx context.Context, sub *models.NotificationSubscription, message *models.NotificationMessage) *SendResult {
	result := &SendResult{}

	if sub == nil || !sub.IsWebPush() {
		result.Error = fmt.Errorf("not a web push subscription")
		return result
	}

	payload := map[string]interface{}{
		"title": message.Title,
		"body":  message.Body,
	}
	if message.Link != "" {
		payload["link"] = message.Link
	}
	if message.Image != "" {
		payload["image"] = message.Image
	}
	if message.ID != "" {
		payload["id"] = message.ID
	}
	if len(message.Data) > 0 {
		payload["data"] = message.Data
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		result.Error = fmt.Errorf("failed to marshal payload: %w", err)
		return result
	}

	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payloadBytes, target, &webpush.Options{
		Subscriber:      s.config.Subscriber,
		VAPIDPublicKey:  s.config.VAPIDPublicKey,
		VAPIDPrivateKey: s.config.VAPIDPrivateKey,
		TTL:             s.config.TTL,
	})
	if err != nil {
		result.Error = fmt.Errorf("failed to send web push: %w", err)
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		result.Success = true
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		// 410/404 means the browser dropped the subscription
		result.SubscriptionGone = true
		result.Error = fmt.Errorf("subscription gone: status %d", resp.StatusCode)
	default:
		result.Error = fmt.Errorf("push service returned status %d", resp.StatusCode)
	}

	return result
}

// GenerateVAPIDKeys creates a fresh VAPID key pair
func GenerateVAPIDKeys() (privateKey, publicKey string, err error) {
	return webpush.GenerateVAPIDKeys()
}
