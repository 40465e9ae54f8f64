package fcm_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// FCM legacy HTTP endpoint
	SendURL = "https://fcm.googleapis.com/fcm/send"

	// Max registration ids per request
	MaxTokensPerRequest = 500

	// Default timeout
	DefaultTimeout = 30 * time.Second
)

// Client represents the FCM push notification client
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	serverKey  string // FCM server key
	endpoint   string
}

// NewClient creates a new FCM client with the given server key
func NewClient(serverKey string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		timeout:   DefaultTimeout,
		serverKey: serverKey,
		endpoint:  SendURL,
	}
}

// NewClientWithConfig creates a new FCM client with full config
func NewClientWithConfig(serverKey, endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = SendURL
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		timeout:   timeout,
		serverKey: serverKey,
		endpoint:  endpoint,
	}
}

// HasCredentials reports whether a server key is configured
func (c *Client) HasCredentials() bool {
	return c.serverKey != ""
}

// Notification represents the display part of an FCM message
type Notification struct {
	Title              string `json:"title,omitempty"`
	Body               string `json:"body,omitempty"`
	Icon               string `json:"icon,omitempty"`
	Badge              string `json:"badge,omitempty"`
	Image              string `json:"image,omitempty"`
	Sound              string `json:"sound,omitempty"`
	ClickAction        string `json:"click_action,omitempty"`
	Tag                string `json:"tag,omitempty"`
	RequireInteraction bool   `json:"requireInteraction,omitempty"`
}

// SendRequest represents an FCM downstream message request
type SendRequest struct {
	To              string                 `json:"to,omitempty"`               // Single registration token
	RegistrationIDs []string               `json:"registration_ids,omitempty"` // Up to MaxTokensPerRequest tokens
	Notification    *Notification          `json:"notification,omitempty"`
	Data            map[string]interface{} `json:"data,omitempty"`
	CollapseKey     string                 `json:"collapse_key,omitempty"`
	Priority        string                 `json:"priority,omitempty"`
	TimeToLive      *int                   `json:"time_to_live,omitempty"`
	// Silent delivery, wakes the app without showing anything
	ContentAvailable bool `json:"content_available,omitempty"`
}

// SendResult represents the per-token result in an FCM response
type SendResult struct {
	MessageID      string `json:"message_id,omitempty"`
	RegistrationID string `json:"registration_id,omitempty"`
	Error          string `json:"error,omitempty"`
}

// SendResponse represents the FCM downstream response
type SendResponse struct {
	MulticastID  int64        `json:"multicast_id"`
	Success      int          `json:"success"`
	Failure      int          `json:"failure"`
	CanonicalIDs int          `json:"canonical_ids"`
	Results      []SendResult `json:"results"`
}

// Send posts a downstream message to FCM
func (c *Client) Send(ctx context.Context, request *SendRequest) (*SendResponse, error) {
	if request == nil {
		return nil, fmt.Errorf("no request to send")
	}
	if request.To == "" && len(request.RegistrationIDs) == 0 {
		return nil, fmt.Errorf("no registration tokens provided")
	}
	if len(request.RegistrationIDs) > MaxTokensPerRequest {
		return nil, fmt.Errorf("too many tokens: %d (max %d)", len(request.RegistrationIDs), MaxTokensPerRequest)
	}
	if c.serverKey == "" {
		return nil, fmt.Errorf("server key is not configured")
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FCM returned status %d: %s", resp.StatusCode, string(body))
	}

	var sendResponse SendResponse
	if err := json.Unmarshal(body, &sendResponse); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &sendResponse, nil
}
