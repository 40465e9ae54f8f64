package fcm_service

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"
)

// Service provides high-level FCM functionality with retry logic
type Service struct {
	client     *Client
	maxRetries int
	baseDelay  time.Duration
}

// NewService creates a new FCM push notification service
func NewService(serverKey string) *Service {
	return &Service{
		client:     NewClient(serverKey),
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
	}
}

// NewServiceWithConfig creates a new service with custom configuration
func NewServiceWithConfig(client *Client, maxRetries int, baseDelay time.Duration) *Service {
	return &Service{
		client:     client,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// SendNotificationResult represents the result of sending a notification
type SendNotificationResult struct {
	Success   bool
	MessageID string
	Error     error
	Token     string
	Retry     int
	// Token is no longer valid and should be removed from storage
	TokenInvalid bool
}

// SendToToken sends a notification to a single registration token with retry logic
func (s *Service) SendToToken(ctx context.Context, token string, notification *Notification, data map[string]interface{}) *SendNotificationResult {
	request := &SendRequest{
		To:           token,
		Notification: notification,
		Data:         data,
	}

	result := &SendNotificationResult{
		Token: token,
	}

	for retry := 0; retry <= s.maxRetries; retry++ {
		result.Retry = retry

		response, err := s.client.Send(ctx, request)
		if err != nil {
			if s.shouldRetry(err, retry) {
				s.waitBeforeRetry(retry)
				continue
			}
			result.Error = err
			return result
		}

		if len(response.Results) > 0 {
			r := response.Results[0]
			if r.Error == "" {
				result.Success = true
				result.MessageID = r.MessageID
				return result
			}
			result.Error = fmt.Errorf("push failed: %s", r.Error)
			result.TokenInvalid = isTokenError(r.Error)
			return result
		}

		result.Error = fmt.Errorf("no result data")
		return result
	}

	result.Error = fmt.Errorf("max retries exceeded")
	return result
}

// SendToTokens sends a notification to multiple registration tokens,
// splitting into batches of at most MaxTokensPerRequest
func (s *Service) SendToTokens(ctx context.Context, tokens []string, notification *Notification, data map[string]interface{}) []*SendNotificationResult {
	results := make([]*SendNotificationResult, 0, len(tokens))

	for i := 0; i < len(tokens); i += MaxTokensPerRequest {
		end := i + MaxTokensPerRequest
		if end > len(tokens) {
			end = len(tokens)
		}

		batchTokens := tokens[i:end]
		batchResults := s.sendBatch(ctx, batchTokens, notification, data)
		results = append(results, batchResults...)
	}

	return results
}

// sendBatch sends one multicast request
func (s *Service) sendBatch(ctx context.Context, tokens []string, notification *Notification, data map[string]interface{}) []*SendNotificationResult {
	request := &SendRequest{
		RegistrationIDs: tokens,
		Notification:    notification,
		Data:            data,
	}

	results := make([]*SendNotificationResult, len(tokens))
	for i, token := range tokens {
		results[i] = &SendNotificationResult{Token: token}
	}

	for retry := 0; retry <= s.maxRetries; retry++ {
		response, err := s.client.Send(ctx, request)
		if err != nil {
			if s.shouldRetry(err, retry) {
				s.waitBeforeRetry(retry)
				continue
			}
			// Set error for all tokens
			for i := range results {
				results[i].Error = err
				results[i].Retry = retry
			}
			return results
		}

		// Process individual results
		for i, r := range response.Results {
			if i >= len(results) {
				break
			}

			results[i].Retry = retry
			if r.Error == "" {
				results[i].Success = true
				results[i].MessageID = r.MessageID
			} else {
				results[i].Error = fmt.Errorf("push failed: %s", r.Error)
				results[i].TokenInvalid = isTokenError(r.Error)
			}
		}

		return results
	}

	// Max retries exceeded
	for i := range results {
		if !results[i].Success && results[i].Error == nil {
			results[i].Error = fmt.Errorf("max retries exceeded")
			results[i].Retry = s.maxRetries
		}
	}

	return results
}

// SendRequestWithRetry sends a prepared request with retry logic,
// splitting registration ids into batches of at most MaxTokensPerRequest
func (s *Service) SendRequestWithRetry(ctx context.Context, request *SendRequest) []*SendNotificationResult {
	if request == nil {
		return nil
	}

	tokens := request.RegistrationIDs
	if len(tokens) == 0 && request.To != "" {
		tokens = []string{request.To}
	}

	results := make([]*SendNotificationResult, 0, len(tokens))

	for i := 0; i < len(tokens); i += MaxTokensPerRequest {
		end := i + MaxTokensPerRequest
		if end > len(tokens) {
			end = len(tokens)
		}

		batch := *request
		batch.To = ""
		batch.RegistrationIDs = tokens[i:end]

		batchResults := s.sendPreparedBatch(ctx, &batch)
		results = append(results, batchResults...)
	}

	return results
}

// sendPreparedBatch sends one multicast request keeping its custom fields
func (s *Service) sendPreparedBatch(ctx context.Context, request *SendRequest) []*SendNotificationResult {
	results := make([]*SendNotificationResult, len(request.RegistrationIDs))
	for i, token := range request.RegistrationIDs {
		results[i] = &SendNotificationResult{Token: token}
	}

	for retry := 0; retry <= s.maxRetries; retry++ {
		response, err := s.client.Send(ctx, request)
		if err != nil {
			if s.shouldRetry(err, retry) {
				s.waitBeforeRetry(retry)
				continue
			}
			for i := range results {
				results[i].Error = err
				results[i].Retry = retry
			}
			return results
		}

		for i, r := range response.Results {
			if i >= len(results) {
				break
			}

			results[i].Retry = retry
			if r.Error == "" {
				results[i].Success = true
				results[i].MessageID = r.MessageID
			} else {
				results[i].Error = fmt.Errorf("push failed: %s", r.Error)
				results[i].TokenInvalid = isTokenError(r.Error)
			}
		}

		return results
	}

	for i := range results {
		if !results[i].Success && results[i].Error == nil {
			results[i].Error = fmt.Errorf("max retries exceeded")
			results[i].Retry = s.maxRetries
		}
	}

	return results
}

// isTokenError reports whether the FCM error means the token is gone for good
func isTokenError(fcmError string) bool {
	switch fcmError {
	case "NotRegistered", "InvalidRegistration", "MismatchSenderId":
		return true
	}
	return false
}

// shouldRetry determines if an error should trigger a retry
func (s *Service) shouldRetry(err error, retryCount int) bool {
	if retryCount >= s.maxRetries {
		return false
	}

	// Retry on network and 5xx failures up to the limit
	return true
}

// waitBeforeRetry implements exponential backoff
func (s *Service) waitBeforeRetry(retryCount int) {
	if retryCount == 0 {
		return
	}

	// Exponential backoff: baseDelay * 2^(retryCount-1)
	delay := time.Duration(float64(s.baseDelay) * math.Pow(2, float64(retryCount-1)))

	// Add some jitter to avoid thundering herd
	jitter := time.Duration(float64(delay) * 0.1)
	delay += jitter

	log.Printf("Waiting %v before retry %d", delay, retryCount)
	time.Sleep(delay)
}

// ValidateToken validates if a token looks like a plausible FCM registration token
func ValidateToken(token string) bool {
	return len(token) >= 10
}
