package fcm_service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestSendSingleToken(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key=test-server-key", r.Header.Get("Authorization"))

		var req SendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "token-1", req.To)

		json.NewEncoder(w).Encode(SendResponse{
			Success: 1,
			Results: []SendResult{{MessageID: "msg-123"}},
		})
	})

	client := NewClientWithConfig("test-server-key", srv.URL, 5*time.Second)
	resp, err := client.Send(context.Background(), &SendRequest{
		To:           "token-1",
		Notification: &Notification{Title: "Dinner Special", Body: "Tonight only"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Success)
	assert.Equal(t, "msg-123", resp.Results[0].MessageID)
}

func TestSendRejectsOversizedBatch(t *testing.T) {
	client := NewClient("test-server-key")

	tokens := make([]string, MaxTokensPerRequest+1)
	for i := range tokens {
		tokens[i] = "token"
	}

	_, err := client.Send(context.Background(), &SendRequest{RegistrationIDs: tokens})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many tokens")
}

func TestSendRequiresServerKey(t *testing.T) {
	client := NewClient("")
	_, err := client.Send(context.Background(), &SendRequest{To: "token-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server key")
}

func TestServiceBatchSplitting(t *testing.T) {
	var requests int32
	var batchSizes []int

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)

		var req SendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		batchSizes = append(batchSizes, len(req.RegistrationIDs))

		results := make([]SendResult, len(req.RegistrationIDs))
		for i := range results {
			results[i] = SendResult{MessageID: "ok"}
		}
		json.NewEncoder(w).Encode(SendResponse{
			Success: len(results),
			Results: results,
		})
	})

	client := NewClientWithConfig("test-server-key", srv.URL, 5*time.Second)
	service := NewServiceWithConfig(client, 0, time.Millisecond)

	tokens := make([]string, MaxTokensPerRequest+3)
	for i := range tokens {
		tokens[i] = "registration-token"
	}

	results := service.SendToTokens(context.Background(), tokens, &Notification{Title: "hi"}, nil)
	assert.Len(t, results, len(tokens))
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
	assert.Equal(t, []int{MaxTokensPerRequest, 3}, batchSizes)

	for _, r := range results {
		assert.True(t, r.Success)
	}
}

func TestServiceBatchFailureDoesNotStopLaterBatches(t *testing.T) {
	var requests int32

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&requests, 1)

		var req SendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		// 第二批整请求失败
		if n == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		results := make([]SendResult, len(req.RegistrationIDs))
		for i := range results {
			results[i] = SendResult{MessageID: "ok"}
		}
		json.NewEncoder(w).Encode(SendResponse{
			Success: len(results),
			Results: results,
		})
	})

	client := NewClientWithConfig("test-server-key", srv.URL, 5*time.Second)
	service := NewServiceWithConfig(client, 0, time.Millisecond)

	tokens := make([]string, MaxTokensPerRequest*2+3)
	for i := range tokens {
		tokens[i] = "registration-token"
	}

	results := service.SendToTokens(context.Background(), tokens, &Notification{Title: "hi"}, nil)
	require.Len(t, results, len(tokens))
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))

	// 第一批成功
	for _, r := range results[:MaxTokensPerRequest] {
		assert.True(t, r.Success)
	}

	// 第二批逐令牌记录错误
	for _, r := range results[MaxTokensPerRequest : MaxTokensPerRequest*2] {
		assert.False(t, r.Success)
		assert.Error(t, r.Error)
	}

	// 第三批不受第二批失败影响
	for _, r := range results[MaxTokensPerRequest*2:] {
		assert.True(t, r.Success)
	}
}

func TestServicePartialFailureSurvives(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SendResponse{
			Success: 1,
			Failure: 1,
			Results: []SendResult{
				{MessageID: "ok-1"},
				{Error: "NotRegistered"},
			},
		})
	})

	client := NewClientWithConfig("test-server-key", srv.URL, 5*time.Second)
	service := NewServiceWithConfig(client, 0, time.Millisecond)

	results := service.SendToTokens(context.Background(), []string{"token-good", "token-gone"}, &Notification{Title: "hi"}, nil)
	require.Len(t, results, 2)

	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.True(t, results[1].TokenInvalid)
}

func TestServiceRetriesOnServerError(t *testing.T) {
	var requests int32

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&requests, 1)
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(SendResponse{
			Success: 1,
			Results: []SendResult{{MessageID: "msg-after-retry"}},
		})
	})

	client := NewClientWithConfig("test-server-key", srv.URL, 5*time.Second)
	service := NewServiceWithConfig(client, 2, time.Millisecond)

	result := service.SendToToken(context.Background(), "token-1", &Notification{Title: "hi"}, nil)
	assert.True(t, result.Success)
	assert.Equal(t, "msg-after-retry", result.MessageID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
}

func TestConfigValidation(t *testing.T) {
	cfg := &Config{ServerKey: "k", BatchSize: 9999}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, MaxTokensPerRequest, cfg.BatchSize)

	empty := &Config{}
	empty.ApplyDefaults()
	assert.Error(t, empty.Validate())
}
