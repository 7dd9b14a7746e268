package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/overpass/internal/config"
)

func setupTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.ProviderConfig{
		APIKey:     "test-api-key",
		BaseURL:    server.URL,
		Model:      "gpt-4o",
		Timeout:    5 * time.Second,
		MaxRetries: 1,
	})
}

func TestChat(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		resp := completionResponse{
			ID:    "chatcmpl-42",
			Model: req.Model,
			Choices: []completionChoice{{
				Message:      Message{Role: "assistant", Content: "No issues found."},
				FinishReason: "stop",
			}},
			Usage: usageInfo{PromptTokens: 200, CompletionTokens: 30, TotalTokens: 230},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	resp, err := client.Chat(context.Background(), ChatRequest{
		Messages: []Message{
			{Role: "system", Content: "be thorough"},
			{Role: "user", Content: "review this"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "No issues found.", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 200, resp.InputTokens)
	assert.Equal(t, 30, resp.OutputTokens)
}

func TestChatNoChoices(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(completionResponse{Model: "gpt-4o"}))
	})

	_, err := client.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no completion choices")
}

func TestChatAPIError(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	})

	_, err := client.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key")
}

func TestChatRetriesRateLimit(t *testing.T) {
	attempts := 0
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_error"}}`))
			return
		}
		resp := completionResponse{
			Choices: []completionChoice{{Message: Message{Content: "recovered"}}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	resp, err := client.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Content)
	assert.Equal(t, 2, attempts)
}

func TestTrailingSlashTrimmed(t *testing.T) {
	client := NewClient(config.ProviderConfig{
		APIKey:  "k",
		BaseURL: "https://openrouter.ai/api/v1/",
	})
	assert.Equal(t, "https://openrouter.ai/api/v1", client.baseURL)
}
