package gemini

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
		Model:      "gemini-1.5-pro",
		Timeout:    5 * time.Second,
		MaxRetries: 1,
	})
}

func TestGenerateContent(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-1.5-pro:generateContent", r.URL.Path)
		assert.Equal(t, "test-api-key", r.URL.Query().Get("key"))

		var req generateContentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.SystemInstruction)
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "user", req.Contents[0].Role)

		resp := generateContentResponse{
			Candidates: []Candidate{{
				Content:      Content{Role: "model", Parts: []Part{{Text: "All clear."}}},
				FinishReason: "STOP",
			}},
			UsageMetadata: usageMetadata{PromptTokenCount: 90, CandidatesTokenCount: 12, TotalTokenCount: 102},
			ModelVersion:  "gemini-1.5-pro-002",
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	resp, err := client.GenerateContent(context.Background(), GenerateRequest{
		SystemInstruction: "be thorough",
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: "review this"}}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "All clear.", resp.Content)
	assert.Equal(t, "gemini-1.5-pro-002", resp.Model)
	assert.Equal(t, 90, resp.InputTokens)
	assert.Equal(t, 12, resp.OutputTokens)
}

func TestGenerateContentMultipleParts(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		resp := generateContentResponse{
			Candidates: []Candidate{{
				Content: Content{Parts: []Part{{Text: "part one "}, {Text: "part two"}}},
			}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	resp, err := client.GenerateContent(context.Background(), GenerateRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: "hi"}}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "part one part two", resp.Content)
}

func TestGenerateContentNoCandidates(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(generateContentResponse{}))
	})

	_, err := client.GenerateContent(context.Background(), GenerateRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: "hi"}}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestGenerateContentAPIError(t *testing.T) {
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	})

	_, err := client.GenerateContent(context.Background(), GenerateRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: "hi"}}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_ARGUMENT")
}

func TestGenerateContentRetriesServerErrors(t *testing.T) {
	attempts := 0
	client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		resp := generateContentResponse{
			Candidates: []Candidate{{Content: Content{Parts: []Part{{Text: "recovered"}}}}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	resp, err := client.GenerateContent(context.Background(), GenerateRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: "hi"}}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Content)
	assert.Equal(t, 2, attempts)
}
