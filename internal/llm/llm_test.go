package llm

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/overpass/internal/config"
	"github.com/tildaslashalef/overpass/internal/fileset"
	"github.com/tildaslashalef/overpass/internal/loggy"
)

// stubClient records requests and returns a canned response
type stubClient struct {
	lastReq ChatRequest
	resp    *ChatResponse
	err     error
	calls   int
}

func (s *stubClient) GenerateChat(_ context.Context, req ChatRequest) (*ChatResponse, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func TestParseProviderType(t *testing.T) {
	tests := []struct {
		name    string
		want    ProviderType
		wantErr bool
	}{
		{name: "openai", want: OpenAI},
		{name: "anthropic", want: Anthropic},
		{name: "gemini", want: Gemini},
		{name: "openrouter", want: OpenRouter},
		{name: "claude", want: Anthropic},
		{name: "google", want: Gemini},
		{name: "ollama", wantErr: true},
		{name: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("name_"+tt.name, func(t *testing.T) {
			got, err := ParseProviderType(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistryGet(t *testing.T) {
	cfg := config.New()
	cfg.Anthropic.APIKey = "test-key"

	registry := NewRegistry(cfg, loggy.NewNoopLogger())

	client, err := registry.Get(Anthropic)
	require.NoError(t, err)
	assert.NotNil(t, client)

	_, err = registry.Get(OpenAI)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}

func TestRegistryDefault(t *testing.T) {
	t.Run("configured default available", func(t *testing.T) {
		cfg := config.New()
		cfg.DefaultProvider = "openai"
		cfg.OpenAI.APIKey = "test-key"

		registry := NewRegistry(cfg, loggy.NewNoopLogger())
		_, provider, err := registry.Default()
		require.NoError(t, err)
		assert.Equal(t, OpenAI, provider)
	})

	t.Run("falls back when default missing", func(t *testing.T) {
		cfg := config.New()
		cfg.DefaultProvider = "anthropic"
		cfg.Gemini.APIKey = "test-key"

		registry := NewRegistry(cfg, loggy.NewNoopLogger())
		_, provider, err := registry.Default()
		require.NoError(t, err)
		assert.Equal(t, Gemini, provider)
	})

	t.Run("no clients configured", func(t *testing.T) {
		cfg := config.New()

		registry := NewRegistry(cfg, loggy.NewNoopLogger())
		_, _, err := registry.Default()
		require.Error(t, err)
	})
}

func TestRateLimitedClient(t *testing.T) {
	stub := &stubClient{resp: &ChatResponse{Content: "ok"}}
	client := &rateLimitedClient{inner: stub, limiter: newLimiter(600, 10)}

	resp, err := client.GenerateChat(context.Background(), ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 1, stub.calls)
}

func TestRateLimitedClientCancelled(t *testing.T) {
	stub := &stubClient{resp: &ChatResponse{Content: "ok"}}
	// 1 rpm with burst 1: the second call has to wait a minute
	client := &rateLimitedClient{inner: stub, limiter: newLimiter(1, 1)}

	_, err := client.GenerateChat(context.Background(), ChatRequest{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.GenerateChat(ctx, ChatRequest{})
	require.Error(t, err)
	assert.Equal(t, 1, stub.calls)
}

func newTestExecutor(stub *stubClient) *Executor {
	return NewExecutor(stub, Anthropic, config.ProviderConfig{
		Model:              "test-model",
		MaxTokens:          2048,
		Temperature:        0.2,
		InputPricePerMTok:  3.0,
		OutputPricePerMTok: 15.0,
	}, loggy.NewNoopLogger())
}

func TestExecutorGenerateReview(t *testing.T) {
	stub := &stubClient{resp: &ChatResponse{
		Content:      "## Summary\nLooks fine.",
		Model:        "test-model-002",
		InputTokens:  1_000_000,
		OutputTokens: 200_000,
	}}
	executor := newTestExecutor(stub)

	result, err := executor.GenerateReview(context.Background(), ReviewRequest{
		Files: []fileset.FileUnit{
			fileset.NewFileUnit("cmd/main.go", "package main\n", "Go"),
		},
		ProjectName: "overpass",
		ReviewType:  "security",
		ProjectDocs: "Service handles payments.",
		PassNumber:  2,
		TotalPasses: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, "## Summary\nLooks fine.", result.Content)
	assert.Equal(t, "test-model-002", result.Model)
	assert.Equal(t, 1_200_000, result.Usage.TotalTokens)
	assert.InDelta(t, 3.0+0.2*15.0, result.Usage.EstimatedCost, 1e-9)

	require.Len(t, stub.lastReq.Messages, 2)
	system := stub.lastReq.Messages[0]
	assert.Equal(t, "system", system.Role)
	assert.Contains(t, system.Content, "security review")

	prompt := stub.lastReq.Messages[1]
	assert.Equal(t, "user", prompt.Role)
	assert.Contains(t, prompt.Content, "cmd/main.go")
	assert.Contains(t, prompt.Content, "package main")
	assert.Contains(t, prompt.Content, "Service handles payments.")
	assert.Contains(t, prompt.Content, "Pass 2 of 3")
	assert.Equal(t, 2048, stub.lastReq.MaxTokens)
}

func TestExecutorConsolidate(t *testing.T) {
	stub := &stubClient{resp: &ChatResponse{Content: "final report", Model: "test-model"}}
	executor := newTestExecutor(stub)

	result, err := executor.Consolidate(context.Background(), ConsolidateRequest{
		ProjectName: "overpass",
		ReviewType:  "quick-fixes",
		Content:     "## Pass 1: Files 1-3\nstuff",
		TotalPasses: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "final report", result.Content)

	prompt := stub.lastReq.Messages[1].Content
	assert.Contains(t, prompt, "Passes completed: 1")
	assert.Contains(t, prompt, "## Pass 1: Files 1-3")
}

func TestExecutorPropagatesError(t *testing.T) {
	stub := &stubClient{err: fmt.Errorf("boom")}
	executor := newTestExecutor(stub)

	_, err := executor.GenerateReview(context.Background(), ReviewRequest{ReviewType: "security"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "anthropic"))
	assert.Contains(t, err.Error(), "boom")
}

func TestReviewFocusCoversAllTypes(t *testing.T) {
	for _, rt := range []string{"architectural", "security", "performance", "quick-fixes", "best-practices"} {
		assert.NotEmpty(t, reviewFocus(rt))
	}
}
