// Package llm provides a provider-agnostic client abstraction over the
// supported AI model APIs, a typed registry resolving providers once at
// startup, and the executor that turns review requests into model calls.
package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/tildaslashalef/overpass/internal/anthropic"
	"github.com/tildaslashalef/overpass/internal/config"
	"github.com/tildaslashalef/overpass/internal/gemini"
	"github.com/tildaslashalef/overpass/internal/loggy"
	"github.com/tildaslashalef/overpass/internal/openai"
)

// ChatRequest represents a generic chat request to any LLM
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// Message represents a chat message with role and content
type Message struct {
	Role    string `json:"role"` // user, assistant, or system
	Content string `json:"content"`
}

// ChatResponse represents a response from a chat request
type ChatResponse struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// Usage captures the token and cost accounting of one model call
type Usage struct {
	InputTokens   int     `json:"input_tokens"`
	OutputTokens  int     `json:"output_tokens"`
	TotalTokens   int     `json:"total_tokens"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// Client defines the interface for LLM clients
type Client interface {
	// GenerateChat sends a non-streaming chat request
	GenerateChat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ProviderType identifies a supported LLM provider
type ProviderType string

const (
	// OpenAI provider type
	OpenAI ProviderType = "openai"

	// Anthropic provider type
	Anthropic ProviderType = "anthropic"

	// Gemini provider type
	Gemini ProviderType = "gemini"

	// OpenRouter provider type (OpenAI-compatible API)
	OpenRouter ProviderType = "openrouter"
)

// ParseProviderType maps a provider name to its typed constant
func ParseProviderType(name string) (ProviderType, error) {
	switch ProviderType(name) {
	case OpenAI, Anthropic, Gemini, OpenRouter:
		return ProviderType(name), nil
	}
	switch name {
	case "claude":
		return Anthropic, nil
	case "google":
		return Gemini, nil
	}
	return "", fmt.Errorf("unknown provider: %s", name)
}

// Registry resolves LLM clients for configured providers. Clients are
// constructed once, up front; call sites never select providers by string.
type Registry struct {
	config *config.Config
	logger *loggy.Logger

	clients  map[ProviderType]Client
	limiters map[ProviderType]*rate.Limiter
}

// helper function to create a rate limiter from RPM and Burst
func newLimiter(rpm, burst int) *rate.Limiter {
	if rpm <= 0 {
		// If RPM is zero or negative, allow infinite rate (no limiting)
		return rate.NewLimiter(rate.Inf, 1)
	}
	r := rate.Limit(float64(rpm) / 60.0)
	b := burst
	if b <= 0 {
		b = 1
	}
	return rate.NewLimiter(r, b)
}

// NewRegistry creates a registry holding a client for every provider with
// an API key configured.
func NewRegistry(cfg *config.Config, logger *loggy.Logger) *Registry {
	r := &Registry{
		config:   cfg,
		logger:   logger,
		clients:  make(map[ProviderType]Client),
		limiters: make(map[ProviderType]*rate.Limiter),
	}

	if cfg.OpenAI.APIKey != "" {
		r.clients[OpenAI] = newOpenAIAdapter(openai.NewClient(cfg.OpenAI))
		r.limiters[OpenAI] = newLimiter(cfg.OpenAI.RequestsPerMinute, cfg.OpenAI.BurstLimit)
		logger.Info("initialized OpenAI client", "base_url", cfg.OpenAI.BaseURL, "model", cfg.OpenAI.Model)
	}

	if cfg.Anthropic.APIKey != "" {
		r.clients[Anthropic] = newAnthropicAdapter(anthropic.NewClient(cfg.Anthropic))
		r.limiters[Anthropic] = newLimiter(cfg.Anthropic.RequestsPerMinute, cfg.Anthropic.BurstLimit)
		logger.Info("initialized Anthropic client", "base_url", cfg.Anthropic.BaseURL, "model", cfg.Anthropic.Model)
	}

	if cfg.Gemini.APIKey != "" {
		r.clients[Gemini] = newGeminiAdapter(gemini.NewClient(cfg.Gemini))
		r.limiters[Gemini] = newLimiter(cfg.Gemini.RequestsPerMinute, cfg.Gemini.BurstLimit)
		logger.Info("initialized Gemini client", "base_url", cfg.Gemini.BaseURL, "model", cfg.Gemini.Model)
	}

	if cfg.OpenRouter.APIKey != "" {
		// OpenRouter speaks the OpenAI chat completions dialect
		r.clients[OpenRouter] = newOpenAIAdapter(openai.NewClient(cfg.OpenRouter))
		r.limiters[OpenRouter] = newLimiter(cfg.OpenRouter.RequestsPerMinute, cfg.OpenRouter.BurstLimit)
		logger.Info("initialized OpenRouter client", "base_url", cfg.OpenRouter.BaseURL, "model", cfg.OpenRouter.Model)
	}

	return r
}

// Get returns an LLM client for the given provider, wrapped with its
// rate limiter.
func (r *Registry) Get(provider ProviderType) (Client, error) {
	client, ok := r.clients[provider]
	if !ok {
		return nil, fmt.Errorf("%s client not initialized - check configuration", provider)
	}
	return &rateLimitedClient{inner: client, limiter: r.limiters[provider]}, nil
}

// Default returns the client for the configured default provider, falling
// back to any initialized provider when the default is unavailable.
func (r *Registry) Default() (Client, ProviderType, error) {
	defaultType, err := ParseProviderType(r.config.DefaultProvider)
	if err == nil {
		if client, err := r.Get(defaultType); err == nil {
			return client, defaultType, nil
		}
	}

	r.logger.Warn("default LLM provider not available, falling back", "default", r.config.DefaultProvider)

	for _, provider := range []ProviderType{Anthropic, OpenAI, Gemini, OpenRouter} {
		if client, err := r.Get(provider); err == nil {
			return client, provider, nil
		}
	}
	return nil, "", fmt.Errorf("no LLM clients initialized - check configuration")
}

// rateLimitedClient enforces a provider rate limit before each call
type rateLimitedClient struct {
	inner   Client
	limiter *rate.Limiter
}

func (c *rateLimitedClient) GenerateChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}
	return c.inner.GenerateChat(ctx, req)
}
