package llm

import (
	"context"

	"github.com/tildaslashalef/overpass/internal/anthropic"
	"github.com/tildaslashalef/overpass/internal/gemini"
	"github.com/tildaslashalef/overpass/internal/openai"
)

// anthropicAdapter adapts the Anthropic client to the LLM Client interface
type anthropicAdapter struct {
	client *anthropic.Client
}

func newAnthropicAdapter(client *anthropic.Client) *anthropicAdapter {
	return &anthropicAdapter{client: client}
}

// GenerateChat implements the Client interface for Anthropic
func (a *anthropicAdapter) GenerateChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	messages := make([]anthropic.Message, 0, len(req.Messages))
	system := ""
	for _, msg := range req.Messages {
		// Anthropic carries the system prompt outside the message list
		if msg.Role == "system" {
			system = msg.Content
			continue
		}
		messages = append(messages, anthropic.Message{Role: msg.Role, Content: msg.Content})
	}

	resp, err := a.client.Chat(ctx, anthropic.ChatRequest{
		Model:       req.Model,
		System:      system,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, err
	}

	return &ChatResponse{
		Content:      resp.Content,
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}, nil
}

// openaiAdapter adapts the OpenAI-compatible client (OpenAI, OpenRouter)
// to the LLM Client interface
type openaiAdapter struct {
	client *openai.Client
}

func newOpenAIAdapter(client *openai.Client) *openaiAdapter {
	return &openaiAdapter{client: client}
}

// GenerateChat implements the Client interface for OpenAI-compatible APIs
func (a *openaiAdapter) GenerateChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	messages := make([]openai.Message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openai.Message{Role: msg.Role, Content: msg.Content})
	}

	resp, err := a.client.Chat(ctx, openai.ChatRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, err
	}

	return &ChatResponse{
		Content:      resp.Content,
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}, nil
}

// geminiAdapter adapts the Gemini client to the LLM Client interface
type geminiAdapter struct {
	client *gemini.Client
}

func newGeminiAdapter(client *gemini.Client) *geminiAdapter {
	return &geminiAdapter{client: client}
}

// GenerateChat implements the Client interface for Gemini
func (a *geminiAdapter) GenerateChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var system string
	contents := make([]gemini.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if msg.Role == "system" {
			system = msg.Content
			continue
		}
		role := msg.Role
		if role == "assistant" {
			role = "model"
		}
		contents = append(contents, gemini.Content{
			Role:  role,
			Parts: []gemini.Part{{Text: msg.Content}},
		})
	}

	resp, err := a.client.GenerateContent(ctx, gemini.GenerateRequest{
		Model:             req.Model,
		SystemInstruction: system,
		Contents:          contents,
		MaxOutputTokens:   req.MaxTokens,
		Temperature:       req.Temperature,
	})
	if err != nil {
		return nil, err
	}

	return &ChatResponse{
		Content:      resp.Content,
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}, nil
}
