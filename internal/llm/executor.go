package llm

import (
	"context"
	"fmt"

	"github.com/tildaslashalef/overpass/internal/config"
	"github.com/tildaslashalef/overpass/internal/fileset"
	"github.com/tildaslashalef/overpass/internal/loggy"
)

// ReviewRequest describes one review pass handed to the executor
type ReviewRequest struct {
	Files       []fileset.FileUnit
	ProjectName string
	ReviewType  string
	ProjectDocs string
	PassNumber  int
	TotalPasses int
}

// ConsolidateRequest asks for a final synthesis over all pass output
type ConsolidateRequest struct {
	ProjectName string
	ReviewType  string
	Content     string
	TotalPasses int
}

// ReviewResult is the executor's view of a completed model call
type ReviewResult struct {
	Content string
	Model   string
	Usage   Usage
}

// Executor turns review and consolidation requests into model calls on a
// single resolved provider client. Prompt construction and cost
// accounting live here so the orchestrator never touches wire details.
type Executor struct {
	client             Client
	provider           ProviderType
	model              string
	maxTokens          int
	temperature        float64
	inputPricePerMTok  float64
	outputPricePerMTok float64
	logger             *loggy.Logger
}

// NewExecutor creates an executor bound to one provider client
func NewExecutor(client Client, provider ProviderType, cfg config.ProviderConfig, logger *loggy.Logger) *Executor {
	return &Executor{
		client:             client,
		provider:           provider,
		model:              cfg.Model,
		maxTokens:          cfg.MaxTokens,
		temperature:        cfg.Temperature,
		inputPricePerMTok:  cfg.InputPricePerMTok,
		outputPricePerMTok: cfg.OutputPricePerMTok,
		logger:             logger,
	}
}

// Model returns the model identifier the executor calls
func (e *Executor) Model() string { return e.model }

// Provider returns the provider the executor is bound to
func (e *Executor) Provider() ProviderType { return e.provider }

// GenerateReview runs one review pass over the given files
func (e *Executor) GenerateReview(ctx context.Context, req ReviewRequest) (*ReviewResult, error) {
	system, err := buildReviewSystem(req.ReviewType)
	if err != nil {
		return nil, err
	}
	prompt, err := buildReviewPrompt(req)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("generating review pass",
		"provider", string(e.provider),
		"model", e.model,
		"pass", req.PassNumber,
		"files", len(req.Files))

	return e.chat(ctx, system, prompt)
}

// Consolidate runs the final synthesis call over all accumulated pass
// content
func (e *Executor) Consolidate(ctx context.Context, req ConsolidateRequest) (*ReviewResult, error) {
	prompt, err := buildConsolidationPrompt(req)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("consolidating review",
		"provider", string(e.provider),
		"model", e.model,
		"passes", req.TotalPasses)

	return e.chat(ctx, consolidationSystemTemplate, prompt)
}

func (e *Executor) chat(ctx context.Context, system, prompt string) (*ReviewResult, error) {
	resp, err := e.client.GenerateChat(ctx, ChatRequest{
		Model: e.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", e.provider, err)
	}

	model := resp.Model
	if model == "" {
		model = e.model
	}

	return &ReviewResult{
		Content: resp.Content,
		Model:   model,
		Usage:   e.usage(resp),
	}, nil
}

// usage converts raw token counts into accounted usage with estimated
// cost derived from the provider's per-million-token pricing
func (e *Executor) usage(resp *ChatResponse) Usage {
	cost := float64(resp.InputTokens)/1_000_000*e.inputPricePerMTok +
		float64(resp.OutputTokens)/1_000_000*e.outputPricePerMTok
	return Usage{
		InputTokens:   resp.InputTokens,
		OutputTokens:  resp.OutputTokens,
		TotalTokens:   resp.InputTokens + resp.OutputTokens,
		EstimatedCost: cost,
	}
}
