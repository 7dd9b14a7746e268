// Package tokens decides how a review input set maps onto model context
// windows: estimating token cost, and planning the token-bounded passes a
// multi-pass review needs when the corpus exceeds a single call's window.
package tokens

import (
	"math"

	"github.com/tildaslashalef/overpass/internal/config"
	"github.com/tildaslashalef/overpass/internal/fileset"
	"github.com/tildaslashalef/overpass/internal/loggy"
)

// DefaultContextMaintenanceFactor is the fraction of each pass's budget held
// back for the accumulated cross-pass context injected into later prompts.
const DefaultContextMaintenanceFactor = 0.15

// Chunk is an ordered, non-overlapping subset of the input files assigned
// to one review pass. Chunks are produced once and never mutated.
type Chunk struct {
	Files           []fileset.FileUnit `json:"files"`
	EstimatedTokens int                `json:"estimated_tokens"`
}

// ChunkPlan is the ordered sequence of chunks for one review. The union of
// all chunks' files equals the input set exactly, each file in one chunk.
type ChunkPlan struct {
	Chunks               []Chunk `json:"chunks"`
	EstimatedTotalTokens int     `json:"estimated_total_tokens"`
	ContextWindowTokens  int     `json:"context_window_tokens"`
	UsableBudgetPerPass  int     `json:"usable_budget_per_pass"`
	ChunkingRecommended  bool    `json:"chunking_recommended"`
}

// PassesNeeded returns the number of passes the plan requires.
func (p *ChunkPlan) PassesNeeded() int {
	return len(p.Chunks)
}

// Options configure a file set analysis
type Options struct {
	ReviewType               string
	ModelName                string
	ContextWindowTokens      int
	ReservedOutputTokens     int
	ContextMaintenanceFactor float64 // 0 means DefaultContextMaintenanceFactor
}

// Analyzer plans token-bounded review passes
type Analyzer struct {
	logger *loggy.Logger
}

// NewAnalyzer creates a new token analyzer
func NewAnalyzer(logger *loggy.Logger) *Analyzer {
	return &Analyzer{logger: logger}
}

// UsableBudget computes the per-pass token budget: the window minus reserved
// output tokens, scaled down by the context maintenance factor.
func UsableBudget(contextWindow, reservedOutput int, maintenanceFactor float64) int {
	if maintenanceFactor <= 0 {
		maintenanceFactor = DefaultContextMaintenanceFactor
	}
	budget := float64(contextWindow-reservedOutput) * (1 - maintenanceFactor)
	if budget < 0 {
		return 0
	}
	return int(math.Floor(budget))
}

// AnalyzeFiles estimates the corpus token cost and produces a chunk plan.
// Files are packed greedily in input order; a file whose own estimate
// exceeds the per-pass budget is placed alone in an oversized chunk, since
// files are never split.
func (a *Analyzer) AnalyzeFiles(files []fileset.FileUnit, opts Options) (*ChunkPlan, error) {
	if opts.ContextWindowTokens <= 0 {
		return nil, &config.ConfigurationError{
			Field:  "context_window_tokens",
			Reason: "context window size is required for token analysis",
		}
	}

	totalTokens := fileset.TotalTokens(files)
	budget := UsableBudget(opts.ContextWindowTokens, opts.ReservedOutputTokens, opts.ContextMaintenanceFactor)

	plan := &ChunkPlan{
		EstimatedTotalTokens: totalTokens,
		ContextWindowTokens:  opts.ContextWindowTokens,
		UsableBudgetPerPass:  budget,
	}

	if len(files) == 0 {
		return plan, nil
	}

	if totalTokens <= opts.ContextWindowTokens {
		plan.Chunks = []Chunk{{Files: files, EstimatedTokens: totalTokens}}
		a.logger.Debug("corpus fits a single pass",
			"model", opts.ModelName,
			"tokens", totalTokens,
			"window", opts.ContextWindowTokens)
		return plan, nil
	}

	plan.ChunkingRecommended = true
	plan.Chunks = packChunks(files, budget)

	a.logger.Info("chunked file set for multi-pass review",
		"model", opts.ModelName,
		"review_type", opts.ReviewType,
		"files", len(files),
		"tokens", totalTokens,
		"budget_per_pass", budget,
		"passes", len(plan.Chunks))

	return plan, nil
}

// packChunks greedily bins files in input order against the per-pass budget.
func packChunks(files []fileset.FileUnit, budget int) []Chunk {
	var chunks []Chunk
	var current Chunk

	flush := func() {
		if len(current.Files) > 0 {
			chunks = append(chunks, current)
			current = Chunk{}
		}
	}

	for _, f := range files {
		if f.EstimatedTokens > budget {
			// Oversized file goes alone; files are never split
			flush()
			chunks = append(chunks, Chunk{
				Files:           []fileset.FileUnit{f},
				EstimatedTokens: f.EstimatedTokens,
			})
			continue
		}

		if len(current.Files) > 0 && current.EstimatedTokens+f.EstimatedTokens > budget {
			flush()
		}

		current.Files = append(current.Files, f)
		current.EstimatedTokens += f.EstimatedTokens
	}
	flush()

	return chunks
}
