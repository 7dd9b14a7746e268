package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/tildaslashalef/overpass/internal/fileset"
	"github.com/tildaslashalef/overpass/internal/findings"
	"github.com/tildaslashalef/overpass/internal/llm"
	"github.com/tildaslashalef/overpass/internal/loggy"
	"github.com/tildaslashalef/overpass/internal/tokens"
	"github.com/tildaslashalef/overpass/internal/ulid"
)

// Executor turns a prepared pass into a model response. Substitutable
// with a deterministic stub in tests.
type Executor interface {
	GenerateReview(ctx context.Context, req llm.ReviewRequest) (*llm.ReviewResult, error)
	Consolidate(ctx context.Context, req llm.ConsolidateRequest) (*llm.ReviewResult, error)
	Model() string
}

// Orchestrator drives the sequential pass loop: plan the chunks, run
// each pass while folding results into the review context, then
// consolidate. Passes run strictly in order because every pass's prompt
// depends on context accumulated by all prior passes.
type Orchestrator struct {
	executor            Executor
	analyzer            *tokens.Analyzer
	extractor           *findings.Extractor
	consolidator        *Consolidator
	fallback            *FallbackConsolidator
	reporter            Reporter
	contextWindowTokens int
	logger              *loggy.Logger
}

// NewOrchestrator wires an orchestrator from its collaborators. A nil
// reporter disables progress output.
func NewOrchestrator(
	executor Executor,
	analyzer *tokens.Analyzer,
	extractor *findings.Extractor,
	reporter Reporter,
	contextWindowTokens int,
	logger *loggy.Logger,
) *Orchestrator {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Orchestrator{
		executor:            executor,
		analyzer:            analyzer,
		extractor:           extractor,
		consolidator:        NewConsolidator(executor, logger),
		fallback:            NewFallbackConsolidator(logger),
		reporter:            reporter,
		contextWindowTokens: contextWindowTokens,
		logger:              logger,
	}
}

// Run executes a full review over the given files and returns the
// consolidated report. Any pass failure aborts the review; a
// consolidation failure is recovered with the deterministic fallback.
func (o *Orchestrator) Run(ctx context.Context, files []fileset.FileUnit, opts ReviewOptions) (*ConsolidatedReport, error) {
	o.reporter.Analyzing(len(files))

	plan, err := o.analyzer.AnalyzeFiles(files, tokens.Options{
		ReviewType:               string(opts.ReviewType),
		ModelName:                o.executor.Model(),
		ContextWindowTokens:      o.contextWindowTokens,
		ReservedOutputTokens:     opts.ReservedOutputTokens,
		ContextMaintenanceFactor: opts.ContextMaintenanceFactor,
	})
	if err != nil {
		return nil, err
	}
	if plan.PassesNeeded() == 0 {
		return nil, ErrNoFiles
	}

	if !opts.MultiPass && plan.PassesNeeded() > 1 {
		o.logger.Warn("multi-pass disabled, forcing a single pass over the full corpus",
			"estimated_tokens", plan.EstimatedTotalTokens,
			"context_window", plan.ContextWindowTokens)
		plan = &tokens.ChunkPlan{
			Chunks:               []tokens.Chunk{{Files: files, EstimatedTokens: plan.EstimatedTotalTokens}},
			EstimatedTotalTokens: plan.EstimatedTotalTokens,
			ContextWindowTokens:  plan.ContextWindowTokens,
			UsableBudgetPerPass:  plan.UsableBudgetPerPass,
		}
	}

	reviewCtx := NewReviewContext(opts.ProjectName, opts.ReviewType)
	cost := &CostInfo{}
	totalPasses := plan.PassesNeeded()

	var passSections strings.Builder
	records := make([]PassRecord, 0, totalPasses)
	fileIdx := 1

	for _, chunk := range plan.Chunks {
		pass := reviewCtx.StartPass()
		o.reporter.PassStart(pass, totalPasses, len(chunk.Files))

		docs := opts.ProjectDocs
		if cc := reviewCtx.NextPassContext(chunk.Files); cc != "" {
			docs = strings.TrimSpace(docs + "\n\n" + cc)
		}

		result, err := o.executor.GenerateReview(ctx, llm.ReviewRequest{
			Files:       chunk.Files,
			ProjectName: opts.ProjectName,
			ReviewType:  string(opts.ReviewType),
			ProjectDocs: docs,
			PassNumber:  pass,
			TotalPasses: totalPasses,
		})
		if err != nil {
			o.logger.Error("review pass failed, aborting review",
				"pass", pass,
				"total_passes", totalPasses,
				"error", err)
			return nil, &ProviderCallError{Pass: pass, Err: err}
		}

		for _, f := range chunk.Files {
			reviewCtx.AddFileSummary(FileSummary{
				Path:        f.Path,
				FileType:    f.Language,
				Description: fmt.Sprintf("%s file, ~%d tokens", f.Language, f.EstimatedTokens),
				Pass:        pass,
			})
		}
		for _, fnd := range o.extractor.ExtractFromPass(pass, result.Content) {
			reviewCtx.AddFinding(fnd)
		}

		cost.Add(pass, result.Usage)
		entry := cost.PerPassCosts[len(cost.PerPassCosts)-1]

		lastFile := fileIdx + len(chunk.Files) - 1
		label := fmt.Sprintf("Files %d-%d (%d files)", fileIdx, lastFile, len(chunk.Files))
		if len(chunk.Files) == 1 {
			label = fmt.Sprintf("File %d", fileIdx)
		}
		fmt.Fprintf(&passSections, "## Pass %d: %s\n\n%s\n\n",
			pass, label, strings.TrimSpace(result.Content))
		fileIdx = lastFile + 1

		records = append(records, PassRecord{
			ID:      ulid.PassID(),
			Number:  pass,
			Files:   chunk.Files,
			Content: result.Content,
			Cost:    entry,
		})
		o.reporter.PassComplete(pass, totalPasses, entry.EstimatedCost)
	}

	o.logger.Debug("all review passes complete",
		"passes", len(records),
		"findings", len(reviewCtx.Findings()),
		"total_tokens", cost.TotalTokens)

	combined := o.statsHeader(opts, plan, cost, len(files), reviewCtx.Findings()) + "\n" + passSections.String()

	o.reporter.Consolidating()
	content, model, err := o.consolidate(ctx, opts, combined, totalPasses, cost)
	if err != nil {
		return nil, err
	}

	o.reporter.Processing("assembling final report")

	return &ConsolidatedReport{
		ID:          ulid.ReviewID(),
		Content:     content,
		Cost:        *cost,
		TotalPasses: totalPasses,
		ModelUsed:   model,
		Passes:      records,
	}, nil
}

// consolidate runs the final model call, substituting the deterministic
// fallback when it fails or returns unusable output. Consolidation
// failure never surfaces to the caller, with one exception: a cancelled
// review is not a consolidation failure and aborts instead of falling
// back, so nothing gets persisted for an interrupted run.
func (o *Orchestrator) consolidate(ctx context.Context, opts ReviewOptions, combined string, totalPasses int, cost *CostInfo) (content, model string, err error) {
	model = o.executor.Model()

	result, err := o.consolidator.Consolidate(ctx, llm.ConsolidateRequest{
		ProjectName: opts.ProjectName,
		ReviewType:  string(opts.ReviewType),
		Content:     combined,
		TotalPasses: totalPasses,
	})
	if err != nil {
		if cause := ctx.Err(); cause != nil {
			o.logger.Warn("review cancelled during consolidation", "error", cause)
			return "", "", cause
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			o.logger.Warn("review cancelled during consolidation", "error", err)
			return "", "", err
		}
		o.logger.Warn("consolidation unavailable, using deterministic fallback", "error", err)
		return o.fallback.Consolidate(opts.ReviewType, combined), model, nil
	}

	cost.Add(totalPasses+1, result.Usage)
	if result.Model != "" {
		model = result.Model
	}
	return result.Content, model, nil
}

// statsHeader renders the deterministic statistics block prepended to
// the combined pass buffer before consolidation.
func (o *Orchestrator) statsHeader(opts ReviewOptions, plan *tokens.ChunkPlan, cost *CostInfo, fileCount int, found []findings.Finding) string {
	passes := plan.PassesNeeded()
	utilization := 0.0
	if plan.ContextWindowTokens > 0 && passes > 0 {
		utilization = float64(plan.EstimatedTotalTokens) / float64(plan.ContextWindowTokens*passes) * 100
	}
	grade := findings.CalculateGrade(found)

	var b strings.Builder
	b.WriteString("# Review Statistics\n\n")
	fmt.Fprintf(&b, "- Project: %s\n", opts.ProjectName)
	fmt.Fprintf(&b, "- Review type: %s\n", opts.ReviewType)
	fmt.Fprintf(&b, "- Model: %s\n", o.executor.Model())
	fmt.Fprintf(&b, "- Files analyzed: %d\n", fileCount)
	fmt.Fprintf(&b, "- Passes: %d\n", passes)
	fmt.Fprintf(&b, "- Estimated tokens: %d\n", plan.EstimatedTotalTokens)
	fmt.Fprintf(&b, "- Token window utilization: %.1f%%\n", utilization)
	fmt.Fprintf(&b, "- Heuristic grade: %s (%s)\n\n", grade.Letter, grade.Justification)

	b.WriteString(renderCostTable(cost))
	b.WriteString("\n\n")

	b.WriteString("Heuristic recommendations:\n")
	for _, rec := range findings.GenerateRecommendations(found, false) {
		fmt.Fprintf(&b, "- %s\n", rec)
	}
	return b.String()
}

// renderCostTable renders the per-pass cost breakdown as a Markdown
// table
func renderCostTable(cost *CostInfo) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Pass", "Input Tokens", "Output Tokens", "Total Tokens", "Cost (USD)"})
	for _, pc := range cost.PerPassCosts {
		t.AppendRow(table.Row{pc.Pass, pc.InputTokens, pc.OutputTokens, pc.TotalTokens, fmt.Sprintf("%.4f", pc.EstimatedCost)})
	}
	t.AppendFooter(table.Row{"Total", cost.InputTokens, cost.OutputTokens, cost.TotalTokens, fmt.Sprintf("%.4f", cost.EstimatedCost)})
	return t.RenderMarkdown()
}
