// Package review implements the multi-pass review engine: the pass
// orchestrator, the cross-pass review context, consolidation, and the
// deterministic fallback used when AI consolidation fails.
package review

import (
	"fmt"

	"github.com/tildaslashalef/overpass/internal/fileset"
	"github.com/tildaslashalef/overpass/internal/llm"
)

// ReviewType represents the type of code review
type ReviewType string

const (
	// ReviewTypeArchitectural examines module boundaries and structure
	ReviewTypeArchitectural ReviewType = "architectural"

	// ReviewTypeSecurity hunts for vulnerabilities
	ReviewTypeSecurity ReviewType = "security"

	// ReviewTypePerformance examines hot paths and resource usage
	ReviewTypePerformance ReviewType = "performance"

	// ReviewTypeQuickFixes surfaces locally fixable defects
	ReviewTypeQuickFixes ReviewType = "quick-fixes"

	// ReviewTypeBestPractices checks idiom and convention adherence
	ReviewTypeBestPractices ReviewType = "best-practices"
)

// ParseReviewType validates a review type name
func ParseReviewType(name string) (ReviewType, error) {
	switch ReviewType(name) {
	case ReviewTypeArchitectural, ReviewTypeSecurity, ReviewTypePerformance,
		ReviewTypeQuickFixes, ReviewTypeBestPractices:
		return ReviewType(name), nil
	}
	return "", fmt.Errorf("unknown review type: %s", name)
}

// PassCost is the token and cost accounting of one pass. The
// consolidation call is recorded as pass N+1.
type PassCost struct {
	Pass          int     `json:"pass"`
	InputTokens   int     `json:"input_tokens"`
	OutputTokens  int     `json:"output_tokens"`
	TotalTokens   int     `json:"total_tokens"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// CostInfo accumulates cost across passes. The aggregate totals equal
// the sum of the per-pass entries at every point in the loop.
type CostInfo struct {
	InputTokens   int        `json:"input_tokens"`
	OutputTokens  int        `json:"output_tokens"`
	TotalTokens   int        `json:"total_tokens"`
	EstimatedCost float64    `json:"estimated_cost"`
	PerPassCosts  []PassCost `json:"per_pass_costs"`
}

// Add folds one pass's usage into the running aggregate and appends its
// per-pass entry
func (c *CostInfo) Add(pass int, usage llm.Usage) {
	entry := PassCost{
		Pass:          pass,
		InputTokens:   usage.InputTokens,
		OutputTokens:  usage.OutputTokens,
		TotalTokens:   usage.TotalTokens,
		EstimatedCost: usage.EstimatedCost,
	}
	c.InputTokens += entry.InputTokens
	c.OutputTokens += entry.OutputTokens
	c.TotalTokens += entry.TotalTokens
	c.EstimatedCost += entry.EstimatedCost
	c.PerPassCosts = append(c.PerPassCosts, entry)
}

// PassRecord captures one completed review pass. Created once per pass,
// never mutated afterwards.
type PassRecord struct {
	ID      string             `json:"id"`
	Number  int                `json:"number"`
	Files   []fileset.FileUnit `json:"-"`
	Content string             `json:"content"`
	Cost    PassCost           `json:"cost"`
}

// FileSummary records that a file was reviewed in a given pass
type FileSummary struct {
	Path        string   `json:"path"`
	FileType    string   `json:"file_type"`
	Description string   `json:"description"`
	KeyElements []string `json:"key_elements,omitempty"`
	Pass        int      `json:"pass"`
}

// ReviewOptions carry the per-request knobs for one review
type ReviewOptions struct {
	ProjectName              string
	ReviewType               ReviewType
	ProjectDocs              string
	MultiPass                bool
	ContextMaintenanceFactor float64
	ReservedOutputTokens     int
	Quiet                    bool
}

// ConsolidatedReport is the terminal artifact of a review, immutable
// once returned
type ConsolidatedReport struct {
	ID          string       `json:"id"`
	Content     string       `json:"content"`
	Cost        CostInfo     `json:"cost"`
	TotalPasses int          `json:"total_passes"`
	ModelUsed   string       `json:"model_used"`
	FilePath    string       `json:"file_path,omitempty"`
	Passes      []PassRecord `json:"passes"`
}
