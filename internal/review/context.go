package review

import (
	"fmt"
	"strings"

	"github.com/tildaslashalef/overpass/internal/fileset"
	"github.com/tildaslashalef/overpass/internal/findings"
)

// Caps on how much accumulated state is textualized into the next
// pass's prompt, so the injected context stays within the maintenance
// headroom the analyzer reserved.
const (
	maxContextSummaries = 30
	maxContextFindings  = 25
	maxContextNotes     = 10
)

// ReviewContext is the append-only accumulator that carries information
// across passes. Single-writer: it is owned by one orchestrator run and
// discarded when the run ends. Nothing is deduplicated here; that
// happens downstream in extraction and consolidation.
type ReviewContext struct {
	projectName string
	reviewType  ReviewType

	summaries   []FileSummary
	findings    []findings.Finding
	notes       []string
	currentPass int
}

// NewReviewContext creates the accumulator for one review request
func NewReviewContext(projectName string, reviewType ReviewType) *ReviewContext {
	return &ReviewContext{
		projectName: projectName,
		reviewType:  reviewType,
	}
}

// StartPass increments and returns the pass counter; the first call
// yields 1
func (c *ReviewContext) StartPass() int {
	c.currentPass++
	return c.currentPass
}

// CurrentPass returns the current pass number, 0 before the first pass
func (c *ReviewContext) CurrentPass() int { return c.currentPass }

// AddFileSummary appends a reviewed-file record
func (c *ReviewContext) AddFileSummary(summary FileSummary) {
	c.summaries = append(c.summaries, summary)
}

// AddFinding appends an extracted finding
func (c *ReviewContext) AddFinding(f findings.Finding) {
	c.findings = append(c.findings, f)
}

// AddGeneralNote appends a free-text continuity note
func (c *ReviewContext) AddGeneralNote(text string) {
	c.notes = append(c.notes, text)
}

// Findings returns all findings accumulated so far
func (c *ReviewContext) Findings() []findings.Finding { return c.findings }

// FileSummaries returns all file summaries accumulated so far
func (c *ReviewContext) FileSummaries() []FileSummary { return c.summaries }

// NextPassContext renders accumulated state as a documentation block
// injected into the next pass's prompt. This is how information
// survives across passes even though each pass is a fresh model call.
// Returns the empty string before any pass has completed.
func (c *ReviewContext) NextPassContext(upcoming []fileset.FileUnit) string {
	if len(c.summaries) == 0 && len(c.findings) == 0 && len(c.notes) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Review Continuity Context\n\n")
	fmt.Fprintf(&b, "This %s review of %s is running in multiple passes; %d files were reviewed in earlier passes.\n",
		c.reviewType, c.projectName, len(c.summaries))
	if len(upcoming) > 0 {
		fmt.Fprintf(&b, "The upcoming pass covers %d files. Keep earlier findings in mind and avoid repeating them verbatim.\n", len(upcoming))
	}

	if len(c.summaries) > 0 {
		b.WriteString("\n### Files Already Reviewed\n")
		for _, s := range tailSummaries(c.summaries, maxContextSummaries) {
			fmt.Fprintf(&b, "- %s (%s, pass %d)", s.Path, s.FileType, s.Pass)
			if s.Description != "" {
				fmt.Fprintf(&b, ": %s", s.Description)
			}
			b.WriteString("\n")
		}
	}

	if len(c.findings) > 0 {
		b.WriteString("\n### Findings So Far\n")
		// Worst findings first; when the cap trims the list it is the
		// low-severity tail that gets dropped.
		for _, f := range headFindings(findings.SortBySeverity(c.findings), maxContextFindings) {
			fmt.Fprintf(&b, "- [%s/%s] %s\n", f.Severity, f.Category, f.Description)
		}
	}

	if len(c.notes) > 0 {
		b.WriteString("\n### Notes\n")
		for _, note := range tailStrings(c.notes, maxContextNotes) {
			fmt.Fprintf(&b, "- %s\n", note)
		}
	}

	return b.String()
}

func tailSummaries(s []FileSummary, n int) []FileSummary {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func headFindings(s []findings.Finding, n int) []findings.Finding {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func tailStrings(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
