package review

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tildaslashalef/overpass/internal/llm"
	"github.com/tildaslashalef/overpass/internal/loggy"
)

// Consolidator issues the final synthesis call over the whole combined
// pass buffer. Its contract is strict: the call must succeed and return
// non-empty text, otherwise a ConsolidationError is reported and the
// caller substitutes the fallback.
type Consolidator struct {
	executor Executor
	logger   *loggy.Logger
}

// NewConsolidator creates a consolidator using the given executor
func NewConsolidator(executor Executor, logger *loggy.Logger) *Consolidator {
	return &Consolidator{executor: executor, logger: logger}
}

// Consolidate runs the consolidation call. Empty or whitespace-only
// model output counts as failure.
func (c *Consolidator) Consolidate(ctx context.Context, req llm.ConsolidateRequest) (*llm.ReviewResult, error) {
	result, err := c.executor.Consolidate(ctx, req)
	if err != nil {
		return nil, &ConsolidationError{Reason: "model call failed", Err: err}
	}
	if strings.TrimSpace(result.Content) == "" {
		return nil, &ConsolidationError{Reason: "model returned empty content"}
	}
	return result, nil
}

// Delimiters produced by the orchestrator and the pass prompt; the
// fallback parses these back out of the raw buffer.
var (
	passHeaderPattern = regexp.MustCompile(`(?m)^## Pass \d+:.*$`)
	prioritySectionRe = regexp.MustCompile(`(?m)^### (High|Medium|Low) Priority\s*$`)
	issueItemPattern  = regexp.MustCompile(`(?m)^\s*[-*•]\s+\*\*(.+?):?\*\*:?\s*(.*)$`)
	sectionBreakRe    = regexp.MustCompile(`(?m)^(##[^#]|### )`)
)

// FallbackConsolidator deterministically assembles a report from the
// raw multi-pass buffer without any model call. Identical input always
// produces identical output.
type FallbackConsolidator struct {
	logger *loggy.Logger
}

// NewFallbackConsolidator creates the deterministic fallback
func NewFallbackConsolidator(logger *loggy.Logger) *FallbackConsolidator {
	return &FallbackConsolidator{logger: logger}
}

// Consolidate parses priority sections out of each pass block, merges
// and deduplicates them, and emits a fixed-template report with the
// original pass content appended verbatim for traceability.
func (f *FallbackConsolidator) Consolidate(reviewType ReviewType, combined string) string {
	high, medium, low := f.collectIssues(combined)
	passCount := len(passHeaderPattern.FindAllString(combined, -1))

	var b strings.Builder
	fmt.Fprintf(&b, "# Consolidated %s Review\n\n", titleCase(string(reviewType)))
	fmt.Fprintf(&b, "> Assembled automatically from %d review passes. AI consolidation was unavailable, so this report merges the raw pass output directly.\n\n", passCount)

	b.WriteString("## Executive Summary\n\n")
	fmt.Fprintf(&b, "The review surfaced %d high, %d medium, and %d low priority issues across %d passes.\n\n",
		len(high), len(medium), len(low), passCount)

	// Static placeholder grades: a conservative default, not derived
	// from real analysis.
	b.WriteString("## Grading\n\n")
	b.WriteString("| Area | Grade | Note |\n")
	b.WriteString("|------|-------|------|\n")
	b.WriteString("| Code quality | B | Placeholder grade; consolidation was unavailable |\n")
	b.WriteString("| Security | B | Placeholder grade; consolidation was unavailable |\n")
	b.WriteString("| Maintainability | B | Placeholder grade; consolidation was unavailable |\n")
	b.WriteString("| Test coverage | B | Placeholder grade; consolidation was unavailable |\n\n")

	writeIssueSection(&b, "Critical Issues", high)
	writeIssueSection(&b, "Important Issues", medium)
	writeIssueSection(&b, "Minor Issues", low)

	b.WriteString("## Recommendations\n\n")
	if len(high) > 0 {
		fmt.Fprintf(&b, "- Address the %d high priority issues first.\n", len(high))
	}
	if len(medium) > 0 {
		fmt.Fprintf(&b, "- Schedule the %d medium priority issues for upcoming work.\n", len(medium))
	}
	b.WriteString("- Re-run the review once the issues above are resolved to confirm the fixes.\n\n")

	b.WriteString("---\n\n")
	b.WriteString("## Original Pass Content\n\n")
	b.WriteString(combined)

	return b.String()
}

// collectIssues merges "**Issue title:** text" items from the High,
// Medium, and Low Priority subsections of every pass block, exact-string
// deduplicated, in first-seen order.
func (f *FallbackConsolidator) collectIssues(combined string) (high, medium, low []string) {
	seen := make(map[string]struct{})
	appendIssue := func(dst []string, issue string) []string {
		if _, ok := seen[issue]; ok {
			return dst
		}
		seen[issue] = struct{}{}
		return append(dst, issue)
	}

	for _, block := range splitPassBlocks(combined) {
		sections := prioritySectionRe.FindAllStringSubmatchIndex(block, -1)
		for i, sec := range sections {
			priority := block[sec[2]:sec[3]]
			start := sec[1]
			end := len(block)
			if i+1 < len(sections) {
				end = sections[i+1][0]
			} else if next := sectionBreakRe.FindStringIndex(block[start:]); next != nil {
				end = start + next[0]
			}

			for _, m := range issueItemPattern.FindAllStringSubmatch(block[start:end], -1) {
				title := strings.TrimSpace(strings.TrimSuffix(m[1], ":"))
				desc := strings.TrimSpace(m[2])
				issue := title
				if desc != "" {
					issue = title + ": " + desc
				}
				switch priority {
				case "High":
					high = appendIssue(high, issue)
				case "Medium":
					medium = appendIssue(medium, issue)
				case "Low":
					low = appendIssue(low, issue)
				}
			}
		}
	}
	return high, medium, low
}

// splitPassBlocks returns the text of each "## Pass k: ..." block
func splitPassBlocks(combined string) []string {
	headers := passHeaderPattern.FindAllStringIndex(combined, -1)
	blocks := make([]string, 0, len(headers))
	for i, h := range headers {
		end := len(combined)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		blocks = append(blocks, combined[h[0]:end])
	}
	return blocks
}

func writeIssueSection(b *strings.Builder, heading string, issues []string) {
	fmt.Fprintf(b, "## %s\n\n", heading)
	if len(issues) == 0 {
		b.WriteString("None identified.\n\n")
		return
	}
	for _, issue := range issues {
		fmt.Fprintf(b, "- %s\n", issue)
	}
	b.WriteString("\n")
}

var titleCaser = cases.Title(language.English)

func titleCase(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "-", " "))
}
