package llm

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/tildaslashalef/overpass/internal/fileset"
)

// Templates for building prompts
const reviewSystemTemplate = `You are a senior code reviewer performing a {{.ReviewType}} review. {{.Focus}}

Structure your response as Markdown using EXACTLY these sections:

## Summary
Brief overview of what the reviewed files do and their overall quality.

### High Priority
- **Issue title:** one-line description of the problem and where it occurs
(critical bugs, security vulnerabilities, crashes, data loss)

### Medium Priority
- **Issue title:** one-line description
(maintainability, design, performance concerns, missing tests)

### Low Priority
- **Issue title:** one-line description
(style, naming, documentation nits)

## Recommendations
- Concrete, actionable steps in priority order.

Include every section even when it is empty. Reference files by path and
line number where possible. Do not invent issues to fill sections.`

const reviewPromptTemplate = `# Code Review Request

Project: {{.ProjectName}}
Review type: {{.ReviewType}}
{{if .TotalPasses}}Pass {{.PassNumber}} of {{.TotalPasses}}.{{end}}
{{if .ProjectDocs}}
## Project Context

{{.ProjectDocs}}
{{end}}
## Files to Review
{{range .Files}}
### File: {{.Path}} ({{.Language}})

` + "```" + `
{{.Content}}
` + "```" + `
{{end}}`

const consolidationSystemTemplate = `You are a senior code reviewer synthesizing the results of a multi-pass
code review into a single final report. You will receive the raw output
of every review pass. Merge duplicate issues, keep the most precise
description of each, and produce one consolidated report with:

## Executive Summary
## Grading
A letter grade (A+ through D) for each of: code quality, security,
maintainability, test coverage, with a one-line justification each.
## Critical Issues
## Important Issues
## Minor Issues
## Recommendations

Every issue must retain its file reference when the pass output had one.
The report must be non-empty and self-contained.`

const consolidationPromptTemplate = `# Consolidation Request

Project: {{.ProjectName}}
Review type: {{.ReviewType}}
Passes completed: {{.TotalPasses}}

Synthesize the following pass results into one final graded report.

{{.Content}}`

// buildReviewSystem renders the per-pass system instruction
func buildReviewSystem(reviewType string) (string, error) {
	tmpl, err := template.New("review_system").Parse(reviewSystemTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing system template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]string{
		"ReviewType": reviewType,
		"Focus":      reviewFocus(reviewType),
	}); err != nil {
		return "", fmt.Errorf("executing system template: %w", err)
	}
	return buf.String(), nil
}

// buildReviewPrompt renders the user prompt embedding file bodies and docs
func buildReviewPrompt(req ReviewRequest) (string, error) {
	tmpl, err := template.New("review_prompt").Parse(reviewPromptTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing review template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct {
		ProjectName string
		ReviewType  string
		ProjectDocs string
		PassNumber  int
		TotalPasses int
		Files       []fileset.FileUnit
	}{
		ProjectName: req.ProjectName,
		ReviewType:  req.ReviewType,
		ProjectDocs: req.ProjectDocs,
		PassNumber:  req.PassNumber,
		TotalPasses: req.TotalPasses,
		Files:       req.Files,
	}); err != nil {
		return "", fmt.Errorf("executing review template: %w", err)
	}
	return buf.String(), nil
}

// buildConsolidationPrompt renders the final synthesis prompt
func buildConsolidationPrompt(req ConsolidateRequest) (string, error) {
	tmpl, err := template.New("consolidation_prompt").Parse(consolidationPromptTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing consolidation template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("executing consolidation template: %w", err)
	}
	return buf.String(), nil
}

// reviewFocus returns the focus sentence for a review type
func reviewFocus(reviewType string) string {
	switch reviewType {
	case "architectural":
		return "Focus on module boundaries, dependency direction, layering violations, and the overall structure of the codebase."
	case "security":
		return "Focus on vulnerabilities: injection, authentication and authorization flaws, sensitive data exposure, unsafe deserialization, and insecure defaults."
	case "performance":
		return "Focus on algorithmic complexity, allocation pressure, unnecessary I/O, locking contention, and resource leaks."
	case "best-practices":
		return "Focus on idiomatic usage of the language and its standard library, error handling discipline, and test coverage."
	default: // quick-fixes
		return "Focus on concrete, locally fixable defects: bugs, off-by-ones, unchecked errors, and obvious correctness issues."
	}
}
