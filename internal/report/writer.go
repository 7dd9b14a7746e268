// Package report persists consolidated reviews as Markdown files.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goombaio/namegenerator"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/reflow/wordwrap"

	"github.com/tildaslashalef/overpass/internal/loggy"
	"github.com/tildaslashalef/overpass/internal/review"
	"github.com/tildaslashalef/overpass/internal/ulid"
)

const footerWrapWidth = 80

// Writer writes consolidated reports into an output directory
type Writer struct {
	outputDir string
	logger    *loggy.Logger

	// now is stubbed in tests
	now func() time.Time
}

// NewWriter creates a report writer rooted at outputDir
func NewWriter(outputDir string, logger *loggy.Logger) *Writer {
	return &Writer{
		outputDir: outputDir,
		logger:    logger,
		now:       time.Now,
	}
}

// Write renders and persists the report, returning the file path. An
// empty project name gets a generated session name so reports from ad
// hoc runs stay distinguishable.
func (w *Writer) Write(rep *review.ConsolidatedReport, projectName string, reviewType review.ReviewType) (string, error) {
	if rep == nil {
		return "", fmt.Errorf("nil report")
	}

	if projectName == "" {
		projectName = namegenerator.NewNameGenerator(w.now().UnixNano()).Generate()
		w.logger.Debug("no project name supplied, generated one", "project", projectName)
	}

	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	filename := fmt.Sprintf("%s-%s-%s.md", sanitize(projectName), reviewType, w.now().Format("20060102-150405"))
	path := filepath.Join(w.outputDir, filename)

	content := w.render(rep, projectName, reviewType)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	w.logger.Info("report written",
		"path", path,
		"passes", rep.TotalPasses,
		"total_tokens", rep.Cost.TotalTokens)
	return path, nil
}

func (w *Writer) render(rep *review.ConsolidatedReport, projectName string, reviewType review.ReviewType) string {
	var b strings.Builder

	b.WriteString(strings.TrimSpace(rep.Content))
	b.WriteString("\n\n---\n\n")

	b.WriteString("## Cost Summary\n\n")
	b.WriteString(renderCostTable(&rep.Cost))
	b.WriteString("\n\n")

	footer := fmt.Sprintf(
		"Report %s for project %s (%s review). Generated in %d passes by %s on %s using an estimated %d tokens (%.4f USD).",
		ulid.ReportID(), projectName, reviewType, rep.TotalPasses, rep.ModelUsed,
		w.now().Format("2006-01-02 15:04:05"), rep.Cost.TotalTokens, rep.Cost.EstimatedCost)
	b.WriteString(wordwrap.String(footer, footerWrapWidth))
	b.WriteString("\n")

	return b.String()
}

// renderCostTable renders the per-pass cost breakdown as Markdown
func renderCostTable(cost *review.CostInfo) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Pass", "Input Tokens", "Output Tokens", "Total Tokens", "Cost (USD)"})
	for _, pc := range cost.PerPassCosts {
		t.AppendRow(table.Row{pc.Pass, pc.InputTokens, pc.OutputTokens, pc.TotalTokens, fmt.Sprintf("%.4f", pc.EstimatedCost)})
	}
	t.AppendFooter(table.Row{"Total", cost.InputTokens, cost.OutputTokens, cost.TotalTokens, fmt.Sprintf("%.4f", cost.EstimatedCost)})
	return t.RenderMarkdown()
}

// sanitize keeps file names portable
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
}
