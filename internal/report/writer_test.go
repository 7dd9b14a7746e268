package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tildaslashalef/overpass/internal/loggy"
	"github.com/tildaslashalef/overpass/internal/review"
)

func sampleReport() *review.ConsolidatedReport {
	return &review.ConsolidatedReport{
		ID:          "rev-01",
		Content:     "# Final Report\n\nAll merged.",
		TotalPasses: 2,
		ModelUsed:   "test-model",
		Cost: review.CostInfo{
			InputTokens:   300,
			OutputTokens:  120,
			TotalTokens:   420,
			EstimatedCost: 0.0153,
			PerPassCosts: []review.PassCost{
				{Pass: 1, InputTokens: 100, OutputTokens: 40, TotalTokens: 140, EstimatedCost: 0.005},
				{Pass: 2, InputTokens: 200, OutputTokens: 80, TotalTokens: 280, EstimatedCost: 0.0103},
			},
		},
	}
}

func newTestWriter(t *testing.T) (*Writer, string) {
	t.Helper()
	dir := t.TempDir()
	w := NewWriter(dir, loggy.NewNoopLogger())
	w.now = func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) }
	return w, dir
}

func TestWrite(t *testing.T) {
	w, dir := newTestWriter(t)

	path, err := w.Write(sampleReport(), "overpass", review.ReviewTypeSecurity)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "overpass-security-20250314-092653.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "# Final Report")
	assert.Contains(t, content, "## Cost Summary")
	assert.Contains(t, content, "| 1 | 100 | 40 | 140 | 0.0050 |")
	assert.Contains(t, content, "| Total | 300 | 120 | 420 | 0.0153 |")
	assert.Contains(t, content, "Generated in 2 passes by test-model")
}

func TestWriteCreatesOutputDir(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "ai-code-review-docs")
	w := NewWriter(nested, loggy.NewNoopLogger())

	_, err := w.Write(sampleReport(), "overpass", review.ReviewTypeQuickFixes)
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWriteGeneratesProjectName(t *testing.T) {
	w, _ := newTestWriter(t)

	path, err := w.Write(sampleReport(), "", review.ReviewTypePerformance)
	require.NoError(t, err)

	base := filepath.Base(path)
	assert.NotEqual(t, "-performance-20250314-092653.md", base)
	assert.Contains(t, base, "-performance-")
}

func TestWriteSanitizesProjectName(t *testing.T) {
	w, _ := newTestWriter(t)

	path, err := w.Write(sampleReport(), "my project/v2", review.ReviewTypeSecurity)
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "my-project-v2-security-")
}

func TestWriteNilReport(t *testing.T) {
	w, _ := newTestWriter(t)
	_, err := w.Write(nil, "overpass", review.ReviewTypeSecurity)
	require.Error(t, err)
}
