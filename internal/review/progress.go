package review

import (
	"io"

	"github.com/fatih/color"
)

// Reporter receives review phase transitions for observability. It has
// no effect on control flow; implementations must not block.
type Reporter interface {
	Analyzing(fileCount int)
	PassStart(pass, totalPasses, fileCount int)
	PassComplete(pass, totalPasses int, cost float64)
	Consolidating()
	Processing(message string)
}

// NopReporter discards all progress events
type NopReporter struct{}

func (NopReporter) Analyzing(int)                  {}
func (NopReporter) PassStart(int, int, int)        {}
func (NopReporter) PassComplete(int, int, float64) {}
func (NopReporter) Consolidating()                 {}
func (NopReporter) Processing(string)              {}

// ConsoleReporter prints colored progress lines to a writer
type ConsoleReporter struct {
	out io.Writer

	phase   *color.Color
	detail  *color.Color
	success *color.Color
}

// NewConsoleReporter creates a reporter writing to out
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{
		out:     out,
		phase:   color.New(color.FgCyan, color.Bold),
		detail:  color.New(color.FgWhite),
		success: color.New(color.FgGreen),
	}
}

func (r *ConsoleReporter) Analyzing(fileCount int) {
	r.phase.Fprintf(r.out, "Analyzing ")
	r.detail.Fprintf(r.out, "%d files for token budget\n", fileCount)
}

func (r *ConsoleReporter) PassStart(pass, totalPasses, fileCount int) {
	r.phase.Fprintf(r.out, "Pass %d/%d ", pass, totalPasses)
	r.detail.Fprintf(r.out, "reviewing %d files\n", fileCount)
}

func (r *ConsoleReporter) PassComplete(pass, totalPasses int, cost float64) {
	r.success.Fprintf(r.out, "Pass %d/%d complete ", pass, totalPasses)
	r.detail.Fprintf(r.out, "($%.4f)\n", cost)
}

func (r *ConsoleReporter) Consolidating() {
	r.phase.Fprintln(r.out, "Consolidating review passes")
}

func (r *ConsoleReporter) Processing(message string) {
	r.detail.Fprintln(r.out, message)
}

var _ Reporter = (*ConsoleReporter)(nil)
var _ Reporter = NopReporter{}
