// Package findings turns free-form review text into structured,
// severity-classified findings, letter grades, and recommendations. All
// classification is driven by keyword tables; given identical input the
// package always produces identical output.
package findings

import "sort"

// Severity ranks how urgent a finding is
type Severity string

const (
	// SeverityHigh marks findings requiring immediate attention
	SeverityHigh Severity = "high"

	// SeverityMedium marks findings worth scheduling
	SeverityMedium Severity = "medium"

	// SeverityLow marks minor findings
	SeverityLow Severity = "low"
)

// Score maps a severity onto a numeric weight, higher is worse
func (s Severity) Score() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

// Category groups findings by the concern they touch
type Category string

const (
	CategoryBug             Category = "bug"
	CategorySecurity        Category = "security"
	CategoryPerformance     Category = "performance"
	CategoryMaintainability Category = "maintainability"
	CategoryOther           Category = "other"
)

// Finding is one classified issue extracted from review output.
// Findings are append-only; they are never edited after creation.
type Finding struct {
	ID          string   `json:"id"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	File        string   `json:"file,omitempty"`
	Severity    Severity `json:"severity"`
	Pass        int      `json:"pass"`
}

// SortBySeverity returns a copy ordered worst-first by Score. The sort
// is stable, so findings of equal severity keep their extraction order.
func SortBySeverity(fs []Finding) []Finding {
	out := make([]Finding, len(fs))
	copy(out, fs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Score() > out[j].Severity.Score()
	})
	return out
}

// CountBySeverity tallies findings into high/medium/low buckets
func CountBySeverity(fs []Finding) (high, medium, low int) {
	for _, f := range fs {
		switch f.Severity {
		case SeverityHigh:
			high++
		case SeverityMedium:
			medium++
		default:
			low++
		}
	}
	return high, medium, low
}
