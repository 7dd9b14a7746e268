package findings

import (
	"fmt"
	"strings"
)

// Grade is a letter grade with the justification that produced it
type Grade struct {
	Letter        string `json:"letter"`
	Justification string `json:"justification"`
}

// CalculateGrade maps finding counts onto a letter grade. The threshold
// table is evaluated top to bottom; the first matching row wins. Pure:
// identical counts always yield the identical grade and justification.
func CalculateGrade(fs []Finding) Grade {
	high, medium, _ := CountBySeverity(fs)
	total := len(fs)

	switch {
	case high > 5:
		return Grade{"D", fmt.Sprintf("%d high-severity issues indicate serious quality problems", high)}
	case high > 2:
		return Grade{"C", fmt.Sprintf("%d high-severity issues require immediate attention", high)}
	case high > 0:
		return Grade{"C+", fmt.Sprintf("%d high-severity issues were found", high)}
	case medium > 10:
		return Grade{"C+", fmt.Sprintf("%d medium-severity issues suggest systemic maintainability debt", medium)}
	case medium > 5:
		return Grade{"B", fmt.Sprintf("%d medium-severity issues should be scheduled for cleanup", medium)}
	case medium > 2:
		return Grade{"B+", fmt.Sprintf("%d medium-severity issues were found", medium)}
	case total > 5:
		return Grade{"A-", fmt.Sprintf("%d minor issues were found", total)}
	case total > 0:
		return Grade{"A", fmt.Sprintf("only %d minor issues were found", total)}
	default:
		return Grade{"A+", "no issues were found"}
	}
}

// GenerateRecommendations builds an ordered, deterministic list of
// follow-up advice from threshold rules and category presence. The
// hasErrors flag reports whether any pass emitted provider warnings.
func GenerateRecommendations(fs []Finding, hasErrors bool) []string {
	high, medium, _ := CountBySeverity(fs)

	var recs []string
	if high > 0 {
		recs = append(recs, fmt.Sprintf("Address the %d high-priority issues before the next release", high))
	}
	if high > 3 {
		recs = append(recs, "Consider a dedicated security audit given the volume of high-priority findings")
	}
	if medium > 5 {
		recs = append(recs, fmt.Sprintf("Schedule refactoring work for the %d medium-priority issues", medium))
	}

	if hasCategory(fs, CategorySecurity) {
		recs = append(recs, "Review authentication, authorization, and input validation paths flagged above")
	}
	if hasCategory(fs, CategoryPerformance) {
		recs = append(recs, "Profile the hot paths mentioned in the performance findings before optimizing")
	}
	if mentionsTesting(fs) {
		recs = append(recs, "Improve test coverage for the modules flagged in the findings")
	}

	if hasErrors {
		recs = append(recs, "Some review passes reported provider warnings; re-run the review to fill potential gaps")
	}
	if len(recs) == 0 {
		recs = append(recs, "No significant issues found; keep up the current practices")
	}
	return recs
}

func hasCategory(fs []Finding, category Category) bool {
	for _, f := range fs {
		if f.Category == category {
			return true
		}
	}
	return false
}

func mentionsTesting(fs []Finding) bool {
	for _, f := range fs {
		lower := strings.ToLower(f.Description)
		if strings.Contains(lower, "test") || strings.Contains(lower, "coverage") {
			return true
		}
	}
	return false
}
