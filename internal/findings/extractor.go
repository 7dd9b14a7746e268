package findings

import (
	"regexp"
	"strings"

	"github.com/tildaslashalef/overpass/internal/ulid"
)

// bulletPatterns match the three list styles review output uses for
// issues: dash bullets, asterisk/bullet-point bullets, and numbered
// lists. The capture group is the item text.
var bulletPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*[-–]\s+(.+)$`),
	regexp.MustCompile(`^\s*[*•]\s+(.+)$`),
	regexp.MustCompile(`^\s*\d+[.)]\s+(.+)$`),
}

// fileRefPattern recognizes a source file reference inside issue text
var fileRefPattern = regexp.MustCompile(`[\w./-]*\w+\.(?:go|py|js|jsx|ts|tsx|java|rb|rs|c|h|hpp|cpp|cs|php|swift|kt|scala|sql|sh|proto|yaml|yml|json|toml)\b`)

// minIssueLength filters out fragments too short to describe an issue
const minIssueLength = 10

// ExtractIssueTexts scans review text for bullet-style items. Items of
// more than minIssueLength characters are returned in first-seen order,
// deduplicated by exact string equality. Idempotent: re-running on the
// same text yields the same ordered result.
func ExtractIssueTexts(content string) []string {
	var issues []string
	seen := make(map[string]struct{})

	for _, line := range strings.Split(content, "\n") {
		for _, pattern := range bulletPatterns {
			match := pattern.FindStringSubmatch(line)
			if match == nil {
				continue
			}
			item := strings.TrimSpace(match[1])
			if len(item) <= minIssueLength {
				break
			}
			if _, ok := seen[item]; !ok {
				seen[item] = struct{}{}
				issues = append(issues, item)
			}
			break
		}
	}

	return issues
}

// Classifier assigns severity and category to issue text from keyword
// tables. The zero value is unusable; construct with NewClassifier, or
// build one directly with tuned tables.
type Classifier struct {
	HighKeywords   []string
	MediumKeywords []string
	Categories     map[Category][]string
}

// NewClassifier returns a classifier using the package keyword tables
func NewClassifier() *Classifier {
	return &Classifier{
		HighKeywords:   HighSeverityKeywords,
		MediumKeywords: MediumSeverityKeywords,
		Categories:     CategoryKeywords,
	}
}

// Severity classifies issue text as high, medium, or low
func (c *Classifier) Severity(text string) Severity {
	lower := strings.ToLower(text)
	for _, kw := range c.HighKeywords {
		if strings.Contains(lower, kw) {
			return SeverityHigh
		}
	}
	for _, kw := range c.MediumKeywords {
		if strings.Contains(lower, kw) {
			return SeverityMedium
		}
	}
	return SeverityLow
}

// Category classifies issue text into a concern category
func (c *Classifier) Category(text string) Category {
	lower := strings.ToLower(text)
	for _, category := range categoryOrder {
		for _, kw := range c.Categories[category] {
			if strings.Contains(lower, kw) {
				return category
			}
		}
	}
	return CategoryOther
}

// Classify builds a Finding from one extracted issue text
func (c *Classifier) Classify(text string, pass int) Finding {
	return Finding{
		ID:          ulid.FindingID(),
		Category:    c.Category(text),
		Description: text,
		File:        fileRefPattern.FindString(text),
		Severity:    c.Severity(text),
		Pass:        pass,
	}
}

// Extractor combines bullet extraction with keyword classification
type Extractor struct {
	classifier *Classifier
}

// NewExtractor creates an extractor with the given classifier, falling
// back to the default keyword tables when nil
func NewExtractor(classifier *Classifier) *Extractor {
	if classifier == nil {
		classifier = NewClassifier()
	}
	return &Extractor{classifier: classifier}
}

// ExtractFromPass parses one pass's review output into findings
func (e *Extractor) ExtractFromPass(pass int, content string) []Finding {
	issues := ExtractIssueTexts(content)
	fs := make([]Finding, 0, len(issues))
	for _, issue := range issues {
		fs = append(fs, e.classifier.Classify(issue, pass))
	}
	return fs
}

// ExtractFromPasses parses the output of every pass in order; the slice
// index plus one is the pass number
func (e *Extractor) ExtractFromPasses(passContents []string) []Finding {
	var fs []Finding
	for i, content := range passContents {
		fs = append(fs, e.ExtractFromPass(i+1, content)...)
	}
	return fs
}
