package findings

// Classification keyword tables. These are data, not logic: a Classifier
// is constructed from them and can be built with tuned tables without
// touching extraction or orchestration code. Matching is case-insensitive
// substring containment, high checked before medium.

// HighSeverityKeywords mark an issue as high severity
var HighSeverityKeywords = []string{
	"security",
	"vulnerability",
	"critical",
	"error",
	"bug",
	"crash",
	"memory leak",
	"sql injection",
	"xss",
	"csrf",
	"injection",
	"authentication",
	"authorization",
	"privilege escalation",
	"data breach",
	"sensitive data",
	"password",
	"token",
	"deadlock",
	"race condition",
	"null pointer",
	"buffer overflow",
}

// MediumSeverityKeywords mark an issue as medium severity when no high
// keyword matched
var MediumSeverityKeywords = []string{
	"warning",
	"deprecated",
	"inefficient",
	"refactor",
	"improve",
	"optimization",
	"maintainability",
	"readability",
	"complexity",
	"duplication",
	"coupling",
	"cohesion",
	"design pattern",
	"architecture",
	"structure",
	"organization",
	"naming",
	"documentation",
	"comment",
	"test coverage",
	"error handling",
}

// CategoryKeywords assign a concern category to an issue. Evaluated in
// the order given by categoryOrder; first category with a match wins.
var CategoryKeywords = map[Category][]string{
	CategorySecurity: {
		"security", "vulnerability", "sql injection", "xss", "csrf",
		"injection", "authentication", "authorization",
		"privilege escalation", "data breach", "sensitive data",
		"password", "token",
	},
	CategoryBug: {
		"bug", "crash", "error", "null pointer", "buffer overflow",
		"deadlock", "race condition", "panic", "off-by-one",
	},
	CategoryPerformance: {
		"performance", "inefficient", "optimization", "memory leak",
		"slow", "allocation", "latency",
	},
	CategoryMaintainability: {
		"refactor", "maintainability", "readability", "complexity",
		"duplication", "coupling", "cohesion", "naming",
		"documentation", "test coverage", "deprecated",
	},
}

// categoryOrder fixes evaluation order so classification is
// deterministic regardless of map iteration
var categoryOrder = []Category{
	CategorySecurity,
	CategoryBug,
	CategoryPerformance,
	CategoryMaintainability,
}
