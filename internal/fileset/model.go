// Package fileset collects and models the source files that make up the
// input of a review: from a directory walk or from staged git changes.
package fileset

import "path/filepath"

// charsPerToken is the fixed heuristic used to estimate token counts from
// content length. It only has to be consistent, not exact: the same constant
// drives chunk planning and cross-pass budget checks.
const charsPerToken = 4

// EstimateTokens estimates the token cost of a piece of text.
func EstimateTokens(content string) int {
	if content == "" {
		return 0
	}
	return (len(content) + charsPerToken - 1) / charsPerToken
}

// FileUnit is one file in the review input set. It is immutable once
// created: a file is the atomic unit of chunking and is never split.
type FileUnit struct {
	Path            string `json:"path"`
	Content         string `json:"content"`
	Size            int64  `json:"size"`
	Language        string `json:"language"`
	EstimatedTokens int    `json:"estimated_tokens"`
}

// NewFileUnit creates a file unit from path and content.
func NewFileUnit(path, content, language string) FileUnit {
	return FileUnit{
		Path:            path,
		Content:         content,
		Size:            int64(len(content)),
		Language:        language,
		EstimatedTokens: EstimateTokens(content),
	}
}

// Filename returns just the filename portion of the path
func (f FileUnit) Filename() string {
	return filepath.Base(f.Path)
}

// Extension returns the file extension
func (f FileUnit) Extension() string {
	return filepath.Ext(f.Path)
}

// TotalTokens sums the estimated token counts of a file set.
func TotalTokens(files []FileUnit) int {
	total := 0
	for _, f := range files {
		total += f.EstimatedTokens
	}
	return total
}
