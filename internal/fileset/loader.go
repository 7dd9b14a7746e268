package fileset

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-enry/go-enry/v2"

	"github.com/tildaslashalef/overpass/internal/loggy"
)

// LoadOptions control which files a directory walk picks up
type LoadOptions struct {
	// MaxFileBytes skips files larger than this (0 means no limit)
	MaxFileBytes int64

	// IncludeDocs keeps Markdown and other documentation files in the set
	IncludeDocs bool
}

// dirsAlwaysSkipped are directory names never worth reviewing
var dirsAlwaysSkipped = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	".idea":        true,
	".vscode":      true,
}

// Loader builds review file sets from disk
type Loader struct {
	logger *loggy.Logger
}

// NewLoader creates a new file set loader
func NewLoader(logger *loggy.Logger) *Loader {
	return &Loader{logger: logger}
}

// LoadDirectory walks root and returns the reviewable files beneath it,
// in deterministic path order. Vendor trees, binaries and generated files
// are skipped via go-enry; hidden files and oversized files are skipped too.
func (l *Loader) LoadDirectory(root string, opts LoadOptions) ([]FileUnit, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("accessing project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", root)
	}

	var files []FileUnit

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path != root && (dirsAlwaysSkipped[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if enry.IsVendor(rel) {
			l.logger.Debug("skipping vendored file", "path", rel)
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		if opts.MaxFileBytes > 0 && fi.Size() > opts.MaxFileBytes {
			l.logger.Debug("skipping oversized file", "path", rel, "size", fi.Size())
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", rel, err)
		}

		if enry.IsBinary(data) {
			l.logger.Debug("skipping binary file", "path", rel)
			return nil
		}

		language := DetectLanguage(name, data)
		if !opts.IncludeDocs && isDocumentation(name, language) {
			l.logger.Debug("skipping documentation file", "path", rel)
			return nil
		}
		if enry.IsGenerated(rel, data) {
			l.logger.Debug("skipping generated file", "path", rel)
			return nil
		}

		files = append(files, NewFileUnit(filepath.ToSlash(rel), string(data), language))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	l.logger.Info("collected file set", "root", root, "files", len(files), "tokens", TotalTokens(files))
	return files, nil
}

// DetectLanguage determines the language of a file from its name and content
// using go-enry, falling back to the bare extension.
func DetectLanguage(filename string, data []byte) string {
	if language := enry.GetLanguage(filename, data); language != "" {
		return language
	}

	if language, _ := enry.GetLanguageByExtension(filename); language != "" {
		return language
	}

	if language, _ := enry.GetLanguageByFilename(filename); language != "" {
		return language
	}

	if ext := filepath.Ext(filename); ext != "" {
		return strings.TrimPrefix(ext, ".")
	}
	return "Text"
}

func isDocumentation(filename, language string) bool {
	switch language {
	case "Markdown", "Text", "AsciiDoc", "reStructuredText":
		return true
	}
	return strings.HasSuffix(filename, ".txt")
}
