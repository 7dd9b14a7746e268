package fileset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-enry/go-enry/v2"
	"github.com/go-git/go-git/v5"

	"github.com/tildaslashalef/overpass/internal/loggy"
)

// GitSource builds review file sets from a git repository
type GitSource struct {
	logger *loggy.Logger
	root   string
	repo   *git.Repository
}

// NewGitSource opens the git repository at root
func NewGitSource(root string, logger *loggy.Logger) (*GitSource, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("opening git repo: %w", err)
	}

	return &GitSource{logger: logger, root: root, repo: repo}, nil
}

// IsGitRepo reports whether path contains a valid git repository
func IsGitRepo(path string) bool {
	_, err := git.PlainOpen(path)
	return err == nil
}

// StagedFiles returns the staged (added or modified) files as review
// input, in deterministic path order. Deleted files are skipped; there is
// nothing left to review.
func (s *GitSource) StagedFiles(opts LoadOptions) ([]FileUnit, error) {
	worktree, err := s.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("getting worktree status: %w", err)
	}

	var files []FileUnit
	for path, fileStatus := range status {
		if fileStatus.Staging == git.Unmodified || fileStatus.Staging == git.Untracked {
			continue
		}
		if fileStatus.Staging == git.Deleted {
			s.logger.Debug("skipping deleted file", "path", path)
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.root, path))
		if err != nil {
			s.logger.Warn("failed to read staged file", "path", path, "error", err)
			continue
		}

		if opts.MaxFileBytes > 0 && int64(len(data)) > opts.MaxFileBytes {
			s.logger.Debug("skipping oversized staged file", "path", path, "size", len(data))
			continue
		}
		if enry.IsBinary(data) {
			s.logger.Debug("skipping binary staged file", "path", path)
			continue
		}

		language := DetectLanguage(filepath.Base(path), data)
		files = append(files, NewFileUnit(filepath.ToSlash(path), string(data), language))
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	s.logger.Info("collected staged file set", "files", len(files), "tokens", TotalTokens(files))
	return files, nil
}
