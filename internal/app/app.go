// Package app provides application initialization and the top-level
// review workflow wiring.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/overpass/internal/config"
	"github.com/tildaslashalef/overpass/internal/fileset"
	"github.com/tildaslashalef/overpass/internal/findings"
	"github.com/tildaslashalef/overpass/internal/llm"
	"github.com/tildaslashalef/overpass/internal/loggy"
	"github.com/tildaslashalef/overpass/internal/report"
	"github.com/tildaslashalef/overpass/internal/review"
	"github.com/tildaslashalef/overpass/internal/tokens"
)

// App represents the application instance with its dependencies
type App struct {
	Config   *config.Config
	Registry *llm.Registry

	logger *loggy.Logger
}

// New initializes the application: configuration, logging, and the
// provider registry
func New(envFile string) (*App, error) {
	cfg, err := config.LoadFromEnv(envFile)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	config.Set(cfg)

	if err := loggy.Init(loggy.Config{
		Level:      config.ParseLogLevel(cfg.Logging.Level),
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	}); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := loggy.GetGlobalLogger()

	loggy.Info("application initializing",
		"default_provider", cfg.DefaultProvider,
		"log_level", cfg.Logging.Level)

	return &App{
		Config:   cfg,
		Registry: llm.NewRegistry(cfg, logger),
		logger:   logger,
	}, nil
}

// ReviewRequest describes one CLI-initiated review run
type ReviewRequest struct {
	Dir         string
	Staged      bool
	ProjectName string
	ReviewType  string
	Provider    string
	OutputDir   string
	Quiet       bool
}

// RunReview collects the input files, runs the multi-pass review, and
// writes the consolidated report to disk.
func (a *App) RunReview(ctx context.Context, req ReviewRequest) (*review.ConsolidatedReport, error) {
	reviewType, err := a.resolveReviewType(req.ReviewType)
	if err != nil {
		return nil, err
	}

	executor, providerCfg, err := a.resolveExecutor(req.Provider)
	if err != nil {
		return nil, err
	}

	dir := req.Dir
	if dir == "" {
		dir = "."
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving directory: %w", err)
	}

	projectName := req.ProjectName
	if projectName == "" {
		projectName = filepath.Base(absDir)
	}

	files, err := a.collectFiles(absDir, req.Staged)
	if err != nil {
		return nil, err
	}

	var reporter review.Reporter = review.NopReporter{}
	if !req.Quiet && !a.Config.Review.Quiet {
		reporter = review.NewConsoleReporter(os.Stdout)
	}

	orchestrator := review.NewOrchestrator(
		executor,
		tokens.NewAnalyzer(a.logger),
		findings.NewExtractor(nil),
		reporter,
		providerCfg.ContextWindowTokens,
		a.logger,
	)

	rep, err := orchestrator.Run(ctx, files, review.ReviewOptions{
		ProjectName:              projectName,
		ReviewType:               reviewType,
		ProjectDocs:              readProjectDocs(absDir),
		MultiPass:                a.Config.Review.MultiPass,
		ContextMaintenanceFactor: a.Config.Review.ContextMaintenanceFactor,
		ReservedOutputTokens:     a.Config.Review.ReservedOutputTokens,
		Quiet:                    req.Quiet,
	})
	if err != nil {
		return nil, err
	}

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = a.Config.Review.OutputDir
	}
	path, err := report.NewWriter(outputDir, a.logger).Write(rep, projectName, reviewType)
	if err != nil {
		return nil, err
	}
	rep.FilePath = path

	return rep, nil
}

func (a *App) resolveReviewType(name string) (review.ReviewType, error) {
	if name == "" {
		name = a.Config.Review.Type
	}
	reviewType, err := review.ParseReviewType(name)
	if err != nil {
		return "", &config.ConfigurationError{Field: "review.type", Reason: err.Error()}
	}
	return reviewType, nil
}

// resolveExecutor picks the provider client, either the requested one or
// the configured default with fallback
func (a *App) resolveExecutor(provider string) (*llm.Executor, config.ProviderConfig, error) {
	var (
		client       llm.Client
		providerType llm.ProviderType
		err          error
	)

	if provider != "" {
		providerType, err = llm.ParseProviderType(provider)
		if err != nil {
			return nil, config.ProviderConfig{}, &config.ConfigurationError{Field: "provider", Reason: err.Error()}
		}
		client, err = a.Registry.Get(providerType)
	} else {
		client, providerType, err = a.Registry.Default()
	}
	if err != nil {
		return nil, config.ProviderConfig{}, err
	}

	providerCfg, err := a.Config.Provider(string(providerType))
	if err != nil {
		return nil, config.ProviderConfig{}, err
	}

	return llm.NewExecutor(client, providerType, providerCfg, a.logger), providerCfg, nil
}

// collectFiles builds the review input set from the directory tree, or
// from the staged changes when reviewing a git repository incrementally
func (a *App) collectFiles(dir string, staged bool) ([]fileset.FileUnit, error) {
	opts := fileset.LoadOptions{MaxFileBytes: a.Config.Review.MaxFileBytes}

	if staged {
		source, err := fileset.NewGitSource(dir, a.logger)
		if err != nil {
			return nil, err
		}
		return source.StagedFiles(opts)
	}

	return fileset.NewLoader(a.logger).LoadDirectory(dir, opts)
}

// readProjectDocs returns the project README when one exists, used as
// baseline documentation for the first pass
func readProjectDocs(dir string) string {
	for _, name := range []string{"README.md", "README.rst", "README.txt", "README"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return string(data)
		}
	}
	return ""
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown() error {
	loggy.Info("shutting down")
	return nil
}

// FromContext retrieves the App instance from the CLI context
func FromContext(c *cli.Context) (*App, error) {
	if c.App.Metadata == nil {
		return nil, fmt.Errorf("app metadata not found in context")
	}
	instance, ok := c.App.Metadata["app"].(*App)
	if !ok {
		return nil, fmt.Errorf("app instance not found in context")
	}
	return instance, nil
}
