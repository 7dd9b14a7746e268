// Package commands implements the CLI commands.
package commands

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/overpass/internal/app"
	"github.com/tildaslashalef/overpass/internal/loggy"
	"github.com/tildaslashalef/overpass/internal/review"
)

// ReviewCommand returns the CLI command running a multi-pass review
func ReviewCommand() *cli.Command {
	return &cli.Command{
		Name:        "review",
		Usage:       "Run a multi-pass AI code review",
		Description: "Reviews a directory tree (or the staged git changes) in token-bounded passes and writes a consolidated, graded Markdown report.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Directory to review (default: current directory)",
			},
			&cli.BoolFlag{
				Name:    "staged",
				Aliases: []string{"s"},
				Usage:   "Review only the staged changes of a git repository",
			},
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Review type: architectural, security, performance, quick-fixes, or best-practices",
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   "Provider to use: openai, anthropic, gemini, or openrouter (default: configured provider)",
			},
			&cli.StringFlag{
				Name:  "project",
				Usage: "Project name used in prompts and the report file name",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory where the report is written",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Suppress progress output",
			},
		},
		Action: reviewAction,
	}
}

func reviewAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	// user interrupts cancel the in-flight model call
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := application.RunReview(ctx, app.ReviewRequest{
		Dir:         c.String("dir"),
		Staged:      c.Bool("staged"),
		ProjectName: c.String("project"),
		ReviewType:  c.String("type"),
		Provider:    c.String("provider"),
		OutputDir:   c.String("output"),
		Quiet:       c.Bool("quiet"),
	})
	if err != nil {
		var callErr *review.ProviderCallError
		if errors.As(err, &callErr) {
			color.Red("Review failed during pass %d: %v", callErr.Pass, callErr.Err)
		} else if errors.Is(err, review.ErrNoFiles) {
			color.Yellow("Nothing to review: no reviewable files found")
		} else {
			color.Red("Review failed: %v", err)
		}
		loggy.Error("review failed", "error", err)
		return cli.Exit("", 1)
	}

	if !c.Bool("quiet") {
		color.Green("Review complete")
		fmt.Printf("  Report:  %s\n", rep.FilePath)
		fmt.Printf("  Passes:  %d\n", rep.TotalPasses)
		fmt.Printf("  Model:   %s\n", rep.ModelUsed)
		fmt.Printf("  Tokens:  %d (est. $%.4f)\n", rep.Cost.TotalTokens, rep.Cost.EstimatedCost)
	}
	return nil
}
