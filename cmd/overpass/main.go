package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/overpass/internal/app"
	"github.com/tildaslashalef/overpass/internal/commands"
)

// Version information - populated at build time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cliApp := &cli.App{
		Name:  "overpass",
		Usage: "Multi-pass AI code review",
		Description: "Overpass reviews codebases larger than a single model context window.\n\n" +
			"It partitions the files into token-bounded passes, carries findings across\n" +
			"passes, and consolidates everything into one graded Markdown report.\n" +
			"When run without a subcommand, Overpass reviews the current directory.",
		Version: Version,
		Compiled: func() time.Time {
			t, err := time.Parse(time.RFC3339, BuildTime)
			if err != nil {
				return time.Now()
			}
			return t
		}(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to an env file with OVERPASS_* settings",
			},
		},
		Before: func(c *cli.Context) error {
			application, err := app.New(c.String("env-file"))
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			c.App.Metadata = map[string]interface{}{
				"app": application,
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if application, ok := c.App.Metadata["app"].(*app.App); ok {
				return application.Shutdown()
			}
			return nil
		},
		Commands: []*cli.Command{
			commands.ReviewCommand(),
		},
		Action: func(c *cli.Context) error {
			// Default action is to run the review command
			return commands.ReviewCommand().Action(c)
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
