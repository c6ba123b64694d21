// Package main is the entry point for the Matcha CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	mcli "github.com/matcha-sh/matcha/internal/cli"
	"github.com/matcha-sh/matcha/pkg/version"
	"github.com/urfave/cli/v3"
)

func main() {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	grammarDir := filepath.Join(configHome, "matcha", "grammars")

	app := &cli.Command{
		Name:                  "matcha",
		Usage:                 "Completion engine for interactive shells",
		Version:               version.Version,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("MATCHA_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "grammar-dir",
				Value:   grammarDir,
				Usage:   "Directory with completion grammar files",
				Sources: cli.EnvVars("MATCHA_GRAMMAR_DIR"),
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Settings file (discovered in the working directory by default)",
				Sources: cli.EnvVars("MATCHA_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "complete",
				Usage: "Generate ranked completion candidates for a command line",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "line",
						Usage:    "The command line text",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "cursor",
						Value: -1,
						Usage: "Cursor offset; defaults to end of line",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Machine-readable output",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return mcli.Complete(mcli.CompleteParams{
						Line:       cmd.String("line"),
						Cursor:     int(cmd.Int("cursor")),
						GrammarDir: cmd.String("grammar-dir"),
						ConfigPath: cmd.String("config"),
						LogLevel:   cmd.String("log-level"),
						JSON:       cmd.Bool("json"),
					})
				},
			},
			{
				Name:  "classify",
				Usage: "Print word classification codes for a command line",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "line",
						Usage:    "The command line text",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "cursor",
						Value: -1,
						Usage: "Cursor offset; defaults to end of line",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return mcli.Classify(mcli.ClassifyParams{
						Line:       cmd.String("line"),
						Cursor:     int(cmd.Int("cursor")),
						GrammarDir: cmd.String("grammar-dir"),
						ConfigPath: cmd.String("config"),
						LogLevel:   cmd.String("log-level"),
					})
				},
			},
			{
				Name:  "grammar",
				Usage: "Inspect completion grammars",
				Commands: []*cli.Command{
					{
						Name:      "validate",
						Usage:     "Validate a grammar file against the schema",
						ArgsUsage: "<grammar-file>",
						Action: func(_ context.Context, cmd *cli.Command) error {
							path := ""
							if cmd.Args().Len() > 0 {
								path = cmd.Args().Get(0)
							}
							return mcli.GrammarValidate(mcli.GrammarValidateParams{Path: path})
						},
					},
					{
						Name:  "list",
						Usage: "List commands with registered grammars",
						Action: func(_ context.Context, cmd *cli.Command) error {
							return mcli.GrammarList(mcli.GrammarListParams{
								GrammarDir: cmd.String("grammar-dir"),
							})
						},
					},
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
