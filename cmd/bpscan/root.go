// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for bpscan.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/fgardt/factorio-scanner-sub002/internal/config"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the bpscan command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Blueprint reference and dependency scanner",
		Long: TitleStyle.Render("bpscan") + SubtitleStyle.Render(" - Blueprint reference and dependency scanner") + `

bpscan reads blueprint, blueprint book, upgrade planner and deconstruction
planner documents (plain, gzip or zstd compressed JSON), lists every
prototype they reference and works out which mod packages they need.

` + SubtitleStyle.Render("Examples:") + `
  bpscan refs base.json                  List referenced prototypes
  bpscan refs base.json --category item  Only item references
  bpscan deps base.json --explain        Show how dependencies were resolved
  bpscan deps base.json --preset k2se    Use a catalog entry directly
  bpscan scan blueprints/ --format json  Analyse a whole directory
  bpscan scan blueprints/ --watch        Rescan when files change`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/bpscan/config.cue)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().StringVarP(&flags.format, "format", "f", "", "output format: text, json, yaml or toml")

	root.AddCommand(
		newRefsCommand(app, flags),
		newDepsCommand(app, flags),
		newStartupCommand(app, flags),
		newScanCommand(app, flags),
		newCatalogCommand(app, flags),
		newConfigCommand(app, flags),
	)
	return root
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	root := NewRootCommand(NewApp(Dependencies{}))
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitFailure)
	}
}

// errorHandler leaves ExitErrors alone: their message was already written
// by the command that returned them.
func errorHandler(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
