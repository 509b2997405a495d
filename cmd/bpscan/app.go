// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/fgardt/factorio-scanner-sub002/internal/config"
	"github.com/fgardt/factorio-scanner-sub002/internal/issue"
	"github.com/fgardt/factorio-scanner-sub002/internal/report"
	"github.com/fgardt/factorio-scanner-sub002/internal/scan"
	"github.com/fgardt/factorio-scanner-sub002/pkg/blueprint"
	"github.com/fgardt/factorio-scanner-sub002/pkg/catalog"
	"github.com/fgardt/factorio-scanner-sub002/pkg/deps"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives the App and writes only through its writers.
	App struct {
		Config config.Provider
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
	}

	// rootFlagValues holds the persistent flags shared by every command.
	rootFlagValues struct {
		configPath string
		verbose    bool
		format     string
	}

	// session is the per-invocation state derived from flags and config.
	session struct {
		cfg      *config.Config
		log      *log.Logger
		resolver *deps.Resolver
		out      *report.Writer
		verbose  bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	return &App{Config: deps.Config, stdout: deps.Stdout, stderr: deps.Stderr}
}

// newSession loads the configuration and builds the logger, resolver and
// output writer for one command.
func (a *App) newSession(ctx context.Context, flags *rootFlagValues) (*session, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, err
	}

	verbose := flags.verbose || cfg.UI.Verbose
	logger := log.NewWithOptions(a.stderr, log.Options{Prefix: config.AppName})
	level, err := log.ParseLevel(string(cfg.Log.Level))
	if err != nil {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)

	format := cfg.Output.Format
	if flags.format != "" {
		format = config.OutputFormat(strings.ToLower(flags.format))
	}
	out, err := report.NewWriter(a.stdout, format)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("select output format").
			WithResource(string(format)).
			WithSuggestion("Use one of: text, json, yaml, toml").
			WithIssue(issue.InvalidOutputFormatId).
			Wrap(err).
			BuildError()
	}

	cat, err := catalog.Load(cfg.CatalogFiles...)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load package catalog").
			WithResource(strings.Join(cfg.CatalogFiles, ", ")).
			WithSuggestion("Check the catalog_files entries in your config").
			WithSuggestion("Validate each file against the #Catalog schema").
			WithIssue(issue.CatalogLoadFailedId).
			Wrap(err).
			BuildError()
	}
	logger.Debug("catalog loaded", "entries", cat.Len(), "files", len(cfg.CatalogFiles))

	return &session{
		cfg:      cfg,
		log:      logger,
		resolver: deps.NewResolver(cat),
		out:      out,
		verbose:  verbose,
	}, nil
}

// run builds a session and calls fn with it. Every error is rendered once
// and returned as an *ExitError.
func (a *App) run(ctx context.Context, flags *rootFlagValues, fn func(*session) error) error {
	s, err := a.newSession(ctx, flags)
	if err != nil {
		return a.fail(err, flags.verbose, config.ColorSchemeAuto)
	}
	if err := fn(s); err != nil {
		return a.fail(err, s.verbose, s.cfg.UI.ColorScheme)
	}
	return nil
}

// readDocument reads and decodes one document file, attaching the matching
// issue page to every failure.
func readDocument(path string) (*blueprint.Document, error) {
	data, err := scan.ReadFile(path)
	if err != nil {
		ec := issue.NewErrorContext().WithOperation("read document").WithResource(path).Wrap(err)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			ec.WithIssue(issue.FileNotFoundId).WithSuggestion("Check the path for typos")
		case errors.Is(err, fs.ErrPermission):
			ec.WithIssue(issue.PermissionDeniedId).WithSuggestion("Check the file permissions")
		}
		return nil, ec.BuildError()
	}

	doc, err := blueprint.Parse(data)
	if err != nil {
		ec := issue.NewErrorContext().WithOperation("parse document").WithResource(path).Wrap(err)
		var syntaxErr *json.SyntaxError
		switch {
		case errors.Is(err, blueprint.ErrInvalidDocument), errors.As(err, &syntaxErr):
			ec.WithIssue(issue.NotADocumentId).
				WithSuggestion("Decode blueprint exchange strings to JSON before scanning")
		default:
			ec.WithIssue(issue.DocumentParseErrorId)
		}
		return nil, ec.BuildError()
	}
	return doc, nil
}

// presetError attaches the unknown-preset page to resolver errors.
func presetError(name string, err error) error {
	if !errors.Is(err, deps.ErrUnknownPreset) {
		return err
	}
	return issue.NewErrorContext().
		WithOperation("select preset").
		WithResource(name).
		WithSuggestion("Run 'bpscan catalog' to list the known presets").
		WithIssue(issue.UnknownPresetId).
		Wrap(err).
		BuildError()
}

// fail renders err for the user and converts it into an ExitError. In verbose
// mode the issue page of an actionable error is rendered as well.
func (a *App) fail(err error, verbose bool, colorScheme config.ColorScheme) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	var ae *issue.ActionableError
	if verbose && errors.As(err, &ae) && ae.Issue != 0 {
		if page := issue.Get(ae.Issue); page != nil {
			style := string(colorScheme)
			if style == "" {
				style = string(config.ColorSchemeAuto)
			}
			if rendered, renderErr := page.Render(style); renderErr == nil {
				fmt.Fprint(a.stderr, rendered)
			}
		}
	}
	return &ExitError{Code: ExitFailure, Err: err}
}

// formatErrorForDisplay formats an error for user display. Actionable errors
// use their own format; verbose mode adds the error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
