// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fgardt/factorio-scanner-sub002/internal/discovery"
	"github.com/fgardt/factorio-scanner-sub002/internal/issue"
	"github.com/fgardt/factorio-scanner-sub002/internal/report"
	"github.com/fgardt/factorio-scanner-sub002/internal/scan"
	"github.com/fgardt/factorio-scanner-sub002/internal/watch"
)

// scanFlagValues holds the flags of the scan command.
type scanFlagValues struct {
	watch    bool
	preset   string
	debounce time.Duration
}

func newScanCommand(app *App, flags *rootFlagValues) *cobra.Command {
	scanFlags := &scanFlagValues{}

	cmd := &cobra.Command{
		Use:   "scan PATH...",
		Short: "Analyse every document below the given paths",
		Long: `Analyse every document below the given files and directories.

Directories are searched with the scan.patterns globs from the config
(default **/*.json, **/*.json.gz and **/*.json.zst) minus scan.ignore.
The exit status is 2 when some files could not be analysed.

With --watch the scan is repeated whenever a matching file changes;
unchanged files are served from the result cache.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd.Context(), flags, func(s *session) error {
				return runScan(cmd.Context(), s, scanFlags, args)
			})
		},
	}
	cmd.Flags().BoolVarP(&scanFlags.watch, "watch", "w", false, "rescan when matching files change")
	cmd.Flags().StringVarP(&scanFlags.preset, "preset", "p", "", "use this catalog entry for every document")
	cmd.Flags().DurationVar(&scanFlags.debounce, "debounce", 0, "quiet period before a rescan (default 500ms)")
	return cmd
}

func runScan(ctx context.Context, s *session, scanFlags *scanFlagValues, roots []string) error {
	sc, err := scan.New(scan.Options{
		Roots:     roots,
		Patterns:  s.cfg.Scan.Patterns,
		Ignore:    s.cfg.Scan.Ignore,
		Workers:   s.cfg.Scan.Workers,
		CacheSize: s.cfg.Scan.CacheSize,
		Resolver:  s.resolver,
		Preset:    scanFlags.preset,
		Logger:    s.log,
	})
	if err != nil {
		return presetError(scanFlags.preset, err)
	}

	if !scanFlags.watch {
		return scanOnce(ctx, s, sc, roots)
	}
	return watchScan(ctx, s, sc, scanFlags, roots)
}

// scanOnce runs one scan and renders its report. A run with failed files
// returns an ExitError carrying ExitPartial.
func scanOnce(ctx context.Context, s *session, sc *scan.Scanner, roots []string) error {
	rep, err := sc.Run(ctx)
	if err != nil {
		return err
	}
	if len(rep.Files) == 0 {
		return issue.NewErrorContext().
			WithOperation("scan").
			WithResource(strings.Join(roots, ", ")).
			WithSuggestion("Check scan.patterns and scan.ignore in your config").
			WithSuggestion("Run 'bpscan config show' to see the effective patterns").
			WithIssue(issue.NoFilesMatchedId).
			Wrap(errors.New("no files matched")).
			BuildError()
	}
	if err := s.out.Scan(report.NewScanView(rep)); err != nil {
		return err
	}
	if failed := len(rep.Failed()); failed > 0 {
		return &ExitError{
			Code: ExitPartial,
			Err:  fmt.Errorf("%d of %d files could not be analysed", failed, len(rep.Files)),
		}
	}
	return nil
}

// watchScan scans once, then again after every debounced change, until ctx
// is cancelled. Partial failures are logged and do not end the loop.
func watchScan(ctx context.Context, s *session, sc *scan.Scanner, scanFlags *scanFlagValues, roots []string) error {
	matcher, err := discovery.NewMatcher(s.cfg.Scan.Patterns, s.cfg.Scan.Ignore)
	if err != nil {
		return err
	}

	rescan := func(ctx context.Context) error {
		err := scanOnce(ctx, s, sc, roots)
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Code == ExitPartial {
			s.log.Warn(exitErr.Err.Error())
			return nil
		}
		return err
	}

	w, err := watch.New(watch.Config{
		Roots:    roots,
		Matcher:  matcher,
		Debounce: scanFlags.debounce,
		Logger:   s.log,
		OnChange: func(ctx context.Context, changed []string) error {
			s.log.Info("change detected, rescanning", "files", len(changed))
			return rescan(ctx)
		},
	})
	if err != nil {
		return err
	}

	if err := rescan(ctx); err != nil {
		s.log.Error("initial scan failed", "err", err)
	}
	s.log.Info("watching for changes", "roots", len(roots), "cached", sc.CacheLen())
	return w.Run(ctx)
}
