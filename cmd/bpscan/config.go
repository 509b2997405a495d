// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fgardt/factorio-scanner-sub002/internal/config"
)

// newConfigCommand creates the `bpscan config` command tree. The
// subcommands only load configuration, so a broken catalog file does not
// stop them.
func newConfigCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage bpscan configuration",
		Long: `Manage bpscan configuration.

Configuration is read from, in order:
  - the file given with --config
  - $XDG_CONFIG_HOME/bpscan/config.cue (or the platform config directory)
  - config.cue in the working directory

Every value can be overridden with a BPSCAN_* environment variable,
for example BPSCAN_OUTPUT_FORMAT=json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var asCUE bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(showConfig(cmd.Context(), app, flags, asCUE), flags.verbose, config.ColorSchemeAuto)
		},
	}
	showCmd.Flags().BoolVar(&asCUE, "cue", false, "print the configuration in config file format")

	cfgCmd.AddCommand(
		showCmd,
		&cobra.Command{
			Use:   "path",
			Short: "Show the configuration file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.fail(showConfigPath(app, flags), flags.verbose, config.ColorSchemeAuto)
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create a default configuration file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.fail(initConfig(app), flags.verbose, config.ColorSchemeAuto)
			},
		},
	)
	return cfgCmd
}

func showConfig(ctx context.Context, app *App, flags *rootFlagValues, asCUE bool) error {
	opts := config.LoadOptions{ConfigFilePath: flags.configPath}
	cfg, err := app.Config.Load(ctx, opts)
	if err != nil {
		return err
	}
	if asCUE {
		fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
		return nil
	}

	path, err := app.Config.Locate(opts)
	if err != nil {
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	out := app.stdout

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)
	if path != "" {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%s:\n", keyStyle.Render("catalog_files"))
	if len(cfg.CatalogFiles) == 0 {
		fmt.Fprintf(out, "  %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, f := range cfg.CatalogFiles {
		fmt.Fprintf(out, "  - %s\n", valueStyle.Render(f))
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("scan"))
	fmt.Fprintf(out, "  patterns: %s\n", valueStyle.Render(strings.Join(cfg.Scan.Patterns, ", ")))
	fmt.Fprintf(out, "  ignore: %s\n", valueStyle.Render(strings.Join(cfg.Scan.Ignore, ", ")))
	fmt.Fprintf(out, "  workers: %s\n", valueStyle.Render(fmt.Sprint(cfg.Scan.Workers)))
	fmt.Fprintf(out, "  cache_size: %s\n", valueStyle.Render(fmt.Sprint(cfg.Scan.CacheSize)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("output"))
	fmt.Fprintf(out, "  format: %s\n", valueStyle.Render(string(cfg.Output.Format)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(out, "  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(out, "  verbose: %s\n", valueStyle.Render(fmt.Sprint(cfg.UI.Verbose)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("log"))
	fmt.Fprintf(out, "  level: %s\n", valueStyle.Render(string(cfg.Log.Level)))
	return nil
}

func showConfigPath(app *App, flags *rootFlagValues) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	path, err := app.Config.Locate(config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	if path == "" {
		fmt.Fprintln(app.stdout, "Config file: (none, using defaults)")
		return nil
	}
	fmt.Fprintf(app.stdout, "Config file: %s\n", path)
	return nil
}

func initConfig(app *App) error {
	path, created, err := config.CreateDefaultConfig("")
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
