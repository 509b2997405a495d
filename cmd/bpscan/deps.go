// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fgardt/factorio-scanner-sub002/internal/report"
	"github.com/fgardt/factorio-scanner-sub002/pkg/deps"
)

func newDepsCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var (
		preset  string
		explain bool
	)

	cmd := &cobra.Command{
		Use:   "deps FILE",
		Short: "Resolve the mod packages a document needs",
		Long: `Resolve the mod packages a document needs.

Explicit package metadata on a marker entity wins. Without it the
referenced identifiers are matched against the package catalog; the
first catalog entry with a matching prefix decides. --preset skips
detection and uses the named catalog entry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd.Context(), flags, func(s *session) error {
				doc, err := readDocument(args[0])
				if err != nil {
					return err
				}

				var exp deps.Explanation
				if preset != "" {
					exp, err = s.resolver.ExplainEntry(preset)
					if err != nil {
						return presetError(preset, err)
					}
				} else {
					exp = s.resolver.Explain(doc)
				}
				s.log.Debug("dependencies resolved", "path", args[0], "source", exp.Source, "count", exp.Dependencies.Len())
				return s.out.Deps(report.NewDepsView(args[0], exp, explain))
			})
		},
	}
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "use this catalog entry instead of detection")
	cmd.Flags().BoolVar(&explain, "explain", false, "show the resolution source and matched identifiers")
	return cmd
}
