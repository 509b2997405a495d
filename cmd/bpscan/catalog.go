// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fgardt/factorio-scanner-sub002/internal/report"
)

func newCatalogCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List package catalog entries in precedence order",
		Long: `List package catalog entries in precedence order: the built-in
entries first, then the entries of each file in catalog_files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd.Context(), flags, func(s *session) error {
				return s.out.Catalog(report.NewCatalogView(s.resolver.Catalog()))
			})
		},
	}
}
