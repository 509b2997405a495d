// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fgardt/factorio-scanner-sub002/internal/report"
	"github.com/fgardt/factorio-scanner-sub002/pkg/refs"
)

func newRefsCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var categories []string

	cmd := &cobra.Command{
		Use:   "refs FILE",
		Short: "List the prototypes a document references",
		Long: `List every prototype identifier a document references, grouped by
category: recipe, entity, tile, fluid, item, equipment, virtual-signal,
quality, space-location, asteroid-chunk and other.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd.Context(), flags, func(s *session) error {
				if err := validateCategories(categories); err != nil {
					return err
				}
				doc, err := readDocument(args[0])
				if err != nil {
					return err
				}
				s.log.Debug("document read", "path", args[0], "kind", doc.Kind())
				return s.out.Refs(report.NewRefsView(args[0], doc.References()), categories...)
			})
		},
	}
	cmd.Flags().StringSliceVar(&categories, "category", nil, "only list these categories (repeatable)")
	return cmd
}

func validateCategories(names []string) error {
	for _, name := range names {
		if !refs.Category(name).Valid() {
			all := make([]string, 0, len(refs.Categories()))
			for _, c := range refs.Categories() {
				all = append(all, string(c))
			}
			return fmt.Errorf("unknown category %q (want one of: %s)", name, strings.Join(all, ", "))
		}
	}
	return nil
}
