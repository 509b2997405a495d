// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/fgardt/factorio-scanner-sub002/internal/report"
	"github.com/fgardt/factorio-scanner-sub002/pkg/deps"
)

func newStartupCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "startup FILE",
		Short: "Show the startup settings embedded in a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd.Context(), flags, func(s *session) error {
				doc, err := readDocument(args[0])
				if err != nil {
					return err
				}
				settings, err := deps.ParseStartup(doc)
				if err != nil {
					// Malformed metadata counts as absent.
					if !errors.Is(err, deps.ErrNoMetadata) {
						s.log.Warn("ignoring startup settings", "path", args[0], "err", err)
					}
					settings = nil
				}
				return s.out.Startup(report.NewStartupView(args[0], settings))
			})
		},
	}
}
