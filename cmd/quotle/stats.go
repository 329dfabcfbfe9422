package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quotle/internal/daily"
	"quotle/internal/game"
)

func newStatsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show library and progress statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), o, func(e *env, s game.Session) error {
				used, err := daily.NewSelector(e.kv, logger).Used(cmd.Context())
				if err != nil {
					return err
				}
				lib := e.engine.Library()
				w := cmd.OutOrStdout()

				fmt.Fprintln(w, "=== Quotle Statistics ===")
				fmt.Fprintln(w)
				fmt.Fprintf(w, "Player: %s\n", o.player)
				fmt.Fprintf(w, "Store: %s (%s)\n", e.cfg.StoreBackend, e.cfg.StorePath)
				fmt.Fprintf(w, "Phase: %s\n", s.Phase)
				fmt.Fprintln(w)
				fmt.Fprintln(w, "Library:")
				fmt.Fprintf(w, "  Books: %d\n", len(lib.Books()))
				fmt.Fprintf(w, "  Quotes: %d\n", len(lib.Quotes()))
				fmt.Fprintf(w, "  Quotes seen this cycle: %d\n", len(used))
				fmt.Fprintln(w)
				fmt.Fprintln(w, "Today:")
				fmt.Fprintf(w, "  Day: %d\n", s.Day)
				fmt.Fprintf(w, "  Status: %s\n", s.Round.Status)
				fmt.Fprintf(w, "  Attempts: %d\n", s.Round.Attempts)
				return nil
			})
		},
	}
}
