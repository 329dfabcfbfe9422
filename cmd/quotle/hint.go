package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"quotle/internal/game"
	"quotle/internal/round"
)

func newHintCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "hint",
		Short: "Reveal when you read today's book",
		Long:  `Reveal a window of years around when you read the book. It costs no attempt and is available once per round.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), o, func(e *env, s game.Session) error {
				next, hint, err := e.engine.OnHintRequested(s)
				switch {
				case errors.Is(err, round.ErrHintUsed):
					shown, _ := s.Round.RevealedTimeHint()
					fmt.Fprintf(cmd.OutOrStdout(), "Already revealed: %s\n", shown)
					return nil
				case err != nil:
					return err
				}
				if err := game.Save(cmd.Context(), e.kv, next); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), hint)
				return nil
			})
		},
	}
}
