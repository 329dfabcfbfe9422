package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"quotle/internal/game"
	"quotle/internal/round"
)

func newTodayCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's quote and your progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), o, func(_ *env, s game.Session) error {
				printSession(cmd.OutOrStdout(), s)
				return nil
			})
		},
	}
}

func printSession(w io.Writer, s game.Session) {
	r := s.Round
	fmt.Fprintf(w, "Quote of day %d:\n\n  %q\n\n", s.Day, s.Quote.Text)
	fmt.Fprintln(w, game.Status(s))
	fmt.Fprintf(w, "Attempts: %d/%d\n", r.Attempts, round.MaxAttempts)
	for i, g := range r.Guesses {
		fmt.Fprintf(w, "  %d. %s by %s\n", i+1, g.Title, g.Author)
	}
	if hint, ok := r.RevealedTimeHint(); ok {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
	if r.Status.Terminal() {
		fmt.Fprintf(w, "Answer: %s by %s\n", r.Book.Title, r.Book.Author)
	}
}
