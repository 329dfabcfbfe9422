package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quotle/internal/game"
)

func newGuessCmd(o *options) *cobra.Command {
	var title, author string
	cmd := &cobra.Command{
		Use:   "guess",
		Short: "Guess the title and author of today's quote",
		Long: `Submit a guess for today's quote. The pair must name a book from
your library; unknown pairs and repeated guesses cost no attempt.

Example:
  quotle guess --title "Dune" --author "Frank Herbert"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), o, func(e *env, s game.Session) error {
				next, out := e.engine.OnGuessSubmitted(s, title, author)
				if out.Kind.Consumed() {
					if err := game.Save(cmd.Context(), e.kv, next); err != nil {
						return err
					}
				}
				w := cmd.OutOrStdout()
				fmt.Fprintln(w, out.Message)
				if !next.Round.Status.Terminal() && out.Kind.Consumed() {
					fmt.Fprintf(w, "Attempts left: %d\n", out.Remaining)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "book title")
	cmd.Flags().StringVarP(&author, "author", "a", "", "book author")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}
