package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quotle/internal/suggest"
	"quotle/internal/types"
)

func newSuggestCmd(o *options) *cobra.Command {
	var field string
	cmd := &cobra.Command{
		Use:   "suggest [query]",
		Short: "List library titles or authors matching partial input",
		Long: `Rank the books of your library against a partial title or author,
the way the game's autocomplete does.

Example:
  quotle suggest --field author "herb"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := suggest.ParseField(field)
			if err != nil {
				return err
			}
			e, err := openEnv(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer e.close()

			query := strings.Join(args, " ")
			w := cmd.OutOrStdout()

			if f == suggest.FieldAuthor {
				if commit := e.engine.CommitAuthor(types.Guess{Author: query}); commit.Guess.Title != "" {
					fmt.Fprintf(w, "%s by %s\n", commit.Guess.Title, commit.Guess.Author)
					return nil
				}
			}

			matches := e.engine.Suggest(f, query)
			if len(matches) == 0 {
				fmt.Fprintln(w, "No matches.")
				return nil
			}
			for i, c := range matches {
				fmt.Fprintf(w, "%d. %s by %s (%.2f)\n", i+1, c.Book.Title, c.Book.Author, c.Score)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&field, "field", "f", string(suggest.FieldTitle), "field to match: title or author")
	return cmd
}
