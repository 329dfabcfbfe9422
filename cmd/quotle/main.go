package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "quotle"})

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "quotle",
		Short: "Guess the book behind today's quote",
		Long: `Quotle picks one quote a day from your reading log. Name the book
and its author in five attempts or fewer.

Books, quotes and the store backend are configured through the same
environment variables as the server (BOOKS_PATH, QUOTES_PATH,
STORE_BACKEND, STORE_PATH).`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.player, "player", "local", "player name whose progress to use")
	root.PersistentFlags().StringVar(&opts.date, "date", "", "play as of this date (YYYY-MM-DD) instead of today")

	root.AddCommand(
		newTodayCmd(opts),
		newGuessCmd(opts),
		newSuggestCmd(opts),
		newHintCmd(opts),
		newStatsCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
