package game

import (
	"time"

	"quotle/internal/library"
	"quotle/internal/round"
	"quotle/internal/types"
)

var fallbackBooks = []types.Book{
	{ID: "fallback-1", Title: "Pride and Prejudice", Author: "Jane Austen", DateRead: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
	{ID: "fallback-2", Title: "1984", Author: "George Orwell", DateRead: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
}

var fallbackQuote = types.Quote{
	ID:     "fallback",
	Text:   "It is a truth universally acknowledged...",
	BookID: "fallback-1",
}

func fallbackLibrary() *library.Library {
	return library.New(fallbackBooks, []types.Quote{fallbackQuote})
}

func (e *Engine) fallbackSession(day int64) Session {
	return Session{
		Phase: PhaseFallback,
		Day:   day,
		Quote: fallbackQuote,
		Round: round.New(fallbackQuote, fallbackBooks[0]),
	}
}
