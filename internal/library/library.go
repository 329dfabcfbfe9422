// Package library loads the player's books and quotes and answers
// membership questions about them.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"quotle/internal/types"
)

// NotSet is the scraper's marker for a read with no recorded date.
const NotSet = "not set"

var ErrNoQuotes = errors.New("library: no playable quotes")

var dateLayouts = []string{
	"Jan 2, 2006",
	"Jan 02, 2006",
	"January 2, 2006",
	"Jan 2006",
	"2006-01-02",
	"2006/01/02",
	"2006",
}

// Library is the read-only book and quote pool of one player.
type Library struct {
	books  []types.Book
	quotes []types.Quote
	byID   map[string]types.Book
	pairs  map[types.Guess]struct{}
}

// New indexes books and keeps only quotes whose book is known.
func New(books []types.Book, quotes []types.Quote) *Library {
	byID := lo.KeyBy(books, func(b types.Book) string { return b.ID })
	pairs := make(map[types.Guess]struct{}, len(books))
	for _, b := range books {
		pairs[pairKey(b.Title, b.Author)] = struct{}{}
	}
	playable := lo.Filter(quotes, func(q types.Quote, _ int) bool {
		_, ok := byID[q.BookID]
		return ok
	})
	return &Library{books: books, quotes: playable, byID: byID, pairs: pairs}
}

// Load reads books and quotes files from disk.
func Load(booksPath, quotesPath string, logger *log.Logger) (*Library, error) {
	booksData, err := os.ReadFile(booksPath)
	if err != nil {
		return nil, fmt.Errorf("read books: %w", err)
	}
	quotesData, err := os.ReadFile(quotesPath)
	if err != nil {
		return nil, fmt.Errorf("read quotes: %w", err)
	}
	return Parse(booksData, quotesData, logger)
}

// Parse decodes books.json and quotes.json contents. Books without a usable
// read date are skipped, as are quotes of skipped or unknown books.
func Parse(booksData, quotesData []byte, logger *log.Logger) (*Library, error) {
	var rawBooks []types.RawBook
	if err := json.Unmarshal(booksData, &rawBooks); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	var groups [][]types.RawQuote
	if err := json.Unmarshal(quotesData, &groups); err != nil {
		return nil, fmt.Errorf("decode quotes: %w", err)
	}

	books := make([]types.Book, 0, len(rawBooks))
	for _, rb := range rawBooks {
		book, ok := convertBook(rb)
		if !ok {
			logger.Debug("skipping unread book", "book", rb.BookID, "dates_read", rb.DatesRead)
			continue
		}
		books = append(books, book)
	}

	quotes := lo.Map(lo.Flatten(groups), func(rq types.RawQuote, _ int) types.Quote {
		return types.Quote{ID: rq.QuoteID, Text: strings.TrimSpace(rq.Text), BookID: rq.BookID}
	})

	lib := New(books, quotes)
	if dropped := len(quotes) - len(lib.quotes); dropped > 0 {
		logger.Info("dropped quotes without a matching book", "count", dropped)
	}
	if len(lib.quotes) == 0 {
		return nil, ErrNoQuotes
	}
	logger.Info("loaded library", "books", len(lib.books), "quotes", len(lib.quotes))
	return lib, nil
}

func convertBook(rb types.RawBook) (types.Book, bool) {
	read, ok := lastReadDate(rb.DatesRead)
	if !ok {
		return types.Book{}, false
	}
	return types.Book{
		ID:       rb.BookID,
		Title:    CleanTitle(rb),
		Author:   CleanAuthor(rb.Author),
		DateRead: read,
	}, true
}

// lastReadDate returns the most recent parseable date; dates are listed
// oldest first.
func lastReadDate(dates []string) (time.Time, bool) {
	for i := len(dates) - 1; i >= 0; i-- {
		if t, ok := ParseDate(dates[i]); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDate understands the date formats found in reading logs.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, NotSet) {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CleanTitle takes the first line of the raw title, falling back to the
// plain title, with runs of whitespace collapsed.
func CleanTitle(rb types.RawBook) string {
	title := rb.RawTitle
	if line, _, _ := strings.Cut(title, "\n"); strings.TrimSpace(line) != "" {
		title = line
	} else {
		title = rb.Title
	}
	return strings.Join(strings.Fields(title), " ")
}

// CleanAuthor turns "Herbert, Frank" into "Frank Herbert".
func CleanAuthor(author string) string {
	parts := strings.Split(author, ",")
	parts = lo.Reverse(lo.Map(parts, func(p string, _ int) string {
		return strings.Join(strings.Fields(p), " ")
	}))
	return strings.Join(lo.Compact(parts), " ")
}

func pairKey(title, author string) types.Guess {
	return types.Guess{Title: Normalize(title), Author: Normalize(author)}
}

// Normalize is the comparison form of titles and authors.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (l *Library) Books() []types.Book   { return l.books }
func (l *Library) Quotes() []types.Quote { return l.quotes }

func (l *Library) Book(id string) (types.Book, bool) {
	b, ok := l.byID[id]
	return b, ok
}

// HasPair reports whether some book has exactly this title and author,
// ignoring case and surrounding whitespace.
func (l *Library) HasPair(title, author string) bool {
	_, ok := l.pairs[pairKey(title, author)]
	return ok
}
