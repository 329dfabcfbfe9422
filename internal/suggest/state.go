package suggest

import (
	"strings"

	"quotle/internal/similarity"
	"quotle/internal/types"
)

// State is the suggestion list of one input field while the player types.
type State struct {
	Field       Field       `json:"field"`
	Query       string      `json:"query"`
	Matches     []Candidate `json:"matches"`
	Highlighted int         `json:"highlighted"`
}

func NewState(field Field) *State {
	return &State{Field: field}
}

// Update re-ranks books for query. The highlight returns to the first
// match when the query changed or nothing matched.
func (s *State) Update(query string, books []types.Book) {
	changed := query != s.Query
	s.Query = query
	s.Matches = Rank(query, s.Field, books)
	if changed || len(s.Matches) == 0 || s.Highlighted >= len(s.Matches) {
		s.Highlighted = 0
	}
}

func (s *State) Next() {
	if n := len(s.Matches); n > 0 {
		s.Highlighted = (s.Highlighted + 1) % n
	}
}

func (s *State) Prev() {
	if n := len(s.Matches); n > 0 {
		s.Highlighted = (s.Highlighted - 1 + n) % n
	}
}

// Current returns the highlighted candidate, if any.
func (s *State) Current() (Candidate, bool) {
	if len(s.Matches) == 0 {
		return Candidate{}, false
	}
	return s.Matches[s.Highlighted], true
}

// Dismiss hides the list without touching the query.
func (s *State) Dismiss() {
	s.Matches = nil
	s.Highlighted = 0
}

// Apply fills the guess from a chosen candidate. Choosing a title also
// fills the author; choosing an author leaves the title alone.
func Apply(g types.Guess, field Field, c Candidate) types.Guess {
	switch field {
	case FieldTitle:
		g.Title = c.Book.Title
		g.Author = c.Book.Author
	case FieldAuthor:
		g.Author = c.Book.Author
	}
	return g
}

// AuthorCommit is the result of the player settling on an author.
type AuthorCommit struct {
	Guess types.Guess `json:"guess"`
	// Titles lists the author's books when more than one could be meant.
	Titles []Candidate `json:"titles,omitempty"`
}

// CommitAuthor fills the title when the author owns exactly one book, and
// otherwise offers that author's books as title suggestions.
func CommitAuthor(g types.Guess, books []types.Book) AuthorCommit {
	g.Author = strings.TrimSpace(g.Author)
	owned := BooksByAuthor(g.Author, books)

	switch len(owned) {
	case 0:
		return AuthorCommit{Guess: g}
	case 1:
		g.Title = owned[0].Title
		g.Author = owned[0].Author
		return AuthorCommit{Guess: g}
	}

	if len(owned) > MaxSuggestions {
		owned = owned[:MaxSuggestions]
	}
	titles := make([]Candidate, 0, len(owned))
	for _, b := range owned {
		titles = append(titles, Candidate{Book: b, Text: b.Title, Score: similarity.PrefixScore})
	}
	return AuthorCommit{Guess: g, Titles: titles}
}
