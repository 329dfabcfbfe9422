// Package suggest ranks library books against partial title or author input
// and tracks the highlighted suggestion while the player types.
package suggest

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"

	"quotle/internal/similarity"
	"quotle/internal/types"
)

const (
	MaxSuggestions = 8
	MinScore       = 0.3
)

type Field string

const (
	FieldTitle  Field = "title"
	FieldAuthor Field = "author"
)

// ParseField accepts "title" or "author" in any case.
func ParseField(s string) (Field, error) {
	switch Field(strings.ToLower(strings.TrimSpace(s))) {
	case FieldTitle:
		return FieldTitle, nil
	case FieldAuthor:
		return FieldAuthor, nil
	}
	return "", fmt.Errorf("unknown suggestion field %q", s)
}

func (f Field) value(b types.Book) string {
	if f == FieldAuthor {
		return b.Author
	}
	return b.Title
}

type Candidate struct {
	Book  types.Book `json:"book"`
	Text  string     `json:"text"`
	Score float64    `json:"score"`
	// Highlight holds byte offsets of Text matched by the query, for display only.
	Highlight []int `json:"highlight,omitempty"`
}

// Rank returns at most MaxSuggestions books whose field scores above
// MinScore, best first. Equal scores keep library order.
func Rank(query string, field Field, books []types.Book) []Candidate {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	matches := make([]Candidate, 0, len(books))
	for _, b := range books {
		text := field.value(b)
		score := similarity.Score(query, text)
		if score <= MinScore {
			continue
		}
		matches = append(matches, Candidate{Book: b, Text: text, Score: score})
	}

	slices.SortStableFunc(matches, func(a, b Candidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	if len(matches) > MaxSuggestions {
		matches = matches[:MaxSuggestions]
	}
	for i := range matches {
		matches[i].Highlight = highlight(query, matches[i].Text)
	}
	return matches
}

func highlight(query, text string) []int {
	found := fuzzy.Find(strings.ToLower(query), []string{strings.ToLower(text)})
	if len(found) == 0 {
		return nil
	}
	return found[0].MatchedIndexes
}

// BooksByAuthor returns the books whose author equals author, ignoring case
// and surrounding whitespace, in library order.
func BooksByAuthor(author string, books []types.Book) []types.Book {
	author = strings.ToLower(strings.TrimSpace(author))
	if author == "" {
		return nil
	}
	return lo.Filter(books, func(b types.Book, _ int) bool {
		return strings.ToLower(b.Author) == author
	})
}
