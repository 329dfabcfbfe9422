// Package round evaluates the guesses of one round against the quote's book.
package round

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"quotle/internal/types"
)

const MaxAttempts = 5

type Status string

const (
	InProgress Status = "in_progress"
	Won        Status = "won"
	Lost       Status = "lost"
)

func (s Status) Terminal() bool {
	return s == Won || s == Lost
}

// Kind classifies the result of one submission.
type Kind string

const (
	KindNotInLibrary  Kind = "not_in_library"
	KindDuplicate     Kind = "duplicate"
	KindRoundOver     Kind = "round_over"
	KindCorrect       Kind = "correct"
	KindAuthorCorrect Kind = "author_correct"
	KindTitleCorrect  Kind = "title_correct"
	KindIncorrect     Kind = "incorrect"
	KindLost          Kind = "lost"
	// KindUnavailable is reported when no library is loaded to play against.
	KindUnavailable   Kind = "unavailable"
)

// Consumed reports whether the submission used up an attempt.
func (k Kind) Consumed() bool {
	switch k {
	case KindNotInLibrary, KindDuplicate, KindRoundOver, KindUnavailable:
		return false
	}
	return true
}

const (
	MsgNotInLibrary = "That book is not in your library!"
	MsgDuplicate    = "You already tried that guess!"
	MsgRoundOver    = "This round is over. Come back tomorrow for a new quote!"
)

type HintKind string

const HintTime HintKind = "time"

var (
	ErrHintUsed  = errors.New("round: hint already revealed")
	ErrRoundOver = errors.New("round: round is over")
)

// Library answers whether a title and author pair exists.
type Library interface {
	HasPair(title, author string) bool
}

// Round is the state of one quote's play. Methods return an updated copy
// and never modify the receiver.
type Round struct {
	QuoteID  string        `json:"quote_id"`
	Book     types.Book    `json:"book"`
	Attempts int           `json:"attempts"`
	Guesses  []types.Guess `json:"guesses"`
	Hints    []HintKind    `json:"hints"`
	Status   Status        `json:"status"`
}

// New starts a round for quote, whose book is answer.
func New(quote types.Quote, answer types.Book) Round {
	return Round{
		QuoteID: quote.ID,
		Book:    answer,
		Guesses: []types.Guess{},
		Hints:   []HintKind{},
		Status:  InProgress,
	}
}

func (r Round) AttemptsLeft() int {
	return max(MaxAttempts-r.Attempts, 0)
}

// Outcome is the result of a submission as shown to the player.
type Outcome struct {
	Kind      Kind   `json:"kind"`
	Status    Status `json:"status"`
	Attempts  int    `json:"attempts"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message"`
	// Answer is set once the round is over.
	Answer *types.Book `json:"answer,omitempty"`
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Submit evaluates a guess. Guesses that are not in the library, repeat an
// earlier guess, or arrive after the round ended leave the round untouched.
func (r Round) Submit(lib Library, title, author string) (Round, Outcome) {
	if r.Status.Terminal() {
		return r, r.outcome(KindRoundOver, MsgRoundOver)
	}

	guess := types.Guess{Title: normalize(title), Author: normalize(author)}
	if !lib.HasPair(guess.Title, guess.Author) {
		return r, r.outcome(KindNotInLibrary, MsgNotInLibrary)
	}
	if slices.Contains(r.Guesses, guess) {
		return r, r.outcome(KindDuplicate, MsgDuplicate)
	}

	next := r
	next.Guesses = append(slices.Clone(r.Guesses), guess)
	next.Attempts++

	titleOK := guess.Title == normalize(r.Book.Title)
	authorOK := guess.Author == normalize(r.Book.Author)

	switch {
	case titleOK && authorOK:
		next.Status = Won
		return next, next.outcome(KindCorrect, fmt.Sprintf("Correct! You got it in %d attempt%s!",
			next.Attempts, plural(next.Attempts)))
	case next.Attempts >= MaxAttempts:
		next.Status = Lost
		return next, next.outcome(KindLost, fmt.Sprintf("Failed! The answer was %q by %s",
			r.Book.Title, r.Book.Author))
	case authorOK:
		return next, next.outcome(KindAuthorCorrect, fmt.Sprintf("You got the author! Now guess the title. (%d/%d)",
			next.Attempts, MaxAttempts))
	case titleOK:
		return next, next.outcome(KindTitleCorrect, fmt.Sprintf("You got the title! Now guess the author. (%d/%d)",
			next.Attempts, MaxAttempts))
	}
	return next, next.outcome(KindIncorrect, fmt.Sprintf("Nope! Try again (%d attempt%s remaining)",
		next.AttemptsLeft(), plural(next.AttemptsLeft())))
}

func (r Round) outcome(kind Kind, msg string) Outcome {
	o := Outcome{
		Kind:      kind,
		Status:    r.Status,
		Attempts:  r.Attempts,
		Remaining: r.AttemptsLeft(),
		Message:   msg,
	}
	if r.Status.Terminal() {
		answer := r.Book
		o.Answer = &answer
	}
	return o
}

// TimeHint is a window of years around the book's read date.
type TimeHint struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (h TimeHint) String() string {
	return fmt.Sprintf("You read this book between %d and %d", h.From, h.To)
}

// RevealTimeHint discloses the read-date window. It is available once per
// round and costs no attempt.
func (r Round) RevealTimeHint() (Round, TimeHint, error) {
	if r.Status.Terminal() {
		return r, TimeHint{}, ErrRoundOver
	}
	if slices.Contains(r.Hints, HintTime) {
		return r, TimeHint{}, ErrHintUsed
	}
	next := r
	next.Hints = append(slices.Clone(r.Hints), HintTime)
	return next, r.timeWindow(), nil
}

// RevealedTimeHint returns the time hint if it was revealed this round.
func (r Round) RevealedTimeHint() (TimeHint, bool) {
	if !r.HintUsed(HintTime) {
		return TimeHint{}, false
	}
	return r.timeWindow(), true
}

func (r Round) timeWindow() TimeHint {
	year := r.Book.DateRead.Year()
	return TimeHint{From: year - 1, To: year + 1}
}

// HintUsed reports whether kind was revealed this round.
func (r Round) HintUsed(kind HintKind) bool {
	return slices.Contains(r.Hints, kind)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
