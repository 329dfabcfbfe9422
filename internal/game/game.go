// Package game holds a player's daily session and the request handlers that
// drive it. A Session is a plain value: handlers take one and return the
// updated copy, and callers decide where it lives.
package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"quotle/internal/daily"
	"quotle/internal/library"
	"quotle/internal/round"
	"quotle/internal/store"
	"quotle/internal/suggest"
	"quotle/internal/types"
)

// SessionKey is the store key of the player's current session.
const SessionKey = "session"

type Phase string

const (
	PhaseLoading  Phase = "loading"
	PhaseReady    Phase = "ready"
	PhaseFallback Phase = "fallback"
)

const (
	MsgLoading     = "Still loading your library, try again in a moment."
	MsgUnavailable = "Your library could not be loaded, so today's quote can't be played."
)

var ErrNotReady = errors.New("game: library not loaded")

type Session struct {
	Phase Phase       `json:"phase"`
	Day   int64       `json:"day"`
	Quote types.Quote `json:"quote"`
	Round round.Round `json:"round"`
}

// Playable reports whether guesses are evaluated in this session.
func (s Session) Playable() bool {
	return s.Phase == PhaseReady
}

// Engine plays sessions against one library.
type Engine struct {
	lib    *library.Library
	phase  Phase
	logger *log.Logger
}

// New returns an engine playing against lib.
func New(lib *library.Library, logger *log.Logger) *Engine {
	return &Engine{lib: lib, phase: PhaseReady, logger: logger}
}

// NewFallback returns an engine that serves the built-in quote and accepts
// no guesses. Hosts use it when the player's library failed to load.
func NewFallback(logger *log.Logger) *Engine {
	return &Engine{lib: fallbackLibrary(), phase: PhaseFallback, logger: logger}
}

func (e *Engine) Phase() Phase              { return e.phase }
func (e *Engine) Library() *library.Library { return e.lib }

// Today returns the player's session for the day containing now. A stored
// session from the same day is resumed; otherwise today's quote is picked
// and a fresh round saved.
func (e *Engine) Today(ctx context.Context, kv store.Store, now time.Time) (Session, error) {
	day := daily.DayIndex(now)

	if e.phase == PhaseFallback {
		return e.fallbackSession(day), nil
	}

	if s, ok := e.loadSession(ctx, kv); ok && s.Day == day {
		e.logger.Debug("resuming session", "day", day, "quote", s.Quote.ID, "attempts", s.Round.Attempts)
		return s, nil
	}

	quote, err := daily.NewSelector(kv, e.logger).Pick(ctx, now, e.lib.Quotes())
	if err != nil {
		return Session{}, fmt.Errorf("pick daily quote: %w", err)
	}
	book, ok := e.lib.Book(quote.BookID)
	if !ok {
		return Session{}, fmt.Errorf("quote %s: unknown book %s", quote.ID, quote.BookID)
	}

	s := Session{Phase: PhaseReady, Day: day, Quote: quote, Round: round.New(quote, book)}
	if err := Save(ctx, kv, s); err != nil {
		return Session{}, err
	}
	e.logger.Info("started new round", "day", day, "quote", quote.ID)
	return s, nil
}

// OnGuessSubmitted evaluates a guess. Sessions that are not playable are
// returned unchanged with an unavailable outcome.
func (e *Engine) OnGuessSubmitted(s Session, title, author string) (Session, round.Outcome) {
	if !s.Playable() {
		return s, unavailable(s)
	}
	next, out := s.Round.Submit(e.lib, title, author)
	s.Round = next
	return s, out
}

// OnHintRequested reveals the time hint.
func (e *Engine) OnHintRequested(s Session) (Session, round.TimeHint, error) {
	if !s.Playable() {
		return s, round.TimeHint{}, ErrNotReady
	}
	next, hint, err := s.Round.RevealTimeHint()
	if err != nil {
		return s, round.TimeHint{}, err
	}
	s.Round = next
	return s, hint, nil
}

// Suggest ranks the library for a partially typed field.
func (e *Engine) Suggest(field suggest.Field, query string) []suggest.Candidate {
	if e.phase != PhaseReady {
		return nil
	}
	return suggest.Rank(query, field, e.lib.Books())
}

// CommitAuthor completes a guess once the player settles on an author.
func (e *Engine) CommitAuthor(g types.Guess) suggest.AuthorCommit {
	if e.phase != PhaseReady {
		return suggest.AuthorCommit{Guess: g}
	}
	return suggest.CommitAuthor(g, e.lib.Books())
}

// Status is the line shown when a player opens the game.
func Status(s Session) string {
	switch {
	case s.Phase == PhaseFallback:
		return MsgUnavailable
	case !s.Playable():
		return MsgLoading
	case s.Round.Status == round.Won:
		return "Congrats! You've already won for today, come back tomorrow to play again."
	case s.Round.Status == round.Lost:
		return "Looks like you didn't get it this time. Come back tomorrow and try again!"
	case s.Round.Attempts > 0:
		return fmt.Sprintf("Welcome back! You have %d guesses remaining", s.Round.AttemptsLeft())
	}
	return "Guess the book and its author!"
}

func unavailable(s Session) round.Outcome {
	msg := MsgLoading
	if s.Phase == PhaseFallback {
		msg = MsgUnavailable
	}
	return round.Outcome{
		Kind:      round.KindUnavailable,
		Status:    s.Round.Status,
		Attempts:  s.Round.Attempts,
		Remaining: s.Round.AttemptsLeft(),
		Message:   msg,
	}
}

// Save stores the session under SessionKey.
func Save(ctx context.Context, kv store.Store, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := kv.Save(ctx, SessionKey, string(data)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// loadSession returns the stored session if it decodes and still refers to
// a quote of this library. Anything else is logged and ignored.
func (e *Engine) loadSession(ctx context.Context, kv store.Store) (Session, bool) {
	raw, ok, err := kv.Load(ctx, SessionKey)
	if err != nil {
		e.logger.Warn("failed to load session", "error", err)
		return Session{}, false
	}
	if !ok || raw == "" {
		return Session{}, false
	}

	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		e.logger.Warn("discarding corrupted session", "error", err)
		return Session{}, false
	}
	if err := e.validate(s); err != nil {
		e.logger.Warn("discarding invalid session", "error", err, "quote", s.Quote.ID)
		return Session{}, false
	}
	return s, true
}

func (e *Engine) validate(s Session) error {
	r := s.Round
	switch {
	case s.Phase != PhaseReady:
		return fmt.Errorf("phase %q", s.Phase)
	case s.Quote.ID == "" || r.QuoteID != s.Quote.ID:
		return errors.New("round does not match quote")
	case r.Attempts < 0 || r.Attempts > round.MaxAttempts || len(r.Guesses) != r.Attempts:
		return fmt.Errorf("attempts %d with %d guesses", r.Attempts, len(r.Guesses))
	}
	switch r.Status {
	case round.InProgress, round.Won, round.Lost:
	default:
		return fmt.Errorf("status %q", r.Status)
	}
	if book, ok := e.lib.Book(s.Quote.BookID); !ok || book.ID != r.Book.ID {
		return fmt.Errorf("book %s not in library", s.Quote.BookID)
	}
	return nil
}
