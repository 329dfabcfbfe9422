package main

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"quotle/internal/config"
	"quotle/internal/game"
	"quotle/internal/round"
	"quotle/internal/store"
	"quotle/internal/suggest"
	"quotle/internal/types"
)

type contextKey string

// App holds server-wide state. The engine pointer stays nil until the
// library has loaded.
type App struct {
	Config       *config.Config
	Logger       *log.Logger
	Store        store.Store
	Players      map[string]*player
	SessionMutex sync.Mutex
	LimiterMap   map[string]*rate.Limiter
	LimiterMutex sync.Mutex
	StartTime    time.Time
	Now          func() time.Time

	engine atomic.Pointer[game.Engine]
}

// player is one cookie's cached session. mu serializes that player's
// requests.
type player struct {
	mu             sync.Mutex
	session        game.Session
	loaded         bool
	LastAccessTime time.Time
}

// guessRequest is the body of a guess submission, form or JSON.
type guessRequest struct {
	Title  string `form:"title" json:"title" binding:"required"`
	Author string `form:"author" json:"author" binding:"required"`
}

type authorRequest struct {
	Title  string `form:"title" json:"title"`
	Author string `form:"author" json:"author" binding:"required"`
}

type bookView struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// stateView is what a player may see of their session. The answer is only
// included once the round is over.
type stateView struct {
	Phase       game.Phase    `json:"phase"`
	Day         int64         `json:"day"`
	Quote       string        `json:"quote,omitempty"`
	Status      round.Status  `json:"status"`
	Attempts    int           `json:"attempts"`
	Remaining   int           `json:"remaining"`
	MaxAttempts int           `json:"max_attempts"`
	Guesses     []types.Guess `json:"guesses"`
	TimeHint    string        `json:"time_hint,omitempty"`
	Message     string        `json:"message,omitempty"`
	Answer      *bookView     `json:"answer,omitempty"`
}

type candidateView struct {
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
	Highlight []int   `json:"highlight,omitempty"`
}

func newStateView(s game.Session) stateView {
	r := s.Round
	v := stateView{
		Phase:       s.Phase,
		Day:         s.Day,
		Quote:       s.Quote.Text,
		Status:      r.Status,
		Attempts:    r.Attempts,
		Remaining:   r.AttemptsLeft(),
		MaxAttempts: round.MaxAttempts,
		Guesses:     r.Guesses,
	}
	if hint, ok := r.RevealedTimeHint(); ok {
		v.TimeHint = hint.String()
	}
	if r.Status.Terminal() {
		v.Answer = &bookView{Title: r.Book.Title, Author: r.Book.Author}
	}
	return v
}

func newCandidateViews(cs []suggest.Candidate) []candidateView {
	views := make([]candidateView, 0, len(cs))
	for _, c := range cs {
		views = append(views, candidateView{
			Title:     c.Book.Title,
			Author:    c.Book.Author,
			Text:      c.Text,
			Score:     c.Score,
			Highlight: c.Highlight,
		})
	}
	return views
}
