package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"quotle/internal/game"
	"quotle/internal/round"
	"quotle/internal/suggest"
	"quotle/internal/types"
)

// homeHandler returns today's quote, the round so far, and a greeting that
// reflects earlier visits.
func (app *App) homeHandler(c *gin.Context) {
	app.withSession(c, func(_ *game.Engine, _ string, _ *player, s game.Session) {
		view := newStateView(s)
		view.Message = game.Status(s)
		c.JSON(http.StatusOK, view)
	})
}

// gameStateHandler returns the round state without the quote text.
func (app *App) gameStateHandler(c *gin.Context) {
	app.withSession(c, func(_ *game.Engine, _ string, _ *player, s game.Session) {
		view := newStateView(s)
		view.Quote = ""
		c.JSON(http.StatusOK, view)
	})
}

// guessHandler evaluates a title and author guess.
func (app *App) guessHandler(c *gin.Context) {
	var req guessRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrorBadGuess})
		return
	}

	app.withSession(c, func(engine *game.Engine, playerID string, p *player, s game.Session) {
		next, out := engine.OnGuessSubmitted(s, req.Title, req.Author)
		app.requestLogger(c).Info("guess",
			"player", playerID, "quote", s.Quote.ID, "kind", out.Kind, "attempt", out.Attempts)

		if out.Kind.Consumed() {
			if err := app.saveSession(c.Request.Context(), playerID, p, next); err != nil {
				app.requestLogger(c).Error("failed to save session", "player", playerID, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": ErrorInternal})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"outcome": out,
			"state":   newStateView(next),
		})
	})
}

// suggestHandler ranks library books for a partially typed field.
func (app *App) suggestHandler(c *gin.Context) {
	engine := c.MustGet(engineKey).(*game.Engine)
	field, err := suggest.ParseField(c.Query("field"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrorBadField})
		return
	}
	query := c.Query("q")
	c.JSON(http.StatusOK, gin.H{
		"field":       field,
		"query":       query,
		"suggestions": newCandidateViews(engine.Suggest(field, query)),
	})
}

// authorHandler completes a guess once the player commits to an author.
func (app *App) authorHandler(c *gin.Context) {
	engine := c.MustGet(engineKey).(*game.Engine)
	var req authorRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrorBadAuthor})
		return
	}
	commit := engine.CommitAuthor(types.Guess{Title: req.Title, Author: req.Author})
	c.JSON(http.StatusOK, gin.H{
		"guess":  commit.Guess,
		"titles": newCandidateViews(commit.Titles),
	})
}

// timeHintHandler reveals the read-date window once per round.
func (app *App) timeHintHandler(c *gin.Context) {
	app.withSession(c, func(engine *game.Engine, playerID string, p *player, s game.Session) {
		next, hint, err := engine.OnHintRequested(s)
		switch {
		case errors.Is(err, round.ErrHintUsed):
			c.JSON(http.StatusConflict, gin.H{"error": ErrorHintUsed})
			return
		case errors.Is(err, round.ErrRoundOver):
			c.JSON(http.StatusConflict, gin.H{"error": ErrorRoundOver})
			return
		case errors.Is(err, game.ErrNotReady):
			c.JSON(http.StatusServiceUnavailable, gin.H{"phase": s.Phase, "error": game.Status(s)})
			return
		case err != nil:
			app.requestLogger(c).Error("hint failed", "player", playerID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": ErrorInternal})
			return
		}

		if err := app.saveSession(c.Request.Context(), playerID, p, next); err != nil {
			app.requestLogger(c).Error("failed to save session", "player", playerID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": ErrorInternal})
			return
		}
		app.requestLogger(c).Info("time hint revealed", "player", playerID, "quote", s.Quote.ID)
		c.JSON(http.StatusOK, gin.H{
			"hint": hint.String(),
			"from": hint.From,
			"to":   hint.To,
		})
	})
}

// healthzHandler returns a JSON health check with server stats.
func (app *App) healthzHandler(c *gin.Context) {
	uptime := time.Since(app.StartTime)
	resp := gin.H{
		"status":    "ok",
		"env":       app.Config.Env(),
		"phase":     game.PhaseLoading,
		"uptime":    formatUptime(uptime),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if engine := app.engine.Load(); engine != nil {
		resp["phase"] = engine.Phase()
		resp["books_loaded"] = len(engine.Library().Books())
		resp["quotes_loaded"] = len(engine.Library().Quotes())
	}
	app.SessionMutex.Lock()
	resp["active_players"] = len(app.Players)
	app.SessionMutex.Unlock()
	c.JSON(http.StatusOK, resp)
}
