package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"quotle/internal/daily"
	"quotle/internal/game"
)

// getOrCreatePlayer retrieves the player ID from the cookie or creates a new one.
func (app *App) getOrCreatePlayer(c *gin.Context) string {
	playerID, err := c.Cookie(PlayerCookieName)
	if err == nil {
		if _, perr := uuid.Parse(playerID); perr == nil {
			return playerID
		}
	}
	playerID = uuid.NewString()
	c.SetSameSite(http.SameSiteStrictMode)
	secure := app.Config.Production
	c.SetCookie(PlayerCookieName, playerID, int(app.Config.CookieMaxAge.Seconds()), "/", "", secure, true)
	app.requestLogger(c).Info("created new player", "player", playerID)
	return playerID
}

// getPlayer returns the cached entry for playerID, creating an empty one.
func (app *App) getPlayer(playerID string) *player {
	app.SessionMutex.Lock()
	defer app.SessionMutex.Unlock()
	p, ok := app.Players[playerID]
	if !ok {
		p = &player{}
		app.Players[playerID] = p
	}
	p.LastAccessTime = app.Now()
	return p
}

// currentSession returns today's session for a locked player, going to the
// store when the cache is empty, from another day, or from another phase.
func (app *App) currentSession(ctx context.Context, engine *game.Engine, playerID string, p *player) (game.Session, error) {
	now := app.Now()
	if p.loaded && p.session.Day == daily.DayIndex(now) && p.session.Phase == engine.Phase() {
		return p.session, nil
	}
	s, err := engine.Today(ctx, app.playerStore(playerID), now)
	if err != nil {
		return game.Session{}, err
	}
	p.session = s
	p.loaded = true
	return s, nil
}

// saveSession caches the session and persists it when it is playable.
func (app *App) saveSession(ctx context.Context, playerID string, p *player, s game.Session) error {
	p.session = s
	p.loaded = true
	if !s.Playable() {
		return nil
	}
	return game.Save(ctx, app.playerStore(playerID), s)
}

// withSession runs fn with the caller's locked player and current session.
// If the session cannot be loaded it answers 500 and fn is not called.
func (app *App) withSession(c *gin.Context, fn func(engine *game.Engine, playerID string, p *player, s game.Session)) {
	engine := c.MustGet(engineKey).(*game.Engine)
	playerID := app.getOrCreatePlayer(c)
	p := app.getPlayer(playerID)

	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := app.currentSession(c.Request.Context(), engine, playerID, p)
	if err != nil {
		app.requestLogger(c).Error("failed to load session", "player", playerID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": ErrorInternal})
		return
	}
	fn(engine, playerID, p, s)
}
