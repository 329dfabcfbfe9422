package main

import (
	"context"
	"time"

	"quotle/internal/store"
)

// playerStore scopes the shared store to one player's keys.
func (app *App) playerStore(playerID string) store.Store {
	return store.WithPrefix(app.Store, playerKeyPrefix+playerID+"/")
}

// evictIdleSessions drops cached sessions not touched within maxAge. Their
// state stays in the store and is reloaded on the next request.
func (app *App) evictIdleSessions(maxAge time.Duration) int {
	cutoff := app.Now().Add(-maxAge)

	app.SessionMutex.Lock()
	defer app.SessionMutex.Unlock()

	removed := 0
	for id, p := range app.Players {
		if p.LastAccessTime.Before(cutoff) {
			delete(app.Players, id)
			removed++
		}
	}
	if removed > 0 {
		logInfo("Session cleanup completed: evicted %d idle sessions, %d remaining", removed, len(app.Players))
	}
	return removed
}

// runSessionJanitor evicts idle sessions until ctx is done.
func (app *App) runSessionJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.evictIdleSessions(app.Config.SessionTimeout)
		}
	}
}
