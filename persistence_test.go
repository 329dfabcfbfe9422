package main

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"quotle/internal/game"
	"quotle/internal/store"
)

func TestPlayerStoreIsolation(t *testing.T) {
	ctx := context.Background()
	app := newReadyApp()
	alice, bob := uuid.NewString(), uuid.NewString()

	if err := app.playerStore(alice).Save(ctx, game.SessionKey, "a"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok, _ := app.playerStore(bob).Load(ctx, game.SessionKey); ok {
		t.Error("bob should not see alice's session")
	}
	got, ok, err := app.Store.Load(ctx, playerKeyPrefix+alice+"/"+game.SessionKey)
	if err != nil || !ok || got != "a" {
		t.Errorf("raw key lookup = %q, %v, %v", got, ok, err)
	}
}

func TestEvictIdleSessions(t *testing.T) {
	app := newReadyApp()
	now := testNow
	app.Now = func() time.Time { return now }

	app.getPlayer("old")
	now = now.Add(90 * time.Minute)
	app.getPlayer("recent")
	now = now.Add(90 * time.Minute)

	if n := app.evictIdleSessions(2 * time.Hour); n != 1 {
		t.Fatalf("evicted %d sessions, want 1", n)
	}
	if _, ok := app.Players["old"]; ok {
		t.Error("old session should have been evicted")
	}
	if _, ok := app.Players["recent"]; !ok {
		t.Error("recent session should have been kept")
	}
}

func TestRunSessionJanitorStops(t *testing.T) {
	app := newApp(testConfig(), store.NewMemory())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.runSessionJanitor(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}
