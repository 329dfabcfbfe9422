package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quotle/internal/config"
	"quotle/internal/game"
	"quotle/internal/library"
	"quotle/internal/store"
)

type options struct {
	player string
	date   string
}

// env is everything one command needs to play.
type env struct {
	cfg    *config.Config
	engine *game.Engine
	kv     store.Store
	now    time.Time
	close  func() error
}

func (o *options) now() (time.Time, error) {
	if o.date == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.DateOnly, o.date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse --date: %w", err)
	}
	return t, nil
}

// openEnv loads config, the store and the library. A library that fails to
// load yields the fallback engine, as on the server.
func openEnv(ctx context.Context, o *options) (*env, error) {
	cfg := config.Load(logger)
	logger.SetLevel(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if o.player == "" {
		return nil, errors.New("--player must not be empty")
	}
	now, err := o.now()
	if err != nil {
		return nil, err
	}

	kv, closeStore, err := store.Open(ctx, cfg.StoreBackend, cfg.StorePath, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	engine := game.NewFallback(logger)
	lib, err := library.Load(cfg.BooksPath, cfg.QuotesPath, logger)
	if err != nil {
		logger.Warn("failed to load library, using fallback quote", "error", err)
	} else {
		engine = game.New(lib, logger)
	}

	return &env{
		cfg:    cfg,
		engine: engine,
		kv:     store.WithPrefix(kv, "player/"+o.player+"/"),
		now:    now,
		close:  closeStore,
	}, nil
}

// withSession opens the env, loads today's session and runs fn.
func withSession(ctx context.Context, o *options, fn func(e *env, s game.Session) error) error {
	e, err := openEnv(ctx, o)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := e.close(); cerr != nil {
			logger.Warn("failed to close store", "error", cerr)
		}
	}()

	s, err := e.engine.Today(ctx, e.kv, e.now)
	if err != nil {
		return fmt.Errorf("load today's session: %w", err)
	}
	return fn(e, s)
}
