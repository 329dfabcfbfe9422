package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"quotle/internal/config"
	"quotle/internal/game"
	"quotle/internal/library"
	"quotle/internal/store"
)

const janitorInterval = 10 * time.Minute

func main() {
	cfg := config.Load(logger)
	logger.SetLevel(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logFatal("Invalid configuration: %v", err)
	}
	logInfo("Starting Quotle in %s mode", cfg.Env())
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, closeStore, err := store.Open(ctx, cfg.StoreBackend, cfg.StorePath, logger)
	if err != nil {
		logFatal("Failed to open %s store at %s: %v", cfg.StoreBackend, cfg.StorePath, err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logWarn("Failed to close store: %v", err)
		}
	}()

	app := newApp(cfg, kv)
	go app.loadLibrary()

	if err := app.startServer(ctx, app.setupRouter()); err != nil {
		logFatal("Server failed: %v", err)
	}
	logInfo("Server shutdown complete")
}

func newApp(cfg *config.Config, kv store.Store) *App {
	return &App{
		Config:     cfg,
		Logger:     logger,
		Store:      kv,
		Players:    make(map[string]*player),
		LimiterMap: make(map[string]*rate.Limiter),
		StartTime:  time.Now(),
		Now:        time.Now,
	}
}

// loadLibrary reads the book and quote files and publishes the engine. A
// failed load publishes the fallback engine instead of stopping the server.
func (app *App) loadLibrary() {
	lib, err := library.Load(app.Config.BooksPath, app.Config.QuotesPath, app.Logger)
	if err != nil {
		logWarn("Failed to load library, serving fallback quote: %v", err)
		app.engine.Store(game.NewFallback(app.Logger))
		return
	}
	logInfo("Loaded %d books and %d quotes", len(lib.Books()), len(lib.Quotes()))
	app.engine.Store(game.New(lib, app.Logger))
}

func (app *App) setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression))
	router.Use(requestIDMiddleware())
	router.Use(noStore())

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}

	router.GET(RouteHealth, app.healthzHandler)

	play := router.Group("/", app.requireEngine())
	play.GET(RouteHome, app.homeHandler)
	play.GET(RouteGameState, app.gameStateHandler)
	play.GET(RouteSuggest, app.suggestHandler)
	play.POST(RouteGuess, app.rateLimitMiddleware(), app.guessHandler)
	play.POST(RouteAuthor, app.rateLimitMiddleware(), app.authorHandler)
	play.POST(RouteTimeHint, app.rateLimitMiddleware(), app.timeHintHandler)

	return router
}

// startServer runs the HTTP server and the session janitor until ctx is
// cancelled, then shuts both down.
func (app *App) startServer(ctx context.Context, router *gin.Engine) error {
	srv := &http.Server{
		Addr:              ":" + app.Config.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logInfo("Server starting on http://localhost:%s", app.Config.Port)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		app.runSessionJanitor(gctx, janitorInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logInfo("Shutdown signal received, shutting down server gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
