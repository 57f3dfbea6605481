package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kdimtricp/cinesuggest/internal/api"
	"github.com/kdimtricp/cinesuggest/internal/app"
	"github.com/kdimtricp/cinesuggest/internal/config"
	"github.com/kdimtricp/cinesuggest/internal/database"
	"github.com/kdimtricp/cinesuggest/internal/logging"
	"github.com/kdimtricp/cinesuggest/internal/metrics"
	"github.com/kdimtricp/cinesuggest/internal/recommend"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
}

// run returns instead of exiting so deferred cleanup always happens.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.InitLogging(cfg)

	var db *database.DB
	if cfg.DatabaseRequired() {
		db, err = app.OpenDatabase(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize %s database: %w", cfg.Database.Type, err)
		}
		defer db.Close()
	}

	ctx := context.Background()

	// Missing artifacts leave the server up in a degraded state.
	var engine *recommend.Engine
	store, loadErr := app.LoadStore(ctx, cfg, db)
	if loadErr != nil {
		logging.Error().Err(loadErr).Str("source", cfg.Artifacts.Source).Msg("Failed to load artifacts; serving without recommendations")
	} else {
		if dups := store.DuplicateTitles(); len(dups) > 0 {
			logging.Warn().Strs("titles", dups).Msg("Catalog contains duplicate titles; title lookups use the first match")
		}
		metrics.CatalogSize.Set(float64(store.Len()))

		engine = recommend.NewEngine(store, app.NewPosterResolver(cfg), recommend.Config{Count: cfg.Recommend.Count})
		logging.Info().Int("movies", store.Len()).Str("source", cfg.Artifacts.Source).Msg("Artifacts loaded")
	}

	var history api.HistoryStore
	if cfg.Database.HistoryEnabled && db != nil {
		history = database.NewHistoryRepository(db)
	}

	handlers, err := api.NewApp(engine, loadErr, history)
	if err != nil {
		return fmt.Errorf("failed to initialize handlers: %w", err)
	}

	router := api.NewRouter(handlers, api.RouterConfig{
		CORSOrigins:       cfg.Security.CORSOrigins,
		RateLimitRequests: cfg.Security.RateLimitReqs,
		RateLimitWindow:   cfg.Security.RateLimitWindow,
		RateLimitDisabled: cfg.Security.RateLimitDisabled,
		StaticDir:         cfg.Server.StaticDir,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logging.Info().
		Str("addr", srv.Addr).
		Str("db_type", cfg.Database.Type).
		Bool("history", history != nil).
		Bool("tmdb_key_set", cfg.TMDb.APIKey != "").
		Str("tmdb_key", cfg.TMDb.RedactedKey()).
		Msg("Server starting")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
