// Package app wires configuration into the concrete components shared by
// the server and the cinesuggest CLI.
package app

import (
	"context"
	"fmt"

	"github.com/kdimtricp/cinesuggest/internal/catalog"
	"github.com/kdimtricp/cinesuggest/internal/config"
	"github.com/kdimtricp/cinesuggest/internal/database"
	"github.com/kdimtricp/cinesuggest/internal/logging"
	"github.com/kdimtricp/cinesuggest/internal/poster"
	"github.com/kdimtricp/cinesuggest/internal/storage"
)

func InitLogging(cfg *config.Config) {
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
}

func DatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		Type:       cfg.Database.Type,
		Host:       cfg.Database.Host,
		Port:       cfg.Database.Port,
		User:       cfg.Database.User,
		Password:   cfg.Database.Password,
		Name:       cfg.Database.Name,
		SQLitePath: cfg.Database.Path,
	}
}

// OpenDatabase connects and applies pending migrations.
func OpenDatabase(cfg *config.Config) (*database.DB, error) {
	db, err := database.NewDB(DatabaseConfig(cfg))
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// LoadStore reads the artifacts from the configured source. db may be nil
// when the source is "file".
func LoadStore(ctx context.Context, cfg *config.Config, db *database.DB) (*catalog.Store, error) {
	switch cfg.Artifacts.Source {
	case "database":
		if db == nil {
			return nil, fmt.Errorf("artifact source is database but no database is open")
		}
		return database.NewArtifactRepository(db).LoadStore(ctx)
	default:
		st, err := storage.OpenLocalStorage(cfg.Artifacts.Dir)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", catalog.ErrArtifactMissing, err)
		}
		return catalog.LoadFiles(st, cfg.Artifacts.MoviesFile, cfg.Artifacts.SimilarityFile)
	}
}

// NewPosterResolver builds the TMDb client, wrapped in a circuit breaker
// when enabled.
func NewPosterResolver(cfg *config.Config) poster.Resolver {
	return poster.NewTMDbResolver(NewMovieFetcher(cfg), cfg.TMDb.ImageBaseURL, poster.Placeholders{
		NoPoster: cfg.TMDb.NoPosterURL,
		Error:    cfg.TMDb.ErrorPosterURL,
	})
}

func NewMovieFetcher(cfg *config.Config) poster.MovieFetcher {
	client := poster.NewTMDbClient(cfg.TMDb.APIKey,
		poster.WithBaseURL(cfg.TMDb.BaseURL),
		poster.WithLanguage(cfg.TMDb.Language),
		poster.WithTimeout(cfg.TMDb.Timeout),
	)
	if !cfg.TMDb.BreakerEnabled {
		return client
	}
	return poster.NewBreakerFetcher(client, poster.BreakerConfig{Timeout: cfg.TMDb.BreakerTimeout})
}
