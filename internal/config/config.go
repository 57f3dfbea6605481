package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	Database  DatabaseConfig  `koanf:"database"`
	TMDb      TMDbConfig      `koanf:"tmdb"`
	Recommend RecommendConfig `koanf:"recommend"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	// StaticDir serves assets from disk instead of the embedded copy.
	StaticDir string `koanf:"static_dir"`
}

// ArtifactsConfig selects where the catalog and similarity matrix come from.
// Source "file" reads JSON files from Dir; "database" reads the tables
// populated by `cinesuggest import`.
type ArtifactsConfig struct {
	Source         string `koanf:"source" validate:"oneof=file database"`
	Dir            string `koanf:"dir"`
	MoviesFile     string `koanf:"movies_file" validate:"required"`
	SimilarityFile string `koanf:"similarity_file" validate:"required"`
}

type DatabaseConfig struct {
	Type           string `koanf:"type" validate:"oneof=sqlite postgres"`
	Path           string `koanf:"path"`
	Host           string `koanf:"host"`
	Port           int    `koanf:"port"`
	User           string `koanf:"user"`
	Password       string `koanf:"password"`
	Name           string `koanf:"name"`
	MigrationsPath string `koanf:"migrations_path"`
	HistoryEnabled bool   `koanf:"history_enabled"`
}

type TMDbConfig struct {
	APIKey         string        `koanf:"api_key"`
	BaseURL        string        `koanf:"base_url" validate:"required,url"`
	ImageBaseURL   string        `koanf:"image_base_url" validate:"required,url"`
	Language       string        `koanf:"language"`
	Timeout        time.Duration `koanf:"timeout"`
	NoPosterURL    string        `koanf:"no_poster_url" validate:"required"`
	ErrorPosterURL string        `koanf:"error_poster_url" validate:"required"`
	BreakerEnabled bool          `koanf:"breaker_enabled"`
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

type RecommendConfig struct {
	Count int `koanf:"count" validate:"min=1,max=50"`
}

type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Artifacts.Source == "file" && c.Artifacts.Dir == "" {
		return fmt.Errorf("ARTIFACTS_DIR is required when ARTIFACTS_SOURCE=file")
	}
	if c.Database.Type == "sqlite" && c.Database.Path == "" {
		return fmt.Errorf("DB_PATH is required for sqlite")
	}
	if c.Database.Type == "postgres" && (c.Database.Host == "" || c.Database.Name == "") {
		return fmt.Errorf("DB_HOST and DB_NAME are required for postgres")
	}
	if !c.Security.RateLimitDisabled && (c.Security.RateLimitReqs <= 0 || c.Security.RateLimitWindow <= 0) {
		return fmt.Errorf("rate limit requires positive RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW")
	}

	return nil
}

// DatabaseRequired reports whether the process needs a database connection.
func (c *Config) DatabaseRequired() bool {
	return c.Artifacts.Source == "database" || c.Database.HistoryEnabled
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// RedactedKey returns the TMDb key with all but the last four characters masked.
func (t TMDbConfig) RedactedKey() string {
	if len(t.APIKey) <= 4 {
		return strings.Repeat("*", len(t.APIKey))
	}
	return strings.Repeat("*", len(t.APIKey)-4) + t.APIKey[len(t.APIKey)-4:]
}
