package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the YAML config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinesuggest/config.yaml",
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Artifacts: ArtifactsConfig{
			Source:         "file",
			Dir:            "./artifacts",
			MoviesFile:     "movies.json",
			SimilarityFile: "similarity.json",
		},
		Database: DatabaseConfig{
			Type:           "sqlite",
			Path:           "./cinesuggest.db",
			Host:           "localhost",
			Port:           5432,
			User:           "cinesuggest",
			Password:       "cinesuggest_dev",
			Name:           "cinesuggest",
			MigrationsPath: "./migrations",
			HistoryEnabled: false,
		},
		TMDb: TMDbConfig{
			BaseURL:        "https://api.themoviedb.org/3",
			ImageBaseURL:   "https://image.tmdb.org/t/p/w500",
			Language:       "en-US",
			Timeout:        30 * time.Second,
			NoPosterURL:    "https://via.placeholder.com/500x750.png?text=No+Poster+Available",
			ErrorPosterURL: "https://via.placeholder.com/500x750.png?text=API+Error",
			BreakerEnabled: true,
			BreakerTimeout: time.Minute,
		},
		Recommend: RecommendConfig{
			Count: 5,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   60,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from, in increasing priority: defaults, an
// optional YAML file, a .env file and the process environment.
func Load() (*Config, error) {
	// .env never overrides variables that are already set.
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var envMappings = map[string]string{
	"http_host":            "server.host",
	"port":                 "server.port",
	"http_read_timeout":    "server.read_timeout",
	"http_write_timeout":   "server.write_timeout",
	"static_dir":           "server.static_dir",
	"artifacts_source":     "artifacts.source",
	"artifacts_dir":        "artifacts.dir",
	"movies_file":          "artifacts.movies_file",
	"similarity_file":      "artifacts.similarity_file",
	"db_type":              "database.type",
	"db_path":              "database.path",
	"db_host":              "database.host",
	"db_port":              "database.port",
	"db_user":              "database.user",
	"db_password":          "database.password",
	"db_name":              "database.name",
	"migrations_path":      "database.migrations_path",
	"history_enabled":      "database.history_enabled",
	"tmdb_api_key":         "tmdb.api_key",
	"tmdb_base_url":        "tmdb.base_url",
	"tmdb_image_base_url":  "tmdb.image_base_url",
	"tmdb_language":        "tmdb.language",
	"tmdb_timeout":         "tmdb.timeout",
	"no_poster_url":        "tmdb.no_poster_url",
	"error_poster_url":     "tmdb.error_poster_url",
	"tmdb_breaker_enabled": "tmdb.breaker_enabled",
	"tmdb_breaker_timeout": "tmdb.breaker_timeout",
	"recommend_count":      "recommend.count",
	"cors_origins":         "security.cors_origins",
	"rate_limit_requests":  "security.rate_limit_reqs",
	"rate_limit_window":    "security.rate_limit_window",
	"disable_rate_limit":   "security.rate_limit_disabled",
	"log_level":            "logging.level",
	"log_format":           "logging.format",
	"log_caller":           "logging.caller",
}

// envTransformFunc maps flat environment names (TMDB_API_KEY) to koanf
// paths (tmdb.api_key). Unknown variables are dropped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
