// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package config

import (
	"time"

	"github.com/tomtom215/wisata/internal/recommend"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any mapped setting
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	db, err := database.New(&cfg.Data)
//	engine, err := recommend.NewEngine(cfg.Recommend.EngineConfig(), logger)
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Data       DataConfig       `koanf:"data"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	ModelStore ModelStoreConfig `koanf:"model_store"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	Environment     string        `koanf:"environment" validate:"oneof=development staging production"`
}

// DataConfig locates the rating and place datasets.
//
// Environment Variables:
//   - RATINGS_PATH: ratings CSV (required)
//   - PLACES_PATH: place catalog CSV (optional)
type DataConfig struct {
	RatingsPath string `koanf:"ratings_path" validate:"required,csvfile"`
	PlacesPath  string `koanf:"places_path" validate:"omitempty,csvfile"`

	RatingColumns RatingColumns `koanf:"rating_columns"`
	PlaceColumns  PlaceColumns  `koanf:"place_columns"`

	// Threads is the DuckDB worker thread count. 0 = runtime.NumCPU().
	Threads int `koanf:"threads" validate:"gte=0"`

	// MaxMemory is the DuckDB memory limit, e.g. "512MB".
	MaxMemory string `koanf:"max_memory" validate:"required"`

	QueryTimeout time.Duration `koanf:"query_timeout" validate:"gt=0"`
}

// RatingColumns names the ratings CSV columns.
type RatingColumns struct {
	UserID  string `koanf:"user_id" validate:"required"`
	PlaceID string `koanf:"place_id" validate:"required"`
	Rating  string `koanf:"rating" validate:"required"`
}

// PlaceColumns names the places CSV columns. Description, Category and City
// are read only when present in the file.
type PlaceColumns struct {
	ID          string `koanf:"id" validate:"required"`
	Name        string `koanf:"name" validate:"required"`
	Description string `koanf:"description"`
	Category    string `koanf:"category"`
	City        string `koanf:"city"`
}

// RecommendConfig configures the recommendation engine and its trainer.
type RecommendConfig struct {
	// Strategy selects the predictor: neighborhood or latent.
	Strategy string `koanf:"strategy" validate:"oneof=neighborhood latent"`

	ScaleMin float64 `koanf:"scale_min"`
	ScaleMax float64 `koanf:"scale_max" validate:"gtfield=ScaleMin"`

	// Neighborhood settings
	Metric     string `koanf:"metric" validate:"oneof=cosine pearson"`
	NumWorkers int    `koanf:"num_workers" validate:"gte=0"`

	// Latent-factor settings
	Solver         string  `koanf:"solver" validate:"oneof=sgd svd"`
	Factors        int     `koanf:"factors" validate:"min=1"`
	Steps          int     `koanf:"steps" validate:"min=1"`
	LearningRate   float64 `koanf:"learning_rate" validate:"gt=0"`
	Regularization float64 `koanf:"regularization" validate:"gte=0"`
	Seed           int64   `koanf:"seed"`

	DefaultTopN int `koanf:"default_top_n" validate:"min=1"`
	MaxTopN     int `koanf:"max_top_n" validate:"gtefield=DefaultTopN"`

	MinRatings   int           `koanf:"min_ratings" validate:"min=1"`
	TrainTimeout time.Duration `koanf:"train_timeout" validate:"gt=0"`

	// TrainOnStartup trains when no persisted model can be restored.
	TrainOnStartup bool `koanf:"train_on_startup"`

	// RetrainInterval retrains periodically. 0 disables periodic retraining.
	RetrainInterval time.Duration `koanf:"retrain_interval" validate:"gte=0"`

	CacheEnabled    bool          `koanf:"cache_enabled"`
	CacheTTL        time.Duration `koanf:"cache_ttl" validate:"gte=0"`
	CacheMaxEntries int           `koanf:"cache_max_entries" validate:"gte=0"`
}

// EngineConfig converts the settings into a recommend.Config.
func (c *RecommendConfig) EngineConfig() *recommend.Config {
	cfg := recommend.DefaultConfig()
	cfg.Strategy = c.Strategy
	cfg.Scale = recommend.Scale{Min: c.ScaleMin, Max: c.ScaleMax}
	cfg.Neighborhood.Metric = c.Metric
	cfg.Neighborhood.NumWorkers = c.NumWorkers
	cfg.Latent.Solver = c.Solver
	cfg.Latent.Factors = c.Factors
	cfg.Latent.Steps = c.Steps
	cfg.Latent.LearningRate = c.LearningRate
	cfg.Latent.Regularization = c.Regularization
	cfg.Seed = c.Seed
	cfg.Limits.DefaultTopN = c.DefaultTopN
	cfg.Limits.MaxTopN = c.MaxTopN
	cfg.Training.MinRatings = c.MinRatings
	cfg.Training.Timeout = c.TrainTimeout
	cfg.Cache.Enabled = c.CacheEnabled
	if c.CacheTTL > 0 {
		cfg.Cache.TTL = c.CacheTTL
	}
	if c.CacheMaxEntries > 0 {
		cfg.Cache.MaxEntries = c.CacheMaxEntries
	}
	return cfg
}

// ModelStoreConfig configures BadgerDB model persistence.
type ModelStoreConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"`
	InMemory   bool   `koanf:"in_memory"`
	SyncWrites bool   `koanf:"sync_writes"`

	// RetainVersions is how many versions of each model are kept.
	RetainVersions int `koanf:"retain_versions" validate:"min=1"`

	// GCInterval runs BadgerDB value log GC. 0 disables it.
	GCInterval time.Duration `koanf:"gc_interval" validate:"gte=0"`
}

// SecurityConfig holds HTTP hardening settings
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
