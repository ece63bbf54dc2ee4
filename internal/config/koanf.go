// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/wisata/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/wisata/config.yaml",
	"/etc/wisata/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	engine := recommend.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Data: DataConfig{
			RatingsPath: "Dataset_Rating_Mgl.csv",
			PlacesPath:  "Dataset_tourisMagelang.csv",
			RatingColumns: RatingColumns{
				UserID:  "User_Id",
				PlaceID: "Place_Id",
				Rating:  "Place_Ratings",
			},
			PlaceColumns: PlaceColumns{
				ID:          "Place_Id",
				Name:        "Place_Name",
				Description: "Description",
				Category:    "Category",
				City:        "City",
			},
			Threads:      0, // 0 = use runtime.NumCPU()
			MaxMemory:    "512MB",
			QueryTimeout: 30 * time.Second,
		},
		Recommend: RecommendConfig{
			Strategy:        engine.Strategy,
			ScaleMin:        engine.Scale.Min,
			ScaleMax:        engine.Scale.Max,
			Metric:          engine.Neighborhood.Metric,
			NumWorkers:      engine.Neighborhood.NumWorkers,
			Solver:          engine.Latent.Solver,
			Factors:         engine.Latent.Factors,
			Steps:           engine.Latent.Steps,
			LearningRate:    engine.Latent.LearningRate,
			Regularization:  engine.Latent.Regularization,
			Seed:            engine.Seed,
			DefaultTopN:     engine.Limits.DefaultTopN,
			MaxTopN:         engine.Limits.MaxTopN,
			MinRatings:      engine.Training.MinRatings,
			TrainTimeout:    engine.Training.Timeout,
			TrainOnStartup:  true,
			RetrainInterval: 0, // retrain only on request
			CacheEnabled:    engine.Cache.Enabled,
			CacheTTL:        engine.Cache.TTL,
			CacheMaxEntries: engine.Cache.MaxEntries,
		},
		ModelStore: ModelStoreConfig{
			Enabled:        false,
			Path:           "/data/models",
			InMemory:       false,
			SyncWrites:     false,
			RetainVersions: 3,
			GCInterval:     time.Hour,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// RATINGS_PATH -> data.ratings_path, RECOMMEND_STRATEGY -> recommend.strategy
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH when it exists, else the first default
// path that exists, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while YAML already yields slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are ignored so unrelated environment does not leak
// into the configuration.
var envMappings = map[string]string{
	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Data mappings
	"ratings_path":         "data.ratings_path",
	"places_path":          "data.places_path",
	"ratings_user_column":  "data.rating_columns.user_id",
	"ratings_place_column": "data.rating_columns.place_id",
	"ratings_score_column": "data.rating_columns.rating",
	"places_id_column":     "data.place_columns.id",
	"places_name_column":   "data.place_columns.name",
	"duckdb_threads":       "data.threads",
	"duckdb_max_memory":    "data.max_memory",
	"data_query_timeout":   "data.query_timeout",

	// Recommendation engine mappings
	"recommend_strategy":          "recommend.strategy",
	"recommend_scale_min":         "recommend.scale_min",
	"recommend_scale_max":         "recommend.scale_max",
	"recommend_metric":            "recommend.metric",
	"recommend_workers":           "recommend.num_workers",
	"recommend_solver":            "recommend.solver",
	"recommend_factors":           "recommend.factors",
	"recommend_steps":             "recommend.steps",
	"recommend_learning_rate":     "recommend.learning_rate",
	"recommend_regularization":    "recommend.regularization",
	"recommend_seed":              "recommend.seed",
	"recommend_default_top_n":     "recommend.default_top_n",
	"recommend_max_top_n":         "recommend.max_top_n",
	"recommend_min_ratings":       "recommend.min_ratings",
	"recommend_train_timeout":     "recommend.train_timeout",
	"recommend_train_on_startup":  "recommend.train_on_startup",
	"recommend_retrain_interval":  "recommend.retrain_interval",
	"recommend_cache_enabled":     "recommend.cache_enabled",
	"recommend_cache_ttl":         "recommend.cache_ttl",
	"recommend_cache_max_entries": "recommend.cache_max_entries",

	// Model store mappings
	"model_store_enabled":     "model_store.enabled",
	"model_store_path":        "model_store.path",
	"model_store_in_memory":   "model_store.in_memory",
	"model_store_sync_writes": "model_store.sync_writes",
	"model_store_retain":      "model_store.retain_versions",
	"model_store_gc_interval": "model_store.gc_interval",

	// Security mappings
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - RATINGS_PATH -> data.ratings_path
//   - RECOMMEND_STRATEGY -> recommend.strategy
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
