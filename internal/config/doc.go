// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

/*
Package config provides centralized configuration management for Wisata.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file (CONFIG_PATH, ./config.yaml or /etc/wisata/config.yaml), then
mapped environment variables. The merged result is validated with struct
tags (go-playground/validator) and cross-field rules before use.

# Configuration Structure

  - ServerConfig: HTTP listener and timeouts
  - DataConfig: ratings and places CSV files, column names, DuckDB tuning
  - RecommendConfig: strategy, metric, solver hyperparameters, top-N limits,
    training schedule and response cache
  - ModelStoreConfig: BadgerDB model persistence
  - SecurityConfig: rate limiting and CORS
  - LoggingConfig: zerolog level and format

# Environment Variables

Data:
  - RATINGS_PATH: ratings CSV (default: Dataset_Rating_Mgl.csv)
  - PLACES_PATH: place catalog CSV (default: Dataset_tourisMagelang.csv)
  - RATINGS_USER_COLUMN, RATINGS_PLACE_COLUMN, RATINGS_SCORE_COLUMN:
    column names (default: User_Id, Place_Id, Place_Ratings)

Recommendation:
  - RECOMMEND_STRATEGY: neighborhood or latent (default: neighborhood)
  - RECOMMEND_METRIC: cosine or pearson (default: cosine)
  - RECOMMEND_SOLVER: sgd or svd (default: sgd)
  - RECOMMEND_FACTORS, RECOMMEND_STEPS, RECOMMEND_LEARNING_RATE,
    RECOMMEND_REGULARIZATION: latent-factor hyperparameters
    (default: 10, 5000, 0.0002, 0.02)
  - RECOMMEND_DEFAULT_TOP_N: default list length (default: 3)
  - RECOMMEND_RETRAIN_INTERVAL: periodic retrain, 0 = off (default: 0)

Model store:
  - MODEL_STORE_ENABLED: persist trained models (default: false)
  - MODEL_STORE_PATH: BadgerDB directory (default: /data/models)
  - MODEL_STORE_RETAIN: versions kept per strategy (default: 3)

Server and security:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:8080)
  - ENVIRONMENT: development, staging or production
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - CORS_ORIGINS: comma-separated list

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	engine, err := recommend.NewEngine(cfg.Recommend.EngineConfig(), logger)
*/
package config
