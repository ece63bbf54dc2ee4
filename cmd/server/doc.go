// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

/*
Package main is the entry point for the Wisata server.

Wisata recommends tourist destinations from a CSV of user ratings using
user-based collaborative filtering or a latent-factor model, and serves
the results over a JSON HTTP API.

# Application Architecture

	RootSupervisor ("wisata")
	├── TrainingSupervisor ("training-layer")
	│   └── TrainerService      restore or train, retrain commands, model store GC
	└── APISupervisor ("api-layer")
	    └── HTTPServerService   chi router on Server.Host:Server.Port

Startup order:

 1. Configuration (koanf: defaults, config.yaml, environment)
 2. Logging (zerolog)
 3. DuckDB over the ratings and places CSV files
 4. Recommendation engine and optional BadgerDB model store
 5. Retrain command bus (watermill gochannel)
 6. HTTP handlers and router
 7. Supervisor tree

The API answers 503 MODEL_NOT_READY until the trainer publishes the first
model.

# Configuration

	RATINGS_PATH=/data/tourism_rating.csv
	PLACES_PATH=/data/tourism_with_id.csv
	RECOMMEND_STRATEGY=neighborhood   # or latent
	MODEL_STORE_ENABLED=true
	MODEL_STORE_PATH=/data/models
	./wisata

# Signal Handling

SIGINT and SIGTERM cancel the root context. In-flight requests get
Server.ShutdownTimeout to finish and a running training is cancelled.
*/
package main
