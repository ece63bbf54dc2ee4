// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

// Package metrics provides Prometheus instrumentation for Wisata.
//
// All collectors are registered with the default registry through promauto
// and exposed by the API server at /metrics.
//
// # Metric Categories
//
// Recommendations:
//   - wisata_recommendation_requests_total{strategy, outcome}
//   - wisata_recommendation_duration_seconds{strategy}
//   - wisata_recommendation_items
//   - wisata_prediction_requests_total{strategy, outcome}
//
// Training:
//   - wisata_training_runs_total{strategy, result}
//   - wisata_training_duration_seconds{strategy}
//   - wisata_training_reconstruction_mse
//   - wisata_training_last_success_timestamp
//   - wisata_model_version
//   - wisata_model_entities{entity}
//   - wisata_retrain_commands_total{source}
//
// API and cache:
//   - api_requests_total{method, endpoint, status_code}
//   - api_request_duration_seconds{method, endpoint}
//   - api_active_requests
//   - api_rate_limit_hits_total{endpoint}
//   - cache_hits_total{cache_type}, cache_misses_total{cache_type}
//
// # Outcomes
//
// The outcome label separates the caller-visible states: "ok", "all_rated"
// (the user rated every place), "no_prediction" (not enough data for one
// place), "unknown_entity", "not_ready" and "error".
//
// # Usage
//
//	start := time.Now()
//	resp, err := engine.Recommend(ctx, req)
//	metrics.RecordRecommendation(engine.Config().Strategy, time.Since(start), resp, err)
package metrics
