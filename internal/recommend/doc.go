// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

// Package recommend implements rating prediction and ranking for tourist
// destinations.
//
// # Architecture
//
// Data flows leaf to root:
//
//	RatingStore -> SimilarityMatrix -> Predictor -> Recommender -> Engine
//
// Two predictors are available and selected by Config.Strategy:
//
//   - neighborhood: user-based collaborative filtering. A prediction is the
//     similarity-weighted mean of the ratings given by users with strictly
//     positive co-rated cosine or Pearson similarity.
//   - latent: matrix factorization trained either by per-entry gradient
//     descent over observed ratings ("sgd") or by truncated SVD of the
//     mean-imputed matrix ("svd"). Predictions are unclipped dot products.
//
// # Missing Values
//
// Unrated cells are absent from the RatingStore. They are never stored as
// zero, so a zero score remains a legal observation.
//
// # Snapshots
//
// Engine.Train builds a RatingStore, similarity matrix or factors, and a
// Recommender into one immutable Snapshot and publishes it with a single
// atomic pointer swap. Readers never lock. A failed or diverged training run
// leaves the previous snapshot in place. Engine.Restore publishes a model
// read back from a ModelStore instead of training, provided it was built from
// the same ratings with the configured metric or solver.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, logger)
//	engine.SetDataProvider(db)
//	engine.SetModelStore(models)
//
//	if err := engine.Train(ctx); err != nil { ... }
//
//	resp, err := engine.Recommend(ctx, recommend.Request{UserID: 42, TopN: 3})
//	if resp.AllRated { ... }
package recommend
