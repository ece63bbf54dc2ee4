// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

// Package storage persists trained recommendation models in BadgerDB.
//
// A restart can restore the latest model instead of retraining it. Each
// prediction strategy is stored under its own name with monotonically
// increasing versions.
//
// # Storage Format
//
// Every version is one BadgerDB entry:
//
//	key:   model:{strategy}:v{version, zero padded to 10 digits}
//	value: gob(storedFile{Metadata, CompressedData})
//
// CompressedData is the gzip-compressed gob encoding of the model state.
// Metadata carries the SHA-256 checksum of the uncompressed payload, which
// is verified on every load.
//
// # Model State Types
//
// FactorModelState:
//   - K: latent dimension
//   - UserIDs, ItemIDs: row order of the factor matrices
//   - UserFactors, ItemFactors: row-major factor values
//
// SimilarityModelState:
//   - Metric: cosine or pearson
//   - UserIDs: row and column order
//   - Values: dense user-user similarity matrix
//
// # Usage Example
//
//	store, err := storage.Open(storage.Config{Path: "/data/models"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	repo := storage.NewModelRepository(store, 3, logger)
//	engine.SetModelStore(repo)
//
// # Version Management
//
//	version, ok, err := store.LatestVersion("latent")
//	meta, err := store.Load(ctx, "latent", 0, &state) // 0 = latest
//	removed, err := store.Prune(ctx, "latent", 3)
//
// # Thread Safety
//
// All operations are safe for concurrent use. Version assignment happens
// inside a single BadgerDB transaction.
package storage
