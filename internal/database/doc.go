// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

// Package database reads the rating and place datasets for Wisata.
//
// # Overview
//
// The datasets are plain CSV files. They are queried in place through an
// in-memory DuckDB using read_csv, so there is no schema and no import step:
// every read sees the current file contents.
//
// The package implements recommend.DataProvider:
//
//	db, err := database.New(&cfg.Data)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	engine.SetDataProvider(db)
//
// # Files
//
//   - database.go: connection lifecycle and pool configuration
//   - datasets.go: ratings, places and per-place rating aggregates
//   - errors.go: resource cleanup and malformed-input error helpers
//
// # Column Mapping
//
// Column names come from config.RatingColumns and config.PlaceColumns. The
// defaults match the Magelang tourism dataset (User_Id, Place_Id,
// Place_Ratings, Place_Name).
//
// # Error Handling
//
// A missing file, a missing column, or a row whose id or score cannot be
// parsed yields an error wrapping recommend.ErrMalformedInput with the file
// path and the 1-based data row:
//
//	if errors.Is(err, recommend.ErrMalformedInput) {
//	    // reject the dataset
//	}
//
// Range checks and duplicate ratings are left to recommend.NewRatingStore.
package database
