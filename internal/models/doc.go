// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

/*
Package models defines the HTTP API data structures for Wisata.

Key Components:

  - APIResponse: Standard response wrapper with Metadata and APIError
  - RecommendationsResponse: Ranked places for a user, with a result state
  - PredictionResponse: One predicted score, or the not_enough_data state
  - PlaceResponse: Catalog entry plus PlaceStats rating aggregates
  - HealthResponse, UsersResponse, RetrainResponse

Result States:

An empty recommendation list and a missing score are normal outcomes, not
errors. The State field names which one occurred:

  - "ok": the data holds a result
  - "all_rated": the user has already rated every place
  - "not_enough_data": no positively similar user rated the place

All types are JSON-serializable with snake_case field names.
*/
package models
