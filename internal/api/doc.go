// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

/*
Package api provides the HTTP API of the Wisata recommendation service.

Routing uses go-chi/chi with go-chi/cors and go-chi/httprate. Every JSON
response is wrapped in models.APIResponse and encoded with goccy/go-json.

# Endpoints

	GET  /api/v1/health                              liveness and model readiness
	GET  /api/v1/health/live                         liveness probe
	GET  /api/v1/health/ready                        readiness probe (503 until a model exists)
	GET  /api/v1/users                               user ids in the current model
	GET  /api/v1/users/{userID}/recommendations      ranked unrated places (?top_n=)
	GET  /api/v1/users/{userID}/predictions/{placeID} single predicted score
	GET  /api/v1/places/{placeID}                    catalog entry and rating statistics
	GET  /api/v1/model/status                        training status
	POST /api/v1/model/retrain                       queue a retrain command (202)
	GET  /metrics                                    Prometheus exposition

# Result States

An empty result is not an error. Recommendation and prediction payloads
carry a state field:

  - ok: the result holds data
  - all_rated: the user has rated every place
  - not_enough_data: no positively similar user rated the place(s)

# Errors

	ErrUnknownEntity       404 UNKNOWN_ENTITY
	ErrNotTrained          503 MODEL_NOT_READY
	ErrTrainingInProgress  409 TRAINING_IN_PROGRESS
	bad parameters         400 VALIDATION_ERROR
	rate limited           429 RATE_LIMIT_EXCEEDED
	anything else          500 INTERNAL_ERROR

Internal error details are logged with the request ID and never returned
to the caller.
*/
package api
