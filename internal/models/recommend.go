// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package models

import (
	"time"

	"github.com/tomtom215/wisata/internal/recommend"
)

// Result states. They let callers tell an empty list or a missing score
// apart from an error.
const (
	// StateOK means the data field holds a result.
	StateOK = "ok"

	// StateAllRated means the user has rated every known place, so there is
	// nothing left to recommend.
	StateAllRated = "all_rated"

	// StateNotEnoughData means no similar user rated the place, so no score
	// could be formed.
	StateNotEnoughData = "not_enough_data"
)

// RecommendationsRequest holds the query parameters of the recommendations
// endpoint.
type RecommendationsRequest struct {
	UserID int `query:"user_id"`

	// TopN of zero selects the configured default.
	TopN int `query:"top_n" validate:"gte=0,lte=1000"`
}

// RecommendationsResponse is the data of GET /users/{userID}/recommendations.
type RecommendationsResponse struct {
	UserID       int                     `json:"user_id"`
	State        string                  `json:"state"`
	Items        []recommend.ScoredPlace `json:"items"`
	Count        int                     `json:"count"`
	TopN         int                     `json:"top_n"`
	Candidates   int                     `json:"candidates"`
	Strategy     string                  `json:"strategy"`
	ModelVersion int                     `json:"model_version"`
	TrainedAt    time.Time               `json:"trained_at"`
}

// PredictionResponse is the data of GET /users/{userID}/predictions/{placeID}.
// Score is nil when State is StateNotEnoughData.
type PredictionResponse struct {
	UserID       int      `json:"user_id"`
	PlaceID      int      `json:"place_id"`
	State        string   `json:"state"`
	Score        *float64 `json:"score"`
	Rated        bool     `json:"rated"`
	Strategy     string   `json:"strategy"`
	ModelVersion int      `json:"model_version"`
}

// UsersResponse lists the user ids known to the current model.
type UsersResponse struct {
	Users []int `json:"users"`
	Count int   `json:"count"`
}

// PlaceStats summarizes the observed ratings of one place.
type PlaceStats struct {
	PlaceID     int     `json:"place_id"`
	RatingCount int     `json:"rating_count"`
	AvgRating   float64 `json:"avg_rating"`
	MinRating   float64 `json:"min_rating"`
	MaxRating   float64 `json:"max_rating"`
}

// PlaceResponse is the data of GET /places/{placeID}. Stats is omitted when
// the ratings file could not be aggregated.
type PlaceResponse struct {
	recommend.Place
	Stats *PlaceStats `json:"stats,omitempty"`
}

// HealthResponse reports liveness and model readiness.
type HealthResponse struct {
	Status        string  `json:"status"` // "healthy" or "degraded"
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	ModelReady    bool    `json:"model_ready"`
	ModelVersion  int     `json:"model_version"`
	Strategy      string  `json:"strategy"`
	IsTraining    bool    `json:"is_training"`
}

// RetrainResponse acknowledges an accepted retrain command.
type RetrainResponse struct {
	CommandID string `json:"command_id"`
	Message   string `json:"message"`
}
