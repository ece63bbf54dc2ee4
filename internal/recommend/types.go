// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package recommend

import (
	"context"
	"time"
)

// Rating is a single observed (user, place, score) triple.
type Rating struct {
	// UserID identifies the rating user.
	UserID int `json:"user_id"`

	// ItemID identifies the rated place.
	ItemID int `json:"item_id"`

	// Score is the observed rating value.
	Score float64 `json:"score"`
}

// Place holds catalog metadata for a tourist destination.
// The engine only needs ID and Name; the rest is passed through to callers.
type Place struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	City        string `json:"city,omitempty"`
}

// Recommendation is one ranked (place, predicted score) pair.
type Recommendation struct {
	ItemID int     `json:"item_id"`
	Score  float64 `json:"score"`
}

// ScoredPlace is a recommendation enriched with catalog metadata.
type ScoredPlace struct {
	Place Place   `json:"place"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// Request contains the parameters for a recommendation request.
type Request struct {
	// UserID is the target user.
	UserID int `json:"user_id"`

	// TopN is the maximum number of places to return.
	// Zero means the configured default; values above the configured
	// maximum are clamped.
	TopN int `json:"top_n"`

	// RequestID is an optional caller-supplied id for log correlation.
	RequestID string `json:"request_id,omitempty"`
}

// Response contains the ranked recommendations for a user.
type Response struct {
	// Items are the recommended places in rank order.
	Items []ScoredPlace `json:"items"`

	// AllRated is true when the user has already rated every known place,
	// which is why Items is empty.
	AllRated bool `json:"all_rated"`

	// Candidates is the number of unrated places that were scored.
	Candidates int `json:"candidates"`

	// Metadata describes how the response was produced.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains information about how a response was produced.
type ResponseMetadata struct {
	RequestID    string    `json:"request_id"`
	UserID       int       `json:"user_id"`
	TopN         int       `json:"top_n"`
	Strategy     string    `json:"strategy"`
	ModelVersion int       `json:"model_version"`
	TrainedAt    time.Time `json:"trained_at"`
	LatencyMS    int64     `json:"latency_ms"`
	CacheHit     bool      `json:"cache_hit"`
	Timestamp    time.Time `json:"timestamp"`
}

// Prediction is the predicted score of one place for one user.
// Available is false when the model could not form a prediction, which is
// a normal outcome and not an error.
type Prediction struct {
	UserID       int     `json:"user_id"`
	ItemID       int     `json:"item_id"`
	Score        float64 `json:"score"`
	Available    bool    `json:"available"`
	Rated        bool    `json:"rated"`
	Strategy     string  `json:"strategy"`
	ModelVersion int     `json:"model_version"`
}

// Predictor estimates the score a user would give a place.
//
// Predict returns ok=false when no prediction can be formed. It returns
// ErrUnknownEntity for ids outside the model.
type Predictor interface {
	// Name returns the strategy identifier.
	Name() string

	// Predict returns the predicted score of item for user.
	Predict(ctx context.Context, user, item int) (score float64, ok bool, err error)
}

// DataProvider loads the rating data and place catalog used for training.
// This is typically implemented by the database layer.
type DataProvider interface {
	// GetRatings returns every observed rating.
	GetRatings(ctx context.Context) ([]Rating, error)

	// GetPlaces returns the place catalog.
	GetPlaces(ctx context.Context) ([]Place, error)
}

// TrainingStatus represents the current training state.
type TrainingStatus struct {
	// IsTraining indicates whether training is currently in progress.
	IsTraining bool `json:"is_training"`

	// Strategy is the configured prediction strategy.
	Strategy string `json:"strategy"`

	// Solver is the latent-factor solver, empty for the neighborhood strategy.
	Solver string `json:"solver,omitempty"`

	// LastTrainedAt is when the current model was published.
	LastTrainedAt time.Time `json:"last_trained_at"`

	// LastTrainingDurationMS is how long the last training took.
	LastTrainingDurationMS int64 `json:"last_training_duration_ms"`

	// LastError contains the last training error, if any.
	LastError string `json:"last_error,omitempty"`

	// RatingCount is the number of observed ratings in the published model.
	RatingCount int `json:"rating_count"`

	// ItemCount is the number of places in the published model.
	ItemCount int `json:"item_count"`

	// UserCount is the number of users in the published model.
	UserCount int `json:"user_count"`

	// ModelVersion is the current model version.
	ModelVersion int `json:"model_version"`

	// Restored is true when the current model was loaded from the model store
	// instead of being trained in this process.
	Restored bool `json:"restored"`

	// ReconstructionMSE is the mean squared error over observed ratings of
	// the latent-factor model. Zero for the neighborhood strategy.
	ReconstructionMSE float64 `json:"reconstruction_mse,omitempty"`
}
