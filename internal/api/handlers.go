// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package api

import (
	"context"
	"time"

	"github.com/tomtom215/wisata/internal/events"
	"github.com/tomtom215/wisata/internal/models"
	"github.com/tomtom215/wisata/internal/recommend"
)

// RecommendationService is the part of *recommend.Engine the handlers use.
type RecommendationService interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	Predict(ctx context.Context, user, item int) (*recommend.Prediction, error)
	Users() ([]int, error)
	Place(id int) (recommend.Place, error)
	Status() recommend.TrainingStatus
	IsReady() bool
}

// PlaceStatsProvider aggregates raw ratings per place. Implemented by
// *database.DB.
type PlaceStatsProvider interface {
	PlaceStats(ctx context.Context, placeID int) (*models.PlaceStats, error)
	Ping(ctx context.Context) error
}

// RetrainPublisher accepts retrain commands. Implemented by *events.Bus.
type RetrainPublisher interface {
	PublishRetrain(ctx context.Context, cmd events.RetrainCommand) (string, error)
}

// HandlerConfig holds handler settings.
type HandlerConfig struct {
	// Version is reported by the health endpoint.
	Version string

	// RequestTimeout bounds engine calls made by a single request.
	RequestTimeout time.Duration
}

// DefaultHandlerConfig returns the production defaults.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		Version:        "dev",
		RequestTimeout: 10 * time.Second,
	}
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: response envelopes and parameter parsing
//   - handlers_health.go: health and readiness probes
//   - handlers_recommend.go: users, recommendations, predictions, places and model endpoints
type Handler struct {
	engine    RecommendationService
	stats     PlaceStatsProvider
	retrain   RetrainPublisher
	config    HandlerConfig
	startTime time.Time
}

// NewHandler creates a new API handler.
//
// stats and retrain may be nil: place responses then omit rating statistics
// and the retrain endpoint answers 503.
//
// Example:
//
//	handler := api.NewHandler(engine, db, bus, api.DefaultHandlerConfig())
//	router := api.NewRouter(handler, api.NewChiMiddleware(nil))
//	http.ListenAndServe(":8080", router.SetupChi())
//
//nolint:gocritic // hugeParam: cfg passed by value for immutability
func NewHandler(engine RecommendationService, stats PlaceStatsProvider, retrain RetrainPublisher, cfg HandlerConfig) *Handler {
	defaults := DefaultHandlerConfig()
	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}

	return &Handler{
		engine:    engine,
		stats:     stats,
		retrain:   retrain,
		config:    cfg,
		startTime: time.Now(),
	}
}

// requestContext bounds ctx with the configured request timeout.
func (h *Handler) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, h.config.RequestTimeout)
}
