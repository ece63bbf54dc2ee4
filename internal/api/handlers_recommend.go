// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package api

import (
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/wisata/internal/events"
	"github.com/tomtom215/wisata/internal/logging"
	"github.com/tomtom215/wisata/internal/metrics"
	"github.com/tomtom215/wisata/internal/models"
	"github.com/tomtom215/wisata/internal/recommend"
)

// maxRetrainBody bounds the optional retrain request body.
const maxRetrainBody = 4 << 10

// Users handles GET /api/v1/users.
// Returns the ids of every user in the published model, ascending.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.engine.Users()
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, models.UsersResponse{
		Users: users,
		Count: len(users),
	}, 0)
}

// Recommendations handles GET /api/v1/users/{userID}/recommendations.
//
// Query parameters:
//   - top_n: maximum number of places (default from config, clamped to the configured maximum)
//
// An empty list is never an error: State tells a user who rated every
// place apart from one whose unrated places have no prediction.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, apiErr := pathID(r, "userID")
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}
	topN, apiErr := queryInt(r, "top_n", 0)
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	req := models.RecommendationsRequest{UserID: userID, TopN: topN}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	resp, err := h.engine.Recommend(ctx, recommend.Request{
		UserID:    req.UserID,
		TopN:      req.TopN,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
	metrics.RecordRecommendation(h.strategy(resp), time.Since(start), resp, err)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	state := models.StateOK
	switch {
	case resp.AllRated:
		state = models.StateAllRated
	case len(resp.Items) == 0:
		state = models.StateNotEnoughData
	}

	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.RecommendationsResponse{
			UserID:       req.UserID,
			State:        state,
			Items:        resp.Items,
			Count:        len(resp.Items),
			TopN:         resp.Metadata.TopN,
			Candidates:   resp.Candidates,
			Strategy:     resp.Metadata.Strategy,
			ModelVersion: resp.Metadata.ModelVersion,
			TrainedAt:    resp.Metadata.TrainedAt,
		},
		Metadata: models.Metadata{
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      resp.Metadata.CacheHit,
		},
	})
}

// Prediction handles GET /api/v1/users/{userID}/predictions/{placeID}.
// A place no similar user has rated yields state not_enough_data and a
// null score with status 200.
func (h *Handler) Prediction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, apiErr := pathID(r, "userID")
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}
	placeID, apiErr := pathID(r, "placeID")
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	pred, err := h.engine.Predict(ctx, userID, placeID)
	strategy := h.engine.Status().Strategy
	if pred != nil {
		strategy = pred.Strategy
	}
	metrics.RecordPrediction(strategy, pred, err)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	out := models.PredictionResponse{
		UserID:       userID,
		PlaceID:      placeID,
		State:        models.StateNotEnoughData,
		Rated:        pred.Rated,
		Strategy:     pred.Strategy,
		ModelVersion: pred.ModelVersion,
	}
	if pred.Available {
		score := pred.Score
		out.State = models.StateOK
		out.Score = &score
	}

	respondSuccess(w, r, http.StatusOK, out, time.Since(start))
}

// Place handles GET /api/v1/places/{placeID}.
// Rating statistics come straight from the ratings file and are omitted
// when the aggregate query fails.
func (h *Handler) Place(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	placeID, apiErr := pathID(r, "placeID")
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	place, err := h.engine.Place(placeID)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	out := models.PlaceResponse{Place: place}
	if h.stats != nil {
		ctx, cancel := h.requestContext(r.Context())
		defer cancel()

		stats, err := h.stats.PlaceStats(ctx, placeID)
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Int("place_id", placeID).Msg("Failed to aggregate place ratings")
		} else {
			out.Stats = stats
		}
	}

	respondSuccess(w, r, http.StatusOK, out, time.Since(start))
}

// ModelStatus handles GET /api/v1/model/status.
func (h *Handler) ModelStatus(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, h.engine.Status(), 0)
}

// retrainRequest is the optional body of POST /api/v1/model/retrain.
type retrainRequest struct {
	Reason string `json:"reason" validate:"max=256"`
}

// Retrain handles POST /api/v1/model/retrain.
//
// The command is queued and the call returns 202 at once; poll
// /api/v1/model/status to see the new model version.
func (h *Handler) Retrain(w http.ResponseWriter, r *http.Request) {
	if h.retrain == nil {
		respondError(w, r, http.StatusServiceUnavailable, codeUnavailable, "Retraining is not enabled", nil)
		return
	}

	var body retrainRequest
	if r.Body != nil {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxRetrainBody))
		if err != nil {
			respondError(w, r, http.StatusBadRequest, codeValidation, "Failed to read request body", nil)
			return
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &body); err != nil {
				respondError(w, r, http.StatusBadRequest, codeValidation, "Request body must be a JSON object", nil)
				return
			}
		}
	}
	if apiErr := validateRequest(&body); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	requestID := logging.RequestIDFromContext(r.Context())
	id, err := h.retrain.PublishRetrain(r.Context(), events.RetrainCommand{
		Source:    events.SourceAPI,
		Reason:    sanitizeLogValue(body.Reason),
		RequestID: requestID,
	})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("command_id", id).Msg("Retrain command accepted")

	respondSuccess(w, r, http.StatusAccepted, models.RetrainResponse{
		CommandID: id,
		Message:   "Retrain command accepted",
	}, 0)
}

// strategy labels metrics for a recommendation request.
func (h *Handler) strategy(resp *recommend.Response) string {
	if resp != nil && resp.Metadata.Strategy != "" {
		return resp.Metadata.Strategy
	}
	return h.engine.Status().Strategy
}
