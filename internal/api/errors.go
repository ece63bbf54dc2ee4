// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/wisata/internal/events"
	"github.com/tomtom215/wisata/internal/recommend"
)

// API error codes carried in APIError.Code.
const (
	codeValidation         = "VALIDATION_ERROR"
	codeUnknownEntity      = "UNKNOWN_ENTITY"
	codeModelNotReady      = "MODEL_NOT_READY"
	codeTrainingInProgress = "TRAINING_IN_PROGRESS"
	codeRateLimited        = "RATE_LIMIT_EXCEEDED"
	codeUnavailable        = "SERVICE_UNAVAILABLE"
	codeInternal           = "INTERNAL_ERROR"
)

// errorStatus maps an engine error to an HTTP status, error code and the
// message shown to callers. Internal details never reach the message.
func errorStatus(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, recommend.ErrUnknownEntity):
		return http.StatusNotFound, codeUnknownEntity, err.Error()
	case errors.Is(err, recommend.ErrNotTrained):
		return http.StatusServiceUnavailable, codeModelNotReady, "No model has been trained yet"
	case errors.Is(err, recommend.ErrTrainingInProgress):
		return http.StatusConflict, codeTrainingInProgress, "A training run is already in progress"
	case errors.Is(err, events.ErrBusClosed):
		return http.StatusServiceUnavailable, codeUnavailable, "Retrain commands are not being accepted"
	default:
		return http.StatusInternalServerError, codeInternal, "Internal server error"
	}
}

// respondEngineError writes the mapped error response. Only 5xx errors are
// logged at error level; 4xx outcomes are normal client traffic.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		respondError(w, r, status, code, message, err)
		return
	}
	respondError(w, r, status, code, message, nil)
}
