// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package recommend

import "errors"

// Sentinel errors returned by the recommendation engine.
// Callers should compare with errors.Is since most are wrapped with context.
var (
	// ErrUnknownEntity is returned when a user or place id is not present
	// in the published rating store.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrMalformedInput is returned at load time for rating data that cannot
	// be interpreted (missing columns, non-numeric scores, conflicting duplicates).
	ErrMalformedInput = errors.New("malformed input")

	// ErrNumericInstability is returned when latent-factor training produces
	// a NaN or infinite value. The partially trained model is discarded.
	ErrNumericInstability = errors.New("numeric instability during training")

	// ErrNotTrained is returned by read operations before the first model
	// has been published.
	ErrNotTrained = errors.New("model not trained")

	// ErrTrainingInProgress is returned when a training run is requested
	// while another one is still running.
	ErrTrainingInProgress = errors.New("training already in progress")

	// ErrStaleModel is returned by Restore when the persisted model was
	// built with another configuration or from different ratings.
	ErrStaleModel = errors.New("persisted model does not match current ratings or config")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid recommend config")
)
