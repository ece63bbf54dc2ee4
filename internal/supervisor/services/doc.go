// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

/*
Package services provides suture.Service wrappers for Wisata components.

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts the ListenAndServe pattern to Serve

Trainer (TrainerService):
  - Restores the persisted model on startup, or trains when that fails
  - Consumes retrain commands from the events bus one at a time
  - Optional periodic retraining and model store garbage collection
  - Training failures are logged; the last published model keeps serving

# Error Handling

Services return ctx.Err() on shutdown. The trainer returns an error only
when it cannot subscribe to retrain commands, which lets the supervisor
retry with backoff.
*/
package services
