// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

// Package logging provides centralized zerolog-based logging for Wisata.
//
// All components log through one global zerolog logger configured at
// startup from the logging section of the application config:
//
//   - JSON output for production, console output for development
//   - Request and training-run IDs propagated through context.Context
//   - An slog.Handler adapter for libraries that require *slog.Logger
//     (the suture supervisor tree logs through it)
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Msg("Server starting")
//	logging.Error().Err(err).Msg("Training failed")
//
//	// With context (request_id, run_id)
//	logging.Ctx(ctx).Info().Int("user_id", uid).Msg("Recommendations served")
//
// # Components
//
// Long-lived components take a zerolog.Logger by value and derive a child
// logger with a component field:
//
//	logger := logging.WithComponent("trainer")
//
// # Configuration
//
// Environment Variables (read by internal/config):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
package logging
