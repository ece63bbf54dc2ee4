// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/wisata/internal/logging"
)

// AccessLogConfig controls request logging.
type AccessLogConfig struct {
	// SlowThreshold promotes requests slower than this to warn level.
	// Zero disables slow request detection.
	SlowThreshold time.Duration

	// SkipPaths are not logged at all (health probes, metrics scrapes).
	SkipPaths []string
}

// DefaultAccessLogConfig returns the production defaults.
func DefaultAccessLogConfig() AccessLogConfig {
	return AccessLogConfig{
		SlowThreshold: time.Second,
		SkipPaths:     []string{"/metrics", "/api/v1/health/live"},
	}
}

// AccessLog logs one structured line per request. Server errors log at
// error level, slow requests at warn and everything else at debug.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func AccessLog(logger zerolog.Logger, cfg AccessLogConfig) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			// Handlers log through logging.Ctx, so they pick up this logger
			// together with the request ID.
			ctx := logging.ContextWithLogger(r.Context(), logger)
			next.ServeHTTP(ww, r.WithContext(ctx))

			duration := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			var event *zerolog.Event
			switch {
			case status >= http.StatusInternalServerError:
				event = logger.Error()
			case cfg.SlowThreshold > 0 && duration > cfg.SlowThreshold:
				event = logger.Warn().Bool("slow", true)
			default:
				event = logger.Debug()
			}

			event.
				Str("request_id", GetRequestID(ctx)).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", routePattern(r)).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", duration).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP request")
		})
	}
}
