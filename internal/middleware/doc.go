// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

/*
Package middleware provides HTTP middleware for the Wisata API.

All middleware uses the chi signature func(http.Handler) http.Handler.

Key Components:

  - RequestID: UUID-based request tracking, stored via the logging package
  - PrometheusMetrics: request count, latency and in-flight gauges labelled
    by chi route pattern
  - AccessLog: one zerolog line per request, promoted to warn when slow

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(logger, middleware.DefaultAccessLogConfig()))
	r.Use(chimw.Recoverer)
	r.Use(middleware.PrometheusMetrics)

Request IDs from upstream proxies are kept when they are printable ASCII of
at most 128 bytes; anything else is replaced with a fresh UUID.
*/
package middleware
