// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/wisata/internal/metrics"
	"github.com/tomtom215/wisata/internal/models"
)

// Health handles GET /api/v1/health.
//
// It always answers 200; Status is "degraded" until a model is published
// or while the dataset store is unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.engine.Status()
	ready := h.engine.IsReady()

	health := "healthy"
	if !ready {
		health = "degraded"
	} else if h.stats != nil && h.stats.Ping(r.Context()) != nil {
		health = "degraded"
	}

	uptime := time.Since(h.startTime).Seconds()
	metrics.AppUptime.Set(uptime)

	respondSuccess(w, r, http.StatusOK, models.HealthResponse{
		Status:        health,
		Version:       h.config.Version,
		UptimeSeconds: uptime,
		ModelReady:    ready,
		ModelVersion:  status.ModelVersion,
		Strategy:      status.Strategy,
		IsTraining:    status.IsTraining,
	}, 0)
}

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of model state
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, 0)
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK only once a model has been published
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.engine.IsReady() {
		respondError(w, r, http.StatusServiceUnavailable, codeModelNotReady, "No model has been trained yet", nil)
		return
	}
	if h.stats != nil {
		if err := h.stats.Ping(r.Context()); err != nil {
			respondError(w, r, http.StatusServiceUnavailable, codeUnavailable, "Dataset store is unreachable", err)
			return
		}
	}

	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"ready":         true,
		"model_version": h.engine.Status().ModelVersion,
	}, 0)
}
