// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/wisata/internal/recommend"
)

// Outcome labels shared by the recommendation and prediction metrics.
const (
	OutcomeOK            = "ok"
	OutcomeAllRated      = "all_rated"
	OutcomeNoPrediction  = "no_prediction"
	OutcomeUnknownEntity = "unknown_entity"
	OutcomeNotReady      = "not_ready"
	OutcomeError         = "error"
)

var (
	// Recommendation Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wisata_recommendation_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"strategy", "outcome"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wisata_recommendation_duration_seconds",
			Help:    "Recommendation latency in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"strategy"},
	)

	RecommendationItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wisata_recommendation_items",
			Help:    "Number of places returned per recommendation",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 25, 50, 100},
		},
	)

	PredictionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wisata_prediction_requests_total",
			Help: "Total number of single-place prediction requests",
		},
		[]string{"strategy", "outcome"},
	)

	// Training Metrics
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wisata_training_runs_total",
			Help: "Total number of training runs",
		},
		[]string{"strategy", "result"}, // result: "success", "failure", "skipped"
	)

	TrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wisata_training_duration_seconds",
			Help:    "Duration of training runs in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"strategy"},
	)

	TrainingReconstructionError = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wisata_training_reconstruction_mse",
			Help: "Mean squared error over observed ratings of the published latent-factor model",
		},
	)

	TrainingLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wisata_training_last_success_timestamp",
			Help: "Unix timestamp of the last successful training run",
		},
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wisata_model_version",
			Help: "Version of the currently published model",
		},
	)

	ModelSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wisata_model_entities",
			Help: "Number of entities in the published model",
		},
		[]string{"entity"}, // "users", "places", "ratings"
	)

	RetrainCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wisata_retrain_commands_total",
			Help: "Total number of retrain commands by source",
		},
		[]string{"source"}, // "api", "schedule"
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Optimized for API latency
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "recommendations"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// Outcome classifies a recommendation or prediction error for labelling.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, recommend.ErrUnknownEntity):
		return OutcomeUnknownEntity
	case errors.Is(err, recommend.ErrNotTrained):
		return OutcomeNotReady
	default:
		return OutcomeError
	}
}

// RecordRecommendation records one recommendation request.
// resp may be nil when err is set.
func RecordRecommendation(strategy string, duration time.Duration, resp *recommend.Response, err error) {
	outcome := Outcome(err)
	if err == nil && resp != nil {
		switch {
		case resp.AllRated:
			outcome = OutcomeAllRated
		case len(resp.Items) == 0:
			outcome = OutcomeNoPrediction
		}
		RecommendationItems.Observe(float64(len(resp.Items)))
		if resp.Metadata.CacheHit {
			CacheHits.WithLabelValues("recommendations").Inc()
		} else {
			CacheMisses.WithLabelValues("recommendations").Inc()
		}
	}
	RecommendationRequests.WithLabelValues(strategy, outcome).Inc()
	RecommendationDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordPrediction records one single-place prediction request.
func RecordPrediction(strategy string, pred *recommend.Prediction, err error) {
	outcome := Outcome(err)
	if err == nil && pred != nil && !pred.Available {
		outcome = OutcomeNoPrediction
	}
	PredictionRequests.WithLabelValues(strategy, outcome).Inc()
}

// RecordTraining records a training run and, on success, the published model.
func RecordTraining(status *recommend.TrainingStatus, duration time.Duration, err error) {
	strategy := status.Strategy
	switch {
	case errors.Is(err, recommend.ErrTrainingInProgress):
		TrainingRuns.WithLabelValues(strategy, "skipped").Inc()
		return
	case err != nil:
		TrainingRuns.WithLabelValues(strategy, "failure").Inc()
		TrainingDuration.WithLabelValues(strategy).Observe(duration.Seconds())
		return
	}

	TrainingRuns.WithLabelValues(strategy, "success").Inc()
	TrainingDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	TrainingLastSuccess.Set(float64(time.Now().Unix()))
	UpdateModelGauges(status)
}

// UpdateModelGauges sets the published model gauges from status.
func UpdateModelGauges(status *recommend.TrainingStatus) {
	ModelVersion.Set(float64(status.ModelVersion))
	ModelSize.WithLabelValues("users").Set(float64(status.UserCount))
	ModelSize.WithLabelValues("places").Set(float64(status.ItemCount))
	ModelSize.WithLabelValues("ratings").Set(float64(status.RatingCount))
	TrainingReconstructionError.Set(status.ReconstructionMSE)
}

// RecordRetrainCommand counts a retrain command by where it came from.
func RecordRetrainCommand(source string) {
	RetrainCommands.WithLabelValues(source).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
