// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package recommend

import (
	"fmt"
	"math"
	"time"
)

// Prediction strategies.
const (
	StrategyNeighborhood = "neighborhood"
	StrategyLatent       = "latent"
)

// Latent-factor solvers.
const (
	SolverSGD = "sgd"
	SolverSVD = "svd"
)

// Similarity metrics.
const (
	MetricCosine  = "cosine"
	MetricPearson = "pearson"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Strategy selects the predictor: "neighborhood" or "latent".
	// Default: "neighborhood".
	Strategy string `json:"strategy"`

	// Scale is the legal range for observed rating scores.
	Scale Scale `json:"scale"`

	// Neighborhood contains parameters for the user-similarity predictor.
	Neighborhood NeighborhoodConfig `json:"neighborhood"`

	// Latent contains parameters for the latent-factor predictor.
	Latent LatentConfig `json:"latent"`

	// Training contains training run parameters.
	Training TrainingConfig `json:"training"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains response caching parameters.
	Cache CacheConfig `json:"cache"`

	// Seed is the random seed for SGD factor initialization. Equal seeds
	// and data give identical models.
	Seed int64 `json:"seed"`
}

// NeighborhoodConfig contains parameters for the neighborhood predictor.
type NeighborhoodConfig struct {
	// Metric is the user-user similarity: "cosine" or "pearson".
	// Default: "cosine".
	Metric string `json:"metric"`

	// NumWorkers is the number of goroutines computing similarities.
	// Default: 4.
	NumWorkers int `json:"num_workers"`
}

// LatentConfig contains parameters for latent-factor training.
type LatentConfig struct {
	// Solver is "sgd" (per-entry gradient descent) or "svd" (truncated SVD).
	// Default: "sgd".
	Solver string `json:"solver"`

	// Factors is the latent dimension k.
	// Default: 10.
	Factors int `json:"factors"`

	// Steps is the number of full passes over the observed ratings.
	// There is no convergence check. Default: 5000.
	Steps int `json:"steps"`

	// LearningRate is the SGD step size alpha.
	// Default: 0.0002.
	LearningRate float64 `json:"learning_rate"`

	// Regularization is the L2 penalty beta.
	// Default: 0.02.
	Regularization float64 `json:"regularization"`
}

// TrainingConfig contains training run parameters.
type TrainingConfig struct {
	// Timeout is the maximum time allowed for a training run.
	// Default: 10m.
	Timeout time.Duration `json:"timeout"`

	// MinRatings is the minimum number of ratings required to train.
	// Default: 1.
	MinRatings int `json:"min_ratings"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultTopN is the number of places returned when a request leaves
	// TopN unset. Default: 3.
	DefaultTopN int `json:"default_top_n"`

	// MaxTopN is the maximum allowed TopN value.
	// Default: 50.
	MaxTopN int `json:"max_top_n"`
}

// CacheConfig contains response caching parameters.
type CacheConfig struct {
	// Enabled controls whether caching is active.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 5m.
	TTL time.Duration `json:"ttl"`

	// MaxEntries is the maximum number of cached entries.
	// Default: 10000.
	MaxEntries int `json:"max_entries"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		Strategy: StrategyNeighborhood,
		Scale:    DefaultScale(),
		Neighborhood: NeighborhoodConfig{
			Metric:     MetricCosine,
			NumWorkers: 4,
		},
		Latent: LatentConfig{
			Solver:         SolverSGD,
			Factors:        10,
			Steps:          5000,
			LearningRate:   0.0002,
			Regularization: 0.02,
		},
		Training: TrainingConfig{
			Timeout:    10 * time.Minute,
			MinRatings: 1,
		},
		Limits: LimitsConfig{
			DefaultTopN: 3,
			MaxTopN:     50,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
		Seed: 42,
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	switch c.Strategy {
	case StrategyNeighborhood, StrategyLatent:
	default:
		return fmt.Errorf("%w: strategy must be %q or %q, got %q",
			ErrInvalidConfig, StrategyNeighborhood, StrategyLatent, c.Strategy)
	}

	if err := c.Scale.validate(); err != nil {
		return err
	}

	switch c.Neighborhood.Metric {
	case MetricCosine, MetricPearson:
	default:
		return fmt.Errorf("%w: neighborhood.metric must be %q or %q, got %q",
			ErrInvalidConfig, MetricCosine, MetricPearson, c.Neighborhood.Metric)
	}
	if c.Neighborhood.NumWorkers < 1 {
		return fmt.Errorf("%w: neighborhood.num_workers must be positive, got %d", ErrInvalidConfig, c.Neighborhood.NumWorkers)
	}

	if err := c.Latent.Validate(); err != nil {
		return err
	}

	if c.Training.Timeout <= 0 {
		return fmt.Errorf("%w: training.timeout must be positive, got %v", ErrInvalidConfig, c.Training.Timeout)
	}
	if c.Training.MinRatings < 1 {
		return fmt.Errorf("%w: training.min_ratings must be positive, got %d", ErrInvalidConfig, c.Training.MinRatings)
	}

	if c.Limits.DefaultTopN < 1 {
		return fmt.Errorf("%w: limits.default_top_n must be positive, got %d", ErrInvalidConfig, c.Limits.DefaultTopN)
	}
	if c.Limits.MaxTopN < c.Limits.DefaultTopN {
		return fmt.Errorf("%w: limits.max_top_n must be >= limits.default_top_n, got %d < %d",
			ErrInvalidConfig, c.Limits.MaxTopN, c.Limits.DefaultTopN)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("%w: cache.ttl must be positive, got %v", ErrInvalidConfig, c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("%w: cache.max_entries must be positive, got %d", ErrInvalidConfig, c.Cache.MaxEntries)
		}
	}

	return nil
}

// Validate checks the latent-factor parameters.
func (l *LatentConfig) Validate() error {
	switch l.Solver {
	case SolverSGD, SolverSVD:
	default:
		return fmt.Errorf("%w: latent.solver must be %q or %q, got %q", ErrInvalidConfig, SolverSGD, SolverSVD, l.Solver)
	}
	if l.Factors < 1 {
		return fmt.Errorf("%w: latent.factors must be positive, got %d", ErrInvalidConfig, l.Factors)
	}
	if l.Solver == SolverSVD {
		return nil
	}
	if l.Steps < 1 {
		return fmt.Errorf("%w: latent.steps must be positive, got %d", ErrInvalidConfig, l.Steps)
	}
	if l.LearningRate <= 0 || math.IsInf(l.LearningRate, 0) || math.IsNaN(l.LearningRate) {
		return fmt.Errorf("%w: latent.learning_rate must be a positive number, got %f", ErrInvalidConfig, l.LearningRate)
	}
	if l.Regularization < 0 || math.IsInf(l.Regularization, 0) || math.IsNaN(l.Regularization) {
		return fmt.Errorf("%w: latent.regularization must be non-negative, got %f", ErrInvalidConfig, l.Regularization)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	clone := *c
	return &clone
}

// SolverName returns the active latent solver, or "" for the neighborhood strategy.
func (c *Config) SolverName() string {
	if c.Strategy != StrategyLatent {
		return ""
	}
	return c.Latent.Solver
}
