// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/wisata/internal/recommend"
)

// FactorModelState is the persisted form of a latent-factor model.
// Factor matrices are stored row-major; row r belongs to UserIDs[r] or
// ItemIDs[r].
type FactorModelState struct {
	Solver      string
	K           int
	UserIDs     []int
	ItemIDs     []int
	UserFactors []float64
	ItemFactors []float64
}

// SimilarityModelState is the persisted form of a neighborhood model.
type SimilarityModelState struct {
	Metric  string
	UserIDs []int
	Values  [][]float64
}

// NewFactorModelState captures f for persistence.
func NewFactorModelState(f *recommend.Factors, solver string) *FactorModelState {
	return &FactorModelState{
		Solver:      solver,
		K:           f.K(),
		UserIDs:     append([]int(nil), f.UserIDs()...),
		ItemIDs:     append([]int(nil), f.ItemIDs()...),
		UserFactors: rowMajor(f.UserMatrix()),
		ItemFactors: rowMajor(f.ItemMatrix()),
	}
}

func rowMajor(m *mat.Dense) []float64 {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, m.RawRowView(i)...)
	}
	return out
}

// Factors rebuilds the model.
func (s *FactorModelState) Factors() (*recommend.Factors, error) {
	if s.K < 1 {
		return nil, fmt.Errorf("%w: factor dimension %d", recommend.ErrMalformedInput, s.K)
	}
	if len(s.UserFactors) != len(s.UserIDs)*s.K || len(s.ItemFactors) != len(s.ItemIDs)*s.K {
		return nil, fmt.Errorf("%w: factor data does not match %d users, %d places, k=%d",
			recommend.ErrMalformedInput, len(s.UserIDs), len(s.ItemIDs), s.K)
	}
	if len(s.UserIDs) == 0 || len(s.ItemIDs) == 0 {
		return nil, fmt.Errorf("%w: empty factor model", recommend.ErrMalformedInput)
	}
	user := mat.NewDense(len(s.UserIDs), s.K, append([]float64(nil), s.UserFactors...))
	item := mat.NewDense(len(s.ItemIDs), s.K, append([]float64(nil), s.ItemFactors...))
	return recommend.NewFactors(s.UserIDs, s.ItemIDs, user, item)
}

// ModelRepository adapts Store to recommend.ModelStore. Models are stored
// under their strategy name.
type ModelRepository struct {
	store  *Store
	retain int
	logger zerolog.Logger
}

// NewModelRepository creates a repository that keeps the latest retain
// versions of each model.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewModelRepository(store *Store, retain int, logger zerolog.Logger) *ModelRepository {
	if retain < 1 {
		retain = 1
	}
	return &ModelRepository{
		store:  store,
		retain: retain,
		logger: logger.With().Str("component", "model_store").Logger(),
	}
}

// SaveModel persists the predictor of snap.
func (r *ModelRepository) SaveModel(ctx context.Context, snap *recommend.Snapshot) (int, error) {
	meta := ModelMetadata{
		Version:           snap.Version,
		Solver:            snap.Solver,
		TrainedAt:         snap.TrainedAt,
		RatingCount:       snap.Store.Len(),
		UserCount:         len(snap.Store.Users()),
		ItemCount:         len(snap.Store.Items()),
		RatingFingerprint: snap.Store.Fingerprint(),
	}

	var payload interface{}
	switch p := snap.Predictor.(type) {
	case *recommend.LatentPredictor:
		payload = NewFactorModelState(p.Factors(), p.Solver())
	case *recommend.NeighborhoodPredictor:
		sim := p.Similarity()
		meta.Metric = sim.Metric()
		payload = &SimilarityModelState{
			Metric:  sim.Metric(),
			UserIDs: append([]int(nil), sim.Users()...),
			Values:  sim.Values(),
		}
	default:
		return 0, fmt.Errorf("unsupported predictor %T", snap.Predictor)
	}

	start := time.Now()
	version, err := r.store.Save(ctx, snap.Strategy, payload, meta)
	if err != nil {
		return 0, err
	}

	if removed, err := r.store.Prune(ctx, snap.Strategy, r.retain); err != nil {
		r.logger.Warn().Err(err).Str("model", snap.Strategy).Msg("failed to prune old model versions")
	} else if removed > 0 {
		r.logger.Debug().Int("removed", removed).Str("model", snap.Strategy).Msg("pruned old model versions")
	}

	r.logger.Info().
		Str("model", snap.Strategy).
		Int("version", version).
		Dur("duration", time.Since(start)).
		Msg("model persisted")
	return version, nil
}

// LoadModel reads the latest persisted model for strategy.
func (r *ModelRepository) LoadModel(ctx context.Context, strategy string) (*recommend.PersistedModel, error) {
	switch strategy {
	case recommend.StrategyLatent:
		var state FactorModelState
		meta, err := r.store.Load(ctx, strategy, 0, &state)
		if err != nil {
			return nil, err
		}
		factors, err := state.Factors()
		if err != nil {
			return nil, fmt.Errorf("rebuild factors v%d: %w", meta.Version, err)
		}
		return &recommend.PersistedModel{
			Version:           meta.Version,
			Strategy:          strategy,
			Solver:            state.Solver,
			TrainedAt:         meta.TrainedAt,
			RatingFingerprint: meta.RatingFingerprint,
			Factors:           factors,
		}, nil

	case recommend.StrategyNeighborhood:
		var state SimilarityModelState
		meta, err := r.store.Load(ctx, strategy, 0, &state)
		if err != nil {
			return nil, err
		}
		sim, err := recommend.NewSimilarityMatrixFromValues(state.Metric, state.UserIDs, state.Values)
		if err != nil {
			return nil, fmt.Errorf("rebuild similarity v%d: %w", meta.Version, err)
		}
		return &recommend.PersistedModel{
			Version:           meta.Version,
			Strategy:          strategy,
			TrainedAt:         meta.TrainedAt,
			RatingFingerprint: meta.RatingFingerprint,
			Similarity:        sim,
		}, nil

	default:
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}
}
