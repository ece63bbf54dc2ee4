// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package recommend

import (
	"context"
	"fmt"
)

// NeighborhoodPredictor implements user-based collaborative filtering.
//
// For a target user u and place i:
//
//	pred(u, i) = sum_{v in C} sim(u, v) * r(v, i) / sum_{v in C} sim(u, v)
//
// where C is the set of users other than u who rated i and have strictly
// positive similarity with u. Ratings are not mean-centred. When C is empty
// there is no prediction.
type NeighborhoodPredictor struct {
	store *RatingStore
	sim   *SimilarityMatrix
}

// NewNeighborhoodPredictor creates a predictor over store and sim.
func NewNeighborhoodPredictor(store *RatingStore, sim *SimilarityMatrix) *NeighborhoodPredictor {
	return &NeighborhoodPredictor{store: store, sim: sim}
}

// Name returns the strategy identifier.
func (p *NeighborhoodPredictor) Name() string {
	return StrategyNeighborhood
}

// Predict returns the similarity-weighted average rating of item among the
// positively similar users who rated it.
func (p *NeighborhoodPredictor) Predict(_ context.Context, user, item int) (float64, bool, error) {
	if err := p.store.RequireUser(user); err != nil {
		return 0, false, err
	}
	if err := p.store.RequireItem(item); err != nil {
		return 0, false, err
	}

	var weighted, weightSum float64
	for _, other := range p.store.Raters(item) {
		if other == user {
			continue
		}
		w := p.sim.Similarity(user, other)
		if w <= 0 {
			continue
		}
		r, _ := p.store.Get(other, item)
		weighted += w * r
		weightSum += w
	}

	if weightSum <= 0 {
		return 0, false, nil
	}
	return weighted / weightSum, true, nil
}

// Similarity returns the underlying similarity matrix.
func (p *NeighborhoodPredictor) Similarity() *SimilarityMatrix {
	return p.sim
}

// String implements fmt.Stringer for log output.
func (p *NeighborhoodPredictor) String() string {
	return fmt.Sprintf("neighborhood(%s, users=%d)", p.sim.Metric(), len(p.sim.Users()))
}
