// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package recommend

import (
	"context"
	"fmt"
	"sort"
)

// Recommender ranks the places a user has not rated yet.
type Recommender struct {
	store     *RatingStore
	predictor Predictor
}

// NewRecommender creates a recommender over store using predictor.
func NewRecommender(store *RatingStore, predictor Predictor) *Recommender {
	return &Recommender{store: store, predictor: predictor}
}

// Candidates returns the places user has not rated, in ascending id order.
func (r *Recommender) Candidates(user int) ([]int, error) {
	if err := r.store.RequireUser(user); err != nil {
		return nil, err
	}
	items := r.store.Items()
	out := make([]int, 0, len(items))
	for _, iid := range items {
		if _, rated := r.store.Get(user, iid); !rated {
			out = append(out, iid)
		}
	}
	return out, nil
}

// Recommend returns up to topN unrated places for user, best first.
//
// Places without a prediction are dropped. Equal scores keep ascending
// place id order. A user who has rated every place gets an empty, non-nil
// slice; an unknown user gets ErrUnknownEntity.
func (r *Recommender) Recommend(ctx context.Context, user, topN int) ([]Recommendation, error) {
	if topN < 0 {
		return nil, fmt.Errorf("top_n must be non-negative, got %d", topN)
	}

	candidates, err := r.Candidates(user)
	if err != nil {
		return nil, err
	}

	recs := make([]Recommendation, 0, len(candidates))
	for _, iid := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("recommend: %w", err)
		}
		score, ok, err := r.predictor.Predict(ctx, user, iid)
		if err != nil {
			return nil, fmt.Errorf("predict place %d: %w", iid, err)
		}
		if !ok {
			continue
		}
		recs = append(recs, Recommendation{ItemID: iid, Score: score})
	}

	// Candidates are already in ascending id order, so a stable sort on
	// score alone gives the id tie-break.
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})

	if len(recs) > topN {
		recs = recs[:topN]
	}
	return recs, nil
}
