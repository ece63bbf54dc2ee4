// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package recommend

import (
	"testing"
)

// scenarioRatings is a three user, three place matrix:
//
//	     P1  P2  P3
//	U1    5   3   -
//	U2    4   -   5
//	U3    -   2   -
func scenarioRatings() []Rating {
	return []Rating{
		{UserID: 1, ItemID: 1, Score: 5},
		{UserID: 1, ItemID: 2, Score: 3},
		{UserID: 2, ItemID: 1, Score: 4},
		{UserID: 2, ItemID: 3, Score: 5},
		{UserID: 3, ItemID: 2, Score: 2},
	}
}

func scenarioPlaces() []Place {
	return []Place{
		{ID: 1, Name: "Candi Borobudur", Category: "Budaya"},
		{ID: 2, Name: "Ketep Pass", Category: "Cagar Alam"},
		{ID: 3, Name: "Gereja Ayam", Category: "Budaya"},
	}
}

func mustStore(t *testing.T, ratings []Rating) *RatingStore {
	t.Helper()
	store, err := NewRatingStore(ratings, DefaultScale())
	if err != nil {
		t.Fatalf("NewRatingStore() error = %v", err)
	}
	return store
}

func almostEqual(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}
