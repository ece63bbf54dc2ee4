// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package recommend

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
)

// Scale is the inclusive range of legal rating scores.
type Scale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultScale returns the 1-5 star scale used by the place rating dataset.
func DefaultScale() Scale {
	return Scale{Min: 1, Max: 5}
}

// Contains reports whether v lies within the scale.
func (s Scale) Contains(v float64) bool {
	return v >= s.Min && v <= s.Max
}

func (s Scale) validate() error {
	if math.IsNaN(s.Min) || math.IsNaN(s.Max) || math.IsInf(s.Min, 0) || math.IsInf(s.Max, 0) {
		return fmt.Errorf("%w: scale bounds must be finite", ErrInvalidConfig)
	}
	if s.Max <= s.Min {
		return fmt.Errorf("%w: scale.max must be greater than scale.min, got [%g, %g]", ErrInvalidConfig, s.Min, s.Max)
	}
	return nil
}

// RatingStore is the sparse user x place rating matrix.
//
// A place the user never rated is absent, which is distinct from any
// observed score including zero. The store is immutable after construction
// and safe for concurrent readers.
type RatingStore struct {
	scores map[int]map[int]float64

	// raters lists, per item, the users who rated it in ascending order.
	raters map[int][]int

	users []int
	items []int
	count int

	fingerprint string
}

// NewRatingStore builds a store from observed ratings.
//
// It fails with ErrMalformedInput for non-finite scores, scores outside
// scale, and duplicate (user, item) pairs with differing scores. Exact
// duplicates are collapsed.
func NewRatingStore(ratings []Rating, scale Scale) (*RatingStore, error) {
	if err := scale.validate(); err != nil {
		return nil, err
	}

	s := &RatingStore{
		scores: make(map[int]map[int]float64),
		raters: make(map[int][]int),
	}

	for i, r := range ratings {
		if math.IsNaN(r.Score) || math.IsInf(r.Score, 0) {
			return nil, fmt.Errorf("%w: rating %d (user %d, place %d) has non-finite score", ErrMalformedInput, i, r.UserID, r.ItemID)
		}
		if !scale.Contains(r.Score) {
			return nil, fmt.Errorf("%w: rating %d (user %d, place %d) score %g outside [%g, %g]",
				ErrMalformedInput, i, r.UserID, r.ItemID, r.Score, scale.Min, scale.Max)
		}

		row := s.scores[r.UserID]
		if row == nil {
			row = make(map[int]float64)
			s.scores[r.UserID] = row
		}
		if prev, dup := row[r.ItemID]; dup {
			if prev != r.Score {
				return nil, fmt.Errorf("%w: conflicting duplicate rating for user %d, place %d (%g vs %g)",
					ErrMalformedInput, r.UserID, r.ItemID, prev, r.Score)
			}
			continue
		}
		row[r.ItemID] = r.Score
		s.raters[r.ItemID] = append(s.raters[r.ItemID], r.UserID)
		s.count++
	}

	s.users = make([]int, 0, len(s.scores))
	for uid := range s.scores {
		s.users = append(s.users, uid)
	}
	sort.Ints(s.users)

	s.items = make([]int, 0, len(s.raters))
	for iid, users := range s.raters {
		sort.Ints(users)
		s.items = append(s.items, iid)
	}
	sort.Ints(s.items)

	s.fingerprint = s.computeFingerprint()
	return s, nil
}

// Get returns the observed score of item by user.
func (s *RatingStore) Get(user, item int) (float64, bool) {
	score, ok := s.scores[user][item]
	return score, ok
}

// RatedItems returns the items rated by user in ascending id order.
func (s *RatingStore) RatedItems(user int) []int {
	row := s.scores[user]
	items := make([]int, 0, len(row))
	for iid := range row {
		items = append(items, iid)
	}
	sort.Ints(items)
	return items
}

// Raters returns the users who rated item in ascending id order.
// The returned slice must not be modified.
func (s *RatingStore) Raters(item int) []int {
	return s.raters[item]
}

// Users returns all users in ascending id order.
// The returned slice must not be modified.
func (s *RatingStore) Users() []int {
	return s.users
}

// Items returns all places that received at least one rating, in ascending
// id order. The returned slice must not be modified.
func (s *RatingStore) Items() []int {
	return s.items
}

// HasUser reports whether user has at least one rating.
func (s *RatingStore) HasUser(user int) bool {
	_, ok := s.scores[user]
	return ok
}

// HasItem reports whether item has at least one rating.
func (s *RatingStore) HasItem(item int) bool {
	_, ok := s.raters[item]
	return ok
}

// RequireUser returns ErrUnknownEntity if user is not in the store.
func (s *RatingStore) RequireUser(user int) error {
	if !s.HasUser(user) {
		return fmt.Errorf("%w: user %d", ErrUnknownEntity, user)
	}
	return nil
}

// RequireItem returns ErrUnknownEntity if item is not in the store.
func (s *RatingStore) RequireItem(item int) error {
	if !s.HasItem(item) {
		return fmt.Errorf("%w: place %d", ErrUnknownEntity, item)
	}
	return nil
}

// Len returns the number of observed ratings.
func (s *RatingStore) Len() int {
	return s.count
}

// Ratings returns every observed rating ordered by user then item.
func (s *RatingStore) Ratings() []Rating {
	out := make([]Rating, 0, s.count)
	for _, uid := range s.users {
		for _, iid := range s.RatedItems(uid) {
			out = append(out, Rating{UserID: uid, ItemID: iid, Score: s.scores[uid][iid]})
		}
	}
	return out
}

// Fingerprint returns a SHA-256 digest of every observed rating. Two stores
// have the same fingerprint exactly when they hold the same ratings.
func (s *RatingStore) Fingerprint() string {
	return s.fingerprint
}

func (s *RatingStore) computeFingerprint() string {
	h := sha256.New()
	for _, r := range s.Ratings() {
		fmt.Fprintf(h, "%d:%d:%g;", r.UserID, r.ItemID, r.Score)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// userRow returns the raw score map for user. Callers must not modify it.
func (s *RatingStore) userRow(user int) map[int]float64 {
	return s.scores[user]
}
