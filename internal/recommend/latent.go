// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package recommend

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Factors is a trained latent-factor model.
//
// Row r of User belongs to UserIDs[r] and row c of Item belongs to
// ItemIDs[c]. A Factors value is never mutated after training.
type Factors struct {
	userIDs   []int
	itemIDs   []int
	userIndex map[int]int
	itemIndex map[int]int
	user      *mat.Dense
	item      *mat.Dense
}

// NewFactors assembles a model from its id lists and factor matrices.
// user must be len(userIDs) x k and item must be len(itemIDs) x k.
func NewFactors(userIDs, itemIDs []int, user, item *mat.Dense) (*Factors, error) {
	ur, uk := user.Dims()
	ir, ik := item.Dims()
	if ur != len(userIDs) {
		return nil, fmt.Errorf("%w: user factors have %d rows for %d users", ErrMalformedInput, ur, len(userIDs))
	}
	if ir != len(itemIDs) {
		return nil, fmt.Errorf("%w: item factors have %d rows for %d places", ErrMalformedInput, ir, len(itemIDs))
	}
	if uk != ik {
		return nil, fmt.Errorf("%w: factor dimension mismatch (%d vs %d)", ErrMalformedInput, uk, ik)
	}

	f := &Factors{
		userIDs:   append([]int(nil), userIDs...),
		itemIDs:   append([]int(nil), itemIDs...),
		userIndex: make(map[int]int, len(userIDs)),
		itemIndex: make(map[int]int, len(itemIDs)),
		user:      user,
		item:      item,
	}
	for i, id := range f.userIDs {
		if _, dup := f.userIndex[id]; dup {
			return nil, fmt.Errorf("%w: duplicate user id %d in factor model", ErrMalformedInput, id)
		}
		f.userIndex[id] = i
	}
	for i, id := range f.itemIDs {
		if _, dup := f.itemIndex[id]; dup {
			return nil, fmt.Errorf("%w: duplicate place id %d in factor model", ErrMalformedInput, id)
		}
		f.itemIndex[id] = i
	}
	return f, nil
}

// K returns the latent dimension.
func (f *Factors) K() int {
	_, k := f.user.Dims()
	return k
}

// UserIDs returns the user ids in row order. The slice must not be modified.
func (f *Factors) UserIDs() []int { return f.userIDs }

// ItemIDs returns the place ids in row order. The slice must not be modified.
func (f *Factors) ItemIDs() []int { return f.itemIDs }

// UserMatrix returns the user factor matrix. It must not be modified.
func (f *Factors) UserMatrix() *mat.Dense { return f.user }

// ItemMatrix returns the item factor matrix. It must not be modified.
func (f *Factors) ItemMatrix() *mat.Dense { return f.item }

// Score returns the unclipped dot product of the user and item factors.
func (f *Factors) Score(user, item int) (float64, error) {
	u, ok := f.userIndex[user]
	if !ok {
		return 0, fmt.Errorf("%w: user %d", ErrUnknownEntity, user)
	}
	i, ok := f.itemIndex[item]
	if !ok {
		return 0, fmt.Errorf("%w: place %d", ErrUnknownEntity, item)
	}
	return floats.Dot(f.user.RawRowView(u), f.item.RawRowView(i)), nil
}

// TrainReport summarizes a latent-factor training run.
type TrainReport struct {
	Solver     string        `json:"solver"`
	Factors    int           `json:"factors"`
	Steps      int           `json:"steps"`
	InitialMSE float64       `json:"initial_mse"`
	FinalMSE   float64       `json:"final_mse"`
	Duration   time.Duration `json:"duration"`
}

// observation is an observed rating resolved to matrix indices.
type observation struct {
	u, i  int
	score float64
}

func observations(store *RatingStore, userIndex, itemIndex map[int]int) []observation {
	ratings := store.Ratings()
	obs := make([]observation, len(ratings))
	for n, r := range ratings {
		obs[n] = observation{u: userIndex[r.UserID], i: itemIndex[r.ItemID], score: r.Score}
	}
	return obs
}

func indexOf(ids []int) map[int]int {
	idx := make(map[int]int, len(ids))
	for i, id := range ids {
		idx[id] = i
	}
	return idx
}

// TrainSGD factorizes the observed ratings with per-entry gradient descent.
//
// P (users x k) and Q (items x k) start uniform in [0, 1) drawn from rng.
// Each of cfg.Steps passes visits the observed ratings only, in user then
// place order, and for every factor f applies
//
//	P[u][f] += alpha * (2*e*Q[i][f] - beta*P[u][f])
//	Q[i][f] += alpha * (2*e*P[u][f] - beta*Q[i][f])
//
// with e = r - P[u]·Q[i]. There is no convergence check. A non-finite value
// aborts training with ErrNumericInstability.
//
//nolint:gocritic // hugeParam: cfg passed by value for immutability
func TrainSGD(ctx context.Context, store *RatingStore, cfg LatentConfig, rng *rand.Rand) (*Factors, TrainReport, error) {
	start := time.Now()
	report := TrainReport{Solver: SolverSGD, Factors: cfg.Factors}

	if cfg.Factors < 1 || cfg.Steps < 1 {
		return nil, report, fmt.Errorf("%w: factors and steps must be positive", ErrInvalidConfig)
	}
	if store.Len() == 0 {
		return nil, report, fmt.Errorf("%w: no ratings to factorize", ErrMalformedInput)
	}

	users, items := store.Users(), store.Items()
	k := cfg.Factors
	P := randomDense(len(users), k, rng)
	Q := randomDense(len(items), k, rng)
	obs := observations(store, indexOf(users), indexOf(items))

	report.InitialMSE = observedMSE(obs, P, Q)

	alpha, beta := cfg.LearningRate, cfg.Regularization
	for step := 0; step < cfg.Steps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, report, fmt.Errorf("sgd step %d: %w", step, err)
		}

		for _, o := range obs {
			pu := P.RawRowView(o.u)
			qi := Q.RawRowView(o.i)
			e := o.score - floats.Dot(pu, qi)
			for f := 0; f < k; f++ {
				pu[f] += alpha * (2*e*qi[f] - beta*pu[f])
				qi[f] += alpha * (2*e*pu[f] - beta*qi[f])
			}
			if !allFinite(pu) || !allFinite(qi) {
				return nil, report, fmt.Errorf("%w: sgd step %d diverged at user %d, place %d (learning_rate=%g)",
					ErrNumericInstability, step, users[o.u], items[o.i], alpha)
			}
		}
		report.Steps = step + 1
	}

	report.FinalMSE = observedMSE(obs, P, Q)
	report.Duration = time.Since(start)
	if math.IsNaN(report.FinalMSE) || math.IsInf(report.FinalMSE, 0) {
		return nil, report, fmt.Errorf("%w: reconstruction error is %g", ErrNumericInstability, report.FinalMSE)
	}

	factors, err := NewFactors(users, items, P, Q)
	if err != nil {
		return nil, report, err
	}
	return factors, report, nil
}

// ReconstructionMSE returns the mean squared error of f over the observed
// ratings in store. Ratings whose user or place is outside f are skipped.
func ReconstructionMSE(store *RatingStore, f *Factors) float64 {
	var sum float64
	var n int
	for _, r := range store.Ratings() {
		pred, err := f.Score(r.UserID, r.ItemID)
		if err != nil {
			continue
		}
		d := r.Score - pred
		sum += d * d
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func observedMSE(obs []observation, P, Q *mat.Dense) float64 {
	if len(obs) == 0 {
		return 0
	}
	var sum float64
	for _, o := range obs {
		d := o.score - floats.Dot(P.RawRowView(o.u), Q.RawRowView(o.i))
		sum += d * d
	}
	return sum / float64(len(obs))
}

func randomDense(rows, cols int, rng *rand.Rand) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.Float64()
	}
	return mat.NewDense(rows, cols, data)
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// LatentPredictor predicts with the dot product of trained factors.
// It always forms a prediction for known ids and never clips the result
// to the rating scale.
type LatentPredictor struct {
	factors *Factors
	solver  string
}

// NewLatentPredictor wraps trained factors.
func NewLatentPredictor(f *Factors, solver string) *LatentPredictor {
	return &LatentPredictor{factors: f, solver: solver}
}

// Name returns the strategy identifier.
func (p *LatentPredictor) Name() string {
	return StrategyLatent
}

// Solver returns the solver that produced the factors.
func (p *LatentPredictor) Solver() string {
	return p.solver
}

// Factors returns the underlying model.
func (p *LatentPredictor) Factors() *Factors {
	return p.factors
}

// Predict returns P[user]·Q[item].
func (p *LatentPredictor) Predict(_ context.Context, user, item int) (float64, bool, error) {
	score, err := p.factors.Score(user, item)
	if err != nil {
		return 0, false, err
	}
	return score, true, nil
}
