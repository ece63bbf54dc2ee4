// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package recommend

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// TrainSVD factorizes the rating matrix with a truncated singular value
// decomposition.
//
// Unobserved cells are filled with the user's mean observed score before
// decomposition. The rank is min(cfg.Factors, users, places) and the
// singular values are split evenly between the two sides:
//
//	User = U_k * sqrt(S_k)
//	Item = V_k * sqrt(S_k)
//
//nolint:gocritic // hugeParam: cfg passed by value for immutability
func TrainSVD(ctx context.Context, store *RatingStore, cfg LatentConfig) (*Factors, TrainReport, error) {
	start := time.Now()
	report := TrainReport{Solver: SolverSVD}

	if cfg.Factors < 1 {
		return nil, report, fmt.Errorf("%w: factors must be positive", ErrInvalidConfig)
	}
	if store.Len() == 0 {
		return nil, report, fmt.Errorf("%w: no ratings to factorize", ErrMalformedInput)
	}

	users, items := store.Users(), store.Items()
	m, n := len(users), len(items)
	itemIndex := indexOf(items)

	A := mat.NewDense(m, n, nil)
	for r, uid := range users {
		row := store.userRow(uid)
		var mean float64
		for _, s := range row {
			mean += s
		}
		mean /= float64(len(row))

		dst := A.RawRowView(r)
		for c := range dst {
			dst[c] = mean
		}
		for iid, s := range row {
			dst[itemIndex[iid]] = s
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, report, fmt.Errorf("svd: %w", err)
	}

	var svd mat.SVD
	if ok := svd.Factorize(A, mat.SVDThin); !ok {
		return nil, report, fmt.Errorf("%w: svd factorization did not converge", ErrNumericInstability)
	}

	k := cfg.Factors
	if rank := min(m, n); k > rank {
		k = rank
	}
	values := svd.Values(nil)

	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)

	P := mat.NewDense(m, k, nil)
	Q := mat.NewDense(n, k, nil)
	for f := 0; f < k; f++ {
		w := math.Sqrt(values[f])
		for r := 0; r < m; r++ {
			P.Set(r, f, U.At(r, f)*w)
		}
		for c := 0; c < n; c++ {
			Q.Set(c, f, V.At(c, f)*w)
		}
	}

	for r := 0; r < m; r++ {
		if !allFinite(P.RawRowView(r)) {
			return nil, report, fmt.Errorf("%w: svd produced non-finite user factors", ErrNumericInstability)
		}
	}
	for c := 0; c < n; c++ {
		if !allFinite(Q.RawRowView(c)) {
			return nil, report, fmt.Errorf("%w: svd produced non-finite place factors", ErrNumericInstability)
		}
	}

	factors, err := NewFactors(users, items, P, Q)
	if err != nil {
		return nil, report, err
	}

	report.Factors = k
	report.Steps = 1
	report.FinalMSE = ReconstructionMSE(store, factors)
	report.InitialMSE = report.FinalMSE
	report.Duration = time.Since(start)
	return factors, report, nil
}
