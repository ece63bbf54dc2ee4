// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package recommend

import (
	"context"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// SimilarityMatrix holds user-user similarities in [-1, 1].
//
// It is symmetric by construction: values live in a gonum SymDense and each
// unordered pair is computed once. The diagonal is never read by prediction.
type SimilarityMatrix struct {
	metric string
	users  []int
	index  map[int]int
	values *mat.SymDense
}

// ComputeSimilarity computes the similarity between every pair of users in
// store using metric over their co-rated places.
//
// Pairs with no co-rated places, zero norm or zero variance get 0.
// Rows are distributed over workers goroutines.
func ComputeSimilarity(ctx context.Context, store *RatingStore, metric string, workers int) (*SimilarityMatrix, error) {
	var simFn func(a, b map[int]float64) float64
	switch metric {
	case MetricCosine:
		simFn = coRatedCosine
	case MetricPearson:
		simFn = coRatedPearson
	default:
		return nil, fmt.Errorf("%w: unknown similarity metric %q", ErrInvalidConfig, metric)
	}
	if workers < 1 {
		workers = 1
	}

	users := store.Users()
	n := len(users)
	sm := newSimilarityMatrix(metric, users)
	if n == 0 {
		return sm, nil
	}

	rows := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rows {
				a := store.userRow(users[i])
				for j := i + 1; j < n; j++ {
					// Distinct pairs write distinct cells of the upper triangle.
					sm.values.SetSym(i, j, simFn(a, store.userRow(users[j])))
				}
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break feed
		case rows <- i:
		}
	}
	close(rows)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("compute similarity: %w", err)
	}
	return sm, nil
}

// NewSimilarityMatrixFromValues restores a matrix from a dense row-major
// representation, typically read back from the model store. Only the upper
// triangle is used.
func NewSimilarityMatrixFromValues(metric string, users []int, values [][]float64) (*SimilarityMatrix, error) {
	if len(values) != len(users) {
		return nil, fmt.Errorf("%w: similarity has %d rows for %d users", ErrMalformedInput, len(values), len(users))
	}
	sm := newSimilarityMatrix(metric, users)
	for i, row := range values {
		if len(row) != len(users) {
			return nil, fmt.Errorf("%w: similarity row %d has %d columns, want %d", ErrMalformedInput, i, len(row), len(users))
		}
		for j := i + 1; j < len(row); j++ {
			v := row[j]
			if math.IsNaN(v) || v < -1 || v > 1 {
				return nil, fmt.Errorf("%w: similarity (%d, %d) = %g out of range", ErrMalformedInput, users[i], users[j], v)
			}
			sm.values.SetSym(i, j, v)
		}
	}
	return sm, nil
}

func newSimilarityMatrix(metric string, users []int) *SimilarityMatrix {
	n := len(users)
	ids := make([]int, n)
	copy(ids, users)
	index := make(map[int]int, n)
	for i, uid := range ids {
		index[uid] = i
	}
	sm := &SimilarityMatrix{metric: metric, users: ids, index: index}
	if n > 0 {
		sm.values = mat.NewSymDense(n, nil)
	}
	return sm
}

// Similarity returns sim(a, b). Unknown users and a == b yield 0.
func (m *SimilarityMatrix) Similarity(a, b int) float64 {
	if a == b {
		return 0
	}
	i, ok := m.index[a]
	if !ok {
		return 0
	}
	j, ok := m.index[b]
	if !ok {
		return 0
	}
	return m.values.At(i, j)
}

// Metric returns the similarity metric name.
func (m *SimilarityMatrix) Metric() string {
	return m.metric
}

// Users returns the user ids in row order. The slice must not be modified.
func (m *SimilarityMatrix) Users() []int {
	return m.users
}

// Values returns a dense row-major copy of the matrix with a zero diagonal.
func (m *SimilarityMatrix) Values() [][]float64 {
	n := len(m.users)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			if i != j {
				out[i][j] = m.values.At(i, j)
			}
		}
	}
	return out
}

// coRatedVectors returns aligned score vectors over the places rated by both users.
func coRatedVectors(a, b map[int]float64) (x, y []float64) {
	for item, ra := range a {
		if rb, ok := b[item]; ok {
			x = append(x, ra)
			y = append(y, rb)
		}
	}
	return x, y
}

func coRatedCosine(a, b map[int]float64) float64 {
	x, y := coRatedVectors(a, b)
	if len(x) == 0 {
		return 0
	}
	nx, ny := floats.Norm(x, 2), floats.Norm(y, 2)
	if nx == 0 || ny == 0 {
		return 0
	}
	return clampUnit(floats.Dot(x, y) / (nx * ny))
}

func coRatedPearson(a, b map[int]float64) float64 {
	x, y := coRatedVectors(a, b)
	if len(x) < 2 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		// Zero variance in either vector.
		return 0
	}
	return clampUnit(r)
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
