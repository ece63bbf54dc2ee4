// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package recommend

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func toyLatentConfig() LatentConfig {
	return LatentConfig{
		Solver:         SolverSGD,
		Factors:        2,
		Steps:          200,
		LearningRate:   0.01,
		Regularization: 0.02,
	}
}

func TestTrainSGD_ReducesError(t *testing.T) {
	// 3x3 matrix with 5 observed entries.
	store := mustStore(t, scenarioRatings())

	f, report, err := TrainSGD(context.Background(), store, toyLatentConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("TrainSGD() error = %v", err)
	}

	if report.Steps != 200 {
		t.Errorf("Steps = %d, want 200", report.Steps)
	}
	if report.FinalMSE >= report.InitialMSE {
		t.Errorf("FinalMSE %v not below InitialMSE %v", report.FinalMSE, report.InitialMSE)
	}
	if got := ReconstructionMSE(store, f); !almostEqual(got, report.FinalMSE, 1e-12) {
		t.Errorf("ReconstructionMSE() = %v, want %v", got, report.FinalMSE)
	}
	if f.K() != 2 {
		t.Errorf("K() = %d, want 2", f.K())
	}
}

func TestTrainSGD_ReducesErrorWithinFiftySteps(t *testing.T) {
	store := mustStore(t, scenarioRatings())
	cfg := toyLatentConfig()
	cfg.Steps = 50

	_, report, err := TrainSGD(context.Background(), store, cfg, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("TrainSGD() error = %v", err)
	}
	if report.FinalMSE >= report.InitialMSE {
		t.Errorf("FinalMSE %v not below InitialMSE %v", report.FinalMSE, report.InitialMSE)
	}
}

func TestTrainSGD_Deterministic(t *testing.T) {
	store := mustStore(t, scenarioRatings())

	a, _, err := TrainSGD(context.Background(), store, toyLatentConfig(), rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("TrainSGD() error = %v", err)
	}
	b, _, err := TrainSGD(context.Background(), store, toyLatentConfig(), rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("TrainSGD() error = %v", err)
	}

	if !mat.Equal(a.UserMatrix(), b.UserMatrix()) || !mat.Equal(a.ItemMatrix(), b.ItemMatrix()) {
		t.Error("same seed produced different factors")
	}
}

func TestTrainSGD_NumericInstability(t *testing.T) {
	store := mustStore(t, scenarioRatings())
	cfg := toyLatentConfig()
	cfg.LearningRate = 10

	f, _, err := TrainSGD(context.Background(), store, cfg, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrNumericInstability) {
		t.Fatalf("TrainSGD() error = %v, want ErrNumericInstability", err)
	}
	if f != nil {
		t.Error("TrainSGD() returned factors on divergence")
	}
}

func TestTrainSGD_InvalidInput(t *testing.T) {
	empty := mustStore(t, nil)
	if _, _, err := TrainSGD(context.Background(), empty, toyLatentConfig(), rand.New(rand.NewSource(1))); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("empty store error = %v, want ErrMalformedInput", err)
	}

	cfg := toyLatentConfig()
	cfg.Factors = 0
	store := mustStore(t, scenarioRatings())
	if _, _, err := TrainSGD(context.Background(), store, cfg, rand.New(rand.NewSource(1))); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("zero factors error = %v, want ErrInvalidConfig", err)
	}
}

func TestTrainSGD_Cancelled(t *testing.T) {
	store := mustStore(t, scenarioRatings())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := TrainSGD(ctx, store, toyLatentConfig(), rand.New(rand.NewSource(1))); !errors.Is(err, context.Canceled) {
		t.Errorf("TrainSGD() error = %v, want context.Canceled", err)
	}
}

func TestTrainSVD_ReconstructsObserved(t *testing.T) {
	store := mustStore(t, scenarioRatings())
	cfg := toyLatentConfig()
	cfg.Solver = SolverSVD
	cfg.Factors = 10 // clamped to the matrix rank

	f, report, err := TrainSVD(context.Background(), store, cfg)
	if err != nil {
		t.Fatalf("TrainSVD() error = %v", err)
	}
	if f.K() != 3 {
		t.Errorf("K() = %d, want 3", f.K())
	}
	if report.FinalMSE > 1e-9 {
		t.Errorf("FinalMSE = %v, want ~0 at full rank", report.FinalMSE)
	}
}

func TestTrainSVD_ImputesUserMean(t *testing.T) {
	store := mustStore(t, scenarioRatings())
	cfg := LatentConfig{Solver: SolverSVD, Factors: 3}

	f, _, err := TrainSVD(context.Background(), store, cfg)
	if err != nil {
		t.Fatalf("TrainSVD() error = %v", err)
	}

	// At full rank the unobserved cell reproduces the imputed user mean.
	got, err := f.Score(1, 3)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if !almostEqual(got, 4, 1e-9) {
		t.Errorf("Score(1, 3) = %v, want 4 (mean of 5 and 3)", got)
	}
}

func TestLatentPredictor_Predict(t *testing.T) {
	user := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	item := mat.NewDense(2, 2, []float64{1, 0, 2, 2})
	f, err := NewFactors([]int{10, 20}, []int{7, 9}, user, item)
	if err != nil {
		t.Fatalf("NewFactors() error = %v", err)
	}
	p := NewLatentPredictor(f, SolverSGD)

	tests := []struct {
		name    string
		user    int
		item    int
		want    float64
		wantErr error
	}{
		{"dot product", 10, 7, 1, nil},
		{"unclipped above scale", 20, 9, 14, nil},
		{"unknown user", 30, 7, 0, ErrUnknownEntity},
		{"unknown place", 10, 8, 0, ErrUnknownEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := p.Predict(context.Background(), tt.user, tt.item)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Predict() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || !ok {
				t.Fatalf("Predict() = (%v, %v, %v)", got, ok, err)
			}
			if got != tt.want {
				t.Errorf("Predict(%d, %d) = %v, want %v", tt.user, tt.item, got, tt.want)
			}
		})
	}
}

func TestNewFactors_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		users []int
		items []int
		user  *mat.Dense
		item  *mat.Dense
	}{
		{"user rows", []int{1}, []int{1}, mat.NewDense(2, 2, nil), mat.NewDense(1, 2, nil)},
		{"item rows", []int{1}, []int{1, 2}, mat.NewDense(1, 2, nil), mat.NewDense(1, 2, nil)},
		{"dimension", []int{1}, []int{1}, mat.NewDense(1, 2, nil), mat.NewDense(1, 3, nil)},
		{"duplicate user", []int{1, 1}, []int{1}, mat.NewDense(2, 2, nil), mat.NewDense(1, 2, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFactors(tt.users, tt.items, tt.user, tt.item); !errors.Is(err, ErrMalformedInput) {
				t.Errorf("NewFactors() error = %v, want ErrMalformedInput", err)
			}
		})
	}
}
