// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// mockDataProvider implements DataProvider for testing.
type mockDataProvider struct {
	mu         sync.Mutex
	ratings    []Rating
	places     []Place
	ratingsErr error
	placesErr  error

	// block, when set, holds GetRatings until closed.
	block   chan struct{}
	entered chan struct{}
}

func (m *mockDataProvider) GetRatings(ctx context.Context) ([]Rating, error) {
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ratingsErr != nil {
		return nil, m.ratingsErr
	}
	return m.ratings, nil
}

func (m *mockDataProvider) GetPlaces(_ context.Context) ([]Place, error) {
	if m.placesErr != nil {
		return nil, m.placesErr
	}
	return m.places, nil
}

func (m *mockDataProvider) setRatings(r []Rating) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratings = r
}

// memoryModelStore implements ModelStore in memory.
type memoryModelStore struct {
	mu      sync.Mutex
	models  []*PersistedModel
	saveErr error
}

func (s *memoryModelStore) setSaveErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

func (s *memoryModelStore) SaveModel(_ context.Context, snap *Snapshot) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return 0, s.saveErr
	}

	version := max(snap.Version, 1)
	if n := len(s.models); n > 0 {
		version = max(version, s.models[n-1].Version+1)
	}
	pm := &PersistedModel{
		Version:           version,
		Strategy:          snap.Strategy,
		Solver:            snap.Solver,
		TrainedAt:         snap.TrainedAt,
		RatingFingerprint: snap.Store.Fingerprint(),
	}
	switch p := snap.Predictor.(type) {
	case *LatentPredictor:
		pm.Factors = p.Factors()
	case *NeighborhoodPredictor:
		pm.Similarity = p.Similarity()
	}
	s.models = append(s.models, pm)
	return pm.Version, nil
}

func (s *memoryModelStore) LoadModel(_ context.Context, strategy string) (*PersistedModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.models) - 1; i >= 0; i-- {
		if s.models[i].Strategy == strategy {
			return s.models[i], nil
		}
	}
	return nil, errors.New("no persisted model")
}

func newTestEngine(t *testing.T, cfg *Config, dp DataProvider) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	e.SetDataProvider(dp)
	return e
}

func scenarioProvider() *mockDataProvider {
	return &mockDataProvider{ratings: scenarioRatings(), places: scenarioPlaces()}
}

func TestNewEngine(t *testing.T) {
	e, err := NewEngine(nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine(nil) error = %v", err)
	}
	if e.Config().Strategy != StrategyNeighborhood {
		t.Errorf("default strategy = %q", e.Config().Strategy)
	}

	bad := DefaultConfig()
	bad.Strategy = "unknown"
	if _, err := NewEngine(bad, zerolog.Nop()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewEngine(bad) error = %v, want ErrInvalidConfig", err)
	}
}

func TestEngine_NotTrained(t *testing.T) {
	e := newTestEngine(t, nil, scenarioProvider())

	if e.IsReady() {
		t.Error("IsReady() = true before training")
	}
	if _, err := e.Recommend(context.Background(), Request{UserID: 1}); !errors.Is(err, ErrNotTrained) {
		t.Errorf("Recommend() error = %v, want ErrNotTrained", err)
	}
	if _, err := e.Predict(context.Background(), 1, 3); !errors.Is(err, ErrNotTrained) {
		t.Errorf("Predict() error = %v, want ErrNotTrained", err)
	}
	if _, err := e.Users(); !errors.Is(err, ErrNotTrained) {
		t.Errorf("Users() error = %v, want ErrNotTrained", err)
	}
	if _, err := e.Place(1); !errors.Is(err, ErrNotTrained) {
		t.Errorf("Place() error = %v, want ErrNotTrained", err)
	}
}

func TestEngine_TrainAndRecommend(t *testing.T) {
	e := newTestEngine(t, nil, scenarioProvider())

	if err := e.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	resp, err := e.Recommend(context.Background(), Request{UserID: 1, TopN: 2})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(resp.Items))
	}
	item := resp.Items[0]
	if item.Place.ID != 3 || item.Place.Name != "Gereja Ayam" || item.Score != 5 || item.Rank != 1 {
		t.Errorf("item = %+v, want Gereja Ayam with score 5", item)
	}
	if resp.AllRated {
		t.Error("AllRated = true, want false")
	}
	if resp.Metadata.ModelVersion != 1 || resp.Metadata.Strategy != StrategyNeighborhood {
		t.Errorf("metadata = %+v", resp.Metadata)
	}
	if resp.Metadata.RequestID == "" {
		t.Error("RequestID not generated")
	}
}

func TestEngine_TopNDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.DefaultTopN = 2
	cfg.Limits.MaxTopN = 4
	ratings := append(randomRatings(9, 10, 12, 0.4), Rating{UserID: 11, ItemID: 1, Score: 3})
	e := newTestEngine(t, cfg, &mockDataProvider{ratings: ratings})
	if err := e.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	tests := []struct {
		name     string
		topN     int
		wantTopN int
	}{
		{"default when unset", 0, 2},
		{"default when negative", -5, 2},
		{"passthrough", 3, 3},
		{"clamped to max", 100, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := e.Recommend(context.Background(), Request{UserID: 11, TopN: tt.topN})
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if resp.Metadata.TopN != tt.wantTopN {
				t.Errorf("TopN = %d, want %d", resp.Metadata.TopN, tt.wantTopN)
			}
			if len(resp.Items) > tt.wantTopN {
				t.Errorf("got %d items, limit %d", len(resp.Items), tt.wantTopN)
			}
		})
	}
}

func TestEngine_AllRatedVersusNoPrediction(t *testing.T) {
	ratings := append(scenarioRatings(),
		Rating{UserID: 4, ItemID: 1, Score: 3},
		Rating{UserID: 4, ItemID: 2, Score: 4},
		Rating{UserID: 4, ItemID: 3, Score: 2},
	)
	cfg := DefaultConfig()
	cfg.Neighborhood.Metric = MetricPearson
	e := newTestEngine(t, cfg, &mockDataProvider{ratings: ratings, places: scenarioPlaces()})
	if err := e.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	all, err := e.Recommend(context.Background(), Request{UserID: 4})
	if err != nil {
		t.Fatalf("Recommend(4) error = %v", err)
	}
	if !all.AllRated || len(all.Items) != 0 || all.Items == nil {
		t.Errorf("user 4: AllRated=%v items=%#v, want all rated with empty list", all.AllRated, all.Items)
	}

	// U3 rated a single place, so Pearson gives no positive neighbors.
	none, err := e.Recommend(context.Background(), Request{UserID: 3})
	if err != nil {
		t.Fatalf("Recommend(3) error = %v", err)
	}
	if none.AllRated || len(none.Items) != 0 || none.Candidates == 0 {
		t.Errorf("user 3: AllRated=%v items=%d candidates=%d, want unpredictable candidates",
			none.AllRated, len(none.Items), none.Candidates)
	}
}

func TestEngine_UnknownUser(t *testing.T) {
	e := newTestEngine(t, nil, scenarioProvider())
	if err := e.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	if _, err := e.Recommend(context.Background(), Request{UserID: 99}); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Recommend() error = %v, want ErrUnknownEntity", err)
	}
	if _, err := e.Predict(context.Background(), 1, 99); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Predict() error = %v, want ErrUnknownEntity", err)
	}
	if _, err := e.Place(99); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Place() error = %v, want ErrUnknownEntity", err)
	}
}

func TestEngine_Predict(t *testing.T) {
	e := newTestEngine(t, nil, scenarioProvider())
	if err := e.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	tests := []struct {
		name          string
		user, item    int
		wantAvailable bool
		wantRated     bool
		wantScore     float64
	}{
		{"unrated with neighbors", 1, 3, true, false, 5},
		{"already rated", 1, 1, true, true, 4},
		{"no positive neighbors", 3, 3, false, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := e.Predict(context.Background(), tt.user, tt.item)
			if err != nil {
				t.Fatalf("Predict() error = %v", err)
			}
			if p.Available != tt.wantAvailable || p.Rated != tt.wantRated {
				t.Errorf("Predict() = %+v", p)
			}
			if p.Available && !almostEqual(p.Score, tt.wantScore, 1e-9) {
				t.Errorf("Score = %v, want %v", p.Score, tt.wantScore)
			}
		})
	}
}

func TestEngine_CacheHitAndInvalidation(t *testing.T) {
	dp := scenarioProvider()
	e := newTestEngine(t, nil, dp)
	if err := e.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	first, err := e.Recommend(context.Background(), Request{UserID: 1})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if first.Metadata.CacheHit {
		t.Error("first response marked as cache hit")
	}

	second, err := e.Recommend(context.Background(), Request{UserID: 1})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !second.Metadata.CacheHit {
		t.Error("second response not served from cache")
	}

	// Mutating a returned response must not leak into the cache.
	second.Items[0].Score = -1

	// U1 now likes U3's place; a retrain must not serve the old response.
	dp.setRatings(append(scenarioRatings(), Rating{UserID: 3, ItemID: 4, Score: 4}))
	if err := e.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	third, err := e.Recommend(context.Background(), Request{UserID: 1})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if third.Metadata.CacheHit || third.Metadata.ModelVersion != 2 {
		t.Errorf("after retrain: cache_hit=%v version=%d", third.Metadata.CacheHit, third.Metadata.ModelVersion)
	}
	if len(third.Items) != 2 {
		t.Errorf("after retrain: got %d items, want 2", len(third.Items))
	}
	for _, it := range third.Items {
		if it.Score < 0 {
			t.Errorf("cached response was mutated: %+v", it)
		}
	}
}

func TestEngine_FailedTrainKeepsPreviousSnapshot(t *testing.T) {
	dp := scenarioProvider()
	e := newTestEngine(t, nil, dp)
	if err := e.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	before := e.Snapshot()

	dp.setRatings([]Rating{{UserID: 1, ItemID: 1, Score: 9}})
	err := e.Train(context.Background())
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("Train() error = %v, want ErrMalformedInput", err)
	}
	if e.Snapshot() != before {
		t.Error("failed training replaced the published snapshot")
	}
	if status := e.Status(); status.LastError == "" || status.IsTraining {
		t.Errorf("Status() = %+v, want last error recorded", status)
	}
}

func TestEngine_NumericInstabilityNotPublished(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strategy = StrategyLatent
	cfg.Latent.LearningRate = 10
	cfg.Latent.Steps = 100
	e := newTestEngine(t, cfg, scenarioProvider())

	if err := e.Train(context.Background()); !errors.Is(err, ErrNumericInstability) {
		t.Fatalf("Train() error = %v, want ErrNumericInstability", err)
	}
	if e.IsReady() {
		t.Error("diverged model was published")
	}
}

func TestEngine_LatentStrategies(t *testing.T) {
	for _, solver := range []string{SolverSGD, SolverSVD} {
		t.Run(solver, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Strategy = StrategyLatent
			cfg.Latent.Solver = solver
			cfg.Latent.Factors = 2
			cfg.Latent.Steps = 300
			cfg.Latent.LearningRate = 0.01
			e := newTestEngine(t, cfg, scenarioProvider())

			if err := e.Train(context.Background()); err != nil {
				t.Fatalf("Train() error = %v", err)
			}

			resp, err := e.Recommend(context.Background(), Request{UserID: 3, TopN: 5})
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			// Latent predictions always exist, so both unrated places come back.
			if len(resp.Items) != 2 {
				t.Errorf("got %d items, want 2", len(resp.Items))
			}
			status := e.Status()
			if status.Solver != solver {
				t.Errorf("Status().Solver = %q, want %q", status.Solver, solver)
			}
			if status.ReconstructionMSE < 0 {
				t.Errorf("Status().ReconstructionMSE = %v", status.ReconstructionMSE)
			}
		})
	}
}

func TestEngine_TrainInProgress(t *testing.T) {
	dp := scenarioProvider()
	dp.block = make(chan struct{})
	dp.entered = make(chan struct{}, 1)
	e := newTestEngine(t, nil, dp)

	done := make(chan error, 1)
	go func() { done <- e.Train(context.Background()) }()
	<-dp.entered

	if err := e.Train(context.Background()); !errors.Is(err, ErrTrainingInProgress) {
		t.Errorf("concurrent Train() error = %v, want ErrTrainingInProgress", err)
	}
	if !e.Status().IsTraining {
		t.Error("Status().IsTraining = false during training")
	}

	close(dp.block)
	if err := <-done; err != nil {
		t.Fatalf("Train() error = %v", err)
	}
}

func TestEngine_ConcurrentReadsDuringRetrain(t *testing.T) {
	e := newTestEngine(t, nil, scenarioProvider())
	if err := e.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(user int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if _, err := e.Recommend(context.Background(), Request{UserID: user}); err != nil {
					t.Errorf("Recommend() error = %v", err)
					return
				}
			}
		}(1 + g%3)
	}
	for i := 0; i < 5; i++ {
		if err := e.Train(context.Background()); err != nil && !errors.Is(err, ErrTrainingInProgress) {
			t.Errorf("Train() error = %v", err)
		}
	}
	wg.Wait()
}

func TestEngine_PersistAndRestore(t *testing.T) {
	for _, strategy := range []string{StrategyNeighborhood, StrategyLatent} {
		t.Run(strategy, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Strategy = strategy
			cfg.Latent.Steps = 100
			ms := &memoryModelStore{}

			trained := newTestEngine(t, cfg, scenarioProvider())
			trained.SetModelStore(ms)
			if err := trained.Train(context.Background()); err != nil {
				t.Fatalf("Train() error = %v", err)
			}
			want, err := trained.Predict(context.Background(), 1, 3)
			if err != nil {
				t.Fatalf("Predict() error = %v", err)
			}

			restored := newTestEngine(t, cfg, scenarioProvider())
			restored.SetModelStore(ms)
			if err := restored.Restore(context.Background()); err != nil {
				t.Fatalf("Restore() error = %v", err)
			}
			got, err := restored.Predict(context.Background(), 1, 3)
			if err != nil {
				t.Fatalf("Predict() after restore error = %v", err)
			}
			if got.Score != want.Score || got.ModelVersion != want.ModelVersion {
				t.Errorf("restored prediction %+v, want %+v", got, want)
			}
			if !restored.Status().Restored {
				t.Error("Status().Restored = false")
			}
		})
	}
}

func TestEngine_RestoreRejectsMismatchedData(t *testing.T) {
	rescored := scenarioRatings()
	rescored[4].Score = 4

	neighborhood := func(metric string) *Config {
		cfg := DefaultConfig()
		cfg.Strategy = StrategyNeighborhood
		cfg.Neighborhood.Metric = metric
		return cfg
	}
	latent := func(solver string) *Config {
		cfg := DefaultConfig()
		cfg.Strategy = StrategyLatent
		cfg.Latent.Solver = solver
		cfg.Latent.Steps = 50
		return cfg
	}

	tests := []struct {
		name         string
		trainCfg     *Config
		restoreCfg   *Config
		restoreRates []Rating
	}{
		{
			name:         "different user set",
			trainCfg:     neighborhood(MetricCosine),
			restoreCfg:   neighborhood(MetricCosine),
			restoreRates: append(scenarioRatings(), Rating{UserID: 7, ItemID: 1, Score: 3}),
		},
		{
			name:         "changed rating with same ids",
			trainCfg:     neighborhood(MetricCosine),
			restoreCfg:   neighborhood(MetricCosine),
			restoreRates: rescored,
		},
		{
			name:         "changed rating with same ids latent",
			trainCfg:     latent(SolverSGD),
			restoreCfg:   latent(SolverSGD),
			restoreRates: rescored,
		},
		{
			name:         "metric changed",
			trainCfg:     neighborhood(MetricCosine),
			restoreCfg:   neighborhood(MetricPearson),
			restoreRates: scenarioRatings(),
		},
		{
			name:         "solver changed",
			trainCfg:     latent(SolverSGD),
			restoreCfg:   latent(SolverSVD),
			restoreRates: scenarioRatings(),
		},
		{
			name:         "strategy changed",
			trainCfg:     neighborhood(MetricCosine),
			restoreCfg:   latent(SolverSGD),
			restoreRates: scenarioRatings(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := &memoryModelStore{}
			trained := newTestEngine(t, tt.trainCfg, scenarioProvider())
			trained.SetModelStore(ms)
			if err := trained.Train(context.Background()); err != nil {
				t.Fatalf("Train() error = %v", err)
			}

			restored := newTestEngine(t, tt.restoreCfg, &mockDataProvider{ratings: tt.restoreRates, places: scenarioPlaces()})
			restored.SetModelStore(ms)
			if err := restored.Restore(context.Background()); err == nil {
				t.Fatal("Restore() succeeded with a stale model")
			}
			if restored.IsReady() {
				t.Error("stale model was published")
			}

			// Training replaces the rejected model with one built from the
			// current configuration.
			if err := restored.Train(context.Background()); err != nil {
				t.Fatalf("Train() after rejected restore error = %v", err)
			}
			snap := restored.Snapshot()
			if snap.Restored || snap.Solver != tt.restoreCfg.SolverName() {
				t.Errorf("snapshot restored=%v solver=%q, want fresh %q", snap.Restored, snap.Solver, tt.restoreCfg.SolverName())
			}
			if np, ok := snap.Predictor.(*NeighborhoodPredictor); ok {
				if got := np.Similarity().Metric(); got != tt.restoreCfg.Neighborhood.Metric {
					t.Errorf("metric = %q, want %q", got, tt.restoreCfg.Neighborhood.Metric)
				}
			}
		})
	}
}

func TestEngine_RestoreStaleModelSentinel(t *testing.T) {
	ms := &memoryModelStore{}
	trained := newTestEngine(t, nil, scenarioProvider())
	trained.SetModelStore(ms)
	if err := trained.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	cfg := DefaultConfig()
	cfg.Neighborhood.Metric = MetricPearson
	restored := newTestEngine(t, cfg, scenarioProvider())
	restored.SetModelStore(ms)
	if err := restored.Restore(context.Background()); !errors.Is(err, ErrStaleModel) {
		t.Errorf("Restore() error = %v, want ErrStaleModel", err)
	}
}

func TestEngine_VersionMonotonicAfterSaveFailure(t *testing.T) {
	ms := &memoryModelStore{}
	e := newTestEngine(t, nil, scenarioProvider())
	e.SetModelStore(ms)

	var versions []int
	for _, saveErr := range []error{nil, errors.New("disk full"), nil} {
		ms.setSaveErr(saveErr)
		if err := e.Train(context.Background()); err != nil {
			t.Fatalf("Train() error = %v", err)
		}
		versions = append(versions, e.Snapshot().Version)
	}

	want := []int{1, 2, 3}
	for i := range want {
		if versions[i] != want[i] {
			t.Errorf("versions = %v, want %v", versions, want)
			break
		}
	}

	pm, err := ms.LoadModel(context.Background(), StrategyNeighborhood)
	if err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}
	if pm.Version != 3 {
		t.Errorf("persisted version = %d, want 3", pm.Version)
	}
}

func TestEngine_SaveFailureStillPublishes(t *testing.T) {
	e := newTestEngine(t, nil, scenarioProvider())
	e.SetModelStore(&memoryModelStore{saveErr: errors.New("disk full")})

	if err := e.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if !e.IsReady() {
		t.Error("model not published after save failure")
	}
}

func TestEngine_UsersAndPlaces(t *testing.T) {
	e := newTestEngine(t, nil, scenarioProvider())
	if err := e.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	users, err := e.Users()
	if err != nil || len(users) != 3 {
		t.Errorf("Users() = (%v, %v)", users, err)
	}
	p, err := e.Place(1)
	if err != nil || p.Name != "Candi Borobudur" {
		t.Errorf("Place(1) = (%+v, %v)", p, err)
	}
}

func TestEngine_DataProviderErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name string
		dp   DataProvider
	}{
		{"no provider", nil},
		{"ratings error", &mockDataProvider{ratingsErr: boom}},
		{"places error", &mockDataProvider{ratings: scenarioRatings(), placesErr: boom}},
		{"no ratings", &mockDataProvider{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEngine(nil, zerolog.Nop())
			if err != nil {
				t.Fatalf("NewEngine() error = %v", err)
			}
			if tt.dp != nil {
				e.SetDataProvider(tt.dp)
			}
			if err := e.Train(context.Background()); err == nil {
				t.Error("Train() error = nil")
			}
		})
	}
}
