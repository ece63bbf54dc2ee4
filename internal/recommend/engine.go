// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/wisata/internal/cache"
)

// Note: apart from the cache data structure this package has no dependencies
// on other internal packages. DataProvider and ModelStore let the database
// and storage layers plug in without circular imports.

// Snapshot is one published, immutable model.
//
// Readers load the current snapshot once per request and use it without
// locks. Training builds a new snapshot and swaps it in atomically.
type Snapshot struct {
	Version     int
	TrainedAt   time.Time
	Strategy    string
	Solver      string
	Restored    bool
	Store       *RatingStore
	Places      map[int]Place
	Predictor   Predictor
	Recommender *Recommender

	// Report is set for latent-factor models trained in this process.
	Report *TrainReport

	// ReconstructionMSE is the latent model's error over observed ratings.
	ReconstructionMSE float64
}

// PersistedModel is a model read back from a ModelStore.
// Exactly one of Factors and Similarity is set.
type PersistedModel struct {
	Version   int
	Strategy  string
	Solver    string
	TrainedAt time.Time

	// RatingFingerprint is RatingStore.Fingerprint of the training data.
	RatingFingerprint string

	Factors    *Factors
	Similarity *SimilarityMatrix
}

// ModelStore persists trained models so a restart can skip retraining.
type ModelStore interface {
	// SaveModel persists the model of snap and returns its assigned version,
	// which is never lower than snap.Version.
	SaveModel(ctx context.Context, snap *Snapshot) (int, error)

	// LoadModel returns the latest persisted model for strategy.
	LoadModel(ctx context.Context, strategy string) (*PersistedModel, error)
}

// Engine owns the published model and serves recommendations from it.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	current atomic.Pointer[Snapshot]

	// trainMu serializes Train and Restore.
	trainMu sync.Mutex

	statusMu    sync.RWMutex
	trainStatus TrainingStatus

	cache *cache.LRU[string, *Response]

	dataProvider DataProvider
	modelStore   ModelStore
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
		trainStatus: TrainingStatus{
			Strategy: cfg.Strategy,
			Solver:   cfg.SolverName(),
		},
	}
	if cfg.Cache.Enabled {
		e.cache = cache.NewLRU[string, *Response](cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}
	return e, nil
}

// SetDataProvider sets the source of ratings and places for training.
func (e *Engine) SetDataProvider(dp DataProvider) {
	e.dataProvider = dp
}

// SetModelStore sets the optional persistence layer for trained models.
func (e *Engine) SetModelStore(ms ModelStore) {
	e.modelStore = ms
}

// Config returns the engine configuration. It must not be modified.
func (e *Engine) Config() *Config {
	return e.config
}

// Snapshot returns the currently published model, or nil before the first
// successful Train or Restore.
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}

// IsReady reports whether a model has been published.
func (e *Engine) IsReady() bool {
	return e.current.Load() != nil
}

func (e *Engine) snapshot() (*Snapshot, error) {
	snap := e.current.Load()
	if snap == nil {
		return nil, ErrNotTrained
	}
	return snap, nil
}

// Recommend returns the top places for a user from the published model.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}

	req = e.prepareRequest(req)
	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Int("user_id", req.UserID).
		Int("top_n", req.TopN).
		Logger()
	logger.Debug().Msg("processing recommendation request")

	key := cacheKey(snap.Version, req)
	if resp := e.cachedResponse(key, req, start); resp != nil {
		logger.Debug().Msg("cache hit")
		return resp, nil
	}

	candidates, err := snap.Recommender.Candidates(req.UserID)
	if err != nil {
		return nil, err
	}

	recs, err := snap.Recommender.Recommend(ctx, req.UserID, req.TopN)
	if err != nil {
		return nil, fmt.Errorf("recommend for user %d: %w", req.UserID, err)
	}

	items := make([]ScoredPlace, len(recs))
	for i, r := range recs {
		items[i] = ScoredPlace{
			Place: snap.place(r.ItemID),
			Score: r.Score,
			Rank:  i + 1,
		}
	}

	resp := &Response{
		Items:      items,
		AllRated:   len(candidates) == 0,
		Candidates: len(candidates),
		Metadata: ResponseMetadata{
			RequestID:    req.RequestID,
			UserID:       req.UserID,
			TopN:         req.TopN,
			Strategy:     snap.Strategy,
			ModelVersion: snap.Version,
			TrainedAt:    snap.TrainedAt,
			LatencyMS:    time.Since(start).Milliseconds(),
			Timestamp:    time.Now(),
		},
	}

	if e.cache != nil {
		e.cache.Add(key, resp)
	}

	logger.Debug().
		Int("candidates", len(candidates)).
		Int("returned", len(items)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return copyResponse(resp), nil
}

// prepareRequest applies defaults and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.TopN <= 0 {
		req.TopN = e.config.Limits.DefaultTopN
	}
	if req.TopN > e.config.Limits.MaxTopN {
		req.TopN = e.config.Limits.MaxTopN
	}
	return req
}

// cachedResponse returns a copy of a cached response stamped for this request.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) cachedResponse(key string, req Request, start time.Time) *Response {
	if e.cache == nil {
		return nil
	}
	cached, ok := e.cache.Get(key)
	if !ok {
		return nil
	}
	resp := copyResponse(cached)
	resp.Metadata.RequestID = req.RequestID
	resp.Metadata.CacheHit = true
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	resp.Metadata.Timestamp = time.Now()
	return resp
}

// cacheKey includes the model version so a new snapshot never serves
// responses computed from the previous one.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func cacheKey(version int, req Request) string {
	return fmt.Sprintf("rec:%d:%d:%d", version, req.UserID, req.TopN)
}

func copyResponse(resp *Response) *Response {
	out := *resp
	out.Items = make([]ScoredPlace, len(resp.Items))
	copy(out.Items, resp.Items)
	return &out
}

// Predict returns the predicted score of one place for one user.
// A missing prediction is reported with Available=false, not an error.
func (e *Engine) Predict(ctx context.Context, user, item int) (*Prediction, error) {
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	if err := snap.Store.RequireUser(user); err != nil {
		return nil, err
	}
	if err := snap.Store.RequireItem(item); err != nil {
		return nil, err
	}

	score, ok, err := snap.Predictor.Predict(ctx, user, item)
	if err != nil {
		return nil, fmt.Errorf("predict user %d place %d: %w", user, item, err)
	}
	_, rated := snap.Store.Get(user, item)

	return &Prediction{
		UserID:       user,
		ItemID:       item,
		Score:        score,
		Available:    ok,
		Rated:        rated,
		Strategy:     snap.Strategy,
		ModelVersion: snap.Version,
	}, nil
}

// Users returns the ids of all users in the published model.
func (e *Engine) Users() ([]int, error) {
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	users := snap.Store.Users()
	out := make([]int, len(users))
	copy(out, users)
	return out, nil
}

// Place returns catalog metadata for a place.
func (e *Engine) Place(id int) (Place, error) {
	snap, err := e.snapshot()
	if err != nil {
		return Place{}, err
	}
	p, ok := snap.Places[id]
	if !ok {
		return Place{}, fmt.Errorf("%w: place %d", ErrUnknownEntity, id)
	}
	return p, nil
}

// place returns catalog metadata, falling back to the bare id for places
// that were rated but are missing from the catalog.
func (s *Snapshot) place(id int) Place {
	if p, ok := s.Places[id]; ok {
		return p
	}
	return Place{ID: id}
}

// Train loads the current data, builds a new model with the configured
// strategy and publishes it. The previous model keeps serving until the
// new one is ready and stays in place if training fails.
// Returns ErrTrainingInProgress if another Train or Restore is running.
func (e *Engine) Train(ctx context.Context) error {
	if !e.trainMu.TryLock() {
		return ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()

	if e.dataProvider == nil {
		return fmt.Errorf("data provider not set")
	}

	start := time.Now()
	e.beginTraining()
	e.logger.Info().
		Str("strategy", e.config.Strategy).
		Str("solver", e.config.SolverName()).
		Msg("starting model training")

	trainCtx, cancel := context.WithTimeout(ctx, e.config.Training.Timeout)
	defer cancel()

	snap, err := e.buildSnapshot(trainCtx)
	if err != nil {
		e.finishTraining(start, err)
		e.logger.Error().Err(err).Msg("model training failed")
		return err
	}

	snap.Version = e.nextVersion()
	if e.modelStore != nil {
		version, saveErr := e.modelStore.SaveModel(trainCtx, snap)
		if saveErr != nil {
			e.logger.Warn().Err(saveErr).Msg("failed to persist trained model, serving it unpersisted")
		} else {
			snap.Version = version
		}
	}

	e.publish(snap)
	e.finishTraining(start, nil)

	e.logger.Info().
		Int("version", snap.Version).
		Int("users", len(snap.Store.Users())).
		Int("places", len(snap.Store.Items())).
		Int("ratings", snap.Store.Len()).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("model training complete")

	return nil
}

// buildSnapshot loads data and trains the configured predictor.
func (e *Engine) buildSnapshot(ctx context.Context) (*Snapshot, error) {
	store, places, err := e.loadData(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		TrainedAt: time.Now(),
		Strategy:  e.config.Strategy,
		Solver:    e.config.SolverName(),
		Store:     store,
		Places:    places,
	}

	switch e.config.Strategy {
	case StrategyNeighborhood:
		sim, err := ComputeSimilarity(ctx, store, e.config.Neighborhood.Metric, e.config.Neighborhood.NumWorkers)
		if err != nil {
			return nil, err
		}
		snap.Predictor = NewNeighborhoodPredictor(store, sim)

	case StrategyLatent:
		var (
			factors *Factors
			report  TrainReport
		)
		switch e.config.Latent.Solver {
		case SolverSVD:
			factors, report, err = TrainSVD(ctx, store, e.config.Latent)
		default:
			rng := rand.New(rand.NewSource(e.config.Seed)) //nolint:gosec // math/rand is fine for factor initialization
			factors, report, err = TrainSGD(ctx, store, e.config.Latent, rng)
		}
		if err != nil {
			return nil, fmt.Errorf("train %s factors: %w", e.config.Latent.Solver, err)
		}
		e.logger.Info().
			Str("solver", report.Solver).
			Int("factors", report.Factors).
			Int("steps", report.Steps).
			Float64("initial_mse", report.InitialMSE).
			Float64("final_mse", report.FinalMSE).
			Dur("duration", report.Duration).
			Msg("latent factors trained")
		snap.Predictor = NewLatentPredictor(factors, report.Solver)
		snap.Report = &report
		snap.ReconstructionMSE = report.FinalMSE
	}

	snap.Recommender = NewRecommender(store, snap.Predictor)
	return snap, nil
}

// loadData fetches ratings and places and builds the rating store.
func (e *Engine) loadData(ctx context.Context) (*RatingStore, map[int]Place, error) {
	ratings, err := e.dataProvider.GetRatings(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("get ratings: %w", err)
	}
	if len(ratings) < e.config.Training.MinRatings {
		return nil, nil, fmt.Errorf("insufficient ratings: %d < %d", len(ratings), e.config.Training.MinRatings)
	}

	store, err := NewRatingStore(ratings, e.config.Scale)
	if err != nil {
		return nil, nil, err
	}

	placeList, err := e.dataProvider.GetPlaces(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("get places: %w", err)
	}
	places := make(map[int]Place, len(placeList))
	for _, p := range placeList {
		places[p.ID] = p
	}

	missing := 0
	for _, iid := range store.Items() {
		if _, ok := places[iid]; !ok {
			missing++
		}
	}
	if missing > 0 {
		e.logger.Warn().Int("missing", missing).Msg("rated places missing from the place catalog")
	}

	return store, places, nil
}

// Restore publishes the latest persisted model without retraining.
// It returns ErrStaleModel unless the persisted model was trained on the
// currently loaded ratings with the configured metric or solver.
func (e *Engine) Restore(ctx context.Context) error {
	if !e.trainMu.TryLock() {
		return ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()

	if e.dataProvider == nil {
		return fmt.Errorf("data provider not set")
	}
	if e.modelStore == nil {
		return fmt.Errorf("model store not set")
	}

	store, places, err := e.loadData(ctx)
	if err != nil {
		return err
	}

	pm, err := e.modelStore.LoadModel(ctx, e.config.Strategy)
	if err != nil {
		return fmt.Errorf("load persisted model: %w", err)
	}
	if pm.Strategy != e.config.Strategy {
		return fmt.Errorf("%w: strategy %q, configured %q", ErrStaleModel, pm.Strategy, e.config.Strategy)
	}
	if pm.RatingFingerprint != store.Fingerprint() {
		return fmt.Errorf("%w: model v%d was trained on different ratings", ErrStaleModel, pm.Version)
	}

	snap := &Snapshot{
		Version:   pm.Version,
		TrainedAt: pm.TrainedAt,
		Strategy:  pm.Strategy,
		Solver:    pm.Solver,
		Restored:  true,
		Store:     store,
		Places:    places,
	}

	switch {
	case pm.Factors != nil:
		if pm.Solver != e.config.Latent.Solver {
			return fmt.Errorf("%w: solver %q, configured %q", ErrStaleModel, pm.Solver, e.config.Latent.Solver)
		}
		if !equalIDs(pm.Factors.UserIDs(), store.Users()) || !equalIDs(pm.Factors.ItemIDs(), store.Items()) {
			return fmt.Errorf("%w: factor id lists differ from current ratings", ErrStaleModel)
		}
		snap.Predictor = NewLatentPredictor(pm.Factors, pm.Solver)
		snap.ReconstructionMSE = ReconstructionMSE(store, pm.Factors)
	case pm.Similarity != nil:
		if m := pm.Similarity.Metric(); m != e.config.Neighborhood.Metric {
			return fmt.Errorf("%w: metric %q, configured %q", ErrStaleModel, m, e.config.Neighborhood.Metric)
		}
		if !equalIDs(pm.Similarity.Users(), store.Users()) {
			return fmt.Errorf("%w: similarity users differ from current ratings", ErrStaleModel)
		}
		snap.Predictor = NewNeighborhoodPredictor(store, pm.Similarity)
	default:
		return fmt.Errorf("persisted model version %d has no payload", pm.Version)
	}
	snap.Recommender = NewRecommender(store, snap.Predictor)

	e.publish(snap)

	e.statusMu.Lock()
	e.trainStatus.LastError = ""
	e.statusMu.Unlock()

	e.logger.Info().
		Int("version", snap.Version).
		Time("trained_at", snap.TrainedAt).
		Msg("restored persisted model")

	return nil
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (e *Engine) nextVersion() int {
	if snap := e.current.Load(); snap != nil {
		return snap.Version + 1
	}
	return 1
}

// publish swaps in snap and drops cached responses of older versions.
func (e *Engine) publish(snap *Snapshot) {
	e.current.Store(snap)
	if e.cache != nil {
		e.cache.Clear()
	}
}

func (e *Engine) beginTraining() {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.trainStatus.IsTraining = true
	e.trainStatus.LastError = ""
}

func (e *Engine) finishTraining(start time.Time, err error) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.trainStatus.IsTraining = false
	e.trainStatus.LastTrainingDurationMS = time.Since(start).Milliseconds()
	if err != nil {
		e.trainStatus.LastError = err.Error()
	}
}

// Status returns the current training status.
func (e *Engine) Status() TrainingStatus {
	e.statusMu.RLock()
	status := e.trainStatus
	e.statusMu.RUnlock()

	if snap := e.current.Load(); snap != nil {
		status.ModelVersion = snap.Version
		status.LastTrainedAt = snap.TrainedAt
		status.Restored = snap.Restored
		status.RatingCount = snap.Store.Len()
		status.UserCount = len(snap.Store.Users())
		status.ItemCount = len(snap.Store.Items())
		status.Solver = snap.Solver
		status.ReconstructionMSE = snap.ReconstructionMSE
	}
	return status
}
