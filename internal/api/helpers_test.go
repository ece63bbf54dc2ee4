// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/wisata/internal/models"
	"github.com/tomtom215/wisata/internal/recommend"
)

// scenarioRatings is a three user, three place matrix:
//
//	     P1  P2  P3
//	U1    5   3   -
//	U2    4   -   5
//	U3    -   2   -
func scenarioRatings() []recommend.Rating {
	return []recommend.Rating{
		{UserID: 1, ItemID: 1, Score: 5},
		{UserID: 1, ItemID: 2, Score: 3},
		{UserID: 2, ItemID: 1, Score: 4},
		{UserID: 2, ItemID: 3, Score: 5},
		{UserID: 3, ItemID: 2, Score: 2},
	}
}

func scenarioPlaces() []recommend.Place {
	return []recommend.Place{
		{ID: 1, Name: "Candi Borobudur", Category: "Budaya"},
		{ID: 2, Name: "Ketep Pass", Category: "Cagar Alam"},
		{ID: 3, Name: "Gereja Ayam", Category: "Budaya"},
	}
}

// staticData serves fixed ratings and places to the engine.
type staticData struct {
	ratings []recommend.Rating
	places  []recommend.Place
}

func (d *staticData) GetRatings(context.Context) ([]recommend.Rating, error) {
	return d.ratings, nil
}

func (d *staticData) GetPlaces(context.Context) ([]recommend.Place, error) {
	return d.places, nil
}

// fakeStats is a PlaceStatsProvider with canned answers.
type fakeStats struct {
	statsErr error
	pingErr  error
}

func (f *fakeStats) PlaceStats(_ context.Context, placeID int) (*models.PlaceStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return &models.PlaceStats{PlaceID: placeID, RatingCount: 2, AvgRating: 4.5, MinRating: 4, MaxRating: 5}, nil
}

func (f *fakeStats) Ping(context.Context) error {
	return f.pingErr
}

var errStatsUnavailable = errors.New("stats unavailable")

// newUntrainedEngine returns an engine with data but no published model.
func newUntrainedEngine(t *testing.T, ratings []recommend.Rating) *recommend.Engine {
	t.Helper()
	engine, err := recommend.NewEngine(recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	engine.SetDataProvider(&staticData{ratings: ratings, places: scenarioPlaces()})
	return engine
}

// newTrainedEngine returns a neighborhood engine trained on ratings.
func newTrainedEngine(t *testing.T, ratings []recommend.Rating) *recommend.Engine {
	t.Helper()
	engine := newUntrainedEngine(t, ratings)
	if err := engine.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	return engine
}

// newTestRouter builds the full router with rate limiting disabled.
func newTestRouter(engine RecommendationService, stats PlaceStatsProvider, pub RetrainPublisher) http.Handler {
	handler := NewHandler(engine, stats, pub, HandlerConfig{Version: "test"})
	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.RateLimitDisabled = true
	return NewRouter(handler, NewChiMiddleware(mwCfg), zerolog.Nop()).SetupChi()
}

// envelope mirrors models.APIResponse with raw data for typed decoding.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func doRequest(t *testing.T, h http.Handler, method, target string, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("response is not an API envelope: %v\n%s", err, rec.Body.String())
		}
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, target); err != nil {
		t.Fatalf("failed to decode data: %v\n%s", err, env.Data)
	}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, env envelope, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Errorf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	if env.Status != "error" {
		t.Errorf("envelope status = %q, want error", env.Status)
	}
	if env.Error == nil || env.Error.Code != code {
		t.Errorf("error = %+v, want code %s", env.Error, code)
	}
}
