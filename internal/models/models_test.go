// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/wisata/internal/recommend"
)

func TestPredictionResponse_NotEnoughData(t *testing.T) {
	resp := PredictionResponse{UserID: 3, PlaceID: 3, State: StateNotEnoughData}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"score":null`) {
		t.Errorf("expected null score, got %s", data)
	}
	if !strings.Contains(string(data), `"state":"not_enough_data"`) {
		t.Errorf("expected not_enough_data state, got %s", data)
	}
}

func TestPlaceResponse_FlattensPlace(t *testing.T) {
	resp := PlaceResponse{
		Place: recommend.Place{ID: 1, Name: "Candi Borobudur", City: "Magelang"},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded["name"] != "Candi Borobudur" {
		t.Errorf("name = %v, want top-level place name", decoded["name"])
	}
	if _, ok := decoded["stats"]; ok {
		t.Error("nil stats should be omitted")
	}
}

func TestAPIResponse_ErrorEnvelope(t *testing.T) {
	resp := APIResponse{
		Status:   "error",
		Metadata: Metadata{Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		Error:    &APIError{Code: "UNKNOWN_ENTITY", Message: "User not found"},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	tests := []string{
		`"status":"error"`,
		`"code":"UNKNOWN_ENTITY"`,
		`"timestamp":"2026-03-01T12:00:00Z"`,
	}
	for _, want := range tests {
		if !strings.Contains(string(data), want) {
			t.Errorf("missing %s in %s", want, data)
		}
	}
	if strings.Contains(string(data), "query_time_ms") {
		t.Errorf("zero query_time_ms should be omitted: %s", data)
	}
}
