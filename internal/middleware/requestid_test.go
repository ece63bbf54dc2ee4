// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/wisata/internal/logging"
)

func captureRequestID(captured *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID_GeneratesNewID(t *testing.T) {
	var capturedID string
	handler := RequestID(captureRequestID(&capturedID))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	responseID := rec.Header().Get(RequestIDHeader)
	if responseID == "" {
		t.Fatal("Expected X-Request-ID header in response")
	}
	if _, err := uuid.Parse(responseID); err != nil {
		t.Errorf("Response X-Request-ID is not a valid UUID: %v", err)
	}
	if capturedID != responseID {
		t.Errorf("Context ID (%s) doesn't match response header ID (%s)", capturedID, responseID)
	}
}

func TestRequestID_UpstreamHeader(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		wantKept bool
	}{
		{"simple id", "existing-request-id-12345", true},
		{"uuid", "550e8400-e29b-41d4-a716-446655440000", true},
		{"empty", "", false},
		{"contains space", "bad id", false},
		{"contains newline", "bad\nid", false},
		{"too long", strings.Repeat("a", maxRequestIDLength+1), false},
		{"max length", strings.Repeat("a", maxRequestIDLength), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var capturedID string
			handler := RequestID(captureRequestID(&capturedID))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(RequestIDHeader, tt.header)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			responseID := rec.Header().Get(RequestIDHeader)
			if tt.wantKept && responseID != tt.header {
				t.Errorf("X-Request-ID = %q, want %q", responseID, tt.header)
			}
			if !tt.wantKept {
				if responseID == tt.header {
					t.Errorf("X-Request-ID %q should have been replaced", tt.header)
				}
				if _, err := uuid.Parse(responseID); err != nil {
					t.Errorf("replacement ID is not a UUID: %v", err)
				}
			}
			if capturedID != responseID {
				t.Errorf("context ID %q != header ID %q", capturedID, responseID)
			}
		})
	}
}

func TestRequestID_VisibleToLogging(t *testing.T) {
	var fromLogging string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromLogging = logging.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "trace-me")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if fromLogging != "trace-me" {
		t.Errorf("logging.RequestIDFromContext() = %q, want %q", fromLogging, "trace-me")
	}
}

func TestGetRequestID_WithoutID(t *testing.T) {
	if id := GetRequestID(context.Background()); id != "" {
		t.Errorf("Expected empty request ID, got %s", id)
	}
}

func TestRequestID_MultipleRequests(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
		id := rec.Header().Get(RequestIDHeader)
		if seen[id] {
			t.Fatalf("duplicate request ID %s", id)
		}
		seen[id] = true
	}
}
