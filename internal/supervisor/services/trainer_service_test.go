// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/wisata/internal/events"
	"github.com/tomtom215/wisata/internal/recommend"
)

// mockTrainingEngine is a mock implementation for testing.
type mockTrainingEngine struct {
	mu           sync.Mutex
	trainCalls   int
	restoreCalls int
	trainErr     error
	restoreErr   error
	trainDelay   time.Duration
	trained      chan struct{}
}

func newMockTrainingEngine() *mockTrainingEngine {
	return &mockTrainingEngine{trained: make(chan struct{}, 16)}
}

func (m *mockTrainingEngine) Train(ctx context.Context) error {
	m.mu.Lock()
	m.trainCalls++
	err := m.trainErr
	delay := m.trainDelay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	select {
	case m.trained <- struct{}{}:
	default:
	}
	return err
}

func (m *mockTrainingEngine) Restore(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restoreCalls++
	return m.restoreErr
}

func (m *mockTrainingEngine) Status() recommend.TrainingStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return recommend.TrainingStatus{Strategy: "test-trainer", ModelVersion: m.trainCalls}
}

func (m *mockTrainingEngine) counts() (train, restore int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trainCalls, m.restoreCalls
}

// mockGC counts GC runs.
type mockGC struct {
	mu    sync.Mutex
	calls int
	ratio float64
}

func (g *mockGC) RunGC(ratio float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.ratio = ratio
	return nil
}

func (g *mockGC) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// failingSource fails every subscription.
type failingSource struct{}

func (failingSource) SubscribeRetrain(context.Context) (<-chan *message.Message, error) {
	return nil, events.ErrBusClosed
}

func waitTrained(t *testing.T, engine *mockTrainingEngine) {
	t.Helper()
	select {
	case <-engine.trained:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for training")
	}
}

func TestTrainerService_Interface(t *testing.T) {
	var _ suture.Service = (*TrainerService)(nil)
}

func TestTrainerService_String(t *testing.T) {
	svc := NewTrainerService(newMockTrainingEngine(), nil, nil, TrainerServiceConfig{}, zerolog.Nop())
	if got := svc.String(); got != "trainer-service" {
		t.Errorf("String() = %q, want %q", got, "trainer-service")
	}
}

func TestTrainerService_Startup(t *testing.T) {
	tests := []struct {
		name        string
		cfg         TrainerServiceConfig
		restoreErr  error
		wantTrain   int
		wantRestore int
	}{
		{
			name:        "restore succeeds, no training",
			cfg:         TrainerServiceConfig{RestoreOnStartup: true, TrainOnStartup: true},
			wantTrain:   0,
			wantRestore: 1,
		},
		{
			name:        "restore fails, falls back to training",
			cfg:         TrainerServiceConfig{RestoreOnStartup: true, TrainOnStartup: true},
			restoreErr:  errors.New("model not found"),
			wantTrain:   1,
			wantRestore: 1,
		},
		{
			name:        "train only",
			cfg:         TrainerServiceConfig{TrainOnStartup: true},
			wantTrain:   1,
			wantRestore: 0,
		},
		{
			name:        "nothing on startup",
			cfg:         TrainerServiceConfig{},
			wantTrain:   0,
			wantRestore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newMockTrainingEngine()
			engine.restoreErr = tt.restoreErr
			svc := NewTrainerService(engine, nil, nil, tt.cfg, zerolog.Nop())

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			_ = svc.Serve(ctx)

			train, restore := engine.counts()
			if train != tt.wantTrain || restore != tt.wantRestore {
				t.Errorf("train=%d restore=%d, want train=%d restore=%d",
					train, restore, tt.wantTrain, tt.wantRestore)
			}
		})
	}
}

func TestTrainerService_StartupRunsOnce(t *testing.T) {
	engine := newMockTrainingEngine()
	svc := NewTrainerService(engine, nil, nil, TrainerServiceConfig{TrainOnStartup: true}, zerolog.Nop())

	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		_ = svc.Serve(ctx)
		cancel()
	}

	if train, _ := engine.counts(); train != 1 {
		t.Errorf("Train() called %d times across restarts, want 1", train)
	}
}

func TestTrainerService_RetrainCommand(t *testing.T) {
	engine := newMockTrainingEngine()
	bus := events.NewBus(events.DefaultBusConfig(), zerolog.Nop())
	defer bus.Close()

	svc := NewTrainerService(engine, bus, nil, TrainerServiceConfig{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	// Publish until the subscription is up; earlier commands are dropped.
	deadline := time.After(2 * time.Second)
	for trained := false; !trained; {
		if _, err := bus.PublishRetrain(ctx, events.RetrainCommand{Source: events.SourceAPI}); err != nil {
			t.Fatalf("PublishRetrain() error = %v", err)
		}
		select {
		case <-engine.trained:
			trained = true
		case <-time.After(20 * time.Millisecond):
		case <-deadline:
			t.Fatal("retrain command was never handled")
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return")
	}
}

func TestTrainerService_ScheduledRetrain(t *testing.T) {
	engine := newMockTrainingEngine()
	svc := NewTrainerService(engine, nil, nil, TrainerServiceConfig{
		RetrainInterval: 30 * time.Millisecond,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Serve(ctx) }()

	waitTrained(t, engine)
	waitTrained(t, engine)
}

func TestTrainerService_TrainingErrorKeepsRunning(t *testing.T) {
	engine := newMockTrainingEngine()
	engine.trainErr = recommend.ErrNumericInstability
	svc := NewTrainerService(engine, nil, nil, TrainerServiceConfig{
		TrainOnStartup:  true,
		RetrainInterval: 30 * time.Millisecond,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Serve(ctx) }()

	waitTrained(t, engine)
	waitTrained(t, engine)
}

func TestTrainerService_GC(t *testing.T) {
	engine := newMockTrainingEngine()
	gc := &mockGC{}
	svc := NewTrainerService(engine, nil, gc, TrainerServiceConfig{
		GCInterval: 20 * time.Millisecond,
	}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = svc.Serve(ctx)

	if gc.count() < 2 {
		t.Errorf("RunGC called %d times, want >= 2", gc.count())
	}
	if gc.ratio != 0.5 {
		t.Errorf("GC ratio = %v, want default 0.5", gc.ratio)
	}
}

func TestTrainerService_SubscribeError(t *testing.T) {
	svc := NewTrainerService(newMockTrainingEngine(), failingSource{}, nil, TrainerServiceConfig{}, zerolog.Nop())

	err := svc.Serve(context.Background())
	if !errors.Is(err, events.ErrBusClosed) {
		t.Errorf("Serve() = %v, want ErrBusClosed", err)
	}
}

func TestTrainerService_GracefulShutdown(t *testing.T) {
	engine := newMockTrainingEngine()
	engine.trainDelay = 50 * time.Millisecond
	svc := NewTrainerService(engine, nil, nil, TrainerServiceConfig{TrainOnStartup: true}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve() did not complete in time")
	}
}
