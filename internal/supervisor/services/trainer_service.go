// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package services

import (
	"context"
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/wisata/internal/events"
	"github.com/tomtom215/wisata/internal/logging"
	"github.com/tomtom215/wisata/internal/metrics"
	"github.com/tomtom215/wisata/internal/recommend"
)

// TrainingEngine is the part of recommend.Engine the trainer drives.
type TrainingEngine interface {
	Train(ctx context.Context) error
	Restore(ctx context.Context) error
	Status() recommend.TrainingStatus
}

// RetrainSource delivers retrain command messages.
type RetrainSource interface {
	SubscribeRetrain(ctx context.Context) (<-chan *message.Message, error)
}

// GarbageCollector reclaims model store space.
type GarbageCollector interface {
	RunGC(ratio float64) error
}

// TrainerServiceConfig holds configuration for the trainer service.
type TrainerServiceConfig struct {
	// RestoreOnStartup loads the latest persisted model before anything else.
	RestoreOnStartup bool

	// TrainOnStartup trains when no model could be restored.
	TrainOnStartup bool

	// RetrainInterval schedules periodic retraining. Zero disables it.
	RetrainInterval time.Duration

	// GCInterval schedules model store garbage collection. Zero disables it.
	GCInterval time.Duration

	// GCDiscardRatio is passed to the store's value log GC.
	GCDiscardRatio float64
}

// TrainerService owns the model lifecycle for Suture supervision.
//
// On start it restores the persisted model or trains a fresh one, then
// serves retrain commands from the bus and the optional schedule one at a
// time. Failures are logged and the previously published model stays live.
type TrainerService struct {
	engine  TrainingEngine
	source  RetrainSource
	gc      GarbageCollector
	config  TrainerServiceConfig
	logger  zerolog.Logger
	name    string
	started bool
}

// NewTrainerService creates a trainer service. source and gc may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainerService(engine TrainingEngine, source RetrainSource, gc GarbageCollector, cfg TrainerServiceConfig, logger zerolog.Logger) *TrainerService {
	if cfg.GCDiscardRatio <= 0 || cfg.GCDiscardRatio >= 1 {
		cfg.GCDiscardRatio = 0.5
	}
	return &TrainerService{
		engine: engine,
		source: source,
		gc:     gc,
		config: cfg,
		logger: logger.With().Str("service", "trainer").Logger(),
		name:   "trainer-service",
	}
}

// Serve implements the suture.Service interface.
func (s *TrainerService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("restore_on_startup", s.config.RestoreOnStartup).
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("retrain_interval", s.config.RetrainInterval).
		Msg("trainer service starting")

	// Suture restarts Serve after a failure; the startup model is only
	// loaded once per process.
	if !s.started {
		s.startup(ctx)
		s.started = true
	}

	var msgs <-chan *message.Message
	if s.source != nil {
		var err error
		msgs, err = s.source.SubscribeRetrain(ctx)
		if err != nil {
			return err
		}
	}

	var retrainC <-chan time.Time
	if s.config.RetrainInterval > 0 {
		ticker := time.NewTicker(s.config.RetrainInterval)
		defer ticker.Stop()
		retrainC = ticker.C
	}

	var gcC <-chan time.Time
	if s.gc != nil && s.config.GCInterval > 0 {
		ticker := time.NewTicker(s.config.GCInterval)
		defer ticker.Stop()
		gcC = ticker.C
	}

	s.logger.Info().Msg("trainer service running")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("trainer service shutting down")
			return ctx.Err()

		case msg, ok := <-msgs:
			if !ok {
				s.logger.Warn().Msg("retrain subscription closed")
				msgs = nil
				continue
			}
			s.handleRetrain(ctx, msg)

		case <-retrainC:
			metrics.RecordRetrainCommand(events.SourceSchedule)
			s.train(ctx, events.SourceSchedule, "")

		case <-gcC:
			if err := s.gc.RunGC(s.config.GCDiscardRatio); err != nil {
				s.logger.Warn().Err(err).Msg("model store GC failed")
			}
		}
	}
}

// startup publishes the first model: restored if possible, trained otherwise.
func (s *TrainerService) startup(ctx context.Context) {
	if s.config.RestoreOnStartup {
		err := s.engine.Restore(ctx)
		if err == nil {
			status := s.engine.Status()
			metrics.UpdateModelGauges(&status)
			s.logger.Info().
				Int("model_version", status.ModelVersion).
				Str("strategy", status.Strategy).
				Msg("restored persisted model")
			return
		}
		s.logger.Warn().Err(err).Msg("could not restore persisted model")
	}

	if s.config.TrainOnStartup {
		s.train(ctx, "startup", "")
	}
}

func (s *TrainerService) handleRetrain(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	cmd, err := events.DecodeRetrain(msg)
	if err != nil {
		s.logger.Warn().Err(err).Msg("dropping malformed retrain command")
		return
	}

	metrics.RecordRetrainCommand(cmd.Source)
	s.logger.Info().
		Str("command_id", cmd.ID).
		Str("source", cmd.Source).
		Str("request_id", cmd.RequestID).
		Msg("retrain command received")
	s.train(ctx, cmd.Source, cmd.RequestID)
}

// train runs one training cycle and records its outcome.
func (s *TrainerService) train(ctx context.Context, source, requestID string) {
	runID := logging.GenerateRunID()
	ctx = logging.ContextWithRunID(ctx, runID)
	if requestID != "" {
		ctx = logging.ContextWithRequestID(ctx, requestID)
	}
	logger := s.logger.With().Str("run_id", runID).Str("source", source).Logger()

	start := time.Now()
	err := s.engine.Train(ctx)
	duration := time.Since(start)

	status := s.engine.Status()
	metrics.RecordTraining(&status, duration, err)

	switch {
	case errors.Is(err, recommend.ErrTrainingInProgress):
		logger.Info().Msg("training already in progress, skipping")
	case err != nil:
		logger.Warn().Err(err).Dur("duration", duration).Msg("training failed, keeping current model")
	default:
		logger.Info().
			Int("model_version", status.ModelVersion).
			Int("ratings", status.RatingCount).
			Dur("duration", duration).
			Msg("training complete")
	}
}

// String returns the service name for logging.
func (s *TrainerService) String() string {
	return s.name
}
