// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/wisata/internal/config"
	"github.com/tomtom215/wisata/internal/database"
	"github.com/tomtom215/wisata/internal/recommend"
	"github.com/tomtom215/wisata/internal/recommend/storage"
	"github.com/tomtom215/wisata/internal/supervisor/services"
)

// RecommendComponents holds all recommendation-related components.
type RecommendComponents struct {
	Engine *recommend.Engine
	Store  *storage.Store // nil when model persistence is disabled
}

// Close releases the model store.
func (c *RecommendComponents) Close() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// GarbageCollector returns the model store as a trainer GC target, or nil.
func (c *RecommendComponents) GarbageCollector() services.GarbageCollector {
	if c.Store == nil {
		return nil
	}
	return c.Store
}

// initRecommend creates the engine over db and, when enabled, the BadgerDB
// model store it persists trained models to.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(cfg *config.Config, db *database.DB, logger zerolog.Logger) (*RecommendComponents, error) {
	engineCfg := cfg.Recommend.EngineConfig()

	logger.Info().
		Str("strategy", engineCfg.Strategy).
		Str("solver", engineCfg.SolverName()).
		Str("metric", engineCfg.Neighborhood.Metric).
		Int("default_top_n", engineCfg.Limits.DefaultTopN).
		Bool("train_on_startup", cfg.Recommend.TrainOnStartup).
		Dur("retrain_interval", cfg.Recommend.RetrainInterval).
		Msg("initializing recommendation engine")

	engine, err := recommend.NewEngine(engineCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}
	engine.SetDataProvider(db)

	components := &RecommendComponents{Engine: engine}
	if !cfg.ModelStore.Enabled {
		logger.Info().Msg("Model persistence disabled (MODEL_STORE_ENABLED=false)")
		return components, nil
	}

	store, err := storage.Open(storage.Config{
		Path:       cfg.ModelStore.Path,
		InMemory:   cfg.ModelStore.InMemory,
		SyncWrites: cfg.ModelStore.SyncWrites,
	})
	if err != nil {
		return nil, fmt.Errorf("open model store: %w", err)
	}
	components.Store = store

	repo := storage.NewModelRepository(store, cfg.ModelStore.RetainVersions, logger)
	engine.SetModelStore(repo)

	logger.Info().
		Str("path", cfg.ModelStore.Path).
		Bool("in_memory", cfg.ModelStore.InMemory).
		Int("retain_versions", cfg.ModelStore.RetainVersions).
		Msg("Model store opened")

	return components, nil
}

// trainerConfig maps settings onto the trainer service.
func trainerConfig(cfg *config.Config) services.TrainerServiceConfig {
	return services.TrainerServiceConfig{
		RestoreOnStartup: cfg.ModelStore.Enabled,
		TrainOnStartup:   cfg.Recommend.TrainOnStartup,
		RetrainInterval:  cfg.Recommend.RetrainInterval,
		GCInterval:       cfg.ModelStore.GCInterval,
	}
}
