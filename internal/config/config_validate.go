// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/wisata/internal/validation"
)

// Validate checks struct tags first, then the rules that span fields.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	validators := []func() error{
		c.validateRecommend,
		c.validateModelStore,
		c.validateSecurity,
	}
	for _, validator := range validators {
		if err := validator(); err != nil {
			return err
		}
	}
	return nil
}

// validateRecommend runs the engine's own checks on the converted settings.
func (c *Config) validateRecommend() error {
	if err := c.Recommend.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

// validateModelStore requires a path for an on-disk store
func (c *Config) validateModelStore() error {
	if !c.ModelStore.Enabled || c.ModelStore.InMemory {
		return nil
	}
	if strings.TrimSpace(c.ModelStore.Path) == "" {
		return fmt.Errorf("MODEL_STORE_PATH is required when MODEL_STORE_ENABLED=true")
	}
	return nil
}

// validateSecurity rejects settings that are unsafe in production
func (c *Config) validateSecurity() error {
	if !c.IsProduction() {
		return nil
	}
	if c.Security.RateLimitDisabled {
		return fmt.Errorf("DISABLE_RATE_LIMIT cannot be set in production")
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("CORS_ORIGINS must list explicit origins in production")
		}
	}
	return nil
}
