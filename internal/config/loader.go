package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if ONTRACK_CONFIG is set
//  3. env (prefix ONTRACK_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("ONTRACK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: ONTRACK_TABLES_PATH, ONTRACK_WORKER_COUNT, ...
	// Map env keys like ONTRACK_WORKER_COUNT -> worker_count (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("ONTRACK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "ontrack_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations that could not produce a sensible run.
func (c *Config) validate() error {
	if c.TablesPath == "" {
		return fmt.Errorf("%w: tables_path must not be empty", ErrInvalidConfig)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("%w: worker_count must be at least 1", ErrInvalidConfig)
	}
	if c.StandardFloorAge < 1 || c.SprintFloorAge < 1 {
		return fmt.Errorf("%w: age floors must be positive", ErrInvalidConfig)
	}
	if c.SprintFloorAge < c.StandardFloorAge {
		return fmt.Errorf("%w: sprint_floor_age must not be below standard_floor_age", ErrInvalidConfig)
	}
	if c.StatisticAgeCeiling < c.StandardFloorAge {
		return fmt.Errorf("%w: statistic_age_ceiling must not be below standard_floor_age", ErrInvalidConfig)
	}
	if c.PaceMinPer100 <= 0 || c.PaceMaxPer100 <= c.PaceMinPer100 {
		return fmt.Errorf("%w: pace window must satisfy 0 < min < max", ErrInvalidConfig)
	}
	return nil
}
