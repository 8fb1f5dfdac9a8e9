// Package config defines process configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file, and environment variables.
// - External errors must be wrapped via this package's error helpers.
package config

import "runtime"

// Config contains process configuration for a derivation run.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// TablesPath points at the YAML reference table document to load.
	TablesPath string `koanf:"tables_path"`

	// ReportPath, when set, receives the run report as YAML.
	ReportPath string `koanf:"report_path"`

	// WorkerCount bounds the per-event derivation fan-out.
	WorkerCount int `koanf:"worker_count"`

	// StatisticAgeCeiling is the first age at which the population statistic
	// is no longer consulted for a transition delta.
	StatisticAgeCeiling int `koanf:"statistic_age_ceiling"`

	// StandardFloorAge and SprintFloorAge are the youngest ages of the
	// target series for standard and sprint-class events.
	StandardFloorAge int `koanf:"standard_floor_age"`
	SprintFloorAge   int `koanf:"sprint_floor_age"`

	// PaceMinPer100 and PaceMaxPer100 bound the plausibility window used by
	// the series validator, in seconds per 100m.
	PaceMinPer100 float64 `koanf:"pace_min_per_100m"`
	PaceMaxPer100 float64 `koanf:"pace_max_per_100m"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		TablesPath:          "tables.yaml",
		ReportPath:          "",
		WorkerCount:         runtime.NumCPU(),
		StatisticAgeCeiling: 18,
		StandardFloorAge:    15,
		SprintFloorAge:      18,
		PaceMinPer100:       20,
		PaceMaxPer100:       180,
	}
}
