package tablefile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DecisionRow is one audit entry: which source supplied a transition's delta.
type DecisionRow struct {
	AgeStart int     `yaml:"age_start"`
	AgeEnd   int     `yaml:"age_end"`
	Source   string  `yaml:"source"`
	Seconds  float64 `yaml:"seconds"`
	Tracks   int     `yaml:"tracks,omitempty"`
}

// SeriesEntry is the derived series for one updated event, with its audit
// trail of delta decisions.
type SeriesEntry struct {
	Event     string          `yaml:"event"`
	Targets   map[int]float64 `yaml:"targets"`
	Decisions []DecisionRow   `yaml:"decisions,omitempty"`
}

// SkippedEntry names an event excluded from the write and why.
type SkippedEntry struct {
	Event   string   `yaml:"event"`
	Reasons []string `yaml:"reasons"`
}

// ReportDocument is the on-disk form of a derivation run's report.
type ReportDocument struct {
	RunID   string         `yaml:"run_id"`
	Started string         `yaml:"started"`
	Updated []SeriesEntry  `yaml:"updated"`
	Skipped []SkippedEntry `yaml:"skipped"`
}

// SaveReport writes the report document as YAML.
func SaveReport(path string, doc *ReportDocument) error {
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, raw, reportFileMode); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
