// Package tablefile loads reference tables from YAML documents and saves
// derivation reports back to disk. It is the batch CLI's import surface;
// spreadsheet and HTML/PDF export live elsewhere.
package tablefile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okian/ontrack/internal/domain/event"
	"github.com/okian/ontrack/internal/domain/refdata"
)

const reportFileMode = 0o644

// KeyFields is the flat event identity shared by every row type.
type KeyFields struct {
	Course   string `yaml:"course"`
	Stroke   string `yaml:"stroke"`
	Distance int    `yaml:"distance"`
	Gender   string `yaml:"gender"`
}

// Key converts the flat fields into a validated event key.
func (f KeyFields) Key() (event.Key, error) {
	k := event.Key{
		Course:   event.Course(f.Course),
		Stroke:   event.Stroke(f.Stroke),
		Distance: f.Distance,
		Gender:   event.Gender(f.Gender),
	}
	if err := k.Validate(); err != nil {
		return event.Key{}, err
	}
	return k, nil
}

// TrackRow is one track benchmark entry.
type TrackRow struct {
	KeyFields `yaml:",inline"`
	Track     string  `yaml:"track"`
	Age       int     `yaml:"age"`
	Seconds   float64 `yaml:"seconds"`
}

// StatisticRow is one transition statistic entry.
type StatisticRow struct {
	KeyFields `yaml:",inline"`
	AgeStart  int     `yaml:"age_start"`
	Seconds   float64 `yaml:"seconds"`
}

// AnchorRow is one anchor benchmark entry.
type AnchorRow struct {
	KeyFields `yaml:",inline"`
	Age       int     `yaml:"age"`
	Seconds   float64 `yaml:"seconds"`
}

// Document bundles the three source tables of one reference data set.
type Document struct {
	Tracks     []TrackRow     `yaml:"track_benchmarks"`
	Statistics []StatisticRow `yaml:"transition_statistics"`
	Anchors    []AnchorRow    `yaml:"anchor_benchmarks"`
}

// Load reads and parses a reference table document.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tables file: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse tables file: %w", err)
	}
	return &doc, nil
}

// Rows converts the document into domain rows, validating every event key.
func (d *Document) Rows() ([]refdata.TrackBenchmark, []refdata.TransitionStatistic, []refdata.AnchorBenchmark, error) {
	tracks := make([]refdata.TrackBenchmark, 0, len(d.Tracks))
	for i, row := range d.Tracks {
		key, err := row.Key()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("track_benchmarks[%d]: %w", i, err)
		}
		tracks = append(tracks, refdata.TrackBenchmark{
			Event:   key,
			TrackID: row.Track,
			Age:     row.Age,
			Seconds: row.Seconds,
		})
	}

	stats := make([]refdata.TransitionStatistic, 0, len(d.Statistics))
	for i, row := range d.Statistics {
		key, err := row.Key()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("transition_statistics[%d]: %w", i, err)
		}
		stats = append(stats, refdata.TransitionStatistic{
			Event:    key,
			AgeStart: row.AgeStart,
			Seconds:  row.Seconds,
		})
	}

	anchors := make([]refdata.AnchorBenchmark, 0, len(d.Anchors))
	for i, row := range d.Anchors {
		key, err := row.Key()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("anchor_benchmarks[%d]: %w", i, err)
		}
		anchors = append(anchors, refdata.AnchorBenchmark{
			Event:   key,
			Age:     row.Age,
			Seconds: row.Seconds,
		})
	}

	return tracks, stats, anchors, nil
}
