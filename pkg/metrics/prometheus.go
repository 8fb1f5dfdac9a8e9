// Package metrics provides Prometheus metrics for the target-time
// derivation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the derivation engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Run lifecycle
	runsStarted   prometheus.Counter
	runsCompleted prometheus.Counter
	runDuration   prometheus.Histogram
	lastRunUnix   prometheus.Gauge
	catalogSize   prometheus.Gauge

	// Per-event outcomes
	eventsUpdated     prometheus.Counter
	eventsSkipped     prometheus.Counter
	eventDeriveMillis prometheus.Histogram

	// Data-quality failures
	missingAnchors     prometheus.Counter
	unresolvableDeltas prometheus.Counter
	violations         *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ontrack",
		subsystem:        "derivation",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.runsStarted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_started_total",
		Help:      "Derivation runs started.",
	})
	m.runsCompleted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_completed_total",
		Help:      "Derivation runs completed.",
	})
	m.runDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of a full derivation run.",
		Buckets:   m.histogramBuckets,
	})
	m.lastRunUnix = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the last completed run.",
	})
	m.catalogSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_size",
		Help:      "Events in the catalog of the last run.",
	})

	m.eventsUpdated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_updated_total",
		Help:      "Events whose target series was replaced.",
	})
	m.eventsSkipped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_skipped_total",
		Help:      "Events excluded from the write and flagged for review.",
	})
	m.eventDeriveMillis = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "event_derivation_milliseconds",
		Help:      "Per-event derivation latency.",
		Buckets:   m.histogramBuckets,
	})

	m.missingAnchors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "missing_anchors_total",
		Help:      "Events with no anchor benchmark to seed from.",
	})
	m.unresolvableDeltas = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "unresolvable_deltas_total",
		Help:      "Transitions with neither a usable statistic nor a track average.",
	})
	m.violations = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "violations_total",
		Help:      "Series validation violations by kind.",
	}, []string{"kind"})
}

// Registry returns the registry backing the global manager, for exposition.
func Registry() *prometheus.Registry { return customRegistry }

// Package-level helpers recording against the global manager.

func RecordRunStarted() { globalManager.runsStarted.Inc() }

func RecordRunCompleted() { globalManager.runsCompleted.Inc() }

func RecordRunDuration(seconds float64) { globalManager.runDuration.Observe(seconds) }

func UpdateLastRunUnix(ts float64) { globalManager.lastRunUnix.Set(ts) }

func UpdateCatalogSize(n int) { globalManager.catalogSize.Set(float64(n)) }

func RecordEventUpdated() { globalManager.eventsUpdated.Inc() }

func RecordEventSkipped() { globalManager.eventsSkipped.Inc() }

func RecordEventDeriveMillis(ms float64) { globalManager.eventDeriveMillis.Observe(ms) }

func RecordMissingAnchor() { globalManager.missingAnchors.Inc() }

func RecordUnresolvableDelta() { globalManager.unresolvableDeltas.Inc() }

func RecordViolation(kind string) { globalManager.violations.WithLabelValues(kind).Inc() }
