// Command ontrack runs one batch recomputation of the On Track target-time
// table: it loads the reference tables, derives a target series per event,
// and reports which events were updated and which need attention.
package main

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/okian/ontrack/internal/adapters/repository"
	"github.com/okian/ontrack/internal/adapters/tablefile"
	"github.com/okian/ontrack/internal/app"
	"github.com/okian/ontrack/internal/config"
	"github.com/okian/ontrack/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM. An abort before the write
	// phase leaves the stored table untouched.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	doc, err := tablefile.Load(cfg.TablesPath)
	if err != nil {
		log.Error(ctx, "cannot load reference tables", logger.String("path", cfg.TablesPath), logger.Error(err))
		return 1
	}
	tracks, stats, anchors, err := doc.Rows()
	if err != nil {
		log.Error(ctx, "invalid reference tables", logger.String("path", cfg.TablesPath), logger.Error(err))
		return 1
	}

	store := repository.NewMemStore(
		repository.WithTrackBenchmarks(tracks),
		repository.WithTransitionStatistics(stats),
		repository.WithAnchors(anchors),
	)

	svc := app.New(
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithStatisticAgeCeiling(cfg.StatisticAgeCeiling),
		app.WithAgeFloors(cfg.StandardFloorAge, cfg.SprintFloorAge),
		app.WithPaceBounds(cfg.PaceMinPer100, cfg.PaceMaxPer100),
	)

	rep, err := svc.Run(ctx, store)
	if err != nil {
		log.Error(ctx, "derivation run failed", logger.Error(err))
		return 1
	}

	logOutcomes(ctx, log, rep)

	if cfg.ReportPath != "" {
		if err := tablefile.SaveReport(cfg.ReportPath, reportDocument(rep)); err != nil {
			log.Error(ctx, "cannot write report", logger.String("path", cfg.ReportPath), logger.Error(err))
			return 1
		}
		log.Info(ctx, "report written", logger.String("path", cfg.ReportPath))
	}

	// Data-quality problems are report content, not a process failure.
	return 0
}

// logOutcomes logs the updated/needs-attention split, with the audit trace
// of delta decisions at debug level.
func logOutcomes(ctx context.Context, log logger.Logger, rep app.Report) {
	for _, key := range rep.Updated {
		o := rep.Outcomes[key.String()]
		log.Info(ctx, "target series updated",
			logger.String("event", key.String()),
			logger.Int("ages", o.Series.Len()),
		)
		for _, d := range o.Decisions {
			log.Debug(ctx, "delta decision",
				logger.String("event", key.String()),
				logger.Int("ageStart", d.AgeStart),
				logger.Int("ageEnd", d.AgeEnd),
				logger.String("source", string(d.Source)),
				logger.Float64("seconds", d.Seconds),
				logger.Int("tracks", d.TrackCount),
			)
		}
	}
	for _, key := range rep.Skipped {
		o := rep.Outcomes[key.String()]
		log.Warn(ctx, "target series skipped; needs attention",
			logger.String("event", key.String()),
			logger.Any("reasons", o.Reasons()),
		)
	}
}

// reportDocument converts a run report into its on-disk YAML form.
func reportDocument(rep app.Report) *tablefile.ReportDocument {
	doc := &tablefile.ReportDocument{
		RunID:   rep.RunID,
		Started: rep.Started.UTC().Format(time.RFC3339),
	}

	for _, key := range rep.Updated {
		o := rep.Outcomes[key.String()]
		entry := tablefile.SeriesEntry{
			Event:   key.String(),
			Targets: make(map[int]float64, o.Series.Len()),
		}
		for _, age := range o.Series.Ages() {
			t, _ := o.Series.At(age)
			entry.Targets[age] = t
		}
		decisions := decisionRows(o)
		sort.Slice(decisions, func(i, j int) bool { return decisions[i].AgeStart < decisions[j].AgeStart })
		entry.Decisions = decisions
		doc.Updated = append(doc.Updated, entry)
	}

	for _, key := range rep.Skipped {
		o := rep.Outcomes[key.String()]
		doc.Skipped = append(doc.Skipped, tablefile.SkippedEntry{
			Event:   key.String(),
			Reasons: o.Reasons(),
		})
	}

	return doc
}

func decisionRows(o app.Outcome) []tablefile.DecisionRow {
	rows := make([]tablefile.DecisionRow, 0, len(o.Decisions))
	for _, d := range o.Decisions {
		rows = append(rows, tablefile.DecisionRow{
			AgeStart: d.AgeStart,
			AgeEnd:   d.AgeEnd,
			Source:   string(d.Source),
			Seconds:  d.Seconds,
			Tracks:   d.TrackCount,
		})
	}
	return rows
}
