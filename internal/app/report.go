package app

import (
	"time"

	"github.com/okian/ontrack/internal/domain/derive"
	"github.com/okian/ontrack/internal/domain/event"
	"github.com/okian/ontrack/internal/domain/refdata"
)

// Outcome is the result of deriving one event: the series (when the cascade
// completed), the delta decisions for the audit trace, any validation
// violations, and any fatal error for the event.
type Outcome struct {
	Event      event.Key
	Series     refdata.TargetSeries
	Decisions  []derive.Decision
	Violations []derive.Violation
	Err        error
}

// Clean reports whether the outcome qualifies for persistence: no error and
// zero violations. A partially-correct series must never enter the reference
// table.
func (o Outcome) Clean() bool {
	return o.Err == nil && len(o.Violations) == 0
}

// Reasons renders the outcome's problems for the per-event review report.
func (o Outcome) Reasons() []string {
	var out []string
	if o.Err != nil {
		out = append(out, o.Err.Error())
	}
	for _, v := range o.Violations {
		out = append(out, v.String())
	}
	return out
}

// Report aggregates a full derivation run. Every cataloged event appears in
// Outcomes, keyed by the event's canonical string; Updated and Skipped
// partition the catalog in its stable order.
type Report struct {
	RunID    string
	Started  time.Time
	Finished time.Time

	Outcomes map[string]Outcome
	Updated  []event.Key
	Skipped  []event.Key
}
