package derive

import (
	"fmt"

	"github.com/okian/ontrack/internal/domain/event"
	"github.com/okian/ontrack/internal/domain/refdata"
)

// ViolationKind classifies a series validation failure.
type ViolationKind string

// Violation kinds.
const (
	ViolationCompleteness ViolationKind = "completeness"
	ViolationMonotonicity ViolationKind = "monotonicity"
	ViolationRange        ViolationKind = "range"
)

// Violation is one validation failure. Violations are returned rather than
// thrown so a run can aggregate a full report across all events instead of
// failing at the first bad cell.
type Violation struct {
	Kind   ViolationKind
	Age    int
	Detail string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s at age %d: %s", v.Kind, v.Age, v.Detail)
}

// Default pace sanity window, in seconds per 100m. Wide enough for any real
// swim, tight enough to catch unit errors (milliseconds, minutes-as-seconds)
// before they propagate into the published table.
const (
	DefaultMinPacePer100 = 20.0
	DefaultMaxPacePer100 = 180.0
)

// ValidatorOption applies a configuration option to the Validator.
type ValidatorOption func(*Validator)

// WithPaceBounds sets the plausible pace window in seconds per 100m.
func WithPaceBounds(minPace, maxPace float64) ValidatorOption {
	return func(v *Validator) {
		if minPace > 0 && maxPace > minPace {
			v.minPace = minPace
			v.maxPace = maxPace
		}
	}
}

// WithRequiredFloors sets the floor ages a series must cover for standard
// and sprint-class events.
func WithRequiredFloors(standard, sprint int) ValidatorOption {
	return func(v *Validator) {
		if standard > 0 && sprint > 0 {
			v.standardFloor = standard
			v.sprintFloor = sprint
		}
	}
}

// Validator checks a derived series for completeness, monotonic progression
// and physical plausibility.
type Validator struct {
	standardFloor int
	sprintFloor   int
	minPace       float64
	maxPace       float64
}

// NewValidator creates a validator with configuration options.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		standardFloor: DefaultStandardFloorAge,
		sprintFloor:   DefaultSprintFloorAge,
		minPace:       DefaultMinPacePer100,
		maxPace:       DefaultMaxPacePer100,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks series against the valid range for key. A monotonicity
// violation means an upstream delta was negative; it is reported, never
// auto-corrected, because clamping would mask an error in the source tables.
func (v *Validator) Validate(key event.Key, series refdata.TargetSeries) []Violation {
	var out []Violation

	ceiling, ok := series.Ceiling()
	if !ok {
		return append(out, Violation{Kind: ViolationCompleteness, Detail: "empty series"})
	}

	floor := v.standardFloor
	if key.SprintClass() {
		floor = v.sprintFloor
	}

	// Completeness: every age in [floor, ceiling] present, and sprint-class
	// events explicitly absent below their floor.
	for age := floor; age <= ceiling; age++ {
		if _, present := series.At(age); !present {
			out = append(out, Violation{
				Kind:   ViolationCompleteness,
				Age:    age,
				Detail: "missing target time in required range",
			})
		}
	}
	if key.SprintClass() {
		for _, age := range series.Ages() {
			if age < v.sprintFloor {
				out = append(out, Violation{
					Kind:   ViolationCompleteness,
					Age:    age,
					Detail: fmt.Sprintf("sprint-class event must not have a target below age %d", v.sprintFloor),
				})
			}
		}
	}

	// Monotonicity: older is never slower.
	ages := series.Ages()
	for i := 0; i+1 < len(ages); i++ {
		younger, older := ages[i], ages[i+1]
		if older != younger+1 {
			continue
		}
		yt, _ := series.At(younger)
		ot, _ := series.At(older)
		if yt < ot {
			out = append(out, Violation{
				Kind:   ViolationMonotonicity,
				Age:    younger,
				Detail: fmt.Sprintf("target %.2f at age %d is faster than %.2f at age %d", yt, younger, ot, older),
			})
		}
	}

	// Range sanity against the pace window.
	for _, age := range ages {
		t, _ := series.At(age)
		pace := t * 100 / float64(key.Distance)
		if pace < v.minPace || pace >= v.maxPace {
			out = append(out, Violation{
				Kind:   ViolationRange,
				Age:    age,
				Detail: fmt.Sprintf("pace %.2fs/100m outside plausible window [%.0f, %.0f)", pace, v.minPace, v.maxPace),
			})
		}
	}

	return out
}
