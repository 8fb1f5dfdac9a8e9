// Package event defines swim event identities used to join all reference tables.
package event

import (
	"fmt"
	"sort"
)

// Course is the pool configuration an event is swum in.
type Course string

// Supported courses.
const (
	CourseLong  Course = "LCM" // 50m pool
	CourseShort Course = "SCM" // 25m pool
)

// Stroke is the swimming discipline of an event.
type Stroke string

// Supported strokes.
const (
	StrokeFree   Stroke = "free"
	StrokeBack   Stroke = "back"
	StrokeBreast Stroke = "breast"
	StrokeFly    Stroke = "fly"
	StrokeMedley Stroke = "medley"
)

// Gender is the competition category of an event.
type Gender string

// Supported genders.
const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

// Key identifies a scoring event. It is the immutable join identity shared by
// the track benchmark, transition statistic, anchor and target tables.
type Key struct {
	Course   Course
	Stroke   Stroke
	Distance int // metres
	Gender   Gender
}

// String renders the key in its canonical form, e.g. "LCM-100-free-female".
func (k Key) String() string {
	return fmt.Sprintf("%s-%d-%s-%s", k.Course, k.Distance, k.Stroke, k.Gender)
}

// Validate reports whether the key's fields are within the supported catalog.
func (k Key) Validate() error {
	switch k.Course {
	case CourseLong, CourseShort:
	default:
		return fmt.Errorf("%w: course %q", ErrInvalidKey, k.Course)
	}
	switch k.Stroke {
	case StrokeFree, StrokeBack, StrokeBreast, StrokeFly, StrokeMedley:
	default:
		return fmt.Errorf("%w: stroke %q", ErrInvalidKey, k.Stroke)
	}
	switch k.Gender {
	case GenderFemale, GenderMale:
	default:
		return fmt.Errorf("%w: gender %q", ErrInvalidKey, k.Gender)
	}
	if k.Distance <= 0 {
		return fmt.Errorf("%w: distance %d", ErrInvalidKey, k.Distance)
	}
	return nil
}

// SprintClass reports whether the event belongs to the sprint category:
// 50m individual-stroke events. Sprint-class target series start at a later
// age because early-age sprint performance has weak predictive value.
// This is a fixed classification, never derived from the data.
func (k Key) SprintClass() bool {
	if k.Distance != 50 {
		return false
	}
	switch k.Stroke {
	case StrokeFree, StrokeBack, StrokeBreast, StrokeFly:
		return true
	default:
		return false
	}
}

// SortKeys orders keys deterministically by course, stroke, distance and
// gender so catalog iteration and reports are stable run to run.
func SortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Course != b.Course {
			return a.Course < b.Course
		}
		if a.Stroke != b.Stroke {
			return a.Stroke < b.Stroke
		}
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		return a.Gender < b.Gender
	})
}
