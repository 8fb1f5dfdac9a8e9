package derive

import "errors"

// Sentinel kinds for derivation errors. These allow errors.Is from callers.
var (
	// ErrMissingAnchor means no anchor benchmark exists for an event, so no
	// series can be seeded.
	ErrMissingAnchor = errors.New("missing anchor benchmark")

	// ErrUnresolvableDelta means neither a usable statistic nor a track
	// average exists for a required transition. Defaulting to zero here
	// would fabricate a target time, so it is an error instead.
	ErrUnresolvableDelta = errors.New("unresolvable transition delta")
)
