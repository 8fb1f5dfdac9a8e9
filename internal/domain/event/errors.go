package event

import "errors"

// Sentinel kinds for event identity errors.
var (
	ErrInvalidKey = errors.New("invalid event key")
)
