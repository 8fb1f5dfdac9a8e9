package repository

import "errors"

// Sentinel kinds for reference store errors.
var (
	ErrNotFound   = errors.New("target series not found")
	ErrEmptyStore = errors.New("no reference rows loaded")
)
