// Package repository defines the reference store interface and errors.
package repository

import (
	"context"

	"github.com/okian/ontrack/internal/domain/event"
	"github.com/okian/ontrack/internal/domain/refdata"
)

// Store provides access to the reference tables and the derived target table.
type Store interface {
	// Snapshot freezes an immutable view of the three source tables for a
	// derivation run. Later edits to the store never affect the snapshot.
	Snapshot(ctx context.Context) (*refdata.Snapshot, error)

	// Events returns the sorted event catalog: every key present in any of
	// the three source tables.
	Events(ctx context.Context) ([]event.Key, error)

	// TargetSeries returns the stored target series for key.
	// Returns ErrNotFound if no series has been persisted for it.
	TargetSeries(ctx context.Context, key event.Key) (refdata.TargetSeries, error)

	// ReplaceTargetSeries atomically swaps the full series for key. A series
	// is always replaced wholesale, never patched in place.
	ReplaceTargetSeries(ctx context.Context, key event.Key, series refdata.TargetSeries) error
}
