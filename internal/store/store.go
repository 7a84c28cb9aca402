// Package store persists match snapshots. Every store implements
// game.SnapshotSink so a match can be wired to any of them.
package store

import (
	"errors"

	"github.com/lox/shutthebox/internal/game"
)

// ErrNotFound is returned when no snapshot has been stored yet.
var ErrNotFound = errors.New("store: no snapshot")

// Multi fans each snapshot out to several sinks. Every sink is tried; the
// errors are joined.
type Multi []game.SnapshotSink

func (m Multi) WriteSnapshot(s game.Snapshot) error {
	var errs []error
	for _, sink := range m {
		if err := sink.WriteSnapshot(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
