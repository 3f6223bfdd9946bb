package watch

import "errors"

var (
	// ErrAlreadyWatching is returned when Watch is called twice.
	ErrAlreadyWatching = errors.New("watcher already started")

	// ErrStopped is returned when Watch is called after Stop.
	ErrStopped = errors.New("watcher stopped")
)
