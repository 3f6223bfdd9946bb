package dictionary

import (
	"sync/atomic"
	"time"
)

// Snapshot is a dictionary together with the reload that produced it.
type Snapshot struct {
	Dictionary *Dictionary
	Generation uint64
	LoadedAt   time.Time
}

// Holder publishes the current snapshot. Readers always observe a complete
// snapshot, either the one before a Swap or the one after it.
type Holder struct {
	current    atomic.Pointer[Snapshot]
	generation atomic.Uint64
}

// Load returns the current snapshot, or nil before the first Swap.
func (h *Holder) Load() *Snapshot {
	return h.current.Load()
}

// Swap publishes d as a new snapshot and returns the previous one.
func (h *Holder) Swap(d *Dictionary) (old *Snapshot) {
	next := &Snapshot{
		Dictionary: d,
		Generation: h.generation.Add(1),
		LoadedAt:   time.Now().UTC(),
	}
	return h.current.Swap(next)
}
