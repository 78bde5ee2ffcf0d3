package bus

import (
    "sync"

    "github.com/iliyamo/live-event-ticketing/internal/repository"
)

// SeatView is a subscriber-side materialization of seat state: a map
// keyed by seat id into which incoming snapshots are merged
// last-writer-wins by store version.  Because the store bumps a seat's
// version on every transition, the merge follows the store's transition
// order no matter how the bus reorders or duplicates deliveries.  A
// snapshot with a version at or below the one already held is stale and
// ignored.
type SeatView struct {
    mu    sync.RWMutex
    seats map[uint64]repository.SeatSnapshot
}

// NewSeatView returns an empty view.
func NewSeatView() *SeatView {
    return &SeatView{seats: make(map[uint64]repository.SeatSnapshot)}
}

// Apply merges one snapshot and reports whether it advanced the view.
// Stale and duplicate snapshots return false.
func (v *SeatView) Apply(snap repository.SeatSnapshot) bool {
    v.mu.Lock()
    defer v.mu.Unlock()
    cur, ok := v.seats[snap.SeatID]
    if ok && snap.Version <= cur.Version {
        return false
    }
    v.seats[snap.SeatID] = snap
    return true
}

// Get returns the current snapshot for a seat, if any.
func (v *SeatView) Get(seatID uint64) (repository.SeatSnapshot, bool) {
    v.mu.RLock()
    defer v.mu.RUnlock()
    snap, ok := v.seats[seatID]
    return snap, ok
}

// Len reports how many seats the view has observed.
func (v *SeatView) Len() int {
    v.mu.RLock()
    defer v.mu.RUnlock()
    return len(v.seats)
}
