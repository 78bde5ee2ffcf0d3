package bus

import (
    "sync"
    "testing"

    "github.com/stretchr/testify/require"

    "github.com/iliyamo/live-event-ticketing/internal/model"
    "github.com/iliyamo/live-event-ticketing/internal/repository"
)

func snap(seatID, version uint64, status string) repository.SeatSnapshot {
    return repository.SeatSnapshot{
        SeatID:    seatID,
        SectionID: 10,
        EventID:   7,
        Status:    status,
        Version:   version,
    }
}

func TestSeatViewApply(t *testing.T) {
    t.Run("merges by version regardless of arrival order", func(t *testing.T) {
        v := NewSeatView()

        // Deliveries arrive out of order: the SOLD snapshot (v3) lands
        // before the stale HELD one (v2).
        require.True(t, v.Apply(snap(1, 1, model.SeatAvailable)))
        require.True(t, v.Apply(snap(1, 3, model.SeatSold)))
        require.False(t, v.Apply(snap(1, 2, model.SeatHeld)))

        got, ok := v.Get(1)
        require.True(t, ok)
        require.Equal(t, model.SeatSold, got.Status)
        require.Equal(t, uint64(3), got.Version)
    })

    t.Run("ignores duplicate deliveries", func(t *testing.T) {
        v := NewSeatView()
        require.True(t, v.Apply(snap(1, 2, model.SeatHeld)))
        require.False(t, v.Apply(snap(1, 2, model.SeatHeld)))
        require.Equal(t, 1, v.Len())
    })

    t.Run("tracks seats independently", func(t *testing.T) {
        v := NewSeatView()
        require.True(t, v.Apply(snap(1, 5, model.SeatSold)))
        require.True(t, v.Apply(snap(2, 1, model.SeatAvailable)))
        require.Equal(t, 2, v.Len())

        _, ok := v.Get(3)
        require.False(t, ok)
    })
}

// Concurrent appliers racing on the same seat must converge on the
// highest version.
func TestSeatViewConcurrentApply(t *testing.T) {
    v := NewSeatView()
    const versions = 100
    var wg sync.WaitGroup
    for i := 1; i <= versions; i++ {
        wg.Add(1)
        go func(ver uint64) {
            defer wg.Done()
            v.Apply(snap(1, ver, model.SeatHeld))
        }(uint64(i))
    }
    wg.Wait()

    got, ok := v.Get(1)
    require.True(t, ok)
    require.Equal(t, uint64(versions), got.Version)
}
