package booking

import (
    "context"
    "errors"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/require"

    "github.com/iliyamo/live-event-ticketing/internal/model"
)

func newTestCoordinator(t *testing.T, seats *memSeatStore) (*Coordinator, *memTxnStore, *recordingBus) {
    t.Helper()
    txns := newMemTxnStore()
    rec := &recordingBus{}
    settler := NewSettlement(seats, txns, rec, nil, 0)
    t.Cleanup(settler.Close)
    return NewCoordinator(seats, txns, rec, settler, time.Hour), txns, rec
}

func TestBookSeats(t *testing.T) {
    ctx := context.Background()

    t.Run("books a full cart and prices it from sections", func(t *testing.T) {
        seats := newMemSeatStore(
            &memSeat{ID: 1, SectionID: 10, EventID: 7, PriceCents: 100},
            &memSeat{ID: 2, SectionID: 11, EventID: 7, PriceCents: 150},
        )
        coord, txns, rec := newTestCoordinator(t, seats)

        txn, err := coord.BookSeats(ctx, 7, []uint64{1, 2}, 42)
        require.NoError(t, err)
        require.NotEmpty(t, txn.Reference)
        require.Equal(t, uint32(250), txn.TotalAmountCents)
        require.Equal(t, model.PaymentPending, txn.PaymentStatus)
        require.Equal(t, []uint64{1, 2}, txn.SeatIDs)

        require.Equal(t, model.SeatSold, seats.statusOf(1))
        require.Equal(t, model.SeatSold, seats.statusOf(2))

        stored, err := txns.GetByID(ctx, txn.ID)
        require.NoError(t, err)
        require.Equal(t, model.PaymentPending, stored.PaymentStatus)

        // One snapshot per sold seat reached the bus.
        require.Len(t, rec.published(), 2)
    })

    t.Run("rolls back every claim when one seat is taken", func(t *testing.T) {
        other := uint64(999)
        seats := newMemSeatStore(
            &memSeat{ID: 1, SectionID: 10, EventID: 7, PriceCents: 100},
            &memSeat{ID: 2, SectionID: 10, EventID: 7, PriceCents: 100, Status: model.SeatHeld, TxnID: &other},
        )
        coord, txns, _ := newTestCoordinator(t, seats)

        _, err := coord.BookSeats(ctx, 7, []uint64{1, 2}, 42)
        var unavailable *SeatUnavailableError
        require.ErrorAs(t, err, &unavailable)
        require.Equal(t, []uint64{2}, unavailable.SeatIDs)

        // Seat 1 was claimed first and must be back on sale.
        require.Equal(t, model.SeatAvailable, seats.statusOf(1))
        require.Equal(t, model.SeatHeld, seats.statusOf(2))

        // The created transaction ended FAILED.
        stored, err := txns.GetByID(ctx, 1)
        require.NoError(t, err)
        require.Equal(t, model.PaymentFailed, stored.PaymentStatus)
    })

    t.Run("rejects seats outside the event", func(t *testing.T) {
        seats := newMemSeatStore(
            &memSeat{ID: 1, SectionID: 10, EventID: 7, PriceCents: 100},
            &memSeat{ID: 2, SectionID: 20, EventID: 8, PriceCents: 100},
        )
        coord, _, _ := newTestCoordinator(t, seats)

        _, err := coord.BookSeats(ctx, 7, []uint64{1, 2}, 42)
        var invalid *ValidationError
        require.ErrorAs(t, err, &invalid)
        require.Equal(t, model.SeatAvailable, seats.statusOf(1))
    })

    t.Run("rejects an empty cart", func(t *testing.T) {
        coord, _, _ := newTestCoordinator(t, newMemSeatStore())
        _, err := coord.BookSeats(ctx, 7, []uint64{0, 0}, 42)
        var invalid *ValidationError
        require.ErrorAs(t, err, &invalid)
    })

    t.Run("collapses duplicate seat ids", func(t *testing.T) {
        seats := newMemSeatStore(&memSeat{ID: 1, SectionID: 10, EventID: 7, PriceCents: 100})
        coord, _, _ := newTestCoordinator(t, seats)

        txn, err := coord.BookSeats(ctx, 7, []uint64{1, 1, 1}, 42)
        require.NoError(t, err)
        require.Equal(t, uint32(100), txn.TotalAmountCents)
        require.Equal(t, []uint64{1}, txn.SeatIDs)
    })

    t.Run("rejects a cart whose total would wrap 32 bits", func(t *testing.T) {
        seats := newMemSeatStore(
            &memSeat{ID: 1, SectionID: 10, EventID: 7, PriceCents: 3_000_000_000},
            &memSeat{ID: 2, SectionID: 10, EventID: 7, PriceCents: 3_000_000_000},
        )
        coord, _, _ := newTestCoordinator(t, seats)

        _, err := coord.BookSeats(ctx, 7, []uint64{1, 2}, 42)
        var invalid *ValidationError
        require.ErrorAs(t, err, &invalid)

        // The rejection happens before any claim, so both seats stay on
        // sale.
        require.Equal(t, model.SeatAvailable, seats.statusOf(1))
        require.Equal(t, model.SeatAvailable, seats.statusOf(2))
    })
}

// Two customers race for the same single seat; exactly one booking may
// succeed and the loser must leave no residue.
func TestBookSeatsConcurrentRace(t *testing.T) {
    ctx := context.Background()
    seats := newMemSeatStore(&memSeat{ID: 1, SectionID: 10, EventID: 7, PriceCents: 100})
    coord, _, _ := newTestCoordinator(t, seats)

    const attempts = 16
    var wg sync.WaitGroup
    errs := make([]error, attempts)
    for i := 0; i < attempts; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            _, errs[i] = coord.BookSeats(ctx, 7, []uint64{1}, uint64(100+i))
        }(i)
    }
    wg.Wait()

    winners := 0
    for _, err := range errs {
        if err == nil {
            winners++
            continue
        }
        var unavailable *SeatUnavailableError
        require.True(t, errors.As(err, &unavailable), "unexpected error: %v", err)
    }
    require.Equal(t, 1, winners)
    require.Equal(t, model.SeatSold, seats.statusOf(1))
}
