package booking

import (
    "context"
    "sync"
    "testing"

    "github.com/stretchr/testify/require"

    "github.com/iliyamo/live-event-ticketing/internal/model"
)

func TestGateCheckIn(t *testing.T) {
    ctx := context.Background()
    txnID := uint64(5)

    t.Run("grants entry for a sold seat exactly once", func(t *testing.T) {
        bound := txnID
        seats := newMemSeatStore(&memSeat{
            ID: 1, SectionID: 10, EventID: 7,
            Status: model.SeatSold, TxnID: &bound, TicketCode: "abc123",
        })
        rec := &recordingBus{}
        g := NewGate(seats, newMemTxnStore(), rec)

        res, err := g.CheckIn(ctx, "abc123")
        require.NoError(t, err)
        require.True(t, res.Granted)
        require.NotNil(t, res.Summary)
        require.Equal(t, model.SeatCheckedIn, seats.statusOf(1))
        require.Len(t, rec.published(), 1)

        // The duplicate scan is denied but still identifies the holder.
        res, err = g.CheckIn(ctx, "abc123")
        require.NoError(t, err)
        require.False(t, res.Granted)
        require.Equal(t, ReasonAlreadyCheckedIn, res.Reason)
        require.NotNil(t, res.Summary)
    })

    t.Run("denies unknown codes", func(t *testing.T) {
        g := NewGate(newMemSeatStore(), newMemTxnStore(), &recordingBus{})
        res, err := g.CheckIn(ctx, "bogus")
        require.NoError(t, err)
        require.False(t, res.Granted)
        require.Equal(t, ReasonNotSold, res.Reason)
    })

    t.Run("denies seats that were never sold", func(t *testing.T) {
        seats := newMemSeatStore(&memSeat{
            ID: 1, SectionID: 10, EventID: 7,
            Status: model.SeatHeld, TicketCode: "held-code",
        })
        g := NewGate(seats, newMemTxnStore(), &recordingBus{})
        res, err := g.CheckIn(ctx, "held-code")
        require.NoError(t, err)
        require.False(t, res.Granted)
        require.Equal(t, ReasonNotSold, res.Reason)
    })

    t.Run("rejects an empty code", func(t *testing.T) {
        g := NewGate(newMemSeatStore(), newMemTxnStore(), &recordingBus{})
        _, err := g.CheckIn(ctx, "")
        var invalid *ValidationError
        require.ErrorAs(t, err, &invalid)
    })
}

// Two scanners race on the same ticket; only one grant may come back.
func TestGateCheckInConcurrent(t *testing.T) {
    bound := uint64(5)
    seats := newMemSeatStore(&memSeat{
        ID: 1, SectionID: 10, EventID: 7,
        Status: model.SeatSold, TxnID: &bound, TicketCode: "race-code",
    })
    g := NewGate(seats, newMemTxnStore(), &recordingBus{})

    const scanners = 8
    var wg sync.WaitGroup
    results := make([]*CheckInResult, scanners)
    errs := make([]error, scanners)
    for i := 0; i < scanners; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            results[i], errs[i] = g.CheckIn(context.Background(), "race-code")
        }(i)
    }
    wg.Wait()

    grants := 0
    for i, res := range results {
        require.NoError(t, errs[i])
        if res.Granted {
            grants++
        } else {
            require.Equal(t, ReasonAlreadyCheckedIn, res.Reason)
        }
    }
    require.Equal(t, 1, grants)
}
