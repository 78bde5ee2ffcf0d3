package booking

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/require"

    "github.com/iliyamo/live-event-ticketing/internal/model"
    "github.com/iliyamo/live-event-ticketing/internal/repository"
)

func soldSeats(txnID uint64, ids ...uint64) []*memSeat {
    seats := make([]*memSeat, 0, len(ids))
    for _, id := range ids {
        bound := txnID
        seats = append(seats, &memSeat{
            ID: id, SectionID: 10, EventID: 7, PriceCents: 100,
            Status: model.SeatSold, TxnID: &bound,
        })
    }
    return seats
}

func pendingTxn(t *testing.T, txns *memTxnStore, ref string, ttl time.Duration, seatIDs ...uint64) *model.Transaction {
    t.Helper()
    txn := &model.Transaction{
        Reference:     ref,
        EventID:       7,
        UserID:        42,
        PaymentStatus: model.PaymentPending,
        ExpiresAt:     time.Now().UTC().Add(ttl),
        SeatIDs:       seatIDs,
    }
    require.NoError(t, txns.Create(context.Background(), txn, nil))
    return txn
}

func TestSettlementResolve(t *testing.T) {
    ctx := context.Background()

    t.Run("paid keeps seats sold", func(t *testing.T) {
        txns := newMemTxnStore()
        txn := pendingTxn(t, txns, "ref-paid", time.Hour, 1, 2)
        seats := newMemSeatStore(soldSeats(txn.ID, 1, 2)...)
        rec := &recordingBus{}
        s := NewSettlement(seats, txns, rec, nil, 0)
        defer s.Close()

        require.NoError(t, s.Resolve(ctx, txn.ID, model.PaymentPaid))

        stored, err := txns.GetByID(ctx, txn.ID)
        require.NoError(t, err)
        require.Equal(t, model.PaymentPaid, stored.PaymentStatus)
        require.Equal(t, model.SeatSold, seats.statusOf(1))
        require.Equal(t, model.SeatSold, seats.statusOf(2))
        require.Empty(t, rec.published())
    })

    t.Run("failed releases every bound seat and publishes", func(t *testing.T) {
        txns := newMemTxnStore()
        txn := pendingTxn(t, txns, "ref-failed", time.Hour, 1, 2)
        seats := newMemSeatStore(soldSeats(txn.ID, 1, 2)...)
        rec := &recordingBus{}
        s := NewSettlement(seats, txns, rec, nil, 0)
        defer s.Close()

        require.NoError(t, s.Resolve(ctx, txn.ID, model.PaymentFailed))

        stored, err := txns.GetByID(ctx, txn.ID)
        require.NoError(t, err)
        require.Equal(t, model.PaymentFailed, stored.PaymentStatus)
        require.Equal(t, model.SeatAvailable, seats.statusOf(1))
        require.Equal(t, model.SeatAvailable, seats.statusOf(2))
        require.Len(t, rec.published(), 2)
        for _, snap := range rec.published() {
            require.Equal(t, model.SeatAvailable, snap.Status)
        }
    })

    t.Run("resolution is one-shot", func(t *testing.T) {
        txns := newMemTxnStore()
        txn := pendingTxn(t, txns, "ref-dup", time.Hour, 1)
        seats := newMemSeatStore(soldSeats(txn.ID, 1)...)
        s := NewSettlement(seats, txns, &recordingBus{}, nil, 0)
        defer s.Close()

        require.NoError(t, s.Resolve(ctx, txn.ID, model.PaymentPaid))
        // A late decline must not unsell the seat.
        require.NoError(t, s.Resolve(ctx, txn.ID, model.PaymentFailed))

        stored, err := txns.GetByID(ctx, txn.ID)
        require.NoError(t, err)
        require.Equal(t, model.PaymentPaid, stored.PaymentStatus)
        require.Equal(t, model.SeatSold, seats.statusOf(1))
    })

    t.Run("rejects unknown outcomes", func(t *testing.T) {
        txns := newMemTxnStore()
        txn := pendingTxn(t, txns, "ref-bad", time.Hour, 1)
        s := NewSettlement(newMemSeatStore(), txns, &recordingBus{}, nil, 0)
        defer s.Close()

        var invalid *ValidationError
        require.ErrorAs(t, s.Resolve(ctx, txn.ID, "MAYBE"), &invalid)
    })
}

func TestSettlementExpiryTimer(t *testing.T) {
    txns := newMemTxnStore()
    txn := pendingTxn(t, txns, "ref-expiry", 30*time.Millisecond, 1)
    seats := newMemSeatStore(soldSeats(txn.ID, 1)...)
    s := NewSettlement(seats, txns, &recordingBus{}, nil, 0)
    defer s.Close()

    s.Track(txn)

    require.Eventually(t, func() bool {
        stored, err := txns.GetByID(context.Background(), txn.ID)
        return err == nil && stored.PaymentStatus == model.PaymentFailed
    }, 2*time.Second, 10*time.Millisecond)
    require.Equal(t, model.SeatAvailable, seats.statusOf(1))
}

func TestSettlementSimulatedConfirmation(t *testing.T) {
    txns := newMemTxnStore()
    txn := pendingTxn(t, txns, "ref-sim", time.Hour, 1)
    seats := newMemSeatStore(soldSeats(txn.ID, 1)...)
    s := NewSettlement(seats, txns, &recordingBus{}, nil, 20*time.Millisecond)
    defer s.Close()

    s.Track(txn)

    require.Eventually(t, func() bool {
        stored, err := txns.GetByID(context.Background(), txn.ID)
        return err == nil && stored.PaymentStatus == model.PaymentPaid
    }, 2*time.Second, 10*time.Millisecond)
    require.Equal(t, model.SeatSold, seats.statusOf(1))
}

func TestSettlementResolveByReference(t *testing.T) {
    ctx := context.Background()
    txns := newMemTxnStore()
    txn := pendingTxn(t, txns, "ref-cb", time.Hour, 1)
    seats := newMemSeatStore(soldSeats(txn.ID, 1)...)
    s := NewSettlement(seats, txns, &recordingBus{}, nil, 0)
    defer s.Close()

    resolved, err := s.ResolveByReference(ctx, "ref-cb", model.PaymentPaid)
    require.NoError(t, err)
    require.Equal(t, model.PaymentPaid, resolved.PaymentStatus)

    _, err = s.ResolveByReference(ctx, "no-such-ref", model.PaymentPaid)
    require.ErrorIs(t, err, repository.ErrTransactionNotFound)
}

// interruptedReleaseStore fails ReleaseByTransaction a configured number
// of times before delegating, simulating a store fault between the
// transaction status flip and the seat release.
type interruptedReleaseStore struct {
    *memSeatStore
    failures int
}

func (s *interruptedReleaseStore) ReleaseByTransaction(ctx context.Context, txnID uint64) ([]uint64, error) {
    if s.failures > 0 {
        s.failures--
        return nil, errors.New("store unavailable")
    }
    return s.memSeatStore.ReleaseByTransaction(ctx, txnID)
}

func TestSettlementReleaseFailedRepairsInterruptedRelease(t *testing.T) {
    ctx := context.Background()
    txns := newMemTxnStore()
    txn := pendingTxn(t, txns, "ref-interrupted", time.Hour, 1)
    seats := &interruptedReleaseStore{memSeatStore: newMemSeatStore(soldSeats(txn.ID, 1)...), failures: 1}
    rec := &recordingBus{}
    s := NewSettlement(seats, txns, rec, nil, 0)
    defer s.Close()

    // The status flips to FAILED but the release errors, leaving the
    // seat SOLD under a FAILED transaction.
    require.Error(t, s.Resolve(ctx, txn.ID, model.PaymentFailed))
    stored, err := txns.GetByID(ctx, txn.ID)
    require.NoError(t, err)
    require.Equal(t, model.PaymentFailed, stored.PaymentStatus)
    require.Equal(t, model.SeatSold, seats.statusOf(1))

    // A retried callback is a duplicate now and does not release either.
    require.NoError(t, s.Resolve(ctx, txn.ID, model.PaymentFailed))
    require.Equal(t, model.SeatSold, seats.statusOf(1))

    // The repair path frees the seat and announces it.
    require.NoError(t, s.ReleaseFailed(ctx, txn.ID))
    require.Equal(t, model.SeatAvailable, seats.statusOf(1))
    require.Len(t, rec.published(), 1)
}
