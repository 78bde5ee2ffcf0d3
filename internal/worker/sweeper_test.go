package worker

import (
    "context"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/require"

    "github.com/iliyamo/live-event-ticketing/internal/booking"
    "github.com/iliyamo/live-event-ticketing/internal/bus"
    "github.com/iliyamo/live-event-ticketing/internal/model"
    "github.com/iliyamo/live-event-ticketing/internal/repository"
)

// fakeTxns holds transactions in memory with the repository's one-shot
// resolve semantics.  orphaned marks transactions whose seats are still
// bound in the inventory, mirroring the join ListFailedWithSeats runs.
type fakeTxns struct {
    mu       sync.Mutex
    txns     map[uint64]*model.Transaction
    orphaned map[uint64]bool
}

func (f *fakeTxns) Create(_ context.Context, t *model.Transaction, _ []repository.SeatPrice) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.txns[t.ID] = t
    return nil
}

func (f *fakeTxns) Resolve(_ context.Context, txnID uint64, status string) (bool, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    t, ok := f.txns[txnID]
    if !ok {
        return false, repository.ErrTransactionNotFound
    }
    if t.PaymentStatus != model.PaymentPending {
        return false, nil
    }
    t.PaymentStatus = status
    return true, nil
}

func (f *fakeTxns) GetByID(_ context.Context, txnID uint64) (*model.Transaction, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    t, ok := f.txns[txnID]
    if !ok {
        return nil, repository.ErrTransactionNotFound
    }
    cp := *t
    return &cp, nil
}

func (f *fakeTxns) GetByReference(_ context.Context, _ string) (*model.Transaction, error) {
    return nil, repository.ErrTransactionNotFound
}

func (f *fakeTxns) ListExpiredPending(_ context.Context, now time.Time, limit int) ([]model.Transaction, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    out := []model.Transaction{}
    for _, t := range f.txns {
        if t.PaymentStatus == model.PaymentPending && !t.ExpiresAt.After(now) {
            out = append(out, *t)
            if len(out) == limit {
                break
            }
        }
    }
    return out, nil
}

func (f *fakeTxns) ListFailedWithSeats(_ context.Context, limit int) ([]model.Transaction, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    out := []model.Transaction{}
    for id, t := range f.txns {
        if t.PaymentStatus == model.PaymentFailed && f.orphaned[id] {
            out = append(out, *t)
            if len(out) == limit {
                break
            }
        }
    }
    return out, nil
}

func (f *fakeTxns) GateSummaryBySeat(_ context.Context, _ uint64) (*repository.GateSummary, error) {
    return nil, repository.ErrSeatNotFound
}

// fakeSeats records which transactions had their seats released.
type fakeSeats struct {
    mu       sync.Mutex
    released []uint64
}

func (f *fakeSeats) TryClaim(context.Context, uint64, uint64) error { return nil }
func (f *fakeSeats) Release(context.Context, uint64, uint64) error  { return nil }
func (f *fakeSeats) Finalize(context.Context, uint64, uint64) error { return nil }
func (f *fakeSeats) Redeem(context.Context, uint64) error           { return nil }

func (f *fakeSeats) ReleaseByTransaction(_ context.Context, txnID uint64) ([]uint64, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.released = append(f.released, txnID)
    return []uint64{}, nil
}

func (f *fakeSeats) PricesForEvent(context.Context, uint64, []uint64) (map[uint64]uint32, error) {
    return map[uint64]uint32{}, nil
}

func (f *fakeSeats) SnapshotsByIDs(context.Context, []uint64) ([]repository.SeatSnapshot, error) {
    return []repository.SeatSnapshot{}, nil
}

func (f *fakeSeats) GetByTicketCode(context.Context, string) (*model.Seat, error) {
    return nil, repository.ErrSeatNotFound
}

func TestSweeperFailsOnlyExpiredPending(t *testing.T) {
    now := time.Now().UTC()
    txns := &fakeTxns{txns: map[uint64]*model.Transaction{
        1: {ID: 1, PaymentStatus: model.PaymentPending, ExpiresAt: now.Add(-time.Minute)},
        2: {ID: 2, PaymentStatus: model.PaymentPending, ExpiresAt: now.Add(time.Hour)},
        3: {ID: 3, PaymentStatus: model.PaymentPaid, ExpiresAt: now.Add(-time.Minute)},
    }}
    seats := &fakeSeats{}
    settler := booking.NewSettlement(seats, txns, bus.NopPublisher{}, nil, 0)
    defer settler.Close()

    s := NewSweeper(txns, settler, time.Minute)
    s.sweep(context.Background())

    one, err := txns.GetByID(context.Background(), 1)
    require.NoError(t, err)
    require.Equal(t, model.PaymentFailed, one.PaymentStatus)

    two, err := txns.GetByID(context.Background(), 2)
    require.NoError(t, err)
    require.Equal(t, model.PaymentPending, two.PaymentStatus)

    three, err := txns.GetByID(context.Background(), 3)
    require.NoError(t, err)
    require.Equal(t, model.PaymentPaid, three.PaymentStatus)

    require.Equal(t, []uint64{1}, seats.released)
}

// A FAILED transaction whose seat release was interrupted keeps its seats
// bound.  Retried callbacks are no-ops once the status flipped, so only
// the sweeper can free those seats again.
func TestSweeperReleasesOrphanedFailedSeats(t *testing.T) {
    now := time.Now().UTC()
    txns := &fakeTxns{
        txns: map[uint64]*model.Transaction{
            4: {ID: 4, PaymentStatus: model.PaymentFailed, ExpiresAt: now.Add(-time.Hour)},
            5: {ID: 5, PaymentStatus: model.PaymentFailed, ExpiresAt: now.Add(-time.Hour)},
        },
        orphaned: map[uint64]bool{4: true},
    }
    seats := &fakeSeats{}
    settler := booking.NewSettlement(seats, txns, bus.NopPublisher{}, nil, 0)
    defer settler.Close()

    s := NewSweeper(txns, settler, time.Minute)
    s.sweep(context.Background())

    // Only the transaction with bound seats is repaired; the cleanly
    // failed one is left alone.
    require.Equal(t, []uint64{4}, seats.released)
}
