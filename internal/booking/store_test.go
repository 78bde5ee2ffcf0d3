package booking

// In-memory implementations of SeatStore and TransactionStore with the
// same compare-and-set semantics as the SQL repositories.  They let the
// booking components be tested under real concurrency without a
// database.

import (
    "context"
    "fmt"
    "sync"
    "time"

    "github.com/iliyamo/live-event-ticketing/internal/model"
    "github.com/iliyamo/live-event-ticketing/internal/repository"
)

type memSeat struct {
    ID         uint64
    SectionID  uint64
    EventID    uint64
    PriceCents uint32
    Status     string
    TxnID      *uint64
    TicketCode string
    Version    uint64
}

type memSeatStore struct {
    mu    sync.Mutex
    seats map[uint64]*memSeat
}

func newMemSeatStore(seats ...*memSeat) *memSeatStore {
    m := &memSeatStore{seats: make(map[uint64]*memSeat, len(seats))}
    for _, s := range seats {
        if s.Status == "" {
            s.Status = model.SeatAvailable
        }
        m.seats[s.ID] = s
    }
    return m
}

func (m *memSeatStore) statusOf(id uint64) string {
    m.mu.Lock()
    defer m.mu.Unlock()
    return m.seats[id].Status
}

func (m *memSeatStore) TryClaim(_ context.Context, seatID, txnID uint64) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    s, ok := m.seats[seatID]
    if !ok {
        return repository.ErrSeatNotFound
    }
    if s.Status != model.SeatAvailable {
        return repository.ErrSeatConflict
    }
    s.Status = model.SeatHeld
    id := txnID
    s.TxnID = &id
    s.Version++
    return nil
}

func (m *memSeatStore) Release(_ context.Context, seatID, txnID uint64) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    s, ok := m.seats[seatID]
    if !ok {
        return nil
    }
    if s.Status == model.SeatHeld && s.TxnID != nil && *s.TxnID == txnID {
        s.Status = model.SeatAvailable
        s.TxnID = nil
        s.Version++
    }
    return nil
}

func (m *memSeatStore) Finalize(_ context.Context, seatID, txnID uint64) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    s, ok := m.seats[seatID]
    if !ok || s.Status != model.SeatHeld || s.TxnID == nil || *s.TxnID != txnID {
        return repository.ErrSeatConflict
    }
    s.Status = model.SeatSold
    s.Version++
    return nil
}

func (m *memSeatStore) Redeem(_ context.Context, seatID uint64) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    s, ok := m.seats[seatID]
    if !ok {
        return repository.ErrSeatNotFound
    }
    switch s.Status {
    case model.SeatSold:
        s.Status = model.SeatCheckedIn
        s.Version++
        return nil
    case model.SeatCheckedIn:
        return repository.ErrAlreadyCheckedIn
    default:
        return repository.ErrNotSold
    }
}

func (m *memSeatStore) ReleaseByTransaction(_ context.Context, txnID uint64) ([]uint64, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    released := []uint64{}
    for _, s := range m.seats {
        if s.TxnID != nil && *s.TxnID == txnID &&
            (s.Status == model.SeatHeld || s.Status == model.SeatSold) {
            s.Status = model.SeatAvailable
            s.TxnID = nil
            s.Version++
            released = append(released, s.ID)
        }
    }
    return released, nil
}

func (m *memSeatStore) PricesForEvent(_ context.Context, eventID uint64, seatIDs []uint64) (map[uint64]uint32, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    prices := make(map[uint64]uint32)
    for _, id := range seatIDs {
        if s, ok := m.seats[id]; ok && s.EventID == eventID {
            prices[id] = s.PriceCents
        }
    }
    return prices, nil
}

func (m *memSeatStore) SnapshotsByIDs(_ context.Context, seatIDs []uint64) ([]repository.SeatSnapshot, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    snaps := make([]repository.SeatSnapshot, 0, len(seatIDs))
    for _, id := range seatIDs {
        s, ok := m.seats[id]
        if !ok {
            continue
        }
        snap := repository.SeatSnapshot{
            SeatID:    s.ID,
            SectionID: s.SectionID,
            EventID:   s.EventID,
            Status:    s.Status,
            Version:   s.Version,
        }
        if s.TxnID != nil {
            id := *s.TxnID
            snap.TransactionID = &id
        }
        snaps = append(snaps, snap)
    }
    return snaps, nil
}

func (m *memSeatStore) GetByTicketCode(_ context.Context, code string) (*model.Seat, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, s := range m.seats {
        if s.TicketCode == code {
            return &model.Seat{
                ID:        s.ID,
                SectionID: s.SectionID,
                Status:    s.Status,
                Version:   s.Version,
            }, nil
        }
    }
    return nil, repository.ErrSeatNotFound
}

type memTxnStore struct {
    mu     sync.Mutex
    nextID uint64
    txns   map[uint64]*model.Transaction
}

func newMemTxnStore() *memTxnStore {
    return &memTxnStore{txns: make(map[uint64]*model.Transaction)}
}

func (m *memTxnStore) Create(_ context.Context, t *model.Transaction, _ []repository.SeatPrice) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.nextID++
    t.ID = m.nextID
    cp := *t
    m.txns[t.ID] = &cp
    return nil
}

func (m *memTxnStore) Resolve(_ context.Context, txnID uint64, status string) (bool, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    t, ok := m.txns[txnID]
    if !ok {
        return false, repository.ErrTransactionNotFound
    }
    if t.PaymentStatus != model.PaymentPending {
        return false, nil
    }
    t.PaymentStatus = status
    return true, nil
}

func (m *memTxnStore) GetByID(_ context.Context, txnID uint64) (*model.Transaction, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    t, ok := m.txns[txnID]
    if !ok {
        return nil, repository.ErrTransactionNotFound
    }
    cp := *t
    return &cp, nil
}

func (m *memTxnStore) GetByReference(_ context.Context, ref string) (*model.Transaction, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, t := range m.txns {
        if t.Reference == ref {
            cp := *t
            return &cp, nil
        }
    }
    return nil, repository.ErrTransactionNotFound
}

func (m *memTxnStore) ListExpiredPending(_ context.Context, now time.Time, limit int) ([]model.Transaction, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := []model.Transaction{}
    for _, t := range m.txns {
        if t.PaymentStatus == model.PaymentPending && !t.ExpiresAt.After(now) {
            out = append(out, *t)
            if len(out) == limit {
                break
            }
        }
    }
    return out, nil
}

func (m *memTxnStore) GateSummaryBySeat(_ context.Context, seatID uint64) (*repository.GateSummary, error) {
    return &repository.GateSummary{
        SeatID:   seatID,
        Customer: fmt.Sprintf("holder of seat %d", seatID),
    }, nil
}

// recordingBus captures published snapshots for assertions.
type recordingBus struct {
    mu    sync.Mutex
    snaps []repository.SeatSnapshot
}

func (b *recordingBus) PublishSeat(_ context.Context, snap repository.SeatSnapshot) error {
    b.mu.Lock()
    defer b.mu.Unlock()
    b.snaps = append(b.snaps, snap)
    return nil
}

func (b *recordingBus) published() []repository.SeatSnapshot {
    b.mu.Lock()
    defer b.mu.Unlock()
    out := make([]repository.SeatSnapshot, len(b.snaps))
    copy(out, b.snaps)
    return out
}
