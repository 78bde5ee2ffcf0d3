// Package booking contains the three writers of the seat inventory: the
// reservation coordinator (claims seats for a purchase), the settlement
// handler (resolves pending transactions and releases unpaid seats) and
// the gate validator (redeems sold tickets exactly once).  All of them
// drive the inventory exclusively through its conditional transitions, so
// correctness under concurrency comes from the store, not from locks
// here.
package booking

import (
    "context"
    "fmt"
    "strconv"
    "strings"
    "time"

    "github.com/iliyamo/live-event-ticketing/internal/model"
    "github.com/iliyamo/live-event-ticketing/internal/repository"
)

// SeatStore is the slice of the seat inventory the booking components
// need.  *repository.SeatRepo is the production implementation; tests use
// an in-memory store with the same compare-and-set semantics.
type SeatStore interface {
    TryClaim(ctx context.Context, seatID, txnID uint64) error
    Release(ctx context.Context, seatID, txnID uint64) error
    Finalize(ctx context.Context, seatID, txnID uint64) error
    Redeem(ctx context.Context, seatID uint64) error
    ReleaseByTransaction(ctx context.Context, txnID uint64) ([]uint64, error)
    PricesForEvent(ctx context.Context, eventID uint64, seatIDs []uint64) (map[uint64]uint32, error)
    SnapshotsByIDs(ctx context.Context, seatIDs []uint64) ([]repository.SeatSnapshot, error)
    GetByTicketCode(ctx context.Context, code string) (*model.Seat, error)
}

// TransactionStore is the transaction persistence needed by the
// coordinator and settlement handler.  *repository.TransactionRepo is the
// production implementation.
type TransactionStore interface {
    Create(ctx context.Context, t *model.Transaction, seats []repository.SeatPrice) error
    Resolve(ctx context.Context, txnID uint64, status string) (bool, error)
    GetByID(ctx context.Context, txnID uint64) (*model.Transaction, error)
    GetByReference(ctx context.Context, ref string) (*model.Transaction, error)
    ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]model.Transaction, error)
    GateSummaryBySeat(ctx context.Context, seatID uint64) (*repository.GateSummary, error)
}

// SeatUnavailableError reports which seats of a cart could not be
// claimed.  It is an expected business outcome, surfaced to the caller
// and never retried automatically.
type SeatUnavailableError struct {
    SeatIDs []uint64
}

func (e *SeatUnavailableError) Error() string {
    ids := make([]string, 0, len(e.SeatIDs))
    for _, id := range e.SeatIDs {
        ids = append(ids, strconv.FormatUint(id, 10))
    }
    return "seats unavailable: " + strings.Join(ids, ",")
}

// ValidationError reports a malformed cart or identifier.
type ValidationError struct {
    Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...interface{}) *ValidationError {
    return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
