package booking

import (
    "context"
    "math"
    "time"

    "github.com/google/uuid"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/live-event-ticketing/internal/bus"
    "github.com/iliyamo/live-event-ticketing/internal/model"
    "github.com/iliyamo/live-event-ticketing/internal/repository"
)

// Coordinator turns a cart of seat ids into an all-or-nothing purchase
// attempt.  Either every seat in the cart ends up SOLD under one new
// transaction, or no seat remains claimed and the transaction is marked
// FAILED.  Partial holds never survive: any seat claimed before a
// mid-batch failure is released before the error returns.
type Coordinator struct {
    seats   SeatStore
    txns    TransactionStore
    bus     bus.Publisher
    settler *Settlement
    holdTTL time.Duration
}

// NewCoordinator constructs a Coordinator.  All dependencies must be
// non-nil; holdTTL bounds how long the resulting transaction may stay
// PENDING before the settlement handler reclaims its seats.
func NewCoordinator(seats SeatStore, txns TransactionStore, pub bus.Publisher, settler *Settlement, holdTTL time.Duration) *Coordinator {
    if seats == nil || txns == nil || pub == nil || settler == nil {
        panic("nil dependency passed to NewCoordinator")
    }
    return &Coordinator{seats: seats, txns: txns, bus: pub, settler: settler, holdTTL: holdTTL}
}

// BookSeats is the bookSeats operation: it creates a PENDING transaction
// priced from the seats' sections, claims every seat in the cart with the
// store's compare-and-set, finalizes the batch to SOLD and hands the
// transaction to the settlement handler.  The returned transaction
// carries the public reference the client polls and pays against.
//
// Failure modes: a *ValidationError for an empty/duplicate-free-empty
// cart or seats outside the event, a *SeatUnavailableError when any seat
// lost its claim race, or an opaque error for infrastructure faults.  In
// every failure case all seats claimed by this attempt have been released
// and the transaction (if created) resolved FAILED.
func (c *Coordinator) BookSeats(ctx context.Context, eventID uint64, seatIDs []uint64, userID uint64) (*model.Transaction, error) {
    unique := dedupe(seatIDs)
    if len(unique) == 0 {
        return nil, validationf("no valid seat ids in cart")
    }

    // Resolve authoritative prices.  A seat missing from the result does
    // not belong to this event (or does not exist), which is a cart
    // error, not a race.
    prices, err := c.seats.PricesForEvent(ctx, eventID, unique)
    if err != nil {
        return nil, err
    }
    // Sum in uint64 so a cart of very expensive seats cannot wrap the
    // 32-bit total column.
    var total uint64
    seatPrices := make([]repository.SeatPrice, 0, len(unique))
    for _, id := range unique {
        p, ok := prices[id]
        if !ok {
            return nil, validationf("seat %d does not belong to event %d", id, eventID)
        }
        total += uint64(p)
        seatPrices = append(seatPrices, repository.SeatPrice{SeatID: id, PriceCents: p})
    }
    if total > math.MaxUint32 {
        return nil, validationf("cart total %d cents exceeds the representable maximum", total)
    }

    txn := &model.Transaction{
        Reference:        uuid.NewString(),
        EventID:          eventID,
        UserID:           userID,
        TotalAmountCents: uint32(total),
        PaymentStatus:    model.PaymentPending,
        ExpiresAt:        time.Now().UTC().Add(c.holdTTL),
        SeatIDs:          unique,
    }
    if err := c.txns.Create(ctx, txn, seatPrices); err != nil {
        return nil, err
    }

    // Phase one: claim each seat.  The store transition is the only
    // synchronisation point; on the first lost race the whole attempt is
    // rolled back.
    claimed := make([]uint64, 0, len(unique))
    for _, id := range unique {
        if err := c.seats.TryClaim(ctx, id, txn.ID); err != nil {
            c.abort(ctx, txn, claimed)
            if err == repository.ErrSeatConflict || err == repository.ErrSeatNotFound {
                return nil, &SeatUnavailableError{SeatIDs: []uint64{id}}
            }
            return nil, err
        }
        claimed = append(claimed, id)
    }

    // Phase two: finalize every held seat to SOLD.  A finalize can only
    // fail if the hold expired between claim and finalize, which gets
    // the same all-or-nothing rollback.
    for _, id := range claimed {
        if err := c.seats.Finalize(ctx, id, txn.ID); err != nil {
            c.abort(ctx, txn, claimed)
            if err == repository.ErrSeatConflict {
                return nil, &SeatUnavailableError{SeatIDs: []uint64{id}}
            }
            return nil, err
        }
    }

    c.publishSeats(ctx, claimed)
    c.settler.Track(txn)
    return txn, nil
}

// abort releases every seat claimed so far and resolves the transaction
// FAILED.  Release is a no-op for seats that already progressed, so the
// rollback is safe to run concurrently with the sweeper.
func (c *Coordinator) abort(ctx context.Context, txn *model.Transaction, claimed []uint64) {
    for _, id := range claimed {
        if err := c.seats.Release(ctx, id, txn.ID); err != nil {
            logrus.WithError(err).WithFields(logrus.Fields{
                "seat_id":     id,
                "transaction": txn.Reference,
            }).Error("coordinator: compensating release failed")
        }
    }
    if _, err := c.txns.Resolve(ctx, txn.ID, model.PaymentFailed); err != nil {
        logrus.WithError(err).WithField("transaction", txn.Reference).
            Error("coordinator: failed to mark aborted transaction")
    }
    c.publishSeats(ctx, claimed)
}

// publishSeats pushes fresh snapshots for the given seats to the bus.
// Publish failures only delay viewers, so they are logged and swallowed.
func (c *Coordinator) publishSeats(ctx context.Context, seatIDs []uint64) {
    if len(seatIDs) == 0 {
        return
    }
    snaps, err := c.seats.SnapshotsByIDs(ctx, seatIDs)
    if err != nil {
        logrus.WithError(err).Error("coordinator: loading snapshots for publish failed")
        return
    }
    for _, snap := range snaps {
        _ = c.bus.PublishSeat(ctx, snap)
    }
}

// dedupe drops zero and repeated ids while preserving cart order.
func dedupe(ids []uint64) []uint64 {
    unique := make([]uint64, 0, len(ids))
    seen := make(map[uint64]struct{}, len(ids))
    for _, id := range ids {
        if id == 0 {
            continue
        }
        if _, ok := seen[id]; !ok {
            seen[id] = struct{}{}
            unique = append(unique, id)
        }
    }
    return unique
}
