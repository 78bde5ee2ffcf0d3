package booking

import (
    "context"
    "sync"
    "time"

    "github.com/sirupsen/logrus"

    "github.com/iliyamo/live-event-ticketing/internal/bus"
    "github.com/iliyamo/live-event-ticketing/internal/model"
)

// AuditPublisher receives a durable record of every settlement outcome.
// The RabbitMQ publisher in internal/queue implements it; settlement
// treats audit delivery as best effort.
type AuditPublisher interface {
    PublishSettled(ctx context.Context, txn *model.Transaction, outcome string) error
}

// Settlement resolves each PENDING transaction exactly once, to PAID on a
// gateway confirmation or to FAILED on decline or hold expiry.  The
// one-shot guarantee comes from the transaction store's conditional
// update, so callbacks, expiry timers, the sweeper and the simulated
// gateway may all race on the same transaction safely; whoever loses the
// conditional update becomes a no-op.
//
// Timers are in-memory and die with the process; the sweeper in
// internal/worker is the persistent backstop that catches transactions
// whose timers were lost to a restart.
type Settlement struct {
    seats SeatStore
    txns  TransactionStore
    bus   bus.Publisher
    audit AuditPublisher // optional

    simulateAfter time.Duration // fixed-delay fake confirmation; 0 disables

    mu     sync.Mutex
    timers map[uint64][]*time.Timer
    closed bool
}

// NewSettlement constructs the settlement handler.  audit may be nil.
// simulateAfter, when positive, schedules a fake PAID confirmation per
// tracked transaction, standing in for a real gateway callback during
// development.  It is cancelled the moment a genuine callback arrives.
func NewSettlement(seats SeatStore, txns TransactionStore, pub bus.Publisher, audit AuditPublisher, simulateAfter time.Duration) *Settlement {
    if seats == nil || txns == nil || pub == nil {
        panic("nil dependency passed to NewSettlement")
    }
    return &Settlement{
        seats:         seats,
        txns:          txns,
        bus:           pub,
        audit:         audit,
        simulateAfter: simulateAfter,
        timers:        make(map[uint64][]*time.Timer),
    }
}

// Track registers a freshly created transaction: an expiry timer firing
// at its hold deadline and, when simulation is enabled, the fake
// confirmation.  Timer callbacks run with a background context because
// the originating request is long gone when they fire.
func (s *Settlement) Track(txn *model.Transaction) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.closed {
        return
    }
    id := txn.ID
    var ts []*time.Timer
    delay := time.Until(txn.ExpiresAt)
    if delay < 0 {
        delay = 0
    }
    ts = append(ts, time.AfterFunc(delay, func() {
        if err := s.Resolve(context.Background(), id, model.PaymentFailed); err != nil {
            logrus.WithError(err).WithField("transaction_id", id).Error("settlement: expiry resolution failed")
        }
    }))
    if s.simulateAfter > 0 {
        ts = append(ts, time.AfterFunc(s.simulateAfter, func() {
            if err := s.Resolve(context.Background(), id, model.PaymentPaid); err != nil {
                logrus.WithError(err).WithField("transaction_id", id).Error("settlement: simulated confirmation failed")
            }
        }))
    }
    s.timers[id] = ts
}

// Resolve drives the PENDING → PAID/FAILED state machine for one
// transaction.  A transaction that is already resolved ignores the call.
// On FAILED every seat still bound to the transaction, held or sold,
// is released back to AVAILABLE and a snapshot is published per seat; on
// PAID the seats simply stay SOLD.  Either way the transaction's timers
// are cancelled and the outcome is handed to the audit publisher.
func (s *Settlement) Resolve(ctx context.Context, txnID uint64, outcome string) error {
    if outcome != model.PaymentPaid && outcome != model.PaymentFailed {
        return validationf("unknown settlement outcome %q", outcome)
    }
    applied, err := s.txns.Resolve(ctx, txnID, outcome)
    if err != nil {
        return err
    }
    s.cancelTimers(txnID)
    if !applied {
        // Late or duplicate callback; the transaction already settled.
        return nil
    }
    if outcome == model.PaymentFailed {
        if err := s.ReleaseFailed(ctx, txnID); err != nil {
            // The transaction is FAILED but its seats are still bound;
            // the sweeper repairs this on its next pass via
            // ListFailedWithSeats, but it must still be loud.
            logrus.WithError(err).WithField("transaction_id", txnID).
                Error("settlement: releasing seats of failed transaction")
            return err
        }
    } else {
        logrus.WithField("transaction_id", txnID).Info("settlement: transaction paid")
    }
    s.publishAudit(txnID, outcome)
    return nil
}

// ReleaseFailed returns to AVAILABLE every seat still bound to an
// already-FAILED transaction and publishes a snapshot per seat.  Resolve
// calls it inline; the sweeper calls it to repair transactions whose
// inline release was interrupted by a store error or a crash, since a
// sold seat must never keep referencing a failed transaction.
func (s *Settlement) ReleaseFailed(ctx context.Context, txnID uint64) error {
    released, err := s.seats.ReleaseByTransaction(ctx, txnID)
    if err != nil {
        return err
    }
    s.publishSeats(ctx, released)
    if len(released) > 0 {
        logrus.WithFields(logrus.Fields{
            "transaction_id": txnID,
            "released":       len(released),
        }).Info("settlement: failed transaction seats released")
    }
    return nil
}

// ResolveByReference maps the payment collaborator's callback, which
// carries the public reference, onto Resolve.
func (s *Settlement) ResolveByReference(ctx context.Context, ref, outcome string) (*model.Transaction, error) {
    txn, err := s.txns.GetByReference(ctx, ref)
    if err != nil {
        return nil, err
    }
    if err := s.Resolve(ctx, txn.ID, outcome); err != nil {
        return nil, err
    }
    return s.txns.GetByID(ctx, txn.ID)
}

func (s *Settlement) publishSeats(ctx context.Context, seatIDs []uint64) {
    if len(seatIDs) == 0 {
        return
    }
    snaps, err := s.seats.SnapshotsByIDs(ctx, seatIDs)
    if err != nil {
        logrus.WithError(err).Error("settlement: loading snapshots for publish failed")
        return
    }
    for _, snap := range snaps {
        _ = s.bus.PublishSeat(ctx, snap)
    }
}

func (s *Settlement) publishAudit(txnID uint64, outcome string) {
    if s.audit == nil {
        return
    }
    // Audit delivery happens off the settlement path; a broker outage
    // must not block seat releases.
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer cancel()
        txn, err := s.txns.GetByID(ctx, txnID)
        if err != nil {
            logrus.WithError(err).WithField("transaction_id", txnID).Warn("settlement: audit load failed")
            return
        }
        if err := s.audit.PublishSettled(ctx, txn, outcome); err != nil {
            logrus.WithError(err).WithField("transaction_id", txnID).Warn("settlement: audit publish failed")
        }
    }()
}

func (s *Settlement) cancelTimers(txnID uint64) {
    s.mu.Lock()
    ts := s.timers[txnID]
    delete(s.timers, txnID)
    s.mu.Unlock()
    for _, t := range ts {
        t.Stop()
    }
}

// Close stops all outstanding timers.  Pending transactions left behind
// are picked up by the sweeper on the next start.
func (s *Settlement) Close() {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.closed = true
    for id, ts := range s.timers {
        for _, t := range ts {
            t.Stop()
        }
        delete(s.timers, id)
    }
}
