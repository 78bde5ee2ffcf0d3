// Package worker runs the background maintenance loops of the server.
package worker

import (
    "context"
    "time"

    "github.com/sirupsen/logrus"

    "github.com/iliyamo/live-event-ticketing/internal/booking"
    "github.com/iliyamo/live-event-ticketing/internal/model"
)

const sweepBatchSize = 200

// TransactionLister is the slice of the transaction store the sweeper
// needs: expired holds to fail, and failed transactions whose seats were
// never released.
type TransactionLister interface {
    ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]model.Transaction, error)
    ListFailedWithSeats(ctx context.Context, limit int) ([]model.Transaction, error)
}

// Sweeper periodically fails PENDING transactions whose hold deadline has
// passed and releases seats still bound to FAILED transactions.  The
// in-memory expiry timers inside the settlement handler normally get
// there first; the sweeper exists for transactions whose timers were lost
// to a process restart, and for failed transactions whose inline seat
// release was interrupted.  Failing a transaction the settlement handler
// already resolved is harmless because resolution is a conditional
// update, and releasing is idempotent.
type Sweeper struct {
    txns     TransactionLister
    settler  *booking.Settlement
    interval time.Duration
}

func NewSweeper(txns TransactionLister, settler *booking.Settlement, interval time.Duration) *Sweeper {
    if txns == nil || settler == nil {
        panic("nil dependency passed to NewSweeper")
    }
    return &Sweeper{txns: txns, settler: settler, interval: interval}
}

// Run blocks until ctx is cancelled, sweeping once per interval.  The
// first sweep happens immediately so a restarted server reclaims stale
// holds without waiting a full tick.
func (s *Sweeper) Run(ctx context.Context) {
    logrus.WithField("interval", s.interval).Info("sweeper: started")
    s.sweep(ctx)
    ticker := time.NewTicker(s.interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            logrus.Info("sweeper: stopped")
            return
        case <-ticker.C:
            s.sweep(ctx)
        }
    }
}

func (s *Sweeper) sweep(ctx context.Context) {
    failed := s.failExpired(ctx)
    repaired := s.releaseOrphans(ctx)
    if failed > 0 || repaired > 0 {
        logrus.WithFields(logrus.Fields{
            "failed":   failed,
            "repaired": repaired,
        }).Info("sweeper: pass complete")
    }
}

func (s *Sweeper) failExpired(ctx context.Context) int {
    expired, err := s.txns.ListExpiredPending(ctx, time.Now(), sweepBatchSize)
    if err != nil {
        logrus.WithError(err).Error("sweeper: listing expired transactions failed")
        return 0
    }
    failed := 0
    for _, txn := range expired {
        if err := s.settler.Resolve(ctx, txn.ID, model.PaymentFailed); err != nil {
            logrus.WithError(err).WithField("transaction_id", txn.ID).Error("sweeper: failing expired transaction")
            continue
        }
        failed++
    }
    return failed
}

// releaseOrphans frees seats still bound to FAILED transactions.  Such
// seats exist only when the release inside Resolve was interrupted, so
// the count is almost always zero.
func (s *Sweeper) releaseOrphans(ctx context.Context) int {
    orphans, err := s.txns.ListFailedWithSeats(ctx, sweepBatchSize)
    if err != nil {
        logrus.WithError(err).Error("sweeper: listing failed transactions with seats failed")
        return 0
    }
    repaired := 0
    for _, txn := range orphans {
        if err := s.settler.ReleaseFailed(ctx, txn.ID); err != nil {
            logrus.WithError(err).WithField("transaction_id", txn.ID).Error("sweeper: releasing orphaned seats")
            continue
        }
        repaired++
    }
    return repaired
}
