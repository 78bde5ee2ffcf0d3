package booking

import (
    "context"
    "errors"

    "github.com/sirupsen/logrus"

    "github.com/iliyamo/live-event-ticketing/internal/bus"
    "github.com/iliyamo/live-event-ticketing/internal/repository"
)

// Denial reasons returned to gate clients.
const (
    ReasonAlreadyCheckedIn = "ALREADY_CHECKED_IN"
    ReasonNotSold          = "NOT_SOLD"
)

// CheckInResult is what a gate scanner renders: entry granted or a
// denial reason, plus the ticket summary when the seat could be
// identified.
type CheckInResult struct {
    Granted bool                    `json:"granted"`
    Reason  string                  `json:"reason,omitempty"`
    Summary *repository.GateSummary `json:"summary,omitempty"`
}

// Gate validates ticket codes at entry.  Redemption is a single
// conditional update on the seat, so two staff devices scanning the
// same code concurrently admit exactly one holder.
type Gate struct {
    seats SeatStore
    txns  TransactionStore
    bus   bus.Publisher
}

func NewGate(seats SeatStore, txns TransactionStore, pub bus.Publisher) *Gate {
    if seats == nil || txns == nil || pub == nil {
        panic("nil dependency passed to NewGate")
    }
    return &Gate{seats: seats, txns: txns, bus: pub}
}

// CheckIn resolves a scanned ticket code and attempts to redeem its
// seat.  An unknown code and a seat never sold both come back as a
// NOT_SOLD denial; a duplicate scan comes back ALREADY_CHECKED_IN with
// the summary so staff can see who the ticket belongs to.
func (g *Gate) CheckIn(ctx context.Context, ticketCode string) (*CheckInResult, error) {
    if ticketCode == "" {
        return nil, validationf("ticket code is required")
    }
    seat, err := g.seats.GetByTicketCode(ctx, ticketCode)
    if errors.Is(err, repository.ErrSeatNotFound) {
        return &CheckInResult{Reason: ReasonNotSold}, nil
    }
    if err != nil {
        return nil, err
    }

    err = g.seats.Redeem(ctx, seat.ID)
    switch {
    case err == nil:
        // fall through to grant
    case errors.Is(err, repository.ErrAlreadyCheckedIn):
        summary, serr := g.txns.GateSummaryBySeat(ctx, seat.ID)
        if serr != nil {
            logrus.WithError(serr).WithField("seat_id", seat.ID).Warn("gate: summary load after duplicate scan")
        }
        return &CheckInResult{Reason: ReasonAlreadyCheckedIn, Summary: summary}, nil
    case errors.Is(err, repository.ErrNotSold):
        return &CheckInResult{Reason: ReasonNotSold}, nil
    default:
        return nil, err
    }

    summary, err := g.txns.GateSummaryBySeat(ctx, seat.ID)
    if err != nil {
        // The seat is redeemed either way; a missing summary only
        // degrades what the scanner displays.
        logrus.WithError(err).WithField("seat_id", seat.ID).Warn("gate: summary load after redeem")
    }
    if snaps, err := g.seats.SnapshotsByIDs(ctx, []uint64{seat.ID}); err == nil {
        for _, snap := range snaps {
            _ = g.bus.PublishSeat(ctx, snap)
        }
    }
    logrus.WithField("seat_id", seat.ID).Info("gate: ticket redeemed")
    return &CheckInResult{Granted: true, Summary: summary}, nil
}
