// Package bus carries seat-state change notifications from the inventory
// to interested viewers.  Messages are full seat snapshots so delivery is
// idempotent: a subscriber can apply them in any order, any number of
// times, and converge on the store's state.  The bus is a convenience
// cache-invalidation signal; the database remains the ledger, and a
// viewer that reconnects simply re-reads current state.
package bus

import (
    "context"
    "strconv"

    "github.com/iliyamo/live-event-ticketing/internal/repository"
)

// Publisher pushes one seat snapshot to every subscriber of the seat's
// event and section topics.  Implementations must tolerate having no
// subscribers and should never block the calling transition path for
// long.
type Publisher interface {
    PublishSeat(ctx context.Context, snap repository.SeatSnapshot) error
}

// EventTopic names the pub/sub channel carrying all seat changes of one
// event.
func EventTopic(eventID uint64) string {
    return "seats.event." + strconv.FormatUint(eventID, 10)
}

// SectionTopic names the pub/sub channel scoped to a single section.
func SectionTopic(sectionID uint64) string {
    return "seats.section." + strconv.FormatUint(sectionID, 10)
}

// NopPublisher drops every snapshot.  It stands in when Redis is not
// reachable at startup; booking keeps working, viewers just poll.
type NopPublisher struct{}

func (NopPublisher) PublishSeat(context.Context, repository.SeatSnapshot) error { return nil }
