// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketSettledEvent is published whenever a transaction reaches a final
// payment status.  It carries enough information for downstream consumers
// to log, notify, or trigger analytics without querying the primary
// database.
type TicketSettledEvent struct {
    Reference        string   `json:"reference"`
    EventID          uint64   `json:"event_id"`
    UserID           uint64   `json:"user_id"`
    Outcome          string   `json:"outcome"` // PAID or FAILED
    SeatIDs          []uint64 `json:"seat_ids"`
    TotalAmountCents uint32   `json:"total_amount_cents"`
    SettledAt        string   `json:"settled_at"`
}
