package model

import "time"

// Payment statuses for a transaction.  A transaction starts PENDING and is
// resolved exactly once to PAID or FAILED by the settlement handler; late
// or duplicate resolutions are ignored.
const (
    PaymentPending = "PENDING"
    PaymentPaid    = "PAID"
    PaymentFailed  = "FAILED"
)

// Transaction records a customer's purchase attempt covering one or more
// seats of a single event.  The total amount is computed server-side from
// section prices at claim time.  ExpiresAt bounds how long a PENDING
// transaction may keep its seats held or sold before the sweeper releases
// them.
//
// Fields:
//  ID               – primary key identifier.
//  Reference        – opaque UUID handed to clients and the payment
//                     collaborator; internal ids are never exposed.
//  EventID          – event being purchased.
//  UserID           – authenticated customer.
//  TotalAmountCents – server-computed total in cents.
//  PaymentStatus    – one of the Payment* constants.
//  ExpiresAt        – hold TTL deadline while PENDING.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last status change timestamp.
type Transaction struct {
    ID               uint64    `json:"-"`
    Reference        string    `json:"reference"`          // transactions.reference
    EventID          uint64    `json:"event_id"`           // transactions.event_id
    UserID           uint64    `json:"user_id"`            // transactions.user_id
    TotalAmountCents uint32    `json:"total_amount_cents"` // transactions.total_amount_cents
    PaymentStatus    string    `json:"payment_status"`     // transactions.payment_status
    ExpiresAt        time.Time `json:"expires_at"`         // transactions.expires_at
    CreatedAt        time.Time `json:"created_at"`         // transactions.created_at
    UpdatedAt        time.Time `json:"updated_at"`         // transactions.updated_at
    SeatIDs          []uint64  `json:"seat_ids,omitempty"` // claimed seats, populated on load
}
