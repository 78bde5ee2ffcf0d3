package model

import "time"

// Seat statuses.  Transitions are monotonic per seat: AVAILABLE → HELD →
// SOLD → CHECKED_IN, with HELD and SOLD reverting to AVAILABLE only when a
// hold expires or a payment fails.  BLOCKED is an administrative state
// reachable only from AVAILABLE.
const (
    SeatAvailable = "AVAILABLE"  // sellable
    SeatHeld      = "HELD"       // provisionally claimed by a pending transaction
    SeatSold      = "SOLD"       // claimed by a transaction that finalized its batch
    SeatCheckedIn = "CHECKED_IN" // ticket redeemed at the gate
    SeatBlocked   = "BLOCKED"    // withheld from sale by an admin
)

// Seat is the atomic sellable unit, identified within its section by row
// label and seat number.  Seats are created in bulk when a section's
// layout is generated and are mutated only through the inventory store's
// conditional transitions.
//
// Fields:
//  ID            – primary key identifier.
//  SectionID     – section to which this seat belongs.
//  RowLabel      – letter(s) designating the row (A, B, … AA).
//  SeatNumber    – number of the seat within the row.
//  Status        – one of the Seat* status constants.
//  TransactionID – transaction currently claiming the seat (nil when free).
//  TicketCode    – opaque code printed on the ticket, unique per seat.
//  Version       – monotonic change counter bumped on every transition;
//                  subscribers use it for last-writer-wins merging.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last transition timestamp.
type Seat struct {
    ID            uint64    `json:"id"`                       // seats.id
    SectionID     uint64    `json:"section_id"`               // seats.section_id
    RowLabel      string    `json:"row_label"`                // seats.row_label
    SeatNumber    uint32    `json:"seat_number"`              // seats.seat_number
    Status        string    `json:"status"`                   // seats.status
    TransactionID *uint64   `json:"transaction_id,omitempty"` // seats.transaction_id (nullable)
    TicketCode    string    `json:"-"`                        // seats.ticket_code, never listed publicly
    Version       uint64    `json:"version"`                  // seats.version
    CreatedAt     time.Time `json:"created_at"`               // seats.created_at
    UpdatedAt     time.Time `json:"updated_at"`               // seats.updated_at
}
