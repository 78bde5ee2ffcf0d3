// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the booking coordinator to distinguish between failure
// scenarios. For example, ErrSeatConflict indicates that a conditional
// seat transition lost its compare-and-set race, while ErrNotSold and
// ErrAlreadyCheckedIn distinguish the two redemption denials the gate
// has to display differently.
package repository

import "errors"

// ErrEventNotFound is returned when an event lookup yields no rows.
var ErrEventNotFound = errors.New("event not found")

// ErrSectionNotFound is returned when a section lookup yields no rows.
var ErrSectionNotFound = errors.New("section not found")

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

// ErrTransactionNotFound is returned when a transaction lookup yields no
// rows. Handlers should translate this into an HTTP 404 response.
var ErrTransactionNotFound = errors.New("transaction not found")

// ErrSeatConflict is returned when a conditional seat transition affects
// zero rows because the seat was not in the expected prior status. The
// caller lost the race or the seat had already progressed.
var ErrSeatConflict = errors.New("seat not in expected status")

// ErrNotSold is returned by Redeem when the scanned seat has never been
// sold (still available, held, or blocked). The ticket is invalid or
// unpaid.
var ErrNotSold = errors.New("seat not sold")

// ErrAlreadyCheckedIn is returned by Redeem when the seat's ticket was
// already redeemed. Exactly one Redeem call per seat ever succeeds.
var ErrAlreadyCheckedIn = errors.New("seat already checked in")
