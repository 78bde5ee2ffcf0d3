package model

import "time"

// Event describes a live event for which numbered seats are sold.
// Events are immutable once published; only admin endpoints may create
// or retire them.
//
// Fields:
//  ID        – primary key identifier.
//  Title     – display title of the event.
//  Venue     – venue name.
//  StartsAt  – when the event begins (UTC).
//  CreatedAt – creation timestamp.
type Event struct {
    ID        uint64    `json:"id"`         // events.id
    Title     string    `json:"title"`      // events.title
    Venue     string    `json:"venue"`      // events.venue
    StartsAt  time.Time `json:"starts_at"`  // events.starts_at
    CreatedAt time.Time `json:"created_at"` // events.created_at
}
