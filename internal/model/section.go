package model

import "time"

// Layout kinds supported when generating a section's seat grid.  The kind
// only matters to clients drawing the venue; the inventory treats all
// layouts as a rows×columns grid.
const (
    LayoutBowl      = "BOWL"      // stadium bowl, seats on an arc
    LayoutOrchestra = "ORCHESTRA" // concert fan layout
    LayoutGrid      = "GRID"      // plain theater grid
)

// Section groups the seats of one event block and carries the
// authoritative unit price.  Price lives here and nowhere else; amounts
// submitted by clients are never trusted.
//
// Fields:
//  ID         – primary key identifier.
//  EventID    – event this section belongs to.
//  Name       – display name (e.g. "VIP West").
//  PriceCents – price per seat in cents, the single source of truth.
//  RowCount   – number of rows generated for this section.
//  ColCount   – seats per row.
//  LayoutType – one of the Layout* constants.
//  CreatedAt  – creation timestamp.
type Section struct {
    ID         uint64    `json:"id"`          // sections.id
    EventID    uint64    `json:"event_id"`    // sections.event_id
    Name       string    `json:"name"`        // sections.name
    PriceCents uint32    `json:"price_cents"` // sections.price_cents
    RowCount   uint32    `json:"row_count"`   // sections.row_count
    ColCount   uint32    `json:"col_count"`   // sections.col_count
    LayoutType string    `json:"layout_type"` // sections.layout_type
    CreatedAt  time.Time `json:"created_at"`  // sections.created_at
}
