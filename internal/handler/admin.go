package handler // handler package contains admin-specific inventory handlers

import (
    "context"  // context types for the shared flip helper
    "net/http" // http defines status code constants
    "strings"  // strings manipulates text and case
    "time"     // time parses event start timestamps

    "github.com/labstack/echo/v4" // echo framework provides context and JSON helpers

    "github.com/iliyamo/live-event-ticketing/internal/bus"        // bus publishes seat snapshots after admin flips
    "github.com/iliyamo/live-event-ticketing/internal/model"      // model defines events, sections and seats
    "github.com/iliyamo/live-event-ticketing/internal/repository" // repository defines data access
    "github.com/iliyamo/live-event-ticketing/internal/utils"      // utils generates ticket codes
)

// ticketCodeLen is the byte length of generated ticket codes; the hex
// encoding doubles it on the wire.
const ticketCodeLen = 16

// AdminHandler bundles repositories for admins to manage the inventory
type AdminHandler struct {
    Events   *repository.EventRepo   // Events provides event persistence
    Sections *repository.SectionRepo // Sections provides section persistence
    Seats    *repository.SeatRepo    // Seats provides seat persistence
    Bus      bus.Publisher           // Bus delivers snapshots to seat map subscribers
}

// NewAdminHandler constructs a new AdminHandler and panics if any dependency is nil
func NewAdminHandler(events *repository.EventRepo, sections *repository.SectionRepo, seats *repository.SeatRepo, pub bus.Publisher) *AdminHandler {
    if events == nil || sections == nil || seats == nil || pub == nil { // check for nil dependencies
        panic("nil dependency passed to NewAdminHandler") // panic when a dependency is missing
    }
    return &AdminHandler{Events: events, Sections: sections, Seats: seats, Bus: pub}
}

// CreateEvent handles POST /v1/admin/events and creates a bare event without sections
func (h *AdminHandler) CreateEvent(c echo.Context) error { // begin CreateEvent handler
    var body struct { // structure to bind JSON body
        Title    string `json:"title"`     // display title, required
        Venue    string `json:"venue"`     // venue name, required
        StartsAt string `json:"starts_at"` // RFC3339 start time, required
    }
    if err := c.Bind(&body); err != nil { // bind incoming JSON
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"}) // respond bad request when binding fails
    }
    title := strings.TrimSpace(body.Title) // normalize the title
    venue := strings.TrimSpace(body.Venue) // normalize the venue
    if title == "" || venue == "" { // both display fields are required
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and venue are required"}) // respond missing fields
    }
    startsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(body.StartsAt)) // parse the start time
    if err != nil { // reject unparseable timestamps
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"}) // respond invalid timestamp
    }
    ev := &model.Event{Title: title, Venue: venue, StartsAt: startsAt} // build the event record
    if err := h.Events.Create(c.Request().Context(), ev); err != nil { // persist the event
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"}) // respond generic DB error
    }
    return c.JSON(http.StatusCreated, ev) // return the created event with its ID
}

// CreateSection handles POST /v1/admin/events/:id/sections.  It creates the
// section and generates its complete seat grid in one call: rows become
// alphabetical labels (A, B, … AA) and every seat receives a unique opaque
// ticket code at birth, so the code exists before the seat is ever sold.
func (h *AdminHandler) CreateSection(c echo.Context) error { // begin CreateSection handler
    eventID, ok := pathID(c, "id") // parse event ID from path
    if !ok { // event ID must be numeric and non zero
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"}) // respond invalid parameter
    }
    var body struct { // structure to bind JSON body
        Name       string `json:"name"`        // section display name
        PriceCents uint32 `json:"price_cents"` // price per seat in cents
        RowCount   uint32 `json:"row_count"`   // number of rows to generate
        ColCount   uint32 `json:"col_count"`   // seats per row
        LayoutType string `json:"layout_type"` // BOWL | ORCHESTRA | GRID
    }
    if err := c.Bind(&body); err != nil { // bind incoming JSON
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"}) // respond bad request
    }
    name := strings.TrimSpace(body.Name) // normalize the section name
    if name == "" { // name is required
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"}) // respond missing name
    }
    if body.PriceCents == 0 { // free seats are not a thing here
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_cents must be greater than zero"}) // respond invalid price
    }
    if body.RowCount == 0 || body.ColCount == 0 { // grid must have at least one seat
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "row_count and col_count must be greater than zero"}) // respond invalid grid
    }
    if uint64(body.RowCount)*uint64(body.ColCount) > 10000 { // multiply in uint64; a uint32 product could wrap past the cap
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "section exceeds 10000 seats"}) // respond oversized grid
    }
    layout := strings.ToUpper(strings.TrimSpace(body.LayoutType)) // normalize the layout kind
    switch layout { // validate layout values
    case model.LayoutBowl, model.LayoutOrchestra, model.LayoutGrid: // allowed values pass through
    case "": // default to a plain grid when omitted
        layout = model.LayoutGrid // assign default layout
    default: // any other string is invalid
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid layout_type"}) // respond invalid layout
    }

    ctx := c.Request().Context() // request-scoped context for DB calls
    if _, err := h.Events.GetByID(ctx, eventID); err != nil { // verify the parent event exists
        if err == repository.ErrEventNotFound { // event missing
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"}) // respond not found
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"}) // generic DB error
    }

    sec := &model.Section{ // build the section record
        EventID:    eventID,         // parent event
        Name:       name,            // display name
        PriceCents: body.PriceCents, // authoritative unit price
        RowCount:   body.RowCount,   // grid rows
        ColCount:   body.ColCount,   // grid columns
        LayoutType: layout,          // layout kind
    }
    if err := h.Sections.Create(ctx, sec); err != nil { // persist the section
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create section failed"}) // respond DB error
    }

    // generate the seat grid with one ticket code per seat
    seats := make([]model.Seat, 0, int(body.RowCount)*int(body.ColCount)) // preallocate the grid
    for r := 0; r < int(body.RowCount); r++ { // iterate rows
        label := indexToRowLabel(r) // compute the alphabetical row label
        for n := 1; n <= int(body.ColCount); n++ { // iterate seat numbers within the row
            code, err := utils.NewTicketCode(ticketCodeLen) // mint the opaque ticket code
            if err != nil { // entropy failure is not recoverable per request
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ticket code generation failed"}) // respond failure
            }
            seats = append(seats, model.Seat{ // append the seat row
                SectionID:  sec.ID,              // owning section
                RowLabel:   label,               // row label
                SeatNumber: uint32(n),           // seat number
                Status:     model.SeatAvailable, // every seat starts sellable
                TicketCode: code,                // unique opaque code
            })
        }
    }
    if err := h.Seats.CreateBulk(ctx, seats); err != nil { // bulk insert the grid
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "seat generation failed"}) // respond DB error
    }

    return c.JSON(http.StatusCreated, echo.Map{ // respond with the section and grid size
        "section":    sec,        // the created section
        "seat_count": len(seats), // number of generated seats
    })
}

// BlockSeat handles POST /v1/admin/seats/:id/block and withholds an available seat from sale
func (h *AdminHandler) BlockSeat(c echo.Context) error { // begin BlockSeat handler
    return h.flipSeat(c, h.Seats.Block) // delegate to the shared flip helper
}

// UnblockSeat handles POST /v1/admin/seats/:id/unblock and returns a blocked seat to sale
func (h *AdminHandler) UnblockSeat(c echo.Context) error { // begin UnblockSeat handler
    return h.flipSeat(c, h.Seats.Unblock) // delegate to the shared flip helper
}

// flipSeat runs one administrative status flip and publishes the resulting snapshot
func (h *AdminHandler) flipSeat(c echo.Context, flip func(ctx context.Context, seatID uint64) error) error {
    seatID, ok := pathID(c, "id") // parse seat ID from path
    if !ok { // seat ID must be numeric and non zero
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"}) // respond invalid parameter
    }
    ctx := c.Request().Context() // request-scoped context
    if err := flip(ctx, seatID); err != nil { // attempt the conditional status flip
        switch err { // map repository sentinels to HTTP statuses
        case repository.ErrSeatNotFound: // unknown seat
            return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"}) // respond not found
        case repository.ErrSeatConflict: // seat is claimed or already in the target state
            return c.JSON(http.StatusConflict, echo.Map{"error": "seat is not in a flippable state"}) // respond conflict
        default: // anything else is a server error
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"}) // respond DB error
        }
    }
    // publish the new snapshot so live seat maps reflect the flip
    if snaps, err := h.Seats.SnapshotsByIDs(ctx, []uint64{seatID}); err == nil { // load the fresh snapshot
        for _, snap := range snaps { // publish each snapshot
            _ = h.Bus.PublishSeat(ctx, snap) // delivery is best effort
        }
    }
    seat, err := h.Seats.GetByID(ctx, seatID) // reload the seat for the response
    if err != nil { // reload failure after a successful flip
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"}) // respond DB error
    }
    return c.JSON(http.StatusOK, seat) // return the updated seat
}
