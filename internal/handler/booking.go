package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/live-event-ticketing/internal/booking"
    "github.com/iliyamo/live-event-ticketing/internal/middleware"
)

// BookingHandler exposes the purchase endpoint on top of the booking
// coordinator.
type BookingHandler struct {
    Coordinator *booking.Coordinator
}

func NewBookingHandler(coord *booking.Coordinator) *BookingHandler {
    if coord == nil {
        panic("nil coordinator passed to NewBookingHandler")
    }
    return &BookingHandler{Coordinator: coord}
}

type bookReq struct {
    SeatIDs []uint64 `json:"seat_ids"`
}

// Book handles POST /v1/events/:id/book.  The request either claims
// every requested seat or none of them; a conflict response names the
// first seat that was unavailable so the client can refresh its map.
func (h *BookingHandler) Book(c echo.Context) error {
    eventID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    var req bookReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if len(req.SeatIDs) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids required"})
    }

    txn, err := h.Coordinator.BookSeats(c.Request().Context(), eventID, req.SeatIDs, middleware.UserID(c))
    if err != nil {
        var unavailable *booking.SeatUnavailableError
        var invalid *booking.ValidationError
        switch {
        case errors.As(err, &unavailable):
            return c.JSON(http.StatusConflict, echo.Map{
                "error":    "seats unavailable",
                "seat_ids": unavailable.SeatIDs,
            })
        case errors.As(err, &invalid):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": invalid.Error()})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
        }
    }
    return c.JSON(http.StatusCreated, txn)
}
