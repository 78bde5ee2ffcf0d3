package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/live-event-ticketing/internal/booking"
)

// GateHandler exposes the staff check-in endpoint.
type GateHandler struct {
    Gate *booking.Gate
}

func NewGateHandler(g *booking.Gate) *GateHandler {
    if g == nil {
        panic("nil gate passed to NewGateHandler")
    }
    return &GateHandler{Gate: g}
}

type checkInReq struct {
    TicketCode string `json:"ticket_code"`
}

// CheckIn handles POST /v1/gate/check-in.  Denials are 200 responses
// with granted=false; the scanner decides how to render the reason.
func (h *GateHandler) CheckIn(c echo.Context) error {
    var req checkInReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    code := strings.TrimSpace(req.TicketCode)
    if code == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_code required"})
    }

    res, err := h.Gate.CheckIn(c.Request().Context(), code)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-in failed"})
    }
    return c.JSON(http.StatusOK, res)
}
