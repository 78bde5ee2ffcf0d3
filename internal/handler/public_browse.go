// Package handler exposes HTTP handlers for both authenticated and public
// endpoints.  This file defines the public browsing API: unauthenticated
// users may list events, their sections and the live seat map.  Ticket
// codes and customer identities are never part of these responses.

package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/live-event-ticketing/internal/model"
    "github.com/iliyamo/live-event-ticketing/internal/repository"
)

// PublicHandler aggregates repositories needed for unauthenticated
// browsing.  It produces sanitized responses suitable for public
// consumption.
type PublicHandler struct {
    Events   *repository.EventRepo   // provides access to event data
    Sections *repository.SectionRepo // provides access to section data
    Seats    *repository.SeatRepo    // provides access to seat data
}

// PublicSeat is a seat as shown on the public seat map.  The version
// lets polling clients discard stale rows against a stream snapshot.
type PublicSeat struct {
    ID         uint64 `json:"id"`
    RowLabel   string `json:"row_label"`
    SeatNumber uint32 `json:"seat_number"`
    Status     string `json:"status"`
    Version    uint64 `json:"version"`
}

// ListEvents returns all events ordered by start time.
func (h *PublicHandler) ListEvents(c echo.Context) error {
    events, err := h.Events.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": events})
}

// GetEvent returns a single event together with its sections, so a
// client can render the venue overview with prices in one round trip.
func (h *PublicHandler) GetEvent(c echo.Context) error {
    ctx := c.Request().Context()
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ev, err := h.Events.GetByID(ctx, id)
    if err != nil {
        if err == repository.ErrEventNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    sections, err := h.Sections.ListByEvent(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"event": ev, "sections": sections})
}

// ListEventSections returns just the sections of an event.
func (h *PublicHandler) ListEventSections(c echo.Context) error {
    ctx := c.Request().Context()
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    if _, err := h.Events.GetByID(ctx, id); err != nil {
        if err == repository.ErrEventNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    sections, err := h.Sections.ListByEvent(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": sections})
}

// ListSectionSeats returns the current seat map of one section.  A seat
// that is HELD, SOLD or CHECKED_IN shows only its status; which
// transaction holds it stays private.
func (h *PublicHandler) ListSectionSeats(c echo.Context) error {
    ctx := c.Request().Context()
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    sec, err := h.Sections.GetByID(ctx, id)
    if err != nil {
        if err == repository.ErrSectionNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "section not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    seats, err := h.Seats.ListBySection(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]PublicSeat, 0, len(seats))
    available := 0
    for _, s := range seats {
        if s.Status == model.SeatAvailable {
            available++
        }
        out = append(out, PublicSeat{
            ID:         s.ID,
            RowLabel:   s.RowLabel,
            SeatNumber: s.SeatNumber,
            Status:     s.Status,
            Version:    s.Version,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{
        "section":   sec,
        "available": available,
        "count":     len(out),
        "items":     out,
    })
}
