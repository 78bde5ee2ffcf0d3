package handler

import (
    "encoding/json"
    "fmt"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/live-event-ticketing/internal/bus"
    "github.com/iliyamo/live-event-ticketing/internal/repository"
)

// streamHeartbeat keeps idle SSE connections alive through proxies.
const streamHeartbeat = 25 * time.Second

// StreamHandler serves live seat maps over Server-Sent Events.  Each
// connection gets a full snapshot of the requested scope first, then
// incremental snapshots from the notification bus.  Because every
// message is a complete seat snapshot with a version, the client merge
// is last-writer-wins and the initial dump racing the subscription is
// harmless.
type StreamHandler struct {
    Seats    *repository.SeatRepo
    Sections *repository.SectionRepo
    Bus      *bus.RedisBus // nil when Redis is down; streaming degrades to the initial dump
}

func NewStreamHandler(seats *repository.SeatRepo, sections *repository.SectionRepo, b *bus.RedisBus) *StreamHandler {
    if seats == nil || sections == nil {
        panic("nil repository passed to NewStreamHandler")
    }
    return &StreamHandler{Seats: seats, Sections: sections, Bus: b}
}

// StreamEvent handles GET /v1/events/:id/seats/stream.
func (h *StreamHandler) StreamEvent(c echo.Context) error {
    eventID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    sections, err := h.Sections.ListByEvent(c.Request().Context(), eventID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    sectionIDs := make([]uint64, 0, len(sections))
    for _, s := range sections {
        sectionIDs = append(sectionIDs, s.ID)
    }
    return h.stream(c, bus.EventTopic(eventID), sectionIDs)
}

// StreamSection handles GET /v1/sections/:id/seats/stream.
func (h *StreamHandler) StreamSection(c echo.Context) error {
    sectionID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid section id"})
    }
    if _, err := h.Sections.GetByID(c.Request().Context(), sectionID); err != nil {
        if err == repository.ErrSectionNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "section not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return h.stream(c, bus.SectionTopic(sectionID), []uint64{sectionID})
}

// stream writes the SSE response: a snapshot event per current seat, then
// one per bus message until the client goes away.
func (h *StreamHandler) stream(c echo.Context, topic string, sectionIDs []uint64) error {
    ctx := c.Request().Context()

    // Subscribe before the initial dump so transitions between the two
    // are not lost; duplicates are resolved by the version merge.
    var updates <-chan repository.SeatSnapshot
    if h.Bus != nil {
        updates = h.Bus.Subscribe(ctx, topic)
    }

    res := c.Response()
    res.Header().Set(echo.HeaderContentType, "text/event-stream")
    res.Header().Set("Cache-Control", "no-cache")
    res.Header().Set("Connection", "keep-alive")
    res.WriteHeader(http.StatusOK)

    // Per-connection view: merging by version here means a client never
    // sees a snapshot older than one it already received, even when the
    // bus reorders deliveries against the initial dump.
    view := bus.NewSeatView()

    for _, sectionID := range sectionIDs {
        seats, err := h.Seats.ListBySection(ctx, sectionID)
        if err != nil {
            return err
        }
        ids := make([]uint64, 0, len(seats))
        for _, s := range seats {
            ids = append(ids, s.ID)
        }
        snaps, err := h.Seats.SnapshotsByIDs(ctx, ids)
        if err != nil {
            return err
        }
        for _, snap := range snaps {
            view.Apply(snap)
            if err := writeSSE(res, snap); err != nil {
                return nil
            }
        }
    }
    res.Flush()

    if updates == nil {
        // No bus: the dump above is all this connection gets.
        return nil
    }

    heartbeat := time.NewTicker(streamHeartbeat)
    defer heartbeat.Stop()
    for {
        select {
        case <-ctx.Done():
            return nil
        case <-heartbeat.C:
            if _, err := fmt.Fprint(res, ": keep-alive\n\n"); err != nil {
                return nil
            }
            res.Flush()
        case snap, ok := <-updates:
            if !ok {
                return nil
            }
            if !view.Apply(snap) {
                continue // stale against what this client already has
            }
            if err := writeSSE(res, snap); err != nil {
                return nil
            }
            res.Flush()
        }
    }
}

func writeSSE(res *echo.Response, snap repository.SeatSnapshot) error {
    body, err := json.Marshal(snap)
    if err != nil {
        return err
    }
    _, err = fmt.Fprintf(res, "event: seat\ndata: %s\n\n", body)
    return err
}
