package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/live-event-ticketing/internal/middleware"
    "github.com/iliyamo/live-event-ticketing/internal/repository"
)

// TicketHandler serves the customer's own purchases: the tickets page and
// the per-transaction status poll.
type TicketHandler struct {
    Txns *repository.TransactionRepo
}

func NewTicketHandler(t *repository.TransactionRepo) *TicketHandler {
    if t == nil {
        panic("nil repository passed to NewTicketHandler")
    }
    return &TicketHandler{Txns: t}
}

// MyTickets handles GET /v1/my-tickets.  Ticket codes appear here and
// nowhere else on the read side; the query is scoped to the
// authenticated customer.
func (h *TicketHandler) MyTickets(c echo.Context) error {
    tickets, err := h.Txns.ListTicketsByUser(c.Request().Context(), middleware.UserID(c))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"count": len(tickets), "items": tickets})
}

// TransactionStatus handles GET /v1/transactions/:reference.  Clients
// poll it after booking to learn whether settlement landed on PAID or
// FAILED.  Only the owning customer may read a transaction.
func (h *TicketHandler) TransactionStatus(c echo.Context) error {
    ref := strings.TrimSpace(c.Param("reference"))
    if ref == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reference"})
    }
    txn, err := h.Txns.GetByReference(c.Request().Context(), ref)
    if err != nil {
        if err == repository.ErrTransactionNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "transaction not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if txn.UserID != middleware.UserID(c) {
        // Hide foreign transactions entirely rather than confirming the
        // reference exists.
        return c.JSON(http.StatusNotFound, echo.Map{"error": "transaction not found"})
    }
    return c.JSON(http.StatusOK, txn)
}
