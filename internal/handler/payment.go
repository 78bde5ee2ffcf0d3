package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/live-event-ticketing/internal/booking"
    "github.com/iliyamo/live-event-ticketing/internal/repository"
)

// PaymentHandler receives the payment collaborator's callbacks.  The
// callback is attributed by transaction reference, never by internal id,
// and resolving is idempotent so gateway retries are harmless.
type PaymentHandler struct {
    Settler *booking.Settlement
}

func NewPaymentHandler(s *booking.Settlement) *PaymentHandler {
    if s == nil {
        panic("nil settlement passed to NewPaymentHandler")
    }
    return &PaymentHandler{Settler: s}
}

type paymentCallbackReq struct {
    Reference string `json:"reference"`
    Outcome   string `json:"outcome"` // PAID | FAILED
}

// Callback handles POST /v1/payments/callback.
func (h *PaymentHandler) Callback(c echo.Context) error {
    var req paymentCallbackReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Reference = strings.TrimSpace(req.Reference)
    req.Outcome = strings.ToUpper(strings.TrimSpace(req.Outcome))
    if req.Reference == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "reference required"})
    }

    txn, err := h.Settler.ResolveByReference(c.Request().Context(), req.Reference, req.Outcome)
    if err != nil {
        var invalid *booking.ValidationError
        switch {
        case errors.Is(err, repository.ErrTransactionNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown reference"})
        case errors.As(err, &invalid):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": invalid.Error()})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "settlement failed"})
        }
    }
    return c.JSON(http.StatusOK, txn)
}
