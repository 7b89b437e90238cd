package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/festival-registration/internal/service"
)

// ReservationHandler bundles the reservation endpoints: public creation, the
// payment-provider webhook and the admin listing and manual status update.
type ReservationHandler struct {
    Svc          *service.ReservationService
    WebhookToken string
}

func NewReservationHandler(svc *service.ReservationService, webhookToken string) *ReservationHandler {
    return &ReservationHandler{Svc: svc, WebhookToken: webhookToken}
}

// Create: POST /api/reservations
func (h *ReservationHandler) Create(c echo.Context) error {
    var in service.CreateReservationInput
    if err := c.Bind(&in); err != nil {
        return jsonError(c, http.StatusBadRequest, "Invalid request body")
    }
    res, err := h.Svc.Create(c.Request().Context(), in)
    if err != nil {
        if errors.Is(err, service.ErrMissingFields) {
            return jsonError(c, http.StatusBadRequest, "Missing required fields")
        }
        return internalError(c, "create reservation", err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success":        true,
        "reservationId":  res.ReservationID,
        "expiresAt":      res.ExpiresAt,
        "pricingTotal":   res.PricingTotal,
        "pricingDetails": res.PricingDetails,
        "emailsSent":     res.EmailsSent,
    })
}

// List: GET /api/reservations (admin).  No paging; clients filter locally.
func (h *ReservationHandler) List(c echo.Context) error {
    list, err := h.Svc.List(c.Request().Context())
    if err != nil {
        return internalError(c, "list reservations", err)
    }
    return c.JSON(http.StatusOK, echo.Map{"reservations": list})
}

// UpdateStatus: PATCH /api/reservations/:id (admin)
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
    var in service.PatchInput
    if err := c.Bind(&in); err != nil {
        return jsonError(c, http.StatusBadRequest, "Invalid request body")
    }
    r, err := h.Svc.UpdateStatus(c.Request().Context(), c.Param("id"), in)
    switch {
    case err == nil:
        return c.JSON(http.StatusOK, echo.Map{"success": true, "reservation": r})
    case errors.Is(err, service.ErrInvalidStatus):
        return jsonError(c, http.StatusBadRequest, "Invalid status")
    case errors.Is(err, service.ErrInvalidPaidAt):
        return jsonError(c, http.StatusBadRequest, "Invalid paidAt, expected RFC3339")
    case errors.Is(err, service.ErrReservationNotFound):
        return jsonError(c, http.StatusNotFound, "Reservation not found")
    case errors.Is(err, service.ErrTransitionNotAllowed):
        return jsonError(c, http.StatusConflict, "Status transition not allowed")
    }
    return internalError(c, "update reservation", err)
}
