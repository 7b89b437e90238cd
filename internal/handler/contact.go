package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/festival-registration/internal/service"
)

type ContactHandler struct {
    Svc *service.ContactService
}

func NewContactHandler(svc *service.ContactService) *ContactHandler {
    return &ContactHandler{Svc: svc}
}

// Submit: POST /api/contact
func (h *ContactHandler) Submit(c echo.Context) error {
    var in service.ContactInput
    if err := c.Bind(&in); err != nil {
        return jsonError(c, http.StatusBadRequest, "Invalid request body")
    }
    if err := c.Validate(&in); err != nil {
        return invalidFields(c, err)
    }
    sent := h.Svc.Submit(c.Request().Context(), in)
    return c.JSON(http.StatusOK, echo.Map{"success": true, "emailsSent": sent})
}
