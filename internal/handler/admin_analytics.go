package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/festival-registration/internal/service"
)

type AnalyticsHandler struct {
    Svc *service.AnalyticsService
}

func NewAnalyticsHandler(svc *service.AnalyticsService) *AnalyticsHandler {
    return &AnalyticsHandler{Svc: svc}
}

// Summary: GET /api/admin/analytics
func (h *AnalyticsHandler) Summary(c echo.Context) error {
    a, err := h.Svc.Summary(c.Request().Context())
    if err != nil {
        return internalError(c, "analytics", err)
    }
    return c.JSON(http.StatusOK, a)
}
