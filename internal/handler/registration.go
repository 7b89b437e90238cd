package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/festival-registration/internal/repository"
    "github.com/iliyamo/festival-registration/internal/service"
)

// RegistrationHandler serves the public registration form and the admin
// registration views.
type RegistrationHandler struct {
    Svc *service.RegistrationService
}

func NewRegistrationHandler(svc *service.RegistrationService) *RegistrationHandler {
    return &RegistrationHandler{Svc: svc}
}

// Register: POST /api/registrations
func (h *RegistrationHandler) Register(c echo.Context) error {
    var in service.RegistrationInput
    if err := c.Bind(&in); err != nil {
        return jsonError(c, http.StatusBadRequest, "Invalid request body")
    }
    in.Email = strings.TrimSpace(in.Email)
    if err := c.Validate(&in); err != nil {
        return invalidFields(c, err)
    }
    res, err := h.Svc.Register(c.Request().Context(), in)
    if err != nil {
        if errors.Is(err, service.ErrAlreadyRegistered) {
            return jsonError(c, http.StatusConflict, "This email is already registered")
        }
        return internalError(c, "register", err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success":            true,
        "registrationNumber": res.RegistrationNumber,
        "emailsSent":         res.EmailsSent,
    })
}

// List: GET /api/admin/registrations
func (h *RegistrationHandler) List(c echo.Context) error {
    regs, err := h.Svc.List(c.Request().Context())
    if err != nil {
        return internalError(c, "list registrations", err)
    }
    return c.JSON(http.StatusOK, echo.Map{"registrations": regs})
}

// PDF: GET /api/admin/registrations/:number/pdf
func (h *RegistrationHandler) PDF(c echo.Context) error {
    b, name, err := h.Svc.PDF(c.Request().Context(), c.Param("number"))
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return jsonError(c, http.StatusNotFound, "Registration not found")
        }
        return internalError(c, "registration pdf", err)
    }
    c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
    return c.Blob(http.StatusOK, "application/pdf", b)
}
