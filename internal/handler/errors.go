package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/festival-registration/internal/middleware"
)

// Error bodies are always {"error": "..."}.  Messages of 4xx responses are
// user-facing; 500s never carry the underlying cause.

func jsonError(c echo.Context, status int, msg string) error {
    return c.JSON(status, echo.Map{"error": msg})
}

// internalError logs err with the request path and answers with a generic 500.
func internalError(c echo.Context, op string, err error) error {
    c.Logger().Errorf("%s %s: %s: %v", c.Request().Method, c.Path(), op, err)
    return jsonError(c, http.StatusInternalServerError, "Internal server error")
}

// invalidFields answers a validator failure with the offending JSON fields.
func invalidFields(c echo.Context, err error) error {
    fields := middleware.InvalidFields(err)
    if fields == nil {
        return jsonError(c, http.StatusBadRequest, "Invalid request body")
    }
    return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing or invalid fields", "fields": fields})
}
