package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/festival-registration/internal/utils" // session token parsing
)

// SessionCookie is the HttpOnly cookie carrying the admin session JWT.
const SessionCookie = "admin_session"

// Context keys set by AdminSession.
const (
    CtxUserID = "user_id"
    CtxRole   = "role"
    CtxEmail  = "email"
)

// sessionToken returns the raw JWT from the admin_session cookie, falling
// back to an Authorization: Bearer header for API clients.
func sessionToken(c echo.Context) string {
    if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
        return ck.Value
    }
    auth := c.Request().Header.Get("Authorization")
    if strings.HasPrefix(auth, "Bearer ") {
        return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
    }
    return ""
}

// AdminSession returns an Echo middleware that validates the admin session
// and injects the user id (uint64), role and email into the request
// context.  The provided secret must match the one used at login.  Requests
// without a valid session are rejected with 401.
func AdminSession(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := sessionToken(c)
            if raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
            }
            claims, err := utils.ParseSessionToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
            }
            // Handlers and downstream middleware read these via c.Get().
            c.Set(CtxUserID, claims.UserID)
            c.Set(CtxRole, claims.Role)
            c.Set(CtxEmail, claims.Email)
            return next(c)
        }
    }
}
