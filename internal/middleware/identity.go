package middleware

// identity.go holds helpers that read the authenticated admin out of the Echo
// context.  They are used by the rate limiter to build keys and by handlers
// that need the caller's id.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// UserID returns the admin id stored by AdminSession.
func UserID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(CtxUserID).(uint64)
    return id, ok && id != 0
}

// Role returns the admin role stored by AdminSession, or "".
func Role(c echo.Context) string {
    r, _ := c.Get(CtxRole).(string)
    return r
}

// identityKey is the caller identity used in rate-limit keys; public
// visitors are "anon".
func identityKey(c echo.Context) string {
    if id, ok := UserID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
