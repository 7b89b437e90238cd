package handler

import (
    "context"  // provides context with cancellation for store calls
    "errors"   // errors.Is for sentinel mapping
    "net/http" // HTTP status codes and cookies
    "strings"  // string manipulation utilities
    "time"     // timeouts and cookie expiry

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/festival-registration/internal/config"     // app configuration
    "github.com/iliyamo/festival-registration/internal/middleware" // session cookie name and context helpers
    "github.com/iliyamo/festival-registration/internal/repository" // admin user stores
    "github.com/iliyamo/festival-registration/internal/utils"      // password verification and token issuing
)

// AdminAuthHandler bundles dependencies for admin session endpoints.
type AdminAuthHandler struct {
    Cfg   config.Config
    Users repository.UserStore
}

func NewAdminAuthHandler(cfg config.Config, u repository.UserStore) *AdminAuthHandler {
    return &AdminAuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type loginReq struct {
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required"`
}

type userPart struct {
    ID    uint64 `json:"id"`
    Email string `json:"email"`
    Role  string `json:"role"`
}

func (h *AdminAuthHandler) sessionCookie(value string, exp time.Time) *http.Cookie {
    ck := &http.Cookie{
        Name:     middleware.SessionCookie,
        Value:    value,
        Path:     "/",
        HttpOnly: true,
        Secure:   h.Cfg.Env == "prod",
        SameSite: http.SameSiteLaxMode,
        Expires:  exp,
    }
    if value == "" {
        ck.MaxAge = -1
    }
    return ck
}

// Login verifies credentials and starts a session.  The token is set as an
// HttpOnly cookie and also returned for API clients.
func (h *AdminAuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return jsonError(c, http.StatusBadRequest, "Invalid request body")
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if err := c.Validate(&req); err != nil {
        return jsonError(c, http.StatusBadRequest, "Email and password are required")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return jsonError(c, http.StatusUnauthorized, "Invalid credentials")
        }
        return internalError(c, "load admin", err)
    }
    if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return jsonError(c, http.StatusUnauthorized, "Invalid credentials")
    }

    tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, u.Email, u.Role, h.Cfg.SessionTTLMin)
    if err != nil {
        return internalError(c, "issue session", err)
    }
    c.SetCookie(h.sessionCookie(tok.Token, tok.Exp))
    return c.JSON(http.StatusOK, echo.Map{
        "user":      userPart{ID: u.ID, Email: u.Email, Role: u.Role},
        "token":     tok.Token,
        "expiresAt": tok.Exp,
    })
}

// Logout clears the session cookie.  Sessions are stateless, so there is
// nothing to revoke server-side.
func (h *AdminAuthHandler) Logout(c echo.Context) error {
    c.SetCookie(h.sessionCookie("", time.Unix(0, 0)))
    return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated admin.
func (h *AdminAuthHandler) Me(c echo.Context) error {
    id, _ := middleware.UserID(c)
    email, _ := c.Get(middleware.CtxEmail).(string)
    return c.JSON(http.StatusOK, userPart{ID: id, Email: email, Role: middleware.Role(c)})
}
