package handler

import (
    "errors"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/festival-registration/internal/config"
    "github.com/iliyamo/festival-registration/internal/middleware"
    "github.com/iliyamo/festival-registration/internal/model"
    "github.com/iliyamo/festival-registration/internal/repository"
)

// AdminUserHandler manages dashboard accounts (ADMIN only).
type AdminUserHandler struct {
    Cfg   config.Config
    Users repository.UserStore
}

func NewAdminUserHandler(cfg config.Config, u repository.UserStore) *AdminUserHandler {
    return &AdminUserHandler{Cfg: cfg, Users: u}
}

type createUserReq struct {
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required,min=8"`
    Role     string `json:"role" validate:"required,oneof=ADMIN STAFF"`
}

const readOnlyUsers = "User management requires a database"

// List: GET /api/admin/users
func (h *AdminUserHandler) List(c echo.Context) error {
    users, err := h.Users.List(c.Request().Context())
    if err != nil {
        return internalError(c, "list users", err)
    }
    return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// Create: POST /api/admin/users
func (h *AdminUserHandler) Create(c echo.Context) error {
    var req createUserReq
    if err := c.Bind(&req); err != nil {
        return jsonError(c, http.StatusBadRequest, "Invalid request body")
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
    if req.Role == "" {
        req.Role = model.RoleStaff
    }
    if err := c.Validate(&req); err != nil {
        return invalidFields(c, err)
    }
    id, err := h.Users.Create(c.Request().Context(), req.Email, req.Password, req.Role, h.Cfg.BcryptCost)
    switch {
    case errors.Is(err, repository.ErrReadOnly):
        return jsonError(c, http.StatusServiceUnavailable, readOnlyUsers)
    case errors.Is(err, repository.ErrEmailExists):
        return jsonError(c, http.StatusConflict, "Email already exists")
    case err != nil:
        return internalError(c, "create user", err)
    }
    return c.JSON(http.StatusCreated, userPart{ID: id, Email: req.Email, Role: req.Role})
}

// Delete: DELETE /api/admin/users/:id.  Admins cannot delete themselves.
func (h *AdminUserHandler) Delete(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return jsonError(c, http.StatusBadRequest, "Invalid user id")
    }
    if self, ok := middleware.UserID(c); ok && self == id {
        return jsonError(c, http.StatusBadRequest, "You cannot delete your own account")
    }
    err = h.Users.Delete(c.Request().Context(), id)
    switch {
    case errors.Is(err, repository.ErrReadOnly):
        return jsonError(c, http.StatusServiceUnavailable, readOnlyUsers)
    case errors.Is(err, repository.ErrNotFound):
        return jsonError(c, http.StatusNotFound, "User not found")
    case err != nil:
        return internalError(c, "delete user", err)
    }
    return c.NoContent(http.StatusNoContent)
}
