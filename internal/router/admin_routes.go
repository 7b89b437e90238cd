package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/festival-registration/internal/config"
    "github.com/iliyamo/festival-registration/internal/handler"
    "github.com/iliyamo/festival-registration/internal/middleware"
    "github.com/iliyamo/festival-registration/internal/model"
)

// Admin groups the dashboard handlers.
type Admin struct {
    Auth          *handler.AdminAuthHandler
    Users         *handler.AdminUserHandler
    Reservations  *handler.ReservationHandler
    Registrations *handler.RegistrationHandler
    Analytics     *handler.AnalyticsHandler
}

// RegisterAdmin registers session endpoints and everything behind the admin
// session.  Reservation listing and PATCH keep their /api/reservations paths
// but require a session with role ADMIN or STAFF; user management is ADMIN
// only.
func RegisterAdmin(e *echo.Echo, a Admin, jwtSecret string, cc config.CacheConfig, rdb *redis.Client) {
    e.POST("/api/admin/login", a.Auth.Login)
    e.POST("/api/admin/logout", a.Auth.Logout)

    session := []echo.MiddlewareFunc{
        middleware.AdminSession(jwtSecret),
        middleware.RequireRole(model.RoleAdmin, model.RoleStaff),
    }

    res := e.Group("/api/reservations", session...)
    res.GET("", a.Reservations.List)
    res.PATCH("/:id", a.Reservations.UpdateStatus)

    g := e.Group("/api/admin", session...)
    g.GET("/me", a.Auth.Me)
    g.GET("/registrations", a.Registrations.List)
    g.GET("/registrations/:number/pdf", a.Registrations.PDF)
    g.GET("/analytics", a.Analytics.Summary, middleware.NewRedisCache(cc, rdb))

    users := g.Group("/users", middleware.RequireRole(model.RoleAdmin))
    users.GET("", a.Users.List)
    users.POST("", a.Users.Create)
    users.DELETE("/:id", a.Users.Delete)
}
