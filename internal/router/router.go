package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // Echo web framework used for routing
    "github.com/redis/go-redis/v9" // optional Redis client shared by limiter and cache

    "github.com/iliyamo/festival-registration/internal/config"     // rate-limit settings
    "github.com/iliyamo/festival-registration/internal/handler"    // HTTP handlers
    "github.com/iliyamo/festival-registration/internal/middleware" // rate limiter
)

// RegisterRoutes registers routes that do not require authentication or rate
// limiting.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// Public groups the handlers behind the unauthenticated site forms.
type Public struct {
    Reservations  *handler.ReservationHandler
    Registrations *handler.RegistrationHandler
    Contact       *handler.ContactHandler
}

// RegisterPublic registers the site's form endpoints.  Form submissions are
// rate limited per client IP and route; the payment webhook is not, since it
// authenticates with its shared token and the provider may retry in bursts.
func RegisterPublic(e *echo.Echo, p Public, rl config.RateLimitConfig, rdb *redis.Client) {
    limited := e.Group("/api", middleware.NewTokenBucket(rl, rdb))
    limited.POST("/reservations", p.Reservations.Create)
    limited.POST("/registrations", p.Registrations.Register)
    limited.POST("/contact", p.Contact.Submit)

    e.POST("/api/payments/webhook", p.Reservations.Webhook)
}
