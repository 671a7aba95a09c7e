// Package router registers the HTTP routes.  Public catalogue and auth
// routes live under /v1, customer routes under /v1 behind JWTAuth, admin
// routes under /v1/admin behind the admin role, and gateway callbacks
// under /v1/payments without authentication.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/handler"
	"github.com/iliyamo/tour-booking/internal/middleware"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Health     echo.HandlerFunc
	Auth       *handler.AuthHandler
	Tours      *handler.TourHandler
	Bookings   *handler.BookingHandler
	Payments   *handler.PaymentHandler
	Reviews    *handler.ReviewHandler
	Promotions *handler.PromotionHandler
}

// Register mounts all routes.  limit runs on every /v1 route after
// authentication so per-user keys see the caller.
func Register(e *echo.Echo, h Handlers, jwtSecret string, limit echo.MiddlewareFunc) {
	RegisterRoutes(e, h.Health)
	RegisterAuth(e, h.Auth, jwtSecret, limit)
	RegisterPublic(e, h, limit)
	RegisterWebhooks(e, h.Payments, limit)
	RegisterCustomer(e, h, jwtSecret, limit)
	RegisterAdmin(e, h, jwtSecret, limit)
}

// RegisterRoutes registers routes outside the versioned API.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc) {
	e.GET("/healthz", health)
}

// RegisterAuth registers account routes.  Register, login and refresh
// need no session; logout and the profile do.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret), limit)
	auth.POST("/auth/logout", a.Logout)
	auth.GET("/me", a.Me)
	auth.PUT("/me", a.UpdateMe)
}

// RegisterPublic registers the unauthenticated catalogue.
func RegisterPublic(e *echo.Echo, h Handlers, limit echo.MiddlewareFunc) {
	g := e.Group("/v1", limit)
	g.GET("/tours", h.Tours.List)
	g.GET("/tours/featured", h.Tours.Featured)
	g.GET("/tours/available", h.Tours.Available)
	g.GET("/tours/search", h.Tours.Search)
	g.GET("/tours/:id", h.Tours.Get)
	g.GET("/tours/:id/reviews", h.Reviews.ListReviews)
	g.GET("/promotions", h.Promotions.Active)
	g.GET("/promotions/:code", h.Promotions.Lookup)
}

// RegisterWebhooks registers the payment gateway callbacks.  They are
// authenticated by their HMAC signature, not by JWT.
func RegisterWebhooks(e *echo.Echo, p *handler.PaymentHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/payments", limit)
	g.POST("/momo/ipn", p.MomoIPN)
	g.POST("/zalopay/callback", p.ZaloPayCallback)
}
