package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/middleware"
	"github.com/iliyamo/tour-booking/internal/model"
)

// RegisterAdmin registers the back-office routes under /v1/admin.
func RegisterAdmin(e *echo.Echo, h Handlers, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
		limit,
	)
	g.POST("/tours", h.Tours.Create)
	g.PUT("/tours/:id", h.Tours.Update)
	g.DELETE("/tours/:id", h.Tours.Delete)

	g.GET("/bookings", h.Bookings.ListAll)
	g.POST("/bookings/:id/confirm", h.Bookings.Confirm)
	g.POST("/bookings/:id/reject", h.Bookings.Reject)
	g.PATCH("/bookings/:id/status", h.Bookings.UpdateStatus)
	g.GET("/bookings/:id/history", h.Bookings.History)

	g.POST("/checkouts/:id/verify", h.Payments.Verify)

	g.GET("/users", h.Auth.ListUsers)
	g.PATCH("/users/:id/active", h.Auth.SetUserActive)

	g.GET("/promotions", h.Promotions.ListAll)
	g.POST("/promotions", h.Promotions.Create)
	g.PUT("/promotions/:id", h.Promotions.Update)
	g.DELETE("/promotions/:id", h.Promotions.Delete)
}
