package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/middleware"
	"github.com/iliyamo/tour-booking/internal/model"
)

// RegisterCustomer registers the routes of a signed-in customer.  Admins
// may call them too; ownership is checked by the services.
func RegisterCustomer(e *echo.Echo, h Handlers, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
		limit,
	)
	g.POST("/bookings", h.Bookings.Create)
	g.GET("/bookings", h.Bookings.ListMine)
	g.GET("/bookings/:id", h.Bookings.Get)
	g.POST("/bookings/:id/cancel", h.Bookings.Cancel)

	g.POST("/bookings/:id/checkout", h.Payments.Checkout)
	g.GET("/bookings/:id/checkouts", h.Payments.Checkouts)
	g.GET("/bookings/:id/invoice", h.Payments.Invoice)

	g.POST("/tours/:id/reviews", h.Reviews.CreateReview)
	g.DELETE("/reviews/:id", h.Reviews.DeleteReview)

	g.GET("/wishlist", h.Reviews.ListWishlist)
	g.PUT("/wishlist/:tour_id", h.Reviews.AddWishlist)
	g.DELETE("/wishlist/:tour_id", h.Reviews.RemoveWishlist)
}
