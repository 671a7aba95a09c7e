package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole aborts with 403 unless JWTAuth stored one of roles for the
// caller.  It must run after JWTAuth.
func RequireRole(roles ...uint8) echo.MiddlewareFunc {
	allowed := make(map[uint8]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(uint8)
			if !ok || !allowed[role] {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
