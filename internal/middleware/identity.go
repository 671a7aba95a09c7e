package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/service"
)

// Principal returns the authenticated caller stored by JWTAuth.  ok is
// false on routes that did not run JWTAuth.
func Principal(c echo.Context) (service.Principal, bool) {
	id, ok := c.Get(CtxUserID).(uint64)
	if !ok || id == 0 {
		return service.Principal{}, false
	}
	role, _ := c.Get(CtxRole).(uint8)
	return service.Principal{UserID: id, Role: role}, true
}

// userKey identifies the caller for rate limiting: the user id when
// authenticated, "anon" otherwise.
func userKey(c echo.Context) string {
	if p, ok := Principal(c); ok {
		return strconv.FormatUint(p.UserID, 10)
	}
	return "anon"
}
