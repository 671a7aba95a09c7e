// Package handler exposes the HTTP API.  Handlers translate requests into
// service calls and return errors to the shared error handler, which
// renders them in the same envelope as successful responses.
package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/middleware"
	"github.com/iliyamo/tour-booking/internal/service"
)

// Response is the envelope of every JSON response.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, Response{Success: true, Data: data})
}

func okMsg(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, Response{Success: true, Message: msg})
}

// principal returns the caller authenticated by middleware.JWTAuth.
func principal(c echo.Context) (service.Principal, error) {
	p, found := middleware.Principal(c)
	if !found {
		return service.Principal{}, service.ErrUnauthorized
	}
	return p, nil
}

// idParam parses a positive numeric path parameter.
func idParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return nil
}

// parseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
