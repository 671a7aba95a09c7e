package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-booking/internal/service"
)

// StatusFor maps a service error to its HTTP status.  Unknown errors are
// 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, service.ErrPolicyViolation), errors.Is(err, service.ErrSignatureMismatch):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// ErrorHandler renders every error returned by a handler or middleware as
// a Response envelope.  Internal errors are logged and their text hidden
// from the client.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := http.StatusInternalServerError, "internal server error"

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, isStr := he.Message.(string); isStr {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		} else if code = StatusFor(err); code != http.StatusInternalServerError {
			msg = err.Error()
		}
		if code >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, Response{Success: false, Message: msg})
	}
}
