package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/service"
)

// BookingService is the part of service.BookingService the booking
// endpoints use.
type BookingService interface {
	Create(ctx context.Context, p service.Principal, in service.CreateBookingInput) (*model.Booking, error)
	Cancel(ctx context.Context, p service.Principal, id uint64) (*model.Booking, error)
	Confirm(ctx context.Context, p service.Principal, id uint64) (*model.Booking, error)
	Reject(ctx context.Context, p service.Principal, id uint64, reason string) (*model.Booking, error)
	UpdateStatus(ctx context.Context, p service.Principal, id uint64, in service.UpdateStatusInput) (*model.Booking, error)
	Get(ctx context.Context, p service.Principal, id uint64) (*model.Booking, error)
	ListMine(ctx context.Context, p service.Principal) ([]model.Booking, error)
	ListAll(ctx context.Context, p service.Principal, f model.BookingFilter) ([]model.Booking, error)
	ListHistory(ctx context.Context, p service.Principal, id uint64) ([]model.History, error)
}

// BookingHandler serves customer bookings and the admin booking desk.
type BookingHandler struct {
	Bookings BookingService
}

func NewBookingHandler(b BookingService) *BookingHandler {
	return &BookingHandler{Bookings: b}
}

type createBookingReq struct {
	TourID          uint64 `json:"tour_id"`
	BookingDate     string `json:"booking_date"`
	NumAdults       int    `json:"num_adults"`
	NumChildren     int    `json:"num_children"`
	SpecialRequests string `json:"special_requests"`
}

type rejectReq struct {
	Reason string `json:"reason"`
}

type statusReq struct {
	Status        model.BookingStatus  `json:"status"`
	PaymentStatus *model.PaymentStatus `json:"payment_status"`
	Notes         string               `json:"notes"`
}

// Create handles POST /v1/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req createBookingReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.TourID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "tour_id is required")
	}
	date, err := parseDate(req.BookingDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "booking_date must be YYYY-MM-DD")
	}
	b, err := h.Bookings.Create(c.Request().Context(), p, service.CreateBookingInput{
		TourID:          req.TourID,
		BookingDate:     date,
		NumAdults:       req.NumAdults,
		NumChildren:     req.NumChildren,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, b)
}

// ListMine handles GET /v1/bookings.
func (h *BookingHandler) ListMine(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	list, err := h.Bookings.ListMine(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, nonNil(list))
}

// Get handles GET /v1/bookings/:id.  Customers only see their own.
func (h *BookingHandler) Get(c echo.Context) error {
	return h.byID(c, h.Bookings.Get)
}

// Cancel handles POST /v1/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
	return h.byID(c, h.Bookings.Cancel)
}

// Confirm handles POST /v1/admin/bookings/:id/confirm.
func (h *BookingHandler) Confirm(c echo.Context) error {
	return h.byID(c, h.Bookings.Confirm)
}

// Reject handles POST /v1/admin/bookings/:id/reject.
func (h *BookingHandler) Reject(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req rejectReq
	if err := bind(c, &req); err != nil {
		return err
	}
	b, err := h.Bookings.Reject(c.Request().Context(), p, id, req.Reason)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, b)
}

// UpdateStatus handles PATCH /v1/admin/bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req statusReq
	if err := bind(c, &req); err != nil {
		return err
	}
	b, err := h.Bookings.UpdateStatus(c.Request().Context(), p, id, service.UpdateStatusInput{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		Notes:         req.Notes,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, b)
}

// ListAll handles GET /v1/admin/bookings?status=&tour_id=&user_id=.
func (h *BookingHandler) ListAll(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	f := model.BookingFilter{Status: model.BookingStatus(c.QueryParam("status"))}
	if f.TourID, err = optionalID(c, "tour_id"); err != nil {
		return err
	}
	if f.UserID, err = optionalID(c, "user_id"); err != nil {
		return err
	}
	list, err := h.Bookings.ListAll(c.Request().Context(), p, f)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, nonNil(list))
}

// History handles GET /v1/admin/bookings/:id/history.
func (h *BookingHandler) History(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	rows, err := h.Bookings.ListHistory(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, nonNil(rows))
}

func (h *BookingHandler) byID(c echo.Context, fn func(context.Context, service.Principal, uint64) (*model.Booking, error)) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	b, err := fn(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, b)
}

func optionalID(c echo.Context, name string) (uint64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// nonNil makes empty lists render as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
