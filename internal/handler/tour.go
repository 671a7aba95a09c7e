package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/service"
)

// TourService is the part of service.TourService the tour endpoints use.
type TourService interface {
	All(ctx context.Context) ([]model.Tour, error)
	Featured(ctx context.Context) ([]model.Tour, error)
	Available(ctx context.Context) ([]model.Tour, error)
	Detail(ctx context.Context, id uint64) (*model.Tour, error)
	Search(ctx context.Context, keyword string) ([]model.Tour, error)
	Create(ctx context.Context, p service.Principal, in service.TourInput) (*model.Tour, error)
	Update(ctx context.Context, p service.Principal, id uint64, in service.TourInput) (*model.Tour, error)
	Delete(ctx context.Context, p service.Principal, id uint64) error
}

// TourHandler serves the public catalogue and the admin tour writes.
type TourHandler struct {
	Tours TourService
}

func NewTourHandler(t TourService) *TourHandler {
	return &TourHandler{Tours: t}
}

func (h *TourHandler) list(c echo.Context, fetch func(context.Context) ([]model.Tour, error)) error {
	tours, err := fetch(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, nonNil(tours))
}

// List handles GET /v1/tours.
func (h *TourHandler) List(c echo.Context) error { return h.list(c, h.Tours.All) }

// Featured handles GET /v1/tours/featured.
func (h *TourHandler) Featured(c echo.Context) error { return h.list(c, h.Tours.Featured) }

// Available handles GET /v1/tours/available.
func (h *TourHandler) Available(c echo.Context) error { return h.list(c, h.Tours.Available) }

// Search handles GET /v1/tours/search?q=.
func (h *TourHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	return h.list(c, func(ctx context.Context) ([]model.Tour, error) {
		return h.Tours.Search(ctx, q)
	})
}

// Get handles GET /v1/tours/:id.
func (h *TourHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	t, err := h.Tours.Detail(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, t)
}

// Create handles POST /v1/admin/tours.
func (h *TourHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var in service.TourInput
	if err := bind(c, &in); err != nil {
		return err
	}
	t, err := h.Tours.Create(c.Request().Context(), p, in)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, t)
}

// Update handles PUT /v1/admin/tours/:id.  Omitted fields are unchanged.
func (h *TourHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in service.TourInput
	if err := bind(c, &in); err != nil {
		return err
	}
	t, err := h.Tours.Update(c.Request().Context(), p, id, in)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, t)
}

// Delete handles DELETE /v1/admin/tours/:id.
func (h *TourHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.Tours.Delete(c.Request().Context(), p, id); err != nil {
		return err
	}
	return okMsg(c, "tour deleted")
}
