package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/service"
)

type PromotionService interface {
	Create(ctx context.Context, p service.Principal, in service.PromotionInput) (*model.Promotion, error)
	Update(ctx context.Context, p service.Principal, id uint64, in service.PromotionInput) (*model.Promotion, error)
	Delete(ctx context.Context, p service.Principal, id uint64) error
	ListAll(ctx context.Context, p service.Principal) ([]model.Promotion, error)
	Active(ctx context.Context) ([]model.Promotion, error)
	Lookup(ctx context.Context, code string) (*model.Promotion, error)
}

type PromotionHandler struct {
	Promotions PromotionService
}

func NewPromotionHandler(p PromotionService) *PromotionHandler {
	return &PromotionHandler{Promotions: p}
}

// Active handles GET /v1/promotions.
func (h *PromotionHandler) Active(c echo.Context) error {
	list, err := h.Promotions.Active(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, nonNil(list))
}

// Lookup handles GET /v1/promotions/:code.
func (h *PromotionHandler) Lookup(c echo.Context) error {
	promo, err := h.Promotions.Lookup(c.Request().Context(), c.Param("code"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, promo)
}

// ListAll handles GET /v1/admin/promotions.
func (h *PromotionHandler) ListAll(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	list, err := h.Promotions.ListAll(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, nonNil(list))
}

// Create handles POST /v1/admin/promotions.
func (h *PromotionHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var in service.PromotionInput
	if err := bind(c, &in); err != nil {
		return err
	}
	promo, err := h.Promotions.Create(c.Request().Context(), p, in)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, promo)
}

// Update handles PUT /v1/admin/promotions/:id.
func (h *PromotionHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in service.PromotionInput
	if err := bind(c, &in); err != nil {
		return err
	}
	promo, err := h.Promotions.Update(c.Request().Context(), p, id, in)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, promo)
}

// Delete handles DELETE /v1/admin/promotions/:id.
func (h *PromotionHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.Promotions.Delete(c.Request().Context(), p, id); err != nil {
		return err
	}
	return okMsg(c, "promotion deleted")
}
