package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/service"
)

type ReviewService interface {
	Create(ctx context.Context, p service.Principal, tourID uint64, in service.ReviewInput) (*model.Review, error)
	ListByTour(ctx context.Context, tourID uint64) ([]model.Review, error)
	Delete(ctx context.Context, p service.Principal, id uint64) error
}

type WishlistService interface {
	Add(ctx context.Context, p service.Principal, tourID uint64) error
	Remove(ctx context.Context, p service.Principal, tourID uint64) error
	List(ctx context.Context, p service.Principal) ([]model.WishlistItem, error)
}

// ReviewHandler serves tour reviews and the caller's wishlist.
type ReviewHandler struct {
	Reviews  ReviewService
	Wishlist WishlistService
}

func NewReviewHandler(r ReviewService, w WishlistService) *ReviewHandler {
	return &ReviewHandler{Reviews: r, Wishlist: w}
}

// ListReviews handles GET /v1/tours/:id/reviews.
func (h *ReviewHandler) ListReviews(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	list, err := h.Reviews.ListByTour(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, nonNil(list))
}

// CreateReview handles POST /v1/tours/:id/reviews.
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in service.ReviewInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, err := h.Reviews.Create(c.Request().Context(), p, id, in)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, r)
}

// DeleteReview handles DELETE /v1/reviews/:id.
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.Reviews.Delete(c.Request().Context(), p, id); err != nil {
		return err
	}
	return okMsg(c, "review deleted")
}

// ListWishlist handles GET /v1/wishlist.
func (h *ReviewHandler) ListWishlist(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	items, err := h.Wishlist.List(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, nonNil(items))
}

// AddWishlist handles PUT /v1/wishlist/:tour_id.
func (h *ReviewHandler) AddWishlist(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "tour_id")
	if err != nil {
		return err
	}
	if err := h.Wishlist.Add(c.Request().Context(), p, id); err != nil {
		return err
	}
	return okMsg(c, "added to wishlist")
}

// RemoveWishlist handles DELETE /v1/wishlist/:tour_id.
func (h *ReviewHandler) RemoveWishlist(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "tour_id")
	if err != nil {
		return err
	}
	if err := h.Wishlist.Remove(c.Request().Context(), p, id); err != nil {
		return err
	}
	return okMsg(c, "removed from wishlist")
}
