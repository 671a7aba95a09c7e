package service

import (
	"context"

	"github.com/iliyamo/tour-booking/internal/model"
)

// WishlistService manages a user's bookmarked tours.
type WishlistService struct {
	items WishlistRepository
	tours TourRepository
}

func NewWishlistService(items WishlistRepository, tours TourRepository) *WishlistService {
	return &WishlistService{items: items, tours: tours}
}

// Add bookmarks a tour for p.  Adding the same tour twice is a no-op.
func (s *WishlistService) Add(ctx context.Context, p Principal, tourID uint64) error {
	if _, err := s.tours.GetByID(ctx, tourID); err != nil {
		return notFound(err, "tour", tourID)
	}
	return s.items.Add(ctx, p.UserID, tourID)
}

func (s *WishlistService) Remove(ctx context.Context, p Principal, tourID uint64) error {
	return notFound(s.items.Remove(ctx, p.UserID, tourID), "wishlist tour", tourID)
}

func (s *WishlistService) List(ctx context.Context, p Principal) ([]model.WishlistItem, error) {
	return s.items.ListByUser(ctx, p.UserID)
}
