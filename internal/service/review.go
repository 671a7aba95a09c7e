package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/repository"
)

// ReviewService lets customers who completed a tour rate it once.
type ReviewService struct {
	reviews  ReviewRepository
	bookings BookingRepository
	tours    TourRepository
}

func NewReviewService(reviews ReviewRepository, bookings BookingRepository, tours TourRepository) *ReviewService {
	return &ReviewService{reviews: reviews, bookings: bookings, tours: tours}
}

// ReviewInput is a rating of 1 to 5 and an optional comment.
type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Create records p's review of a tour.
func (s *ReviewService) Create(ctx context.Context, p Principal, tourID uint64, in ReviewInput) (*model.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	if _, err := s.tours.GetByID(ctx, tourID); err != nil {
		return nil, notFound(err, "tour", tourID)
	}
	done, err := s.bookings.HasCompleted(ctx, p.UserID, tourID)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, fmt.Errorf("%w: only customers who completed the tour can review it", ErrPolicyViolation)
	}
	exists, err := s.reviews.Exists(ctx, p.UserID, tourID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: tour %d already reviewed", ErrInvalidState, tourID)
	}
	r := &model.Review{
		TourID:  tourID,
		UserID:  p.UserID,
		Rating:  in.Rating,
		Comment: strings.TrimSpace(in.Comment),
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: tour %d already reviewed", ErrInvalidState, tourID)
		}
		return nil, err
	}
	return r, nil
}

// ListByTour returns a tour's reviews, newest first.
func (s *ReviewService) ListByTour(ctx context.Context, tourID uint64) ([]model.Review, error) {
	return s.reviews.ListByTour(ctx, tourID)
}

// Delete removes a review.  Only its author or an admin may do so.
func (s *ReviewService) Delete(ctx context.Context, p Principal, id uint64) error {
	r, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "review", id)
	}
	if !p.CanSee(r.UserID) {
		return ErrForbidden
	}
	return notFound(s.reviews.Delete(ctx, id), "review", id)
}
