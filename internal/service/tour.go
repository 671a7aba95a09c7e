package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/tour-booking/internal/cache"
	"github.com/iliyamo/tour-booking/internal/model"
)

// TourService serves tour listings through the tag cache and performs the
// admin writes, telling every observer after each successful write.
type TourService struct {
	tours     TourRepository
	cache     *cache.TagCache
	observers []TourObserver
	log       *zap.Logger
}

// NewTourService builds a TourService.  c may be nil to disable caching.
func NewTourService(tours TourRepository, c *cache.TagCache, log *zap.Logger, observers ...TourObserver) *TourService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TourService{tours: tours, cache: c, observers: observers, log: log}
}

// All returns every tour.
func (s *TourService) All(ctx context.Context) ([]model.Tour, error) {
	return cache.Remember(ctx, s.cache, KeyToursAll, []string{TagTours},
		func(ctx context.Context) ([]model.Tour, error) {
			return s.tours.List(ctx, model.TourQuery{})
		})
}

// Featured returns the tours promoted on the landing page.
func (s *TourService) Featured(ctx context.Context) ([]model.Tour, error) {
	return cache.Remember(ctx, s.cache, KeyToursFeatured, []string{TagTours, TagFeatured},
		func(ctx context.Context) ([]model.Tour, error) {
			return s.tours.List(ctx, model.TourQuery{FeaturedOnly: true})
		})
}

// Available returns the tours currently accepting bookings.
func (s *TourService) Available(ctx context.Context) ([]model.Tour, error) {
	return cache.Remember(ctx, s.cache, KeyToursAvailable, []string{TagTours, TagAvailable},
		func(ctx context.Context) ([]model.Tour, error) {
			return s.tours.List(ctx, model.TourQuery{AvailableOnly: true})
		})
}

// Detail returns one tour.  Misses are not cached.
func (s *TourService) Detail(ctx context.Context, id uint64) (*model.Tour, error) {
	t, err := cache.Remember(ctx, s.cache, tourDetailKey(id), []string{TagTours, tourTag(id)},
		func(ctx context.Context) (model.Tour, error) {
			t, err := s.tours.GetByID(ctx, id)
			if err != nil {
				return model.Tour{}, notFound(err, "tour", id)
			}
			return *t, nil
		})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Search returns tours whose title, destination or description contain
// keyword, case-insensitively.
func (s *TourService) Search(ctx context.Context, keyword string) ([]model.Tour, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("%w: keyword is required", ErrValidation)
	}
	return cache.Remember(ctx, s.cache, tourSearchKey(keyword), []string{TagTours, TagSearch},
		func(ctx context.Context) ([]model.Tour, error) {
			return s.tours.List(ctx, model.TourQuery{Keyword: keyword})
		})
}

// TourInput carries the writable fields of a tour.  On update nil fields
// keep their current value.
type TourInput struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Destination  *string    `json:"destination"`
	Quantity     *int       `json:"quantity"`
	PriceAdult   *int64     `json:"price_adult"`
	PriceChild   *int64     `json:"price_child"`
	Availability *bool      `json:"availability"`
	Featured     *bool      `json:"featured"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

func (in TourInput) apply(t *model.Tour) {
	if in.Title != nil {
		t.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Destination != nil {
		t.Destination = strings.TrimSpace(*in.Destination)
	}
	if in.Quantity != nil {
		t.Quantity = *in.Quantity
	}
	if in.PriceAdult != nil {
		t.PriceAdult = *in.PriceAdult
	}
	if in.PriceChild != nil {
		t.PriceChild = *in.PriceChild
	}
	if in.Availability != nil {
		t.Availability = *in.Availability
	}
	if in.Featured != nil {
		t.Featured = *in.Featured
	}
	if in.StartDate != nil {
		t.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		t.EndDate = *in.EndDate
	}
}

func validateTour(t *model.Tour) error {
	switch {
	case t.Title == "":
		return fmt.Errorf("%w: title is required", ErrValidation)
	case t.Quantity < 0:
		return fmt.Errorf("%w: quantity cannot be negative", ErrValidation)
	case t.PriceAdult < 0 || t.PriceChild < 0:
		return fmt.Errorf("%w: prices cannot be negative", ErrValidation)
	case !t.StartDate.IsZero() && !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate):
		return fmt.Errorf("%w: end_date is before start_date", ErrValidation)
	}
	return nil
}

// Create adds a tour.  New tours accept bookings unless the input says
// otherwise.  Admin only.
func (s *TourService) Create(ctx context.Context, p Principal, in TourInput) (*model.Tour, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	t := &model.Tour{Availability: true}
	in.apply(t)
	if err := validateTour(t); err != nil {
		return nil, err
	}
	if err := s.tours.Create(ctx, t); err != nil {
		return nil, err
	}
	s.changed(ctx, TourEvent{Kind: TourCreated, TourID: t.ID, After: t})
	return t, nil
}

// Update changes the given fields of a tour.  Admin only.
func (s *TourService) Update(ctx context.Context, p Principal, id uint64, in TourInput) (*model.Tour, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	before, err := s.tours.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "tour", id)
	}
	after := *before
	in.apply(&after)
	if err := validateTour(&after); err != nil {
		return nil, err
	}
	if err := s.tours.Update(ctx, &after, in.Quantity != nil); err != nil {
		return nil, notFound(err, "tour", id)
	}
	s.changed(ctx, TourEvent{Kind: TourUpdated, TourID: id, Before: before, After: &after})
	return &after, nil
}

// Delete removes a tour.  Its bookings keep their tour id.  Admin only.
func (s *TourService) Delete(ctx context.Context, p Principal, id uint64) error {
	if !p.IsAdmin() {
		return ErrForbidden
	}
	if err := s.tours.Delete(ctx, id); err != nil {
		return notFound(err, "tour", id)
	}
	s.changed(ctx, TourEvent{Kind: TourDeleted, TourID: id})
	return nil
}

func (s *TourService) changed(ctx context.Context, ev TourEvent) {
	s.log.Debug("tour changed", zap.Uint64("tour_id", ev.TourID), zap.Int("kind", int(ev.Kind)))
	for _, o := range s.observers {
		o.TourChanged(ctx, ev)
	}
}
