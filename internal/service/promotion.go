package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/repository"
)

// PromotionService manages discount codes.  Codes are advertised only;
// bookings are priced without them.
type PromotionService struct {
	promos PromotionRepository
	now    Clock
}

func NewPromotionService(promos PromotionRepository, now Clock) *PromotionService {
	if now == nil {
		now = time.Now
	}
	return &PromotionService{promos: promos, now: now}
}

// PromotionInput is the admin's create/update payload.
type PromotionInput struct {
	Code            string    `json:"code"`
	Description     string    `json:"description"`
	DiscountPercent int       `json:"discount_percent"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	IsActive        *bool     `json:"is_active"`
}

func (in PromotionInput) build(p *model.Promotion) error {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	switch {
	case code == "":
		return fmt.Errorf("%w: code is required", ErrValidation)
	case in.DiscountPercent < 1 || in.DiscountPercent > 100:
		return fmt.Errorf("%w: discount_percent must be between 1 and 100", ErrValidation)
	case in.StartDate.IsZero() || in.EndDate.IsZero():
		return fmt.Errorf("%w: start_date and end_date are required", ErrValidation)
	case in.EndDate.Before(in.StartDate):
		return fmt.Errorf("%w: end_date is before start_date", ErrValidation)
	}
	p.Code = code
	p.Description = strings.TrimSpace(in.Description)
	p.DiscountPercent = in.DiscountPercent
	p.StartDate = in.StartDate
	p.EndDate = in.EndDate
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return nil
}

func (s *PromotionService) Create(ctx context.Context, p Principal, in PromotionInput) (*model.Promotion, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	promo := &model.Promotion{IsActive: true}
	if err := in.build(promo); err != nil {
		return nil, err
	}
	if err := s.promos.Create(ctx, promo); err != nil {
		return nil, codeTaken(err, promo.Code)
	}
	return promo, nil
}

func (s *PromotionService) Update(ctx context.Context, p Principal, id uint64, in PromotionInput) (*model.Promotion, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	promo, err := s.promos.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "promotion", id)
	}
	if err := in.build(promo); err != nil {
		return nil, err
	}
	if err := s.promos.Update(ctx, promo); err != nil {
		return nil, codeTaken(err, promo.Code)
	}
	return promo, nil
}

func (s *PromotionService) Delete(ctx context.Context, p Principal, id uint64) error {
	if !p.IsAdmin() {
		return ErrForbidden
	}
	return notFound(s.promos.Delete(ctx, id), "promotion", id)
}

// ListAll returns every promotion, active or not.  Admin only.
func (s *PromotionService) ListAll(ctx context.Context, p Principal) ([]model.Promotion, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.promos.List(ctx, nil)
}

// Active returns the promotions usable right now.
func (s *PromotionService) Active(ctx context.Context) ([]model.Promotion, error) {
	now := s.now().UTC()
	return s.promos.List(ctx, &now)
}

// Lookup returns the promotion with code if it is usable right now.
func (s *PromotionService) Lookup(ctx context.Context, code string) (*model.Promotion, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	promo, err := s.promos.GetByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: promotion %s", ErrNotFound, code)
	}
	if err != nil {
		return nil, err
	}
	if !promo.ActiveAt(s.now().UTC()) {
		return nil, fmt.Errorf("%w: promotion %s is not active", ErrNotFound, promo.Code)
	}
	return promo, nil
}

func codeTaken(err error, code string) error {
	if errors.Is(err, repository.ErrConflict) {
		return fmt.Errorf("%w: promotion code %s already exists", ErrInvalidState, code)
	}
	return err
}
