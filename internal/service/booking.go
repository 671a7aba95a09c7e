package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/queue"
	"github.com/iliyamo/tour-booking/internal/repository"
)

// cancelWindow is how close to the booking date a customer may no longer
// cancel.
const cancelWindow = 24 * time.Hour

// maxRejectReason bounds the admin's rejection reason in characters.
const maxRejectReason = 500

// BookingDeps are the collaborators of BookingService.  Observer and
// Notifier may be nil.
type BookingDeps struct {
	Tx       Transactor
	Bookings BookingRepository
	Tours    TourRepository
	History  HistoryRepository
	Notifier Notifier
	Observer TourObserver
	Log      *zap.Logger
	Now      Clock
}

// BookingService moves bookings through pending → confirmed → completed,
// with cancelled reachable from pending or confirmed, and keeps the tour's
// remaining quantity in step.
type BookingService struct {
	BookingDeps
}

func NewBookingService(d BookingDeps) *BookingService {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &BookingService{BookingDeps: d}
}

// CreateBookingInput is what a customer submits to book a tour.
type CreateBookingInput struct {
	TourID          uint64
	BookingDate     time.Time
	NumAdults       int
	NumChildren     int
	SpecialRequests string
}

// Create books places on a tour for p.  The total price is computed from
// the tour's current prices and the tour's quantity is decremented.
func (s *BookingService) Create(ctx context.Context, p Principal, in CreateBookingInput) (*model.Booking, error) {
	if in.NumAdults < 1 {
		return nil, fmt.Errorf("%w: at least one adult is required", ErrValidation)
	}
	if in.NumChildren < 0 {
		return nil, fmt.Errorf("%w: num_children cannot be negative", ErrValidation)
	}
	if in.BookingDate.IsZero() {
		return nil, fmt.Errorf("%w: booking_date is required", ErrValidation)
	}

	var b *model.Booking
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		tour, err := s.Tours.GetByID(ctx, in.TourID)
		if err != nil {
			return notFound(err, "tour", in.TourID)
		}
		if !tour.Availability {
			return fmt.Errorf("%w: tour %d is not available", ErrInvalidState, tour.ID)
		}
		if !tour.InWindow(in.BookingDate) {
			return fmt.Errorf("%w: booking_date outside the tour's dates", ErrValidation)
		}
		guests := in.NumAdults + in.NumChildren
		if tour.Quantity < guests {
			return fmt.Errorf("%w: only %d places left on tour %d", ErrInvalidState, tour.Quantity, tour.ID)
		}

		b = &model.Booking{
			TourID:          tour.ID,
			UserID:          p.UserID,
			BookingDate:     in.BookingDate,
			NumAdults:       in.NumAdults,
			NumChildren:     in.NumChildren,
			TotalPrice:      tour.PriceFor(in.NumAdults, in.NumChildren),
			PaymentStatus:   model.PaymentPending,
			BookingStatus:   model.BookingPending,
			SpecialRequests: strings.TrimSpace(in.SpecialRequests),
		}
		if err := s.Bookings.Create(ctx, b); err != nil {
			return err
		}
		if err := s.Tours.AdjustQuantity(ctx, tour.ID, -guests); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%w: tour %d sold out", ErrInvalidState, tour.ID)
			}
			return err
		}
		return s.appendHistory(ctx, p.UserID, b.ID, model.ActionBookingCreated)
	})
	if err != nil {
		return nil, err
	}
	s.inventoryChanged(ctx, b.TourID)
	s.Log.Info("booking created",
		zap.Uint64("booking_id", b.ID),
		zap.Uint64("tour_id", b.TourID),
		zap.Uint64("user_id", b.UserID),
		zap.Int64("total_price", b.TotalPrice))
	return b, nil
}

// Cancel cancels one of p's own bookings.  Completed and cancelled
// bookings cannot be cancelled, nor can bookings whose date is less than
// 24 hours away.  A booking date already in the past is not blocked by the
// window check.
func (s *BookingService) Cancel(ctx context.Context, p Principal, bookingID uint64) (*model.Booking, error) {
	var (
		b        *model.Booking
		restored bool
	)
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			return notFound(err, "booking", bookingID)
		}
		if b.UserID != p.UserID {
			return fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
		}
		if b.BookingStatus == model.BookingCancelled || b.BookingStatus == model.BookingCompleted {
			return fmt.Errorf("%w: booking %d is %s", ErrInvalidState, b.ID, b.BookingStatus)
		}
		hours := b.BookingDate.Sub(s.Now()).Hours()
		if hours < cancelWindow.Hours() && hours > 0 {
			return fmt.Errorf("%w: bookings cannot be cancelled within 24 hours of the booking date", ErrPolicyViolation)
		}

		b.BookingStatus = model.BookingCancelled
		if err := s.Bookings.Update(ctx, b); err != nil {
			return err
		}
		if restored, err = s.restorePlaces(ctx, b); err != nil {
			return err
		}
		return s.appendHistory(ctx, p.UserID, b.ID, model.ActionBookingCancelled)
	})
	if err != nil {
		return nil, err
	}
	if restored {
		s.inventoryChanged(ctx, b.TourID)
	}
	return b, nil
}

// Confirm moves a pending booking to confirmed and notifies the customer.
func (s *BookingService) Confirm(ctx context.Context, p Principal, bookingID uint64) (*model.Booking, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	var b *model.Booking
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			return notFound(err, "booking", bookingID)
		}
		if b.BookingStatus != model.BookingPending {
			return fmt.Errorf("%w: only pending bookings can be confirmed, booking %d is %s", ErrInvalidState, b.ID, b.BookingStatus)
		}
		b.BookingStatus = model.BookingConfirmed
		if err := s.Bookings.Update(ctx, b); err != nil {
			return err
		}
		return s.appendHistory(ctx, p.UserID, b.ID, model.ActionBookingConfirmed)
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, queue.EventBookingConfirmed, b, "")
	return b, nil
}

// Reject cancels a pending booking on the admin's behalf, restores the
// tour's places and records the reason in the booking's special requests.
func (s *BookingService) Reject(ctx context.Context, p Principal, bookingID uint64, reason string) (*model.Booking, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrValidation)
	}
	if utf8.RuneCountInString(reason) > maxRejectReason {
		return nil, fmt.Errorf("%w: reason must be at most %d characters", ErrValidation, maxRejectReason)
	}

	var (
		b        *model.Booking
		restored bool
	)
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			return notFound(err, "booking", bookingID)
		}
		if b.BookingStatus != model.BookingPending {
			return fmt.Errorf("%w: only pending bookings can be rejected, booking %d is %s", ErrInvalidState, b.ID, b.BookingStatus)
		}
		b.BookingStatus = model.BookingCancelled
		b.SpecialRequests = appendNote(b.SpecialRequests, "Rejection reason: "+reason)
		if err := s.Bookings.Update(ctx, b); err != nil {
			return err
		}
		if restored, err = s.restorePlaces(ctx, b); err != nil {
			return err
		}
		return s.appendHistory(ctx, p.UserID, b.ID, model.ActionBookingRejected)
	})
	if err != nil {
		return nil, err
	}
	if restored {
		s.inventoryChanged(ctx, b.TourID)
	}
	s.notify(ctx, queue.EventBookingRejected, b, reason)
	return b, nil
}

// UpdateStatusInput is the admin's free-form status change.
type UpdateStatusInput struct {
	Status        model.BookingStatus
	PaymentStatus *model.PaymentStatus
	Notes         string
}

// UpdateStatus sets any booking status.  Places are given back to the
// tour only when the booking moves into cancelled from another state, so
// repeating the call does not restore twice.
func (s *BookingService) UpdateStatus(ctx context.Context, p Principal, bookingID uint64, in UpdateStatusInput) (*model.Booking, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown booking status %q", ErrValidation, in.Status)
	}
	if in.PaymentStatus != nil && !in.PaymentStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrValidation, *in.PaymentStatus)
	}

	var (
		b        *model.Booking
		restored bool
	)
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			return notFound(err, "booking", bookingID)
		}
		from := b.BookingStatus
		b.BookingStatus = in.Status
		if in.PaymentStatus != nil {
			b.PaymentStatus = *in.PaymentStatus
		}
		if notes := strings.TrimSpace(in.Notes); notes != "" {
			b.SpecialRequests = appendNote(b.SpecialRequests, "Admin note: "+notes)
		}
		if err := s.Bookings.Update(ctx, b); err != nil {
			return err
		}
		if in.Status == model.BookingCancelled && from != model.BookingCancelled {
			if restored, err = s.restorePlaces(ctx, b); err != nil {
				return err
			}
		}
		return s.appendHistory(ctx, p.UserID, b.ID, model.ActionStatusUpdated)
	})
	if err != nil {
		return nil, err
	}
	if restored {
		s.inventoryChanged(ctx, b.TourID)
	}
	return b, nil
}

// Get returns a booking visible to p.  Bookings of other users look absent.
func (s *BookingService) Get(ctx context.Context, p Principal, bookingID uint64) (*model.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "booking", bookingID)
	}
	if !p.CanSee(b.UserID) {
		return nil, fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
	}
	return b, nil
}

// ListMine returns p's bookings, newest first.
func (s *BookingService) ListMine(ctx context.Context, p Principal) ([]model.Booking, error) {
	return s.Bookings.List(ctx, model.BookingFilter{UserID: p.UserID})
}

// ListAll returns every booking matching f.  Admin only.
func (s *BookingService) ListAll(ctx context.Context, p Principal, f model.BookingFilter) ([]model.Booking, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown booking status %q", ErrValidation, f.Status)
	}
	return s.Bookings.List(ctx, f)
}

// ListHistory returns the audit trail of a booking.  Admin only.
func (s *BookingService) ListHistory(ctx context.Context, p Principal, bookingID uint64) ([]model.History, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	if _, err := s.Bookings.GetByID(ctx, bookingID); err != nil {
		return nil, notFound(err, "booking", bookingID)
	}
	return s.History.ListByBooking(ctx, bookingID)
}

func (s *BookingService) appendHistory(ctx context.Context, userID, bookingID uint64, action string) error {
	return s.History.Append(ctx, &model.History{
		UserID:     userID,
		BookingID:  bookingID,
		Action:     action,
		ActionDate: s.Now().UTC(),
	})
}

// restorePlaces gives a cancelled booking's places back to its tour.  A
// deleted tour has nothing to restore; the booking is still cancelled.
func (s *BookingService) restorePlaces(ctx context.Context, b *model.Booking) (bool, error) {
	err := s.Tours.AdjustQuantity(ctx, b.TourID, b.Guests())
	if errors.Is(err, repository.ErrNotFound) {
		s.Log.Info("tour gone, places not restored",
			zap.Uint64("booking_id", b.ID), zap.Uint64("tour_id", b.TourID))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *BookingService) inventoryChanged(ctx context.Context, tourID uint64) {
	if s.Observer != nil {
		s.Observer.TourChanged(ctx, TourEvent{Kind: TourInventoryChanged, TourID: tourID})
	}
}

func (s *BookingService) notify(ctx context.Context, typ string, b *model.Booking, reason string) {
	if s.Notifier == nil {
		return
	}
	ev := queue.Event{
		Type:       typ,
		BookingID:  b.ID,
		UserID:     b.UserID,
		TourID:     b.TourID,
		Amount:     b.TotalPrice,
		Reason:     reason,
		OccurredAt: s.Now().UTC(),
	}
	if err := s.Notifier.Publish(ctx, ev); err != nil {
		s.Log.Warn("booking notification dropped", zap.String("type", typ), zap.Uint64("booking_id", b.ID), zap.Error(err))
	}
}

func appendNote(existing, note string) string {
	if strings.TrimSpace(existing) == "" {
		return note
	}
	return existing + "\n" + note
}

// notFound turns a repository miss into ErrNotFound and passes other
// errors through.
func notFound(err error, what string, id uint64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
	}
	return err
}
