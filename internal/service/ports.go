package service

import (
	"context"
	"time"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/queue"
)

// Transactor runs fn inside one database transaction.  Repositories called
// with the context passed to fn take part in that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type TourRepository interface {
	Create(ctx context.Context, t *model.Tour) error
	GetByID(ctx context.Context, id uint64) (*model.Tour, error)
	List(ctx context.Context, q model.TourQuery) ([]model.Tour, error)
	// Update writes t's editable columns and reloads t.  quantity is
	// written only when withQuantity is set, so bookings made since t was
	// read keep their decrement.
	Update(ctx context.Context, t *model.Tour, withQuantity bool) error
	Delete(ctx context.Context, id uint64) error
	// AdjustQuantity adds delta (possibly negative) to the tour's quantity.
	AdjustQuantity(ctx context.Context, id uint64, delta int) error
}

type BookingRepository interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	List(ctx context.Context, f model.BookingFilter) ([]model.Booking, error)
	Update(ctx context.Context, b *model.Booking) error
	// HasCompleted reports whether userID has a completed booking of tourID.
	HasCompleted(ctx context.Context, userID, tourID uint64) (bool, error)
}

type CheckoutRepository interface {
	Create(ctx context.Context, c *model.Checkout) error
	GetByID(ctx context.Context, id uint64) (*model.Checkout, error)
	GetByTransactionID(ctx context.Context, txnID string) (*model.Checkout, error)
	ListByBooking(ctx context.Context, bookingID uint64) ([]model.Checkout, error)
	Update(ctx context.Context, c *model.Checkout) error
}

type InvoiceRepository interface {
	Create(ctx context.Context, inv *model.Invoice) error
	// GetByBooking returns repository.ErrNotFound when no invoice exists.
	GetByBooking(ctx context.Context, bookingID uint64) (*model.Invoice, error)
}

type HistoryRepository interface {
	Append(ctx context.Context, h *model.History) error
	ListByBooking(ctx context.Context, bookingID uint64) ([]model.History, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, r *model.Review) error
	GetByID(ctx context.Context, id uint64) (*model.Review, error)
	ListByTour(ctx context.Context, tourID uint64) ([]model.Review, error)
	Exists(ctx context.Context, userID, tourID uint64) (bool, error)
	Delete(ctx context.Context, id uint64) error
}

type PromotionRepository interface {
	Create(ctx context.Context, p *model.Promotion) error
	GetByID(ctx context.Context, id uint64) (*model.Promotion, error)
	GetByCode(ctx context.Context, code string) (*model.Promotion, error)
	List(ctx context.Context, activeAt *time.Time) ([]model.Promotion, error)
	Update(ctx context.Context, p *model.Promotion) error
	Delete(ctx context.Context, id uint64) error
}

type WishlistRepository interface {
	Add(ctx context.Context, userID, tourID uint64) error
	Remove(ctx context.Context, userID, tourID uint64) error
	ListByUser(ctx context.Context, userID uint64) ([]model.WishlistItem, error)
}

// Notifier delivers booking events to customers.  Implementations must not
// block the request for long; failures are logged, never returned to the
// client.
type Notifier interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// TourObserver is told about every successful tour write so derived state
// such as cached listings can be dropped.
type TourObserver interface {
	TourChanged(ctx context.Context, ev TourEvent)
}

// TourEventKind says what happened to a tour.
type TourEventKind int

const (
	TourCreated TourEventKind = iota + 1
	TourUpdated
	TourDeleted
	// TourInventoryChanged marks a quantity change caused by a booking.
	TourInventoryChanged
)

// TourEvent describes one tour write.  Before is nil for creations and
// After is nil for deletions.
type TourEvent struct {
	Kind   TourEventKind
	TourID uint64
	Before *model.Tour
	After  *model.Tour
}

// Clock returns the current time; tests replace it.
type Clock func() time.Time

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	UpdateProfile(ctx context.Context, id uint64, name, phone string) error
	List(ctx context.Context) ([]model.User, error)
	SetActive(ctx context.Context, id uint64, active bool) error
}

type TokenRepository interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	// ValidateRefresh returns repository.ErrNotFound for unknown, revoked
	// or expired tokens.
	ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}
