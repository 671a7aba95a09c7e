package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/queue"
)

var bookingNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type bookingFixture struct {
	svc      *BookingService
	tours    *memTours
	bookings *memBookings
	history  *memHistory
	notifier *recNotifier
	observer *recObserver
}

func newBookingFixture(bookings ...model.Booking) *bookingFixture {
	f := &bookingFixture{
		tours: newMemTours(model.Tour{
			ID:           3,
			Title:        "Ha Long Bay",
			Quantity:     10,
			PriceAdult:   100,
			PriceChild:   50,
			Availability: true,
		}),
		bookings: newMemBookings(bookings...),
		history:  &memHistory{},
		notifier: &recNotifier{},
		observer: &recObserver{},
	}
	f.svc = NewBookingService(BookingDeps{
		Tx:       &passTx{},
		Bookings: f.bookings,
		Tours:    f.tours,
		History:  f.history,
		Notifier: f.notifier,
		Observer: f.observer,
		Log:      zap.NewNop(),
		Now:      func() time.Time { return bookingNow },
	})
	return f
}

func pendingBooking(id uint64, date time.Time) model.Booking {
	return model.Booking{
		ID:            id,
		TourID:        3,
		UserID:        customer.UserID,
		BookingDate:   date,
		NumAdults:     2,
		NumChildren:   1,
		TotalPrice:    250,
		PaymentStatus: model.PaymentPending,
		BookingStatus: model.BookingPending,
	}
}

func TestBookingCreate_PricesAndDecrementsQuantity(t *testing.T) {
	f := newBookingFixture()

	b, err := f.svc.Create(context.Background(), customer, CreateBookingInput{
		TourID:      3,
		BookingDate: bookingNow.Add(72 * time.Hour),
		NumAdults:   2,
		NumChildren: 1,
	})
	require.NoError(t, err)

	assert.EqualValues(t, 250, b.TotalPrice)
	assert.Equal(t, model.BookingPending, b.BookingStatus)
	assert.Equal(t, model.PaymentPending, b.PaymentStatus)
	assert.Equal(t, customer.UserID, b.UserID)
	assert.Equal(t, 7, f.tours.quantity(3))
	assert.Equal(t, []string{model.ActionBookingCreated}, f.history.actions())
	require.Len(t, f.observer.events, 1)
	assert.Equal(t, TourInventoryChanged, f.observer.events[0].Kind)
}

func TestBookingCreate_Rejects(t *testing.T) {
	date := bookingNow.Add(72 * time.Hour)
	cases := []struct {
		name string
		in   CreateBookingInput
		tour func(*model.Tour)
		want error
	}{
		{"no adults", CreateBookingInput{TourID: 3, BookingDate: date, NumAdults: 0}, nil, ErrValidation},
		{"negative children", CreateBookingInput{TourID: 3, BookingDate: date, NumAdults: 1, NumChildren: -1}, nil, ErrValidation},
		{"missing date", CreateBookingInput{TourID: 3, NumAdults: 1}, nil, ErrValidation},
		{"unknown tour", CreateBookingInput{TourID: 99, BookingDate: date, NumAdults: 1}, nil, ErrNotFound},
		{"not enough places", CreateBookingInput{TourID: 3, BookingDate: date, NumAdults: 11}, nil, ErrInvalidState},
		{"unavailable", CreateBookingInput{TourID: 3, BookingDate: date, NumAdults: 1},
			func(t *model.Tour) { t.Availability = false }, ErrInvalidState},
		{"outside window", CreateBookingInput{TourID: 3, BookingDate: date, NumAdults: 1},
			func(t *model.Tour) { t.EndDate = bookingNow }, ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newBookingFixture()
			if tc.tour != nil {
				tour := f.tours.rows[3]
				tc.tour(&tour)
				f.tours.rows[3] = tour
			}
			_, err := f.svc.Create(context.Background(), customer, tc.in)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, 10, f.tours.quantity(3))
			assert.Empty(t, f.history.actions())
		})
	}
}

func TestBookingCancel_48HoursAheadRestoresQuantity(t *testing.T) {
	f := newBookingFixture(pendingBooking(1, bookingNow.Add(48*time.Hour)))

	b, err := f.svc.Cancel(context.Background(), customer, 1)
	require.NoError(t, err)

	assert.Equal(t, model.BookingCancelled, b.BookingStatus)
	assert.Equal(t, model.BookingCancelled, f.bookings.get(1).BookingStatus)
	assert.Equal(t, 13, f.tours.quantity(3))
	assert.Equal(t, []string{model.ActionBookingCancelled}, f.history.actions())
}

func TestBookingCancel_Within24HoursIsPolicyViolation(t *testing.T) {
	f := newBookingFixture(pendingBooking(1, bookingNow.Add(10*time.Hour)))

	_, err := f.svc.Cancel(context.Background(), customer, 1)
	assert.ErrorIs(t, err, ErrPolicyViolation)
	assert.Equal(t, model.BookingPending, f.bookings.get(1).BookingStatus)
	assert.Equal(t, 10, f.tours.quantity(3))
}

func TestBookingCancel_PastDateIsNotBlocked(t *testing.T) {
	f := newBookingFixture(pendingBooking(1, bookingNow.Add(-2*time.Hour)))

	_, err := f.svc.Cancel(context.Background(), customer, 1)
	require.NoError(t, err)
	assert.Equal(t, 13, f.tours.quantity(3))
}

func TestBookingCancel_TerminalStatesRejected(t *testing.T) {
	for _, status := range []model.BookingStatus{model.BookingCompleted, model.BookingCancelled} {
		t.Run(string(status), func(t *testing.T) {
			b := pendingBooking(1, bookingNow.Add(96*time.Hour))
			b.BookingStatus = status
			f := newBookingFixture(b)

			_, err := f.svc.Cancel(context.Background(), customer, 1)
			assert.ErrorIs(t, err, ErrInvalidState)
			assert.Equal(t, 10, f.tours.quantity(3))
			assert.Equal(t, status, f.bookings.get(1).BookingStatus)
		})
	}
}

func TestBookingCancel_OtherUsersBookingLooksAbsent(t *testing.T) {
	f := newBookingFixture(pendingBooking(1, bookingNow.Add(96*time.Hour)))

	_, err := f.svc.Cancel(context.Background(), stranger, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Cancel(context.Background(), customer, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingConfirm(t *testing.T) {
	f := newBookingFixture(pendingBooking(1, bookingNow.Add(96*time.Hour)))
	ctx := context.Background()

	_, err := f.svc.Confirm(ctx, customer, 1)
	assert.ErrorIs(t, err, ErrForbidden)

	b, err := f.svc.Confirm(ctx, admin, 1)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, b.BookingStatus)
	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, queue.EventBookingConfirmed, f.notifier.events[0].Type)
	assert.Equal(t, customer.UserID, f.notifier.events[0].UserID)

	_, err = f.svc.Confirm(ctx, admin, 1)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, []string{model.ActionBookingConfirmed}, f.history.actions())
}

func TestBookingConfirm_NotifierFailureDoesNotFail(t *testing.T) {
	f := newBookingFixture(pendingBooking(1, bookingNow.Add(96*time.Hour)))
	f.notifier.err = assert.AnError

	_, err := f.svc.Confirm(context.Background(), admin, 1)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, f.bookings.get(1).BookingStatus)
}

func TestBookingReject(t *testing.T) {
	b := pendingBooking(1, bookingNow.Add(96*time.Hour))
	b.SpecialRequests = "vegetarian"
	f := newBookingFixture(b)
	ctx := context.Background()

	_, err := f.svc.Reject(ctx, admin, 1, "  ")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Reject(ctx, admin, 1, strings.Repeat("x", 501))
	assert.ErrorIs(t, err, ErrValidation)

	got, err := f.svc.Reject(ctx, admin, 1, "Tour full")
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, got.BookingStatus)
	assert.Equal(t, "vegetarian\nRejection reason: Tour full", got.SpecialRequests)
	assert.Equal(t, 13, f.tours.quantity(3))
	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, queue.EventBookingRejected, f.notifier.events[0].Type)
	assert.Equal(t, "Tour full", f.notifier.events[0].Reason)

	_, err = f.svc.Reject(ctx, admin, 1, "again")
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 13, f.tours.quantity(3))
}

func TestBookingUpdateStatus_RestoresOnlyOnEnteringCancelled(t *testing.T) {
	f := newBookingFixture(pendingBooking(1, bookingNow.Add(96*time.Hour)))
	ctx := context.Background()
	paid := model.PaymentRefunded

	b, err := f.svc.UpdateStatus(ctx, admin, 1, UpdateStatusInput{
		Status:        model.BookingCancelled,
		PaymentStatus: &paid,
		Notes:         "customer called",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentRefunded, b.PaymentStatus)
	assert.Equal(t, "Admin note: customer called", b.SpecialRequests)
	assert.Equal(t, 13, f.tours.quantity(3))

	_, err = f.svc.UpdateStatus(ctx, admin, 1, UpdateStatusInput{Status: model.BookingCancelled})
	require.NoError(t, err)
	assert.Equal(t, 13, f.tours.quantity(3))

	_, err = f.svc.UpdateStatus(ctx, admin, 1, UpdateStatusInput{Status: model.BookingCompleted})
	require.NoError(t, err)
	assert.Equal(t, 13, f.tours.quantity(3))
	assert.Equal(t, []string{model.ActionStatusUpdated, model.ActionStatusUpdated, model.ActionStatusUpdated}, f.history.actions())
}

func TestBookingUpdateStatus_Validates(t *testing.T) {
	f := newBookingFixture(pendingBooking(1, bookingNow.Add(96*time.Hour)))
	bogus := model.PaymentStatus("maybe")

	_, err := f.svc.UpdateStatus(context.Background(), admin, 1, UpdateStatusInput{Status: "shipped"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.UpdateStatus(context.Background(), admin, 1, UpdateStatusInput{Status: model.BookingConfirmed, PaymentStatus: &bogus})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.UpdateStatus(context.Background(), customer, 1, UpdateStatusInput{Status: model.BookingConfirmed})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBookingReads(t *testing.T) {
	other := pendingBooking(2, bookingNow.Add(96*time.Hour))
	other.UserID = stranger.UserID
	f := newBookingFixture(pendingBooking(1, bookingNow.Add(96*time.Hour)), other)
	ctx := context.Background()

	_, err := f.svc.Get(ctx, customer, 2)
	assert.ErrorIs(t, err, ErrNotFound)
	b, err := f.svc.Get(ctx, admin, 2)
	require.NoError(t, err)
	assert.Equal(t, stranger.UserID, b.UserID)

	mine, err := f.svc.ListMine(ctx, customer)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.EqualValues(t, 1, mine[0].ID)

	_, err = f.svc.ListAll(ctx, customer, model.BookingFilter{})
	assert.ErrorIs(t, err, ErrForbidden)
	all, err := f.svc.ListAll(ctx, admin, model.BookingFilter{Status: model.BookingPending})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.Confirm(ctx, admin, 1)
	require.NoError(t, err)
	trail, err := f.svc.ListHistory(ctx, admin, 1)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, admin.UserID, trail[0].UserID)
}

func TestBookingCancel_TourDeleted(t *testing.T) {
	f := newBookingFixture(pendingBooking(1, bookingNow.Add(72*time.Hour)))
	require.NoError(t, f.tours.Delete(context.Background(), 3))

	b, err := f.svc.Cancel(context.Background(), customer, 1)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, b.BookingStatus)
	assert.Equal(t, model.BookingCancelled, f.bookings.get(1).BookingStatus)
	assert.Equal(t, []string{model.ActionBookingCancelled}, f.history.actions())
	assert.Empty(t, f.observer.events)
}

func TestBookingRejectAndUpdateStatus_TourDeleted(t *testing.T) {
	f := newBookingFixture(
		pendingBooking(1, bookingNow.Add(72*time.Hour)),
		pendingBooking(2, bookingNow.Add(72*time.Hour)),
	)
	ctx := context.Background()
	require.NoError(t, f.tours.Delete(ctx, 3))

	b, err := f.svc.Reject(ctx, admin, 1, "operator closed")
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, b.BookingStatus)

	b, err = f.svc.UpdateStatus(ctx, admin, 2, UpdateStatusInput{Status: model.BookingCancelled})
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, f.bookings.get(2).BookingStatus)
	assert.Empty(t, f.observer.events)
}

func TestBookingNotifierFailure_LoggedOnce(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	f := newBookingFixture(pendingBooking(1, bookingNow.Add(96*time.Hour)))
	f.notifier.err = assert.AnError
	f.svc.Log = zap.New(core)

	_, err := f.svc.Confirm(context.Background(), admin, 1)
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "booking notification dropped", logs.All()[0].Message)
}
