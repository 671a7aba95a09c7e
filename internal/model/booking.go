package model

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is one of the four known states.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// PaymentStatus tracks whether a booking has been paid for.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

// Booking records a user's reservation of places on a tour.  Bookings
// reference tours by id only; deleting a tour leaves its bookings intact.
type Booking struct {
	ID              uint64        `json:"id"`
	TourID          uint64        `json:"tour_id"`
	UserID          uint64        `json:"user_id"`
	BookingDate     time.Time     `json:"booking_date"`
	NumAdults       int           `json:"num_adults"`
	NumChildren     int           `json:"num_children"`
	TotalPrice      int64         `json:"total_price"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	BookingStatus   BookingStatus `json:"booking_status"`
	SpecialRequests string        `json:"special_requests"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Guests is the number of places the booking holds on its tour.
func (b Booking) Guests() int {
	return b.NumAdults + b.NumChildren
}
