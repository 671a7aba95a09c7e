package model

import "time"

// History actions written by the booking and payment services.
const (
	ActionBookingCreated   = "booking_created"
	ActionBookingCancelled = "booking_cancelled"
	ActionBookingConfirmed = "booking_confirmed"
	ActionBookingRejected  = "booking_rejected"
	ActionStatusUpdated    = "status_updated"
	ActionPaymentCompleted = "payment_completed"
)

// History is an append-only audit row.  The application never updates or
// deletes these.
type History struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"user_id"`
	BookingID  uint64    `json:"booking_id"`
	Action     string    `json:"action"`
	ActionDate time.Time `json:"action_date"`
}
