// Package queue defines booking notification events and moves them over
// RabbitMQ.
package queue

import "time"

// Event types published by the booking and payment services.
const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingRejected  = "booking.rejected"
	EventPaymentCompleted = "payment.completed"
)

// Event carries enough information for the notification worker to tell a
// customer what happened without querying the primary database.
type Event struct {
	Type       string    `json:"type"`
	BookingID  uint64    `json:"booking_id"`
	UserID     uint64    `json:"user_id"`
	TourID     uint64    `json:"tour_id"`
	Amount     int64     `json:"amount,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
