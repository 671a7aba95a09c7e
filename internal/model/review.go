package model

import "time"

// Review is a rating left by a user who completed the tour.
type Review struct {
	ID        uint64    `json:"id"`
	TourID    uint64    `json:"tour_id"`
	UserID    uint64    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
