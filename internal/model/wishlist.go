package model

import "time"

// WishlistItem marks a tour a user wants to remember.
type WishlistItem struct {
	UserID    uint64    `json:"user_id"`
	TourID    uint64    `json:"tour_id"`
	Tour      *Tour     `json:"tour,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
