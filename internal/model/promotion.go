package model

import "time"

// Promotion is a discount code advertised to customers.
type Promotion struct {
	ID              uint64    `json:"id"`
	Code            string    `json:"code"`
	Description     string    `json:"description"`
	DiscountPercent int       `json:"discount_percent"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	IsActive        bool      `json:"is_active"`
}

// ActiveAt reports whether the promotion can be used at t.
func (p Promotion) ActiveAt(t time.Time) bool {
	return p.IsActive && !t.Before(p.StartDate) && !t.After(p.EndDate)
}
