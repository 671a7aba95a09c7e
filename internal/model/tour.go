package model

import "time"

// Tour is a bookable trip.  Quantity is the remaining number of places;
// it goes down when a booking is created and back up when a booking is
// cancelled or rejected.
//
// Fields:
//  PriceAdult/PriceChild – per-person prices in the currency's smallest unit.
//  Availability          – whether new bookings are accepted.
//  Featured              – promoted on the landing page listing.
//  StartDate/EndDate     – booking window; zero values mean unbounded.
type Tour struct {
	ID           uint64    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Destination  string    `json:"destination"`
	Quantity     int       `json:"quantity"`
	PriceAdult   int64     `json:"price_adult"`
	PriceChild   int64     `json:"price_child"`
	Availability bool      `json:"availability"`
	Featured     bool      `json:"featured"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PriceFor returns the total price for a party of adults and children.
func (t Tour) PriceFor(adults, children int) int64 {
	return int64(adults)*t.PriceAdult + int64(children)*t.PriceChild
}

// InWindow reports whether d falls inside the tour's start/end dates.  An
// end date at midnight is a calendar day and includes the whole of it.
func (t Tour) InWindow(d time.Time) bool {
	if !t.StartDate.IsZero() && d.Before(t.StartDate) {
		return false
	}
	if t.EndDate.IsZero() {
		return true
	}
	end := t.EndDate
	if h, m, s := end.Clock(); h == 0 && m == 0 && s == 0 && end.Nanosecond() == 0 {
		return d.Before(end.AddDate(0, 0, 1))
	}
	return !d.After(end)
}
