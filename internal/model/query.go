package model

// TourQuery filters tour listings.  Zero values mean "no filter".
type TourQuery struct {
	Keyword       string
	FeaturedOnly  bool
	AvailableOnly bool
}

// BookingFilter narrows booking listings.  Zero values mean "no filter".
type BookingFilter struct {
	Status BookingStatus
	TourID uint64
	UserID uint64
}
