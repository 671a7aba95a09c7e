package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/tour-booking/internal/model"
)

// WishlistRepo stores (user, tour) bookmarks.
type WishlistRepo struct{ DB *sql.DB }

func NewWishlistRepo(db *sql.DB) *WishlistRepo { return &WishlistRepo{DB: db} }

// Add bookmarks a tour.  Adding it twice is a no-op.
func (r *WishlistRepo) Add(ctx context.Context, userID, tourID uint64) error {
	_, err := conn(ctx, r.DB).ExecContext(ctx,
		"INSERT IGNORE INTO wishlists (user_id, tour_id) VALUES (?,?)", userID, tourID)
	return err
}

func (r *WishlistRepo) Remove(ctx context.Context, userID, tourID uint64) error {
	return affected(conn(ctx, r.DB).ExecContext(ctx,
		"DELETE FROM wishlists WHERE user_id=? AND tour_id=?", userID, tourID))
}

// ListByUser returns the user's bookmarks joined with their tours.  Tours
// deleted since are skipped.
func (r *WishlistRepo) ListByUser(ctx context.Context, userID uint64) ([]model.WishlistItem, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx,
		`SELECT w.user_id, w.created_at, t.id, t.title, t.description, t.destination, t.quantity,
			t.price_adult, t.price_child, t.availability, t.featured, t.start_date, t.end_date,
			t.created_at, t.updated_at
		 FROM wishlists w JOIN tours t ON t.id = w.tour_id
		 WHERE w.user_id=? ORDER BY w.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.WishlistItem{}
	for rows.Next() {
		var (
			item       model.WishlistItem
			t          model.Tour
			start, end sql.NullTime
		)
		if err := rows.Scan(&item.UserID, &item.CreatedAt, &t.ID, &t.Title, &t.Description, &t.Destination,
			&t.Quantity, &t.PriceAdult, &t.PriceChild, &t.Availability, &t.Featured,
			&start, &end, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.StartDate, t.EndDate = start.Time, end.Time
		item.TourID = t.ID
		item.Tour = &t
		out = append(out, item)
	}
	return out, rows.Err()
}
