package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/tour-booking/internal/model"
)

// HistoryRepo appends booking audit rows.  Rows are never updated or
// deleted.
type HistoryRepo struct{ DB *sql.DB }

func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{DB: db} }

func (r *HistoryRepo) Append(ctx context.Context, h *model.History) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		"INSERT INTO history (user_id, booking_id, action, action_date) VALUES (?,?,?,?)",
		h.UserID, h.BookingID, h.Action, h.ActionDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

// ListByBooking returns a booking's trail, oldest first.
func (r *HistoryRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]model.History, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx,
		"SELECT id, user_id, booking_id, action, action_date FROM history WHERE booking_id=? ORDER BY action_date, id",
		bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.History{}
	for rows.Next() {
		var h model.History
		if err := rows.Scan(&h.ID, &h.UserID, &h.BookingID, &h.Action, &h.ActionDate); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
