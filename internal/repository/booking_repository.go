package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/tour-booking/internal/model"
)

// BookingRepo persists bookings.  Bookings keep their tour_id even after
// the tour is deleted.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

const bookingColumns = `id, tour_id, user_id, booking_date, num_adults, num_children, total_price,
	payment_status, booking_status, special_requests, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (model.Booking, error) {
	var (
		b     model.Booking
		notes sql.NullString
	)
	err := row.Scan(&b.ID, &b.TourID, &b.UserID, &b.BookingDate, &b.NumAdults, &b.NumChildren,
		&b.TotalPrice, &b.PaymentStatus, &b.BookingStatus, &notes, &b.CreatedAt, &b.UpdatedAt)
	b.SpecialRequests = notes.String
	return b, err
}

func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		`INSERT INTO bookings (tour_id, user_id, booking_date, num_adults, num_children, total_price,
			payment_status, booking_status, special_requests) VALUES (?,?,?,?,?,?,?,?,?)`,
		b.TourID, b.UserID, b.BookingDate, b.NumAdults, b.NumChildren, b.TotalPrice,
		b.PaymentStatus, b.BookingStatus, b.SpecialRequests)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*b = *created
	return nil
}

func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	row := conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id=? LIMIT 1", id)
	b, err := scanBooking(row)
	if err != nil {
		return nil, rowErr(err)
	}
	return &b, nil
}

// List returns bookings matching f, newest first.
func (r *BookingRepo) List(ctx context.Context, f model.BookingFilter) ([]model.Booking, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "booking_status=?")
		args = append(args, f.Status)
	}
	if f.TourID != 0 {
		where = append(where, "tour_id=?")
		args = append(args, f.TourID)
	}
	if f.UserID != 0 {
		where = append(where, "user_id=?")
		args = append(args, f.UserID)
	}
	query := "SELECT " + bookingColumns + " FROM bookings"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update writes the mutable fields of b: statuses and special requests.
func (r *BookingRepo) Update(ctx context.Context, b *model.Booking) error {
	_, err := conn(ctx, r.DB).ExecContext(ctx,
		"UPDATE bookings SET payment_status=?, booking_status=?, special_requests=? WHERE id=?",
		b.PaymentStatus, b.BookingStatus, b.SpecialRequests, b.ID)
	return err
}

func (r *BookingRepo) HasCompleted(ctx context.Context, userID, tourID uint64) (bool, error) {
	var n int
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE user_id=? AND tour_id=? AND booking_status=?",
		userID, tourID, model.BookingCompleted).Scan(&n)
	return n > 0, err
}
