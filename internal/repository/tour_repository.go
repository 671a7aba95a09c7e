package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/tour-booking/internal/model"
)

// TourRepo provides CRUD access to the tours table.  Start and end dates
// are nullable; a NULL maps to the zero time.
type TourRepo struct{ DB *sql.DB }

func NewTourRepo(db *sql.DB) *TourRepo { return &TourRepo{DB: db} }

const tourColumns = `id, title, description, destination, quantity, price_adult, price_child,
	availability, featured, start_date, end_date, created_at, updated_at`

func scanTour(row interface{ Scan(...any) error }) (model.Tour, error) {
	var (
		t          model.Tour
		start, end sql.NullTime
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Destination, &t.Quantity,
		&t.PriceAdult, &t.PriceChild, &t.Availability, &t.Featured,
		&start, &end, &t.CreatedAt, &t.UpdatedAt)
	if start.Valid {
		t.StartDate = start.Time
	}
	if end.Valid {
		t.EndDate = end.Time
	}
	return t, err
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// Create inserts t and fills in its generated ID and timestamps.
func (r *TourRepo) Create(ctx context.Context, t *model.Tour) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		`INSERT INTO tours (title, description, destination, quantity, price_adult, price_child,
			availability, featured, start_date, end_date) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		t.Title, t.Description, t.Destination, t.Quantity, t.PriceAdult, t.PriceChild,
		t.Availability, t.Featured, nullTime(t.StartDate), nullTime(t.EndDate))
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
	*t = *created
	return nil
}

func (r *TourRepo) GetByID(ctx context.Context, id uint64) (*model.Tour, error) {
	row := conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+tourColumns+" FROM tours WHERE id=? LIMIT 1", id)
	t, err := scanTour(row)
	if err != nil {
		return nil, rowErr(err)
	}
	return &t, nil
}

// List returns tours matching q, newest first.  Keyword matches title,
// destination and description.
func (r *TourRepo) List(ctx context.Context, q model.TourQuery) ([]model.Tour, error) {
	var (
		where []string
		args  []any
	)
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		like := "%" + kw + "%"
		where = append(where, "(title LIKE ? OR destination LIKE ? OR description LIKE ?)")
		args = append(args, like, like, like)
	}
	if q.FeaturedOnly {
		where = append(where, "featured = 1")
	}
	if q.AvailableOnly {
		where = append(where, "availability = 1 AND quantity > 0")
	}
	query := "SELECT " + tourColumns + " FROM tours"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tours := []model.Tour{}
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		tours = append(tours, t)
	}
	return tours, rows.Err()
}

func (r *TourRepo) Update(ctx context.Context, t *model.Tour, withQuantity bool) error {
	query := `UPDATE tours SET title=?, description=?, destination=?, price_adult=?, price_child=?,
			availability=?, featured=?, start_date=?, end_date=?`
	args := []any{t.Title, t.Description, t.Destination, t.PriceAdult, t.PriceChild,
		t.Availability, t.Featured, nullTime(t.StartDate), nullTime(t.EndDate)}
	if withQuantity {
		query += ", quantity=?"
		args = append(args, t.Quantity)
	}
	query += " WHERE id=?"
	args = append(args, t.ID)

	_, err := conn(ctx, r.DB).ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	// MySQL reports zero affected rows for a no-op update, so check
	// existence by reading the row back.
	updated, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	*t = *updated
	return nil
}

func (r *TourRepo) Delete(ctx context.Context, id uint64) error {
	return affected(conn(ctx, r.DB).ExecContext(ctx, "DELETE FROM tours WHERE id=?", id))
}

// AdjustQuantity adds delta to the tour's remaining places.  A decrement
// that would go below zero returns ErrConflict and changes nothing.
func (r *TourRepo) AdjustQuantity(ctx context.Context, id uint64, delta int) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		"UPDATE tours SET quantity = quantity + ? WHERE id=? AND quantity + ? >= 0",
		delta, id, delta)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	if delta == 0 {
		return nil
	}
	return ErrConflict
}
