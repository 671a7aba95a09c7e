package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/tour-booking/internal/model"
)

// CheckoutRepo stores payment attempts.  payment_data holds the raw
// gateway payload of the latest callback.
type CheckoutRepo struct{ DB *sql.DB }

func NewCheckoutRepo(db *sql.DB) *CheckoutRepo { return &CheckoutRepo{DB: db} }

const checkoutColumns = `id, booking_id, payment_method, amount, payment_status, transaction_id,
	payment_data, payment_date, created_at, updated_at`

func scanCheckout(row interface{ Scan(...any) error }) (model.Checkout, error) {
	var (
		c    model.Checkout
		data []byte
		paid sql.NullTime
	)
	err := row.Scan(&c.ID, &c.BookingID, &c.PaymentMethod, &c.Amount, &c.PaymentStatus,
		&c.TransactionID, &data, &paid, &c.CreatedAt, &c.UpdatedAt)
	if len(data) > 0 {
		c.PaymentData = json.RawMessage(data)
	}
	if paid.Valid {
		t := paid.Time
		c.PaymentDate = &t
	}
	return c, err
}

func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func (r *CheckoutRepo) Create(ctx context.Context, c *model.Checkout) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		`INSERT INTO checkouts (booking_id, payment_method, amount, payment_status, transaction_id, payment_data)
		 VALUES (?,?,?,?,?,?)`,
		c.BookingID, c.PaymentMethod, c.Amount, c.PaymentStatus, c.TransactionID, nullJSON(c.PaymentData))
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
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
	*c = *created
	return nil
}

func (r *CheckoutRepo) GetByID(ctx context.Context, id uint64) (*model.Checkout, error) {
	c, err := scanCheckout(conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+checkoutColumns+" FROM checkouts WHERE id=? LIMIT 1", id))
	if err != nil {
		return nil, rowErr(err)
	}
	return &c, nil
}

// GetByTransactionID finds the attempt a gateway callback refers to.
func (r *CheckoutRepo) GetByTransactionID(ctx context.Context, txnID string) (*model.Checkout, error) {
	c, err := scanCheckout(conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+checkoutColumns+" FROM checkouts WHERE transaction_id=? LIMIT 1", txnID))
	if err != nil {
		return nil, rowErr(err)
	}
	return &c, nil
}

func (r *CheckoutRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]model.Checkout, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx,
		"SELECT "+checkoutColumns+" FROM checkouts WHERE booking_id=? ORDER BY created_at DESC, id DESC", bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Checkout{}
	for rows.Next() {
		c, err := scanCheckout(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CheckoutRepo) Update(ctx context.Context, c *model.Checkout) error {
	var paid sql.NullTime
	if c.PaymentDate != nil {
		paid = sql.NullTime{Time: *c.PaymentDate, Valid: true}
	}
	_, err := conn(ctx, r.DB).ExecContext(ctx,
		"UPDATE checkouts SET payment_status=?, transaction_id=?, payment_data=?, payment_date=? WHERE id=?",
		c.PaymentStatus, c.TransactionID, nullJSON(c.PaymentData), paid, c.ID)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}
