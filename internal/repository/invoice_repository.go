package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/tour-booking/internal/model"
)

// InvoiceRepo stores invoices.  invoices.booking_id is unique, so a
// second insert for the same booking returns ErrConflict.
type InvoiceRepo struct{ DB *sql.DB }

func NewInvoiceRepo(db *sql.DB) *InvoiceRepo { return &InvoiceRepo{DB: db} }

func (r *InvoiceRepo) Create(ctx context.Context, inv *model.Invoice) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		"INSERT INTO invoices (booking_id, amount, date_issued, details) VALUES (?,?,?,?)",
		inv.BookingID, inv.Amount, inv.DateIssued, nullJSON(inv.Details))
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
	inv.ID = uint64(id)
	return nil
}

func (r *InvoiceRepo) GetByBooking(ctx context.Context, bookingID uint64) (*model.Invoice, error) {
	var (
		inv     model.Invoice
		details []byte
	)
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT id, booking_id, amount, date_issued, details FROM invoices WHERE booking_id=? LIMIT 1",
		bookingID).Scan(&inv.ID, &inv.BookingID, &inv.Amount, &inv.DateIssued, &details)
	if err != nil {
		return nil, rowErr(err)
	}
	inv.Details = details
	return &inv, nil
}
