package model

import (
	"encoding/json"
	"time"
)

// Invoice is issued once per booking, when its first payment completes.
type Invoice struct {
	ID         uint64          `json:"id"`
	BookingID  uint64          `json:"booking_id"`
	Amount     int64           `json:"amount"`
	DateIssued time.Time       `json:"date_issued"`
	Details    json.RawMessage `json:"details"`
}

// InvoiceDetails is the JSON stored in Invoice.Details.
type InvoiceDetails struct {
	PaymentMethod string    `json:"payment_method"`
	TransactionID string    `json:"transaction_id"`
	PaymentDate   time.Time `json:"payment_date"`
}
