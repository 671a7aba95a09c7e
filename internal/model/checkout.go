package model

import (
	"encoding/json"
	"time"
)

// CheckoutStatus is the state of a single payment attempt.
type CheckoutStatus string

const (
	CheckoutPending   CheckoutStatus = "pending"
	CheckoutCompleted CheckoutStatus = "completed"
	CheckoutFailed    CheckoutStatus = "failed"
	CheckoutRefunded  CheckoutStatus = "refunded"
)

// Payment methods accepted by the checkout endpoint.
const (
	MethodMomo         = "momo"
	MethodZaloPay      = "zalopay"
	MethodBankTransfer = "bank_transfer"
)

// Checkout is one payment attempt for a booking.  A booking may have
// several when the customer retries.  TransactionID holds the order
// reference sent to the gateway and is what callbacks are matched on.
type Checkout struct {
	ID            uint64          `json:"id"`
	BookingID     uint64          `json:"booking_id"`
	PaymentMethod string          `json:"payment_method"`
	Amount        int64           `json:"amount"`
	PaymentStatus CheckoutStatus  `json:"payment_status"`
	TransactionID string          `json:"transaction_id"`
	PaymentData   json.RawMessage `json:"payment_data,omitempty"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
