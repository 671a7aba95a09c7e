package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-booking/internal/config"
	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/payment"
	"github.com/iliyamo/tour-booking/internal/queue"
	"github.com/iliyamo/tour-booking/internal/repository"
)

// PaymentDeps are the collaborators of PaymentService.  NewRef defaults to
// a random UUID.
type PaymentDeps struct {
	Tx        Transactor
	Bookings  BookingRepository
	Checkouts CheckoutRepository
	Invoices  InvoiceRepository
	History   HistoryRepository
	Notifier  Notifier
	Config    config.PaymentConfig
	Log       *zap.Logger
	Now       Clock
	NewRef    func() string
}

// PaymentService opens checkouts and reconciles gateway callbacks against
// them.  A successful payment confirms the pending booking, marks it paid
// and issues the booking's invoice once.
type PaymentService struct {
	PaymentDeps
}

func NewPaymentService(d PaymentDeps) *PaymentService {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.NewRef == nil {
		d.NewRef = uuid.NewString
	}
	return &PaymentService{PaymentDeps: d}
}

// BankTransferInfo tells the customer where to send a manual transfer.
type BankTransferInfo struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	Amount        int64  `json:"amount"`
	TransferNote  string `json:"transfer_note"`
}

// CheckoutResult is a newly opened checkout plus, for bank transfers, the
// account to pay into.
type CheckoutResult struct {
	Checkout     *model.Checkout   `json:"checkout"`
	BankTransfer *BankTransferInfo `json:"bank_transfer,omitempty"`
}

// CreateCheckout opens a payment attempt for one of p's pending bookings.
// The attempt's order reference is stored as its transaction id; gateway
// callbacks are matched on it.
func (s *PaymentService) CreateCheckout(ctx context.Context, p Principal, bookingID uint64, method string) (*CheckoutResult, error) {
	method = strings.ToLower(strings.TrimSpace(method))
	switch method {
	case model.MethodMomo, model.MethodZaloPay, model.MethodBankTransfer:
	default:
		return nil, fmt.Errorf("%w: unsupported payment method %q", ErrValidation, method)
	}

	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "booking", bookingID)
	}
	if b.UserID != p.UserID {
		return nil, fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
	}
	if b.BookingStatus != model.BookingPending || b.PaymentStatus != model.PaymentPending {
		return nil, fmt.Errorf("%w: booking %d is not awaiting payment", ErrInvalidState, b.ID)
	}

	c := &model.Checkout{
		BookingID:     b.ID,
		PaymentMethod: method,
		Amount:        b.TotalPrice,
		PaymentStatus: model.CheckoutPending,
		TransactionID: s.orderRef(method),
	}
	if err := s.Checkouts.Create(ctx, c); err != nil {
		return nil, err
	}
	s.Log.Info("checkout opened",
		zap.Uint64("checkout_id", c.ID),
		zap.Uint64("booking_id", b.ID),
		zap.String("method", method),
		zap.String("order_ref", c.TransactionID))

	res := &CheckoutResult{Checkout: c}
	if method == model.MethodBankTransfer {
		res.BankTransfer = &BankTransferInfo{
			BankName:      s.Config.BankName,
			AccountNumber: s.Config.BankAccountNumber,
			AccountName:   s.Config.BankAccountName,
			Amount:        c.Amount,
			TransferNote:  fmt.Sprintf("BOOKING %d %s", b.ID, c.TransactionID),
		}
	}
	return res, nil
}

// orderRef returns a fresh gateway order reference.  ZaloPay requires its
// app_trans_id to start with the yymmdd date.
func (s *PaymentService) orderRef(method string) string {
	ref := s.NewRef()
	if method == model.MethodZaloPay {
		return s.Now().Format("060102") + "_" + strings.ReplaceAll(ref, "-", "")
	}
	return ref
}

// HandleMomo reconciles a MoMo IPN.  raw is the request body as received
// and is stored on the checkout for audit.
func (s *PaymentService) HandleMomo(ctx context.Context, ipn payment.MomoIPN, raw []byte) (*model.Checkout, error) {
	if !ipn.Verify(s.Config.MomoAccessKey, s.Config.MomoSecretKey) {
		s.Log.Warn("momo ipn signature mismatch", zap.String("order_id", ipn.OrderID))
		return nil, fmt.Errorf("%w: momo order %s", ErrSignatureMismatch, ipn.OrderID)
	}
	return s.reconcile(ctx, ipn.OrderID, ipn.Succeeded(), raw)
}

// HandleZaloPay reconciles a ZaloPay callback.
func (s *PaymentService) HandleZaloPay(ctx context.Context, cb payment.ZaloPayCallback, raw []byte) (*model.Checkout, error) {
	if !cb.Verify(s.Config.ZaloPayAppID, s.Config.ZaloPayKey2) {
		s.Log.Warn("zalopay callback checksum mismatch", zap.String("apptransid", cb.AppTransID))
		return nil, fmt.Errorf("%w: zalopay transaction %s", ErrSignatureMismatch, cb.AppTransID)
	}
	return s.reconcile(ctx, cb.AppTransID, cb.Succeeded(), raw)
}

// VerifyManual runs the success cascade for a checkout on an admin's word,
// typically after a bank transfer was seen on the account.  A non-empty
// txnID replaces the checkout's transaction id.
func (s *PaymentService) VerifyManual(ctx context.Context, p Principal, checkoutID uint64, txnID string) (*model.Checkout, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	txnID = strings.TrimSpace(txnID)

	var (
		c      *model.Checkout
		b      *model.Booking
		issued bool
	)
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.Checkouts.GetByID(ctx, checkoutID)
		if err != nil {
			return notFound(err, "checkout", checkoutID)
		}
		if txnID != "" {
			c.TransactionID = txnID
		}
		raw, err := json.Marshal(map[string]any{
			"verified_by":    p.UserID,
			"transaction_id": c.TransactionID,
			"manual":         true,
		})
		if err != nil {
			return err
		}
		b, issued, err = s.complete(ctx, c, raw, p.UserID)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: transaction id %q already used", ErrInvalidState, txnID)
		}
		return nil, err
	}
	s.Log.Info("payment verified manually", zap.Uint64("checkout_id", c.ID), zap.Uint64("admin_id", p.UserID))
	if issued {
		s.notifyPaid(ctx, b, c)
	}
	return c, nil
}

func (s *PaymentService) reconcile(ctx context.Context, ref string, success bool, raw []byte) (*model.Checkout, error) {
	var (
		c      *model.Checkout
		b      *model.Booking
		issued bool
	)
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.Checkouts.GetByTransactionID(ctx, ref)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: checkout for order %s", ErrNotFound, ref)
			}
			return err
		}
		if !success {
			c.PaymentStatus = model.CheckoutFailed
			c.PaymentData = raw
			return s.Checkouts.Update(ctx, c)
		}
		// Callbacks act on behalf of the booking's owner.
		owner, err := s.Bookings.GetByID(ctx, c.BookingID)
		if err != nil {
			return notFound(err, "booking", c.BookingID)
		}
		b, issued, err = s.complete(ctx, c, raw, owner.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("payment callback reconciled",
		zap.String("order_ref", ref),
		zap.Uint64("checkout_id", c.ID),
		zap.String("status", string(c.PaymentStatus)))
	if issued {
		s.notifyPaid(ctx, b, c)
	}
	return c, nil
}

// complete marks c paid, confirms its booking when still pending and
// issues the invoice unless one exists.  It reports whether this call
// issued the invoice.  Must run inside a transaction.
func (s *PaymentService) complete(ctx context.Context, c *model.Checkout, raw []byte, actorID uint64) (*model.Booking, bool, error) {
	now := s.Now().UTC()
	c.PaymentStatus = model.CheckoutCompleted
	c.PaymentDate = &now
	c.PaymentData = raw
	if err := s.Checkouts.Update(ctx, c); err != nil {
		return nil, false, err
	}

	b, err := s.Bookings.GetByID(ctx, c.BookingID)
	if err != nil {
		return nil, false, notFound(err, "booking", c.BookingID)
	}
	changed := false
	if b.BookingStatus == model.BookingPending {
		b.BookingStatus = model.BookingConfirmed
		changed = true
	}
	if b.PaymentStatus != model.PaymentPaid {
		b.PaymentStatus = model.PaymentPaid
		changed = true
	}
	if changed {
		if err := s.Bookings.Update(ctx, b); err != nil {
			return nil, false, err
		}
	}

	issued, err := s.issueInvoice(ctx, c, now)
	if err != nil {
		return nil, false, err
	}
	err = s.History.Append(ctx, &model.History{
		UserID:     actorID,
		BookingID:  b.ID,
		Action:     model.ActionPaymentCompleted,
		ActionDate: now,
	})
	return b, issued, err
}

func (s *PaymentService) issueInvoice(ctx context.Context, c *model.Checkout, at time.Time) (bool, error) {
	_, err := s.Invoices.GetByBooking(ctx, c.BookingID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	details, err := json.Marshal(model.InvoiceDetails{
		PaymentMethod: c.PaymentMethod,
		TransactionID: c.TransactionID,
		PaymentDate:   at,
	})
	if err != nil {
		return false, err
	}
	err = s.Invoices.Create(ctx, &model.Invoice{
		BookingID:  c.BookingID,
		Amount:     c.Amount,
		DateIssued: at,
		Details:    details,
	})
	if errors.Is(err, repository.ErrConflict) {
		// a concurrent callback issued it first
		return false, nil
	}
	return err == nil, err
}

func (s *PaymentService) notifyPaid(ctx context.Context, b *model.Booking, c *model.Checkout) {
	if s.Notifier == nil || b == nil {
		return
	}
	ev := queue.Event{
		Type:       queue.EventPaymentCompleted,
		BookingID:  b.ID,
		UserID:     b.UserID,
		TourID:     b.TourID,
		Amount:     c.Amount,
		OccurredAt: s.Now().UTC(),
	}
	if err := s.Notifier.Publish(ctx, ev); err != nil {
		s.Log.Warn("payment notification dropped", zap.Uint64("booking_id", b.ID), zap.Error(err))
	}
}

// Invoice returns the invoice of a booking visible to p.
func (s *PaymentService) Invoice(ctx context.Context, p Principal, bookingID uint64) (*model.Invoice, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "booking", bookingID)
	}
	if !p.CanSee(b.UserID) {
		return nil, fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
	}
	inv, err := s.Invoices.GetByBooking(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "invoice for booking", bookingID)
	}
	return inv, nil
}

// ListCheckouts lists the payment attempts of a booking visible to p.
func (s *PaymentService) ListCheckouts(ctx context.Context, p Principal, bookingID uint64) ([]model.Checkout, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "booking", bookingID)
	}
	if !p.CanSee(b.UserID) {
		return nil, fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
	}
	return s.Checkouts.ListByBooking(ctx, bookingID)
}
