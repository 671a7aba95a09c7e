package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/payment"
	"github.com/iliyamo/tour-booking/internal/service"
)

func TestCheckout_BankTransfer(t *testing.T) {
	h := NewPaymentHandler(&mockPayments{
		checkoutFn: func(_ context.Context, _ service.Principal, bookingID uint64, method string) (*service.CheckoutResult, error) {
			assert.Equal(t, uint64(4), bookingID)
			assert.Equal(t, "bank_transfer", method)
			return &service.CheckoutResult{
				Checkout:     &model.Checkout{ID: 1, BookingID: bookingID, PaymentMethod: method, Amount: 250, PaymentStatus: model.CheckoutPending},
				BankTransfer: &service.BankTransferInfo{AccountNumber: "0123", Amount: 250, TransferNote: "BOOKING 4 ref"},
			}, nil
		},
	})
	c, rec := newContext(http.MethodPost, "/v1/bookings/4/checkout", `{"payment_method":"bank_transfer"}`, &customer)
	c.SetParamNames("id")
	c.SetParamValues("4")

	serve(c, h.Checkout)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"BOOKING 4 ref"`)
}

func TestMomoIPN_KeepsRawBody(t *testing.T) {
	body := `{"partnerCode":"MOMO","orderId":"ord-1","amount":250,"resultCode":0,"signature":"abc"}`
	h := NewPaymentHandler(&mockPayments{
		momoFn: func(_ context.Context, ipn payment.MomoIPN, raw []byte) (*model.Checkout, error) {
			assert.Equal(t, "ord-1", ipn.OrderID)
			assert.Equal(t, int64(250), ipn.Amount)
			assert.JSONEq(t, body, string(raw))
			return &model.Checkout{ID: 1, PaymentStatus: model.CheckoutCompleted}, nil
		},
	})
	c, rec := newContext(http.MethodPost, "/v1/payments/momo/ipn", body, nil)

	serve(c, h.MomoIPN)

	require.Equal(t, http.StatusOK, rec.Code)
	_, data := decode(t, rec)
	assert.Equal(t, "completed", data["payment_status"])
}

func TestMomoIPN_BadSignature(t *testing.T) {
	h := NewPaymentHandler(&mockPayments{
		momoFn: func(context.Context, payment.MomoIPN, []byte) (*model.Checkout, error) {
			return nil, service.ErrSignatureMismatch
		},
	})
	c, rec := newContext(http.MethodPost, "/v1/payments/momo/ipn", `{"orderId":"ord-1"}`, nil)

	serve(c, h.MomoIPN)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMomoIPN_Malformed(t *testing.T) {
	h := NewPaymentHandler(&mockPayments{})
	c, rec := newContext(http.MethodPost, "/v1/payments/momo/ipn", `{not json`, nil)

	serve(c, h.MomoIPN)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestZaloPayCallback_QueryString(t *testing.T) {
	h := NewPaymentHandler(&mockPayments{
		zaloFn: func(_ context.Context, cb payment.ZaloPayCallback, raw []byte) (*model.Checkout, error) {
			assert.Equal(t, "261019_abc", cb.AppTransID)
			assert.Equal(t, int64(250), cb.Amount)
			assert.Equal(t, 1, cb.Status)
			assert.Contains(t, string(raw), `"apptransid":"261019_abc"`)
			return &model.Checkout{ID: 2, PaymentStatus: model.CheckoutCompleted}, nil
		},
	})
	c, rec := newContext(http.MethodPost, "/v1/payments/zalopay/callback?appid=553&apptransid=261019_abc&amount=250&status=1&checksum=x", "", nil)

	serve(c, h.ZaloPayCallback)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestZaloPayCallback_JSONBody(t *testing.T) {
	h := NewPaymentHandler(&mockPayments{
		zaloFn: func(_ context.Context, cb payment.ZaloPayCallback, _ []byte) (*model.Checkout, error) {
			assert.Equal(t, "261019_def", cb.AppTransID)
			return nil, service.ErrNotFound
		},
	})
	c, rec := newContext(http.MethodPost, "/v1/payments/zalopay/callback", `{"apptransid":"261019_def","status":1}`, nil)

	serve(c, h.ZaloPayCallback)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerify_AlreadyCompleted(t *testing.T) {
	h := NewPaymentHandler(&mockPayments{
		verifyFn: func(_ context.Context, p service.Principal, id uint64, txn string) (*model.Checkout, error) {
			assert.True(t, p.IsAdmin())
			assert.Equal(t, uint64(8), id)
			assert.Equal(t, "VCB-991", txn)
			return nil, service.ErrInvalidState
		},
	})
	c, rec := newContext(http.MethodPost, "/v1/admin/checkouts/8/verify", `{"transaction_id":"VCB-991"}`, &admin)
	c.SetParamNames("id")
	c.SetParamValues("8")

	serve(c, h.Verify)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestInvoice_NotIssued(t *testing.T) {
	h := NewPaymentHandler(&mockPayments{
		invoiceFn: func(context.Context, service.Principal, uint64) (*model.Invoice, error) {
			return nil, service.ErrNotFound
		},
	})
	c, rec := newContext(http.MethodGet, "/v1/bookings/4/invoice", "", &customer)
	c.SetParamNames("id")
	c.SetParamValues("4")

	serve(c, h.Invoice)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
