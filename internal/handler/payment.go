package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/payment"
	"github.com/iliyamo/tour-booking/internal/service"
)

// maxWebhookBody caps what a gateway callback may send.
const maxWebhookBody = 64 << 10

// PaymentService is the part of service.PaymentService the payment
// endpoints use.
type PaymentService interface {
	CreateCheckout(ctx context.Context, p service.Principal, bookingID uint64, method string) (*service.CheckoutResult, error)
	HandleMomo(ctx context.Context, ipn payment.MomoIPN, raw []byte) (*model.Checkout, error)
	HandleZaloPay(ctx context.Context, cb payment.ZaloPayCallback, raw []byte) (*model.Checkout, error)
	VerifyManual(ctx context.Context, p service.Principal, checkoutID uint64, txnID string) (*model.Checkout, error)
	Invoice(ctx context.Context, p service.Principal, bookingID uint64) (*model.Invoice, error)
	ListCheckouts(ctx context.Context, p service.Principal, bookingID uint64) ([]model.Checkout, error)
}

// PaymentHandler starts checkouts, receives gateway callbacks and lets
// admins confirm bank transfers.
type PaymentHandler struct {
	Payments PaymentService
}

func NewPaymentHandler(p PaymentService) *PaymentHandler {
	return &PaymentHandler{Payments: p}
}

type checkoutReq struct {
	PaymentMethod string `json:"payment_method"`
}

type verifyReq struct {
	TransactionID string `json:"transaction_id"`
}

// Checkout handles POST /v1/bookings/:id/checkout.
func (h *PaymentHandler) Checkout(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req checkoutReq
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.Payments.CreateCheckout(c.Request().Context(), p, id, req.PaymentMethod)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, res)
}

// MomoIPN handles POST /v1/payments/momo/ipn.  The raw body is kept as the
// checkout's payment data.
func (h *PaymentHandler) MomoIPN(c echo.Context) error {
	raw, err := readBody(c)
	if err != nil {
		return err
	}
	var ipn payment.MomoIPN
	if err := json.Unmarshal(raw, &ipn); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid ipn payload")
	}
	co, err := h.Payments.HandleMomo(c.Request().Context(), ipn, raw)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, co)
}

// ZaloPayCallback handles POST /v1/payments/zalopay/callback.  ZaloPay may
// send the parameters as a JSON body or on the query string.
func (h *PaymentHandler) ZaloPayCallback(c echo.Context) error {
	raw, err := readBody(c)
	if err != nil {
		return err
	}
	var cb payment.ZaloPayCallback
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &cb); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid callback payload")
		}
	} else {
		if err := (&echo.DefaultBinder{}).BindQueryParams(c, &cb); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid callback parameters")
		}
		if raw, err = json.Marshal(cb); err != nil {
			return err
		}
	}
	co, err := h.Payments.HandleZaloPay(c.Request().Context(), cb, raw)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, co)
}

// Verify handles POST /v1/admin/checkouts/:id/verify.
func (h *PaymentHandler) Verify(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req verifyReq
	if err := bind(c, &req); err != nil {
		return err
	}
	co, err := h.Payments.VerifyManual(c.Request().Context(), p, id, req.TransactionID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, co)
}

// Invoice handles GET /v1/bookings/:id/invoice.
func (h *PaymentHandler) Invoice(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	inv, err := h.Payments.Invoice(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, inv)
}

// Checkouts handles GET /v1/bookings/:id/checkouts.
func (h *PaymentHandler) Checkouts(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	list, err := h.Payments.ListCheckouts(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, nonNil(list))
}

func readBody(c echo.Context) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}
	return raw, nil
}
