package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-booking/internal/middleware"
	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/payment"
	"github.com/iliyamo/tour-booking/internal/service"
)

var (
	admin    = service.Principal{UserID: 1, Role: model.RoleAdmin}
	customer = service.Principal{UserID: 7, Role: model.RoleUser}
)

type mockBookings struct {
	createFn       func(ctx context.Context, p service.Principal, in service.CreateBookingInput) (*model.Booking, error)
	cancelFn       func(ctx context.Context, p service.Principal, id uint64) (*model.Booking, error)
	confirmFn      func(ctx context.Context, p service.Principal, id uint64) (*model.Booking, error)
	rejectFn       func(ctx context.Context, p service.Principal, id uint64, reason string) (*model.Booking, error)
	updateStatusFn func(ctx context.Context, p service.Principal, id uint64, in service.UpdateStatusInput) (*model.Booking, error)
	getFn          func(ctx context.Context, p service.Principal, id uint64) (*model.Booking, error)
	listMineFn     func(ctx context.Context, p service.Principal) ([]model.Booking, error)
	listAllFn      func(ctx context.Context, p service.Principal, f model.BookingFilter) ([]model.Booking, error)
	historyFn      func(ctx context.Context, p service.Principal, id uint64) ([]model.History, error)
}

func (m *mockBookings) Create(ctx context.Context, p service.Principal, in service.CreateBookingInput) (*model.Booking, error) {
	return m.createFn(ctx, p, in)
}
func (m *mockBookings) Cancel(ctx context.Context, p service.Principal, id uint64) (*model.Booking, error) {
	return m.cancelFn(ctx, p, id)
}
func (m *mockBookings) Confirm(ctx context.Context, p service.Principal, id uint64) (*model.Booking, error) {
	return m.confirmFn(ctx, p, id)
}
func (m *mockBookings) Reject(ctx context.Context, p service.Principal, id uint64, reason string) (*model.Booking, error) {
	return m.rejectFn(ctx, p, id, reason)
}
func (m *mockBookings) UpdateStatus(ctx context.Context, p service.Principal, id uint64, in service.UpdateStatusInput) (*model.Booking, error) {
	return m.updateStatusFn(ctx, p, id, in)
}
func (m *mockBookings) Get(ctx context.Context, p service.Principal, id uint64) (*model.Booking, error) {
	return m.getFn(ctx, p, id)
}
func (m *mockBookings) ListMine(ctx context.Context, p service.Principal) ([]model.Booking, error) {
	return m.listMineFn(ctx, p)
}
func (m *mockBookings) ListAll(ctx context.Context, p service.Principal, f model.BookingFilter) ([]model.Booking, error) {
	return m.listAllFn(ctx, p, f)
}
func (m *mockBookings) ListHistory(ctx context.Context, p service.Principal, id uint64) ([]model.History, error) {
	return m.historyFn(ctx, p, id)
}

type mockPayments struct {
	checkoutFn  func(ctx context.Context, p service.Principal, bookingID uint64, method string) (*service.CheckoutResult, error)
	momoFn      func(ctx context.Context, ipn payment.MomoIPN, raw []byte) (*model.Checkout, error)
	zaloFn      func(ctx context.Context, cb payment.ZaloPayCallback, raw []byte) (*model.Checkout, error)
	verifyFn    func(ctx context.Context, p service.Principal, checkoutID uint64, txnID string) (*model.Checkout, error)
	invoiceFn   func(ctx context.Context, p service.Principal, bookingID uint64) (*model.Invoice, error)
	checkoutsFn func(ctx context.Context, p service.Principal, bookingID uint64) ([]model.Checkout, error)
}

func (m *mockPayments) CreateCheckout(ctx context.Context, p service.Principal, bookingID uint64, method string) (*service.CheckoutResult, error) {
	return m.checkoutFn(ctx, p, bookingID, method)
}
func (m *mockPayments) HandleMomo(ctx context.Context, ipn payment.MomoIPN, raw []byte) (*model.Checkout, error) {
	return m.momoFn(ctx, ipn, raw)
}
func (m *mockPayments) HandleZaloPay(ctx context.Context, cb payment.ZaloPayCallback, raw []byte) (*model.Checkout, error) {
	return m.zaloFn(ctx, cb, raw)
}
func (m *mockPayments) VerifyManual(ctx context.Context, p service.Principal, checkoutID uint64, txnID string) (*model.Checkout, error) {
	return m.verifyFn(ctx, p, checkoutID, txnID)
}
func (m *mockPayments) Invoice(ctx context.Context, p service.Principal, bookingID uint64) (*model.Invoice, error) {
	return m.invoiceFn(ctx, p, bookingID)
}
func (m *mockPayments) ListCheckouts(ctx context.Context, p service.Principal, bookingID uint64) ([]model.Checkout, error) {
	return m.checkoutsFn(ctx, p, bookingID)
}

// newContext builds a request context.  A nil principal leaves the
// request unauthenticated.
func newContext(method, target, body string, p *service.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p != nil {
		c.Set(middleware.CtxUserID, p.UserID)
		c.Set(middleware.CtxRole, p.Role)
	}
	return c, rec
}

// serve runs h and renders any error the way the server does.
func serve(c echo.Context, h echo.HandlerFunc) {
	if err := h(c); err != nil {
		ErrorHandler(zap.NewNop())(err, c)
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) (Response, map[string]any) {
	t.Helper()
	var env struct {
		Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var data map[string]any
	if len(env.Data) > 0 && env.Data[0] == '{' {
		require.NoError(t, json.Unmarshal(env.Data, &data))
	}
	return env.Response, data
}
