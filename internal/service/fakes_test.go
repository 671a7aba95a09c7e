package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/queue"
	"github.com/iliyamo/tour-booking/internal/repository"
)

// passTx runs fn directly; the in-memory repositories below have no
// transactions to join.
type passTx struct{ calls int }

func (t *passTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type memTours struct {
	mu     sync.Mutex
	rows   map[uint64]model.Tour
	nextID uint64
	lists  int
	// afterGet runs after each GetByID, outside the lock.
	afterGet func(id uint64)
}

func newMemTours(tours ...model.Tour) *memTours {
	m := &memTours{rows: map[uint64]model.Tour{}}
	for _, t := range tours {
		if t.ID > m.nextID {
			m.nextID = t.ID
		}
		m.rows[t.ID] = t
	}
	return m
}

func (m *memTours) Create(_ context.Context, t *model.Tour) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = m.nextID
	m.rows[t.ID] = *t
	return nil
}

func (m *memTours) GetByID(_ context.Context, id uint64) (*model.Tour, error) {
	m.mu.Lock()
	t, ok := m.rows[id]
	hook := m.afterGet
	m.mu.Unlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	if hook != nil {
		hook(id)
	}
	return &t, nil
}

func (m *memTours) List(_ context.Context, q model.TourQuery) ([]model.Tour, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	out := []model.Tour{}
	for _, t := range m.rows {
		if q.FeaturedOnly && !t.Featured {
			continue
		}
		if q.AvailableOnly && (!t.Availability || t.Quantity == 0) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memTours) Update(_ context.Context, t *model.Tour, withQuantity bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if !withQuantity {
		t.Quantity = cur.Quantity
	}
	m.rows[t.ID] = *t
	return nil
}

func (m *memTours) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memTours) AdjustQuantity(_ context.Context, id uint64, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	if t.Quantity+delta < 0 {
		return repository.ErrConflict
	}
	t.Quantity += delta
	m.rows[id] = t
	return nil
}

func (m *memTours) quantity(id uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id].Quantity
}

type memBookings struct {
	mu     sync.Mutex
	rows   map[uint64]model.Booking
	nextID uint64
}

func newMemBookings(bs ...model.Booking) *memBookings {
	m := &memBookings{rows: map[uint64]model.Booking{}}
	for _, b := range bs {
		if b.ID > m.nextID {
			m.nextID = b.ID
		}
		m.rows[b.ID] = b
	}
	return m
}

func (m *memBookings) Create(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	b.ID = m.nextID
	m.rows[b.ID] = *b
	return nil
}

func (m *memBookings) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (m *memBookings) List(_ context.Context, f model.BookingFilter) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Booking{}
	for _, b := range m.rows {
		if (f.Status != "" && b.BookingStatus != f.Status) ||
			(f.TourID != 0 && b.TourID != f.TourID) ||
			(f.UserID != 0 && b.UserID != f.UserID) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memBookings) Update(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[b.ID] = *b
	return nil
}

func (m *memBookings) HasCompleted(_ context.Context, userID, tourID uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.rows {
		if b.UserID == userID && b.TourID == tourID && b.BookingStatus == model.BookingCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (m *memBookings) get(id uint64) model.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id]
}

type memCheckouts struct {
	mu     sync.Mutex
	rows   map[uint64]model.Checkout
	nextID uint64
}

func newMemCheckouts(cs ...model.Checkout) *memCheckouts {
	m := &memCheckouts{rows: map[uint64]model.Checkout{}}
	for _, c := range cs {
		if c.ID > m.nextID {
			m.nextID = c.ID
		}
		m.rows[c.ID] = c
	}
	return m
}

func (m *memCheckouts) Create(_ context.Context, c *model.Checkout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	m.rows[c.ID] = *c
	return nil
}

func (m *memCheckouts) GetByID(_ context.Context, id uint64) (*model.Checkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (m *memCheckouts) GetByTransactionID(_ context.Context, txnID string) (*model.Checkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if c.TransactionID == txnID {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memCheckouts) ListByBooking(_ context.Context, bookingID uint64) ([]model.Checkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Checkout{}
	for _, c := range m.rows {
		if c.BookingID == bookingID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCheckouts) Update(_ context.Context, c *model.Checkout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[c.ID] = *c
	return nil
}

func (m *memCheckouts) get(id uint64) model.Checkout {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id]
}

type memInvoices struct {
	mu   sync.Mutex
	rows map[uint64]model.Invoice // by booking id
}

func newMemInvoices() *memInvoices { return &memInvoices{rows: map[uint64]model.Invoice{}} }

func (m *memInvoices) Create(_ context.Context, inv *model.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[inv.BookingID]; ok {
		return repository.ErrConflict
	}
	inv.ID = uint64(len(m.rows) + 1)
	m.rows[inv.BookingID] = *inv
	return nil
}

func (m *memInvoices) GetByBooking(_ context.Context, bookingID uint64) (*model.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.rows[bookingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &inv, nil
}

func (m *memInvoices) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memHistory struct {
	mu   sync.Mutex
	rows []model.History
}

func (m *memHistory) Append(_ context.Context, h *model.History) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h.ID = uint64(len(m.rows) + 1)
	m.rows = append(m.rows, *h)
	return nil
}

func (m *memHistory) ListByBooking(_ context.Context, bookingID uint64) ([]model.History, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.History{}
	for _, h := range m.rows {
		if h.BookingID == bookingID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *memHistory) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.rows))
	for _, h := range m.rows {
		out = append(out, h.Action)
	}
	return out
}

type recNotifier struct {
	mu     sync.Mutex
	events []queue.Event
	err    error
}

func (n *recNotifier) Publish(_ context.Context, ev queue.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

type recObserver struct {
	mu     sync.Mutex
	events []TourEvent
}

func (o *recObserver) TourChanged(_ context.Context, ev TourEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, ev)
}

type memReviews struct {
	rows   map[uint64]model.Review
	nextID uint64
}

func newMemReviews() *memReviews { return &memReviews{rows: map[uint64]model.Review{}} }

func (m *memReviews) Create(_ context.Context, r *model.Review) error {
	m.nextID++
	r.ID = m.nextID
	m.rows[r.ID] = *r
	return nil
}

func (m *memReviews) GetByID(_ context.Context, id uint64) (*model.Review, error) {
	r, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (m *memReviews) ListByTour(_ context.Context, tourID uint64) ([]model.Review, error) {
	out := []model.Review{}
	for _, r := range m.rows {
		if r.TourID == tourID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReviews) Exists(_ context.Context, userID, tourID uint64) (bool, error) {
	for _, r := range m.rows {
		if r.UserID == userID && r.TourID == tourID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memReviews) Delete(_ context.Context, id uint64) error {
	if _, ok := m.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memPromotions struct {
	rows   map[uint64]model.Promotion
	nextID uint64
}

func newMemPromotions() *memPromotions { return &memPromotions{rows: map[uint64]model.Promotion{}} }

func (m *memPromotions) Create(_ context.Context, p *model.Promotion) error {
	for _, existing := range m.rows {
		if existing.Code == p.Code {
			return repository.ErrConflict
		}
	}
	m.nextID++
	p.ID = m.nextID
	m.rows[p.ID] = *p
	return nil
}

func (m *memPromotions) GetByID(_ context.Context, id uint64) (*model.Promotion, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memPromotions) GetByCode(_ context.Context, code string) (*model.Promotion, error) {
	for _, p := range m.rows {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memPromotions) List(_ context.Context, activeAt *time.Time) ([]model.Promotion, error) {
	out := []model.Promotion{}
	for _, p := range m.rows {
		if activeAt != nil && !p.ActiveAt(*activeAt) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memPromotions) Update(_ context.Context, p *model.Promotion) error {
	m.rows[p.ID] = *p
	return nil
}

func (m *memPromotions) Delete(_ context.Context, id uint64) error {
	if _, ok := m.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memWishlist struct {
	rows map[[2]uint64]time.Time
}

func newMemWishlist() *memWishlist { return &memWishlist{rows: map[[2]uint64]time.Time{}} }

func (m *memWishlist) Add(_ context.Context, userID, tourID uint64) error {
	if _, ok := m.rows[[2]uint64{userID, tourID}]; !ok {
		m.rows[[2]uint64{userID, tourID}] = time.Now()
	}
	return nil
}

func (m *memWishlist) Remove(_ context.Context, userID, tourID uint64) error {
	k := [2]uint64{userID, tourID}
	if _, ok := m.rows[k]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, k)
	return nil
}

func (m *memWishlist) ListByUser(_ context.Context, userID uint64) ([]model.WishlistItem, error) {
	out := []model.WishlistItem{}
	for k, at := range m.rows {
		if k[0] == userID {
			out = append(out, model.WishlistItem{UserID: k[0], TourID: k[1], CreatedAt: at})
		}
	}
	return out, nil
}

type memUsers struct {
	rows   map[uint64]model.User
	nextID uint64
}

func newMemUsers() *memUsers { return &memUsers{rows: map[uint64]model.User{}} }

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	for _, existing := range m.rows {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	m.nextID++
	u.ID = m.nextID
	m.rows[u.ID] = *u
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	u, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id uint64, name, phone string) error {
	u := m.rows[id]
	u.Name, u.Phone = name, phone
	m.rows[id] = u
	return nil
}

func (m *memUsers) List(_ context.Context) ([]model.User, error) {
	out := []model.User{}
	for _, u := range m.rows {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUsers) SetActive(_ context.Context, id uint64, active bool) error {
	u, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsActive = active
	m.rows[id] = u
	return nil
}

type memToken struct {
	userID  uint64
	exp     time.Time
	revoked bool
}

type memTokens struct {
	rows map[string]*memToken
}

func newMemTokens() *memTokens { return &memTokens{rows: map[string]*memToken{}} }

func (m *memTokens) StoreRefresh(_ context.Context, userID uint64, hash string, exp time.Time) error {
	m.rows[hash] = &memToken{userID: userID, exp: exp}
	return nil
}

func (m *memTokens) ValidateRefresh(_ context.Context, hash string, now time.Time) (uint64, error) {
	t, ok := m.rows[hash]
	if !ok || t.revoked || now.After(t.exp) {
		return 0, repository.ErrNotFound
	}
	return t.userID, nil
}

func (m *memTokens) RevokeByHash(_ context.Context, hash string) error {
	if t, ok := m.rows[hash]; ok {
		t.revoked = true
	}
	return nil
}

func (m *memTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	for _, t := range m.rows {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}

var (
	admin    = Principal{UserID: 1, Role: model.RoleAdmin}
	customer = Principal{UserID: 7, Role: model.RoleUser}
	stranger = Principal{UserID: 8, Role: model.RoleUser}
)
