// Package cart holds the client-resident purchase intent: an ordered set
// of product-quantity-price lines with derived totals, written through to
// local storage after every mutation. Checkout delegates to the booking
// API; everything else is synchronous and local.
package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/communityhub/community-services/internal/domain"
	"github.com/communityhub/community-services/internal/money"
	"github.com/communityhub/community-services/internal/observability"
	"github.com/communityhub/community-services/pkg/client"
	"github.com/communityhub/community-services/pkg/localstore"
)

// fallbackCheckoutMessage is shown when the server's failure carries no
// usable message.
const fallbackCheckoutMessage = "Failed to create booking"

// ProductSnapshot is the catalog data copied into a line at add time,
// decoupling the cart from later catalog changes.
type ProductSnapshot struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Image    string      `json:"image"`
	Category string      `json:"category"`
	Price    money.Cents `json:"price"`
}

// Line is one product in the cart. At most one Line exists per product
// id. Price is captured when the line is created and left untouched when
// quantities merge.
type Line struct {
	Product  ProductSnapshot `json:"product"`
	Quantity int             `json:"quantity"`
	Price    money.Cents     `json:"price"`
}

// State is the full cart state. TotalItems and TotalAmount are caches,
// always recomputable from Items; they are persisted anyway for fast
// reload. Loading and Error are transient UI status and never persisted.
type State struct {
	Items       []Line      `json:"items"`
	TotalItems  int         `json:"totalItems"`
	TotalAmount money.Cents `json:"totalAmount"`
	Loading     bool        `json:"-"`
	Error       string      `json:"-"`
}

// BookingCreator is the checkout dependency, implemented by
// client.Client.
type BookingCreator interface {
	CreateBooking(ctx context.Context, req client.BookingRequest) (*client.BookingConfirmation, error)
}

// Store owns the cart state. It is handed down from the application's
// top-level scope rather than living as a package global. The mutex
// keeps individual mutations atomic, but mutations are deliberately not
// blocked while a checkout call is in flight.
type Store struct {
	mu      sync.Mutex
	state   State
	storage localstore.Storage
	api     BookingCreator
	logger  observability.Logger
}

// NewStore loads any saved cart from storage. A corrupt entry is
// discarded and the cart starts empty; that recovery is silent.
func NewStore(storage localstore.Storage, api BookingCreator, logger observability.Logger) *Store {
	s := &Store{storage: storage, api: api, logger: logger}

	data, err := storage.Load(localstore.KeyCart)
	if err != nil {
		return s
	}
	var saved State
	if err := json.Unmarshal(data, &saved); err != nil {
		storage.Delete(localstore.KeyCart)
		return s
	}
	s.state = saved
	s.recompute()
	return s
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Items = append([]Line(nil), s.state.Items...)
	return st
}

// Add puts qty units of the product in the cart. An existing line for
// the same product id absorbs the quantity and keeps its original price
// snapshot; otherwise a new line is appended at the product's current
// price. qty is assumed caller-validated to be >= 1.
func (s *Store) Add(p ProductSnapshot, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Items {
		if s.state.Items[i].Product.ID == p.ID {
			s.state.Items[i].Quantity += qty
			s.recompute()
			s.persist()
			return
		}
	}
	s.state.Items = append(s.state.Items, Line{Product: p, Quantity: qty, Price: p.Price})
	s.recompute()
	s.persist()
}

// Remove drops the line for the product id. Absent ids are a no-op.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Items {
		if s.state.Items[i].Product.ID == productID {
			s.state.Items = append(s.state.Items[:i], s.state.Items[i+1:]...)
			break
		}
	}
	s.recompute()
	s.persist()
}

// SetQuantity sets the line's quantity, clamped at zero. Zero drops the
// line entirely.
func (s *Store) SetQuantity(productID string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if qty < 0 {
		qty = 0
	}
	for i := range s.state.Items {
		if s.state.Items[i].Product.ID != productID {
			continue
		}
		if qty == 0 {
			s.state.Items = append(s.state.Items[:i], s.state.Items[i+1:]...)
		} else {
			s.state.Items[i].Quantity = qty
		}
		break
	}
	s.recompute()
	s.persist()
}

// Clear empties the cart. The Error field is left alone.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Items = nil
	s.recompute()
	s.persist()
}

// ClearError resets only the checkout error.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = ""
}

// Checkout sends the cart to the booking service. An empty cart fails
// immediately with domain.ErrEmptyCart and no network call. On success
// the cart is cleared; on failure the items are kept so the user can
// retry, and the server's message lands in Error.
func (s *Store) Checkout(ctx context.Context) (*client.BookingConfirmation, error) {
	s.mu.Lock()
	if len(s.state.Items) == 0 {
		s.mu.Unlock()
		return nil, domain.ErrEmptyCart
	}
	s.state.Loading = true
	s.state.Error = ""
	req := client.BookingRequest{
		Products:    make([]client.LineRequest, len(s.state.Items)),
		TotalAmount: s.state.TotalAmount,
	}
	for i, line := range s.state.Items {
		req.Products[i] = client.LineRequest{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		}
	}
	s.mu.Unlock()

	conf, err := s.api.CreateBooking(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		s.state.Error = checkoutMessage(err)
		return nil, err
	}

	s.state.Items = nil
	s.recompute()
	s.persist()
	return conf, nil
}

// checkoutMessage extracts the server's display message, falling back to
// a generic one.
func checkoutMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallbackCheckoutMessage
}

// recompute refreshes the derived totals from the items. Cents are
// exact, so the two-decimal invariant holds by construction.
func (s *Store) recompute() {
	items := 0
	var amount money.Cents
	for _, l := range s.state.Items {
		items += l.Quantity
		amount += l.Price.Mul(l.Quantity)
	}
	s.state.TotalItems = items
	s.state.TotalAmount = amount
}

// persist write-throughs the state. Storage failures are logged and
// otherwise ignored; the in-memory cart stays authoritative for the
// session.
func (s *Store) persist() {
	data, err := json.Marshal(s.state)
	if err != nil {
		s.logger.WithError(err).Warn("cart serialize failed")
		return
	}
	if err := s.storage.Save(localstore.KeyCart, data); err != nil {
		s.logger.WithError(err).Warn("cart save failed")
	}
}
