package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communityhub/community-services/internal/domain"
	"github.com/communityhub/community-services/internal/money"
	"github.com/communityhub/community-services/internal/observability"
	"github.com/communityhub/community-services/pkg/client"
	"github.com/communityhub/community-services/pkg/localstore"
)

type fakeAPI struct {
	calls   int
	lastReq client.BookingRequest
	resp    *client.BookingConfirmation
	err     error
}

func (f *fakeAPI) CreateBooking(_ context.Context, req client.BookingRequest) (*client.BookingConfirmation, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func snapshot(id string, price money.Cents) ProductSnapshot {
	return ProductSnapshot{ID: id, Name: "Item " + id, Price: price}
}

func newTestStore(api BookingCreator) (*Store, *localstore.MemStore) {
	storage := localstore.NewMemStore()
	return NewStore(storage, api, observability.NopLogger()), storage
}

func TestAdd_TotalsScenario(t *testing.T) {
	s, _ := newTestStore(nil)

	s.Add(snapshot("a", 1000), 2)
	s.Add(snapshot("b", 1550), 1)

	st := s.State()
	assert.Equal(t, 3, st.TotalItems)
	assert.Equal(t, "35.50", st.TotalAmount.String())
	assert.Len(t, st.Items, 2)
}

func TestAdd_MergesQuantities(t *testing.T) {
	s, _ := newTestStore(nil)

	s.Add(snapshot("a", 1000), 2)
	s.Add(snapshot("a", 1000), 3)

	st := s.State()
	require.Len(t, st.Items, 1, "same product must never produce two lines")
	assert.Equal(t, 5, st.Items[0].Quantity)
	assert.Equal(t, 5, st.TotalItems)
}

func TestAdd_MergeKeepsOriginalPrice(t *testing.T) {
	s, _ := newTestStore(nil)

	s.Add(snapshot("a", 1000), 1)
	// Catalog price changed between adds; the line keeps its snapshot.
	s.Add(snapshot("a", 1200), 1)

	st := s.State()
	require.Len(t, st.Items, 1)
	assert.Equal(t, money.Cents(1000), st.Items[0].Price)
	assert.Equal(t, money.Cents(2000), st.TotalAmount)
}

func TestRemove(t *testing.T) {
	s, _ := newTestStore(nil)
	s.Add(snapshot("a", 1000), 2)
	s.Add(snapshot("b", 500), 1)

	s.Remove("a")

	st := s.State()
	require.Len(t, st.Items, 1)
	assert.Equal(t, "b", st.Items[0].Product.ID)
	assert.Equal(t, money.Cents(500), st.TotalAmount)

	// Absent id is a no-op, not an error.
	s.Remove("missing")
	assert.Len(t, s.State().Items, 1)
}

func TestSetQuantity(t *testing.T) {
	s, _ := newTestStore(nil)
	s.Add(snapshot("a", 1000), 2)

	s.SetQuantity("a", 5)
	assert.Equal(t, 5, s.State().TotalItems)

	s.SetQuantity("a", 0)
	assert.Empty(t, s.State().Items, "zero quantity drops the line")

	s.Add(snapshot("a", 1000), 1)
	s.SetQuantity("a", -1)
	assert.Empty(t, s.State().Items, "negative quantity clamps to zero and drops the line")
}

func TestTotalsAlwaysRecomputable(t *testing.T) {
	s, _ := newTestStore(nil)

	s.Add(snapshot("a", 333), 3)
	s.Add(snapshot("b", 199), 2)
	s.SetQuantity("a", 1)
	s.Remove("b")
	s.Add(snapshot("c", 1299), 4)

	st := s.State()
	items := 0
	var amount money.Cents
	for _, l := range st.Items {
		items += l.Quantity
		amount += l.Price.Mul(l.Quantity)
	}
	assert.Equal(t, items, st.TotalItems)
	assert.Equal(t, amount, st.TotalAmount)
}

func TestCheckout_EmptyCart(t *testing.T) {
	api := &fakeAPI{}
	s, _ := newTestStore(api)

	_, err := s.Checkout(context.Background())

	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Zero(t, api.calls, "empty cart must fail before any network call")
}

func TestCheckout_Success(t *testing.T) {
	api := &fakeAPI{resp: &client.BookingConfirmation{ID: "b-1", Status: "pending", TotalAmount: 3550}}
	s, storage := newTestStore(api)
	s.Add(snapshot("a", 1000), 2)
	s.Add(snapshot("b", 1550), 1)

	conf, err := s.Checkout(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "b-1", conf.ID)
	assert.Equal(t, 1, api.calls)
	assert.Len(t, api.lastReq.Products, 2)
	assert.Equal(t, money.Cents(3550), api.lastReq.TotalAmount)

	st := s.State()
	assert.Empty(t, st.Items)
	assert.Zero(t, st.TotalItems)
	assert.Zero(t, st.TotalAmount)
	assert.False(t, st.Loading)

	// The cleared cart is what got persisted.
	data, err := storage.Load(localstore.KeyCart)
	require.NoError(t, err)
	var saved State
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Empty(t, saved.Items)
}

func TestCheckout_FailureKeepsItems(t *testing.T) {
	api := &fakeAPI{err: &client.APIError{
		Status:  409,
		Code:    "PRODUCTS_NOT_AVAILABLE",
		Message: "Some products are not available",
	}}
	s, _ := newTestStore(api)
	s.Add(snapshot("a", 1000), 2)

	_, err := s.Checkout(context.Background())

	require.Error(t, err)
	st := s.State()
	assert.Len(t, st.Items, 1, "items must survive a failed checkout")
	assert.Equal(t, 2, st.TotalItems)
	assert.Equal(t, "Some products are not available", st.Error)
	assert.False(t, st.Loading)
}

func TestCheckout_GenericFailureMessage(t *testing.T) {
	api := &fakeAPI{err: errors.New("connection refused")}
	s, _ := newTestStore(api)
	s.Add(snapshot("a", 1000), 1)

	_, err := s.Checkout(context.Background())

	require.Error(t, err)
	assert.Equal(t, "Failed to create booking", s.State().Error)
}

func TestClearError(t *testing.T) {
	api := &fakeAPI{err: errors.New("boom")}
	s, _ := newTestStore(api)
	s.Add(snapshot("a", 1000), 1)
	s.Checkout(context.Background())
	require.NotEmpty(t, s.State().Error)

	s.ClearError()
	assert.Empty(t, s.State().Error)
}

func TestClear_LeavesErrorAlone(t *testing.T) {
	api := &fakeAPI{err: errors.New("boom")}
	s, _ := newTestStore(api)
	s.Add(snapshot("a", 1000), 1)
	s.Checkout(context.Background())

	s.Clear()

	st := s.State()
	assert.Empty(t, st.Items)
	assert.NotEmpty(t, st.Error)
}

func TestStateRoundTrip(t *testing.T) {
	storage := localstore.NewMemStore()
	s := NewStore(storage, nil, observability.NopLogger())
	s.Add(snapshot("a", 1000), 2)
	s.Add(snapshot("b", 1550), 1)
	want := s.State()

	reloaded := NewStore(storage, nil, observability.NopLogger())
	got := reloaded.State()

	assert.Equal(t, want.Items, got.Items)
	assert.Equal(t, want.TotalItems, got.TotalItems)
	assert.Equal(t, want.TotalAmount, got.TotalAmount)
}

func TestCorruptStorageDiscarded(t *testing.T) {
	storage := localstore.NewMemStore()
	require.NoError(t, storage.Save(localstore.KeyCart, []byte("{definitely not json")))

	s := NewStore(storage, nil, observability.NopLogger())

	st := s.State()
	assert.Empty(t, st.Items)
	assert.Empty(t, st.Error, "corrupt storage recovery is silent")

	_, err := storage.Load(localstore.KeyCart)
	assert.ErrorIs(t, err, localstore.ErrNoEntry, "corrupt entry must be discarded")
}
