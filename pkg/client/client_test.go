package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communityhub/community-services/internal/money"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestCreateBooking_Success(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/bookings", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{
			"success": true,
			"data": {
				"booking": {"_id": "b-1", "status": "pending", "totalAmount": 35.50, "createdAt": "2026-08-25T10:00:00Z"},
				"message": "Booking created successfully"
			}
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok-1"))
	conf, err := c.CreateBooking(context.Background(), BookingRequest{
		Products: []LineRequest{
			{ProductID: "p-1", Quantity: 2, Price: money.Cents(1000)},
			{ProductID: "p-2", Quantity: 1, Price: money.Cents(1550)},
		},
		TotalAmount: money.Cents(3550),
	})

	require.NoError(t, err)
	assert.Equal(t, "b-1", conf.ID)
	assert.Equal(t, "pending", conf.Status)
	assert.Equal(t, money.Cents(3550), conf.TotalAmount)
	assert.Equal(t, "Booking created successfully", conf.Message)

	assert.Equal(t, "Bearer tok-1", gotAuth)
	products := gotBody["products"].([]interface{})
	assert.Len(t, products, 2)
	first := products[0].(map[string]interface{})
	assert.Equal(t, "p-1", first["productId"])
	assert.Equal(t, float64(2), first["quantity"])
}

func TestCreateBooking_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{
			"success": false,
			"error": {"message": "Some products are not available", "code": "PRODUCTS_NOT_AVAILABLE"}
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken(""))
	_, err := c.CreateBooking(context.Background(), BookingRequest{
		Products: []LineRequest{{ProductID: "p-1", Quantity: 1}},
	})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "PRODUCTS_NOT_AVAILABLE", apiErr.Code)
	assert.Equal(t, "Some products are not available", apiErr.Message)
}

func TestCreateBooking_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>gateway error</html>"))
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken(""))
	_, err := c.CreateBooking(context.Background(), BookingRequest{
		Products: []LineRequest{{ProductID: "p-1", Quantity: 1}},
	})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Failed to create booking", apiErr.Message)
	assert.Equal(t, "BOOKING_CREATE_ERROR", apiErr.Code)
}
