// Package client is the HTTP client the cart store checks out through.
// It speaks the platform's envelope protocol: success payloads under
// "data", failures as {message, code} under "error".
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/communityhub/community-services/internal/money"
)

// APIError is a structured server failure. Code is one of the platform's
// stable error codes; Message is for display.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// TokenSource yields the current bearer credential. Implemented by
// session.Session.
type TokenSource interface {
	Token() string
}

// LineRequest mirrors one cart line on the wire. Price is sent for
// symmetry with the stored cart state; the server ignores it and
// snapshots the catalog price.
type LineRequest struct {
	ProductID string      `json:"productId"`
	Quantity  int         `json:"quantity"`
	Price     money.Cents `json:"price"`
}

type BookingRequest struct {
	Products    []LineRequest `json:"products"`
	TotalAmount money.Cents   `json:"totalAmount"`
}

// BookingConfirmation is the subset of the create response the cart
// store surfaces to the UI.
type BookingConfirmation struct {
	ID          string
	Status      string
	TotalAmount money.Cents
	Message     string
	CreatedAt   time.Time
}

type Client struct {
	baseURL string
	httpc   *http.Client
	creds   TokenSource
}

func New(baseURL string, creds TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		creds:   creds,
	}
}

type bookingPayload struct {
	ID          string      `json:"_id"`
	Status      string      `json:"status"`
	TotalAmount money.Cents `json:"totalAmount"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type createEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Booking bookingPayload `json:"booking"`
		Message string         `json:"message"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// CreateBooking posts the checkout request. A non-success envelope comes
// back as *APIError.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*BookingConfirmation, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/bookings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if token := c.creds.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env createEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &APIError{Status: resp.StatusCode, Code: "BOOKING_CREATE_ERROR", Message: "Failed to create booking"}
	}

	if !env.Success || resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Code: "BOOKING_CREATE_ERROR", Message: "Failed to create booking"}
		if env.Error != nil {
			if env.Error.Code != "" {
				apiErr.Code = env.Error.Code
			}
			if env.Error.Message != "" {
				apiErr.Message = env.Error.Message
			}
		}
		return nil, apiErr
	}

	return &BookingConfirmation{
		ID:          env.Data.Booking.ID,
		Status:      env.Data.Booking.Status,
		TotalAmount: env.Data.Booking.TotalAmount,
		Message:     env.Data.Message,
		CreatedAt:   env.Data.Booking.CreatedAt,
	}, nil
}
