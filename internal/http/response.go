package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/communityhub/community-services/internal/domain"
	"github.com/communityhub/community-services/internal/money"
)

// Stable machine-readable error codes. Clients switch on these; messages
// are for display only.
const (
	CodeValidationError      = "VALIDATION_ERROR"
	CodeProductsNotAvailable = "PRODUCTS_NOT_AVAILABLE"
	CodeBookingCreateError   = "BOOKING_CREATE_ERROR"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeNotFound             = "NOT_FOUND"
	CodeRateLimited          = "RATE_LIMITED"
)

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
}

func writeSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: &errorBody{Message: message, Code: code}})
}

type productRefJSON struct {
	ID       uuid.UUID   `json:"_id"`
	Name     string      `json:"name"`
	Price    money.Cents `json:"price"`
	Image    string      `json:"image"`
	Category string      `json:"category"`
}

type bookingLineJSON struct {
	// ProductID is the expanded product reference when the catalog record
	// is at hand, otherwise the bare id string.
	ProductID interface{} `json:"productId"`
	Quantity  int         `json:"quantity"`
	Price     money.Cents `json:"price"`
}

type bookingJSON struct {
	ID          uuid.UUID         `json:"_id"`
	UserID      uuid.UUID         `json:"userId"`
	Products    []bookingLineJSON `json:"products"`
	TotalAmount money.Cents       `json:"totalAmount"`
	Status      string            `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func renderBooking(b domain.Booking, products map[uuid.UUID]domain.Product) bookingJSON {
	lines := make([]bookingLineJSON, len(b.Lines))
	for i, l := range b.Lines {
		line := bookingLineJSON{Quantity: l.Quantity, Price: l.Price}
		if p, ok := products[l.ProductID]; ok {
			line.ProductID = productRefJSON{
				ID:       p.ID,
				Name:     p.Name,
				Price:    p.Price,
				Image:    p.Image,
				Category: p.Category,
			}
		} else {
			line.ProductID = l.ProductID.String()
		}
		lines[i] = line
	}
	return bookingJSON{
		ID:          b.ID,
		UserID:      b.UserID,
		Products:    lines,
		TotalAmount: b.TotalAmount,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

type productJSON struct {
	ID          uuid.UUID   `json:"_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Image       string      `json:"image"`
	Price       money.Cents `json:"price"`
	InStock     bool        `json:"inStock"`
}

func renderProduct(p domain.Product) productJSON {
	return productJSON{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		Price:       p.Price,
		InStock:     p.InStock,
	}
}
