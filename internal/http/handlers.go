package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/communityhub/community-services/internal/booking"
	"github.com/communityhub/community-services/internal/domain"
	"github.com/communityhub/community-services/internal/observability"
)

// ProductReader is the thin catalog read surface exposed over HTTP.
type ProductReader interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}

type Handlers struct {
	svc     *booking.Service
	catalog ProductReader
	logger  observability.Logger
}

func NewHandlers(svc *booking.Service, catalog ProductReader, logger observability.Logger) *Handlers {
	return &Handlers{
		svc:     svc,
		catalog: catalog,
		logger:  logger,
	}
}

// CreateBooking handles POST /v1/bookings. The request DTO reads only
// productId and quantity; any client-sent price or totalAmount fields are
// dropped at decode time and the catalog price wins.
func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Authentication required")
		return
	}

	var req struct {
		Products []struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
		} `json:"products"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationError, "Invalid request body")
		return
	}

	lines := make([]booking.LineRequest, len(req.Products))
	for i, p := range req.Products {
		lines[i] = booking.LineRequest{ProductID: p.ProductID, Quantity: p.Quantity}
	}

	b, products, err := h.svc.Create(r.Context(), userID, lines)
	if errors.Is(err, domain.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, CodeValidationError, err.Error())
		return
	}
	if errors.Is(err, domain.ErrProductsUnavailable) {
		writeError(w, http.StatusConflict, CodeProductsNotAvailable, "Some products are not available")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("booking creation failed")
		writeError(w, http.StatusInternalServerError, CodeBookingCreateError, "Failed to create booking")
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]interface{}{
		"booking": renderBooking(*b, products),
		"message": "Booking created successfully",
	})
}

func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationError, "Invalid booking id")
		return
	}

	b, err := h.svc.Get(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, CodeNotFound, "Booking not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("booking lookup failed")
		writeError(w, http.StatusInternalServerError, CodeBookingCreateError, "Failed to load booking")
		return
	}
	// Bookings are private to their owner.
	if b.UserID != userID {
		writeError(w, http.StatusNotFound, CodeNotFound, "Booking not found")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"booking": renderBooking(*b, nil),
	})
}

func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Authentication required")
		return
	}

	bookings, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("booking list failed")
		writeError(w, http.StatusInternalServerError, CodeBookingCreateError, "Failed to load bookings")
		return
	}

	rendered := make([]bookingJSON, len(bookings))
	for i, b := range bookings {
		rendered[i] = renderBooking(b, nil)
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"bookings": rendered,
	})
}

// UpdateBookingStatus handles PATCH /v1/bookings/{id}/status for the
// dashboard collaborator. Transitions run through the status state
// machine; bookings are otherwise immutable.
func (h *Handlers) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := userIDFrom(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationError, "Invalid booking id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationError, "Invalid request body")
		return
	}

	b, err := h.svc.Transition(r.Context(), id, domain.BookingStatus(req.Status))
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, CodeNotFound, "Booking not found")
		return
	}
	if errors.Is(err, domain.ErrInvalidTransition) {
		writeError(w, http.StatusBadRequest, CodeValidationError, err.Error())
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("status transition failed")
		writeError(w, http.StatusInternalServerError, CodeBookingCreateError, "Failed to update booking")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"booking": renderBooking(*b, nil),
	})
}

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("product list failed")
		writeError(w, http.StatusInternalServerError, CodeBookingCreateError, "Failed to load products")
		return
	}
	rendered := make([]productJSON, len(products))
	for i, p := range products {
		rendered[i] = renderProduct(p)
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"products": rendered})
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationError, "Invalid product id")
		return
	}
	p, err := h.catalog.Get(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, CodeNotFound, "Product not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("product lookup failed")
		writeError(w, http.StatusInternalServerError, CodeBookingCreateError, "Failed to load product")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"product": renderProduct(*p)})
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
