package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/communityhub/community-services/internal/money"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is one of the four known statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses admit no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether s -> to is a legal move:
// pending -> confirmed|cancelled, confirmed -> completed|cancelled.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	if !to.Valid() || s.Terminal() {
		return false
	}
	switch s {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	}
	return false
}

// BookingLine is one product-quantity-price entry of a booking. Price is
// the unit price captured from the catalog at creation time; client-sent
// prices never reach a BookingLine.
type BookingLine struct {
	ProductID uuid.UUID
	Quantity  int
	Price     money.Cents
}

// Booking is the persisted record of a completed checkout. Immutable once
// created except for Status.
type Booking struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Lines       []BookingLine
	TotalAmount money.Cents
	Status      BookingStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBooking builds a pending booking with its total computed from the
// lines. The persistence layer recomputes the total again on save.
func NewBooking(userID uuid.UUID, lines []BookingLine) Booking {
	return Booking{
		ID:          uuid.New(),
		UserID:      userID,
		Lines:       lines,
		TotalAmount: LinesTotal(lines),
		Status:      StatusPending,
	}
}

// LinesTotal is the sum of price*quantity over the lines.
func LinesTotal(lines []BookingLine) money.Cents {
	var total money.Cents
	for _, l := range lines {
		total += l.Price.Mul(l.Quantity)
	}
	return total
}
