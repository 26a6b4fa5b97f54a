package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/communityhub/community-services/internal/money"
)

// Product is a catalog item. The catalog is read-only from the checkout
// core's perspective; its current state is the source of truth for price
// and availability at booking time.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Category    string
	Image       string
	Price       money.Cents
	InStock     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
