// Package booking implements the server-side checkout transaction:
// structural validation, availability re-validation against the live
// catalog, authoritative price snapshot, and persistence of the booking.
package booking

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/communityhub/community-services/internal/domain"
	"github.com/communityhub/community-services/internal/observability"
)

// LineRequest is one requested line as received from the client. Any
// client-declared price or total never reaches this type; prices are
// snapshotted from the catalog.
type LineRequest struct {
	ProductID string
	Quantity  int
}

// ProductFinder fetches the currently in-stock subset of the catalog.
type ProductFinder interface {
	FindInStock(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error)
}

// BookingStore persists bookings. Insert recomputes the total amount as
// part of the save.
type BookingStore interface {
	Insert(ctx context.Context, b *domain.Booking) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error
}

// EventPublisher emits booking lifecycle events. Best-effort; failures
// are logged, never returned to the client.
type EventPublisher interface {
	BookingCreated(ctx context.Context, b domain.Booking) error
	BookingStatusChanged(ctx context.Context, b domain.Booking) error
}

// AuditTrail records checkout actions for the dashboard collaborator.
type AuditTrail interface {
	LogBookingCreated(ctx context.Context, b domain.Booking) error
	LogStatusChange(ctx context.Context, b domain.Booking, from domain.BookingStatus) error
}

type Service struct {
	catalog   ProductFinder
	store     BookingStore
	publisher EventPublisher
	audit     AuditTrail
	logger    observability.Logger
}

// NewService wires the booking service. publisher and audit may be nil
// when the broker or audit collection is not configured.
func NewService(catalog ProductFinder, store BookingStore, publisher EventPublisher, audit AuditTrail, logger observability.Logger) *Service {
	return &Service{
		catalog:   catalog,
		store:     store,
		publisher: publisher,
		audit:     audit,
		logger:    logger,
	}
}

// Create validates the requested lines against the live catalog, snapshots
// unit prices server-side, and persists a pending booking. The whole
// request is rejected if any product is missing or out of stock; no
// partial booking is ever written. Returns the saved booking and the
// fetched products keyed by id for response expansion.
//
// The availability check and the insert are deliberately not one
// transaction; a product can go out of stock in between, and that race is
// accepted rather than closed with a reservation.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, lines []LineRequest) (*domain.Booking, map[uuid.UUID]domain.Product, error) {
	timer := prometheus.NewTimer(observability.BookingCreateDuration)
	defer timer.ObserveDuration()

	ids, err := validateLines(lines)
	if err != nil {
		observability.BookingsRejected.WithLabelValues("validation").Inc()
		return nil, nil, err
	}

	products, err := s.catalog.FindInStock(ctx, ids)
	if err != nil {
		return nil, nil, errors.Wrap(err, "availability check")
	}
	byID := make(map[uuid.UUID]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	if len(byID) < len(ids) {
		observability.BookingsRejected.WithLabelValues("unavailable").Inc()
		return nil, nil, domain.ErrProductsUnavailable
	}

	bookingLines := make([]domain.BookingLine, len(lines))
	for i, l := range lines {
		id := uuid.MustParse(l.ProductID)
		bookingLines[i] = domain.BookingLine{
			ProductID: id,
			Quantity:  l.Quantity,
			Price:     byID[id].Price,
		}
	}

	b := domain.NewBooking(userID, bookingLines)
	if err := s.store.Insert(ctx, &b); err != nil {
		observability.BookingsRejected.WithLabelValues("persistence").Inc()
		return nil, nil, errors.Wrap(err, "save booking")
	}
	observability.BookingsCreated.Inc()

	s.fanOutCreated(ctx, b)

	return &b, byID, nil
}

// validateLines checks structure before any catalog access and returns
// the distinct product ids in first-seen order.
func validateLines(lines []LineRequest) ([]uuid.UUID, error) {
	if len(lines) == 0 {
		return nil, errors.Wrap(domain.ErrInvalidInput, "at least one product is required")
	}
	seen := make(map[uuid.UUID]bool, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		id, err := uuid.Parse(l.ProductID)
		if err != nil {
			return nil, errors.Wrapf(domain.ErrInvalidInput, "invalid product id %q", l.ProductID)
		}
		if l.Quantity < 1 {
			return nil, errors.Wrapf(domain.ErrInvalidInput, "quantity must be at least 1 for product %s", l.ProductID)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// fanOutCreated publishes the event and writes the audit entry
// concurrently. Both are best-effort.
func (s *Service) fanOutCreated(ctx context.Context, b domain.Booking) {
	var g errgroup.Group
	if s.publisher != nil {
		g.Go(func() error {
			if err := s.publisher.BookingCreated(ctx, b); err != nil {
				observability.EventPublishFailures.Inc()
				s.logger.WithError(err).WithField("booking_id", b.ID).Warn("booking.created publish failed")
			}
			return nil
		})
	}
	if s.audit != nil {
		g.Go(func() error {
			if err := s.audit.LogBookingCreated(ctx, b); err != nil {
				s.logger.WithError(err).WithField("booking_id", b.ID).Warn("audit write failed")
			}
			return nil
		})
	}
	g.Wait()
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	return s.store.ListByUser(ctx, userID)
}

// Transition moves a booking through the status state machine:
// pending -> confirmed|cancelled, confirmed -> completed|cancelled.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to domain.BookingStatus) (*domain.Booking, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.Status.CanTransition(to) {
		return nil, errors.Wrapf(domain.ErrInvalidTransition, "%s -> %s", b.Status, to)
	}
	if err := s.store.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	from := b.Status
	b.Status = to

	if s.publisher != nil {
		if err := s.publisher.BookingStatusChanged(ctx, *b); err != nil {
			observability.EventPublishFailures.Inc()
			s.logger.WithError(err).WithField("booking_id", b.ID).Warn("status event publish failed")
		}
	}
	if s.audit != nil {
		if err := s.audit.LogStatusChange(ctx, *b, from); err != nil {
			s.logger.WithError(err).WithField("booking_id", b.ID).Warn("audit write failed")
		}
	}
	return b, nil
}
