package rabbit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/communityhub/community-services/internal/domain"
)

const exchange = "community.events"

// Publisher emits booking lifecycle events on a topic exchange so the
// dashboard and notification collaborators can react to checkouts.
type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, err
	}
	return &Publisher{ch: ch}, nil
}

type bookingEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	UserID      uuid.UUID `json:"user_id"`
	Status      string    `json:"status"`
	TotalAmount string    `json:"total_amount"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// BookingCreated publishes a booking.created event.
func (p *Publisher) BookingCreated(ctx context.Context, b domain.Booking) error {
	return p.publish(ctx, "booking.created", b)
}

// BookingStatusChanged publishes booking.<status> for transitions.
func (p *Publisher) BookingStatusChanged(ctx context.Context, b domain.Booking) error {
	return p.publish(ctx, "booking."+string(b.Status), b)
}

func (p *Publisher) publish(ctx context.Context, key string, b domain.Booking) error {
	payload, err := json.Marshal(bookingEvent{
		BookingID:   b.ID,
		UserID:      b.UserID,
		Status:      string(b.Status),
		TotalAmount: b.TotalAmount.String(),
		OccurredAt:  time.Now(),
	})
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		MessageId:   uuid.New().String(),
		ContentType: "application/json",
		Body:        payload,
	}
	return p.ch.PublishWithContext(ctx, exchange, key, false, false, msg)
}
