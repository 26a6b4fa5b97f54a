package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/communityhub/community-services/internal/domain"
	"github.com/communityhub/community-services/internal/observability"
)

// AuditLogger appends checkout actions to the audit_logs collection.
// Writes are best-effort; callers log failures and move on.
type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("audit_logs"),
		logger: logger,
	}
}

type auditLog struct {
	ID        uuid.UUID `bson:"_id"`
	Action    string    `bson:"action"`
	UserID    uuid.UUID `bson:"user_id"`
	Timestamp time.Time `bson:"timestamp"`
	Data      bson.M    `bson:"data"`
}

func (a *AuditLogger) logAction(ctx context.Context, action string, userID uuid.UUID, data map[string]interface{}) error {
	entry := auditLog{
		ID:        uuid.New(),
		Action:    action,
		UserID:    userID,
		Timestamp: time.Now(),
		Data:      bson.M(data),
	}
	if _, err := a.coll.InsertOne(ctx, entry); err != nil {
		a.logger.WithError(err).Error("failed to insert audit log")
		return errors.Wrap(err, "insert audit log")
	}
	return nil
}

func (a *AuditLogger) LogBookingCreated(ctx context.Context, b domain.Booking) error {
	data := map[string]interface{}{
		"booking_id": b.ID,
		"status":     string(b.Status),
		"total":      b.TotalAmount.String(),
		"lines":      len(b.Lines),
	}
	return a.logAction(ctx, "booking.created", b.UserID, data)
}

func (a *AuditLogger) LogStatusChange(ctx context.Context, b domain.Booking, from domain.BookingStatus) error {
	data := map[string]interface{}{
		"booking_id": b.ID,
		"from":       string(from),
		"to":         string(b.Status),
	}
	return a.logAction(ctx, "booking.status_changed", b.UserID, data)
}
