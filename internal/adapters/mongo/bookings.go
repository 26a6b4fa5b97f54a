package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/communityhub/community-services/internal/domain"
	"github.com/communityhub/community-services/internal/money"
	"github.com/communityhub/community-services/internal/observability"
)

// BookingRepository persists bookings in the bookings collection.
type BookingRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewBookingRepository(db *mongo.Database, logger observability.Logger) *BookingRepository {
	return &BookingRepository{
		coll:   db.Collection("bookings"),
		logger: logger,
	}
}

type bookingDoc struct {
	ID              uuid.UUID        `bson:"_id"`
	UserID          uuid.UUID        `bson:"user_id"`
	Lines           []bookingLineDoc `bson:"products"`
	TotalAmountCent int64            `bson:"total_amount_cents"`
	Status          string           `bson:"status"`
	CreatedAt       time.Time        `bson:"created_at"`
	UpdatedAt       time.Time        `bson:"updated_at"`
}

type bookingLineDoc struct {
	ProductID  uuid.UUID `bson:"product_id"`
	Quantity   int       `bson:"quantity"`
	PriceCents int64     `bson:"price_cents"`
}

func (d bookingDoc) toDomain() domain.Booking {
	lines := make([]domain.BookingLine, len(d.Lines))
	for i, l := range d.Lines {
		lines[i] = domain.BookingLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     money.Cents(l.PriceCents),
		}
	}
	return domain.Booking{
		ID:          d.ID,
		UserID:      d.UserID,
		Lines:       lines,
		TotalAmount: money.Cents(d.TotalAmountCent),
		Status:      domain.BookingStatus(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// Insert saves a booking. The total amount is recomputed from the lines
// here, unconditionally; whatever the caller set is overwritten.
func (r *BookingRepository) Insert(ctx context.Context, b *domain.Booking) error {
	now := time.Now()
	b.TotalAmount = domain.LinesTotal(b.Lines)
	b.CreatedAt = now
	b.UpdatedAt = now

	lines := make([]bookingLineDoc, len(b.Lines))
	for i, l := range b.Lines {
		lines[i] = bookingLineDoc{
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			PriceCents: int64(l.Price),
		}
	}
	doc := bookingDoc{
		ID:              b.ID,
		UserID:          b.UserID,
		Lines:           lines,
		TotalAmountCent: int64(b.TotalAmount),
		Status:          string(b.Status),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		r.logger.WithError(err).Error("failed to insert booking")
		return errors.Wrap(err, "insert booking")
	}
	return nil
}

func (r *BookingRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var doc bookingDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get booking")
	}
	b := doc.toDomain()
	return &b, nil
}

// ListByUser returns a user's bookings, most recent first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "list bookings")
	}
	defer cur.Close(ctx)

	var bookings []domain.Booking
	for cur.Next(ctx) {
		var doc bookingDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode booking")
		}
		bookings = append(bookings, doc.toDomain())
	}
	return bookings, cur.Err()
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error {
	res, err := r.coll.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": string(status), "updated_at": time.Now()}},
	)
	if err != nil {
		r.logger.WithError(err).Error("failed to update booking status")
		return errors.Wrap(err, "update booking status")
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
