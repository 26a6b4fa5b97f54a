package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/communityhub/community-services/internal/domain"
	"github.com/communityhub/community-services/internal/money"
	"github.com/communityhub/community-services/internal/observability"
)

// CatalogRepository reads sellable products from the catalog collection.
// The checkout core treats the catalog as read-only; Insert exists for
// seeding and tests.
type CatalogRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewCatalogRepository(db *mongo.Database, logger observability.Logger) *CatalogRepository {
	return &CatalogRepository{
		coll:   db.Collection("products"),
		logger: logger,
	}
}

type productDoc struct {
	ID          uuid.UUID `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	Category    string    `bson:"category"`
	Image       string    `bson:"image"`
	PriceCents  int64     `bson:"price_cents"`
	InStock     bool      `bson:"in_stock"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d productDoc) toDomain() domain.Product {
	return domain.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Image:       d.Image,
		Price:       money.Cents(d.PriceCents),
		InStock:     d.InStock,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// FindInStock returns the subset of the given products that exist and are
// currently marked in stock. Callers compare the result count against the
// request to detect unavailable products.
func (c *CatalogRepository) FindInStock(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	cur, err := c.coll.Find(ctx, bson.M{
		"_id":      bson.M{"$in": ids},
		"in_stock": true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "find in-stock products")
	}
	defer cur.Close(ctx)

	var products []domain.Product
	for cur.Next(ctx) {
		var doc productDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode product")
		}
		products = append(products, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate products")
	}
	return products, nil
}

func (c *CatalogRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var doc productDoc
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get product")
	}
	p := doc.toDomain()
	return &p, nil
}

// List returns catalog products for the thin browse endpoint.
func (c *CatalogRepository) List(ctx context.Context) ([]domain.Product, error) {
	cur, err := c.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	defer cur.Close(ctx)

	var products []domain.Product
	for cur.Next(ctx) {
		var doc productDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode product")
		}
		products = append(products, doc.toDomain())
	}
	return products, cur.Err()
}

func (c *CatalogRepository) Insert(ctx context.Context, p domain.Product) error {
	now := time.Now()
	doc := productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		PriceCents:  int64(p.Price),
		InStock:     p.InStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		c.logger.WithError(err).Error("failed to insert product")
		return errors.Wrap(err, "insert product")
	}
	return nil
}
