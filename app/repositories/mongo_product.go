package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/search"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

const productCollection = "products"

// MongoProducts is the MongoDB ProductStore.
type MongoProducts struct {
	col *mongo.Collection
}

func NewMongoProducts(db *mongo.Database) *MongoProducts {
	return &MongoProducts{col: db.Collection(productCollection)}
}

var _ ProductStore = (*MongoProducts)(nil)

func (s *MongoProducts) Find(ctx context.Context, q *search.Query) ([]models.Product, error) {
	if q.Empty {
		return []models.Product{}, nil
	}
	defer metrics.ObserveStore("mongo", "find", time.Now())

	cur, err := s.col.Aggregate(ctx, q.Pipeline())
	if err != nil {
		return nil, fmt.Errorf("products: aggregate: %w", err)
	}
	out := []models.Product{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("products: decode: %w", err)
	}
	return out, nil
}

func (s *MongoProducts) Count(ctx context.Context, q *search.Query) (int64, error) {
	if q.Empty {
		return 0, nil
	}
	defer metrics.ObserveStore("mongo", "count", time.Now())

	n, err := s.col.CountDocuments(ctx, q.Filter())
	if err != nil {
		return 0, fmt.Errorf("products: count: %w", err)
	}
	return n, nil
}

func (s *MongoProducts) findOne(ctx context.Context, filter bson.D) (models.Product, error) {
	defer metrics.ObserveStore("mongo", "lookup", time.Now())

	var p models.Product
	err := s.col.FindOne(ctx, filter).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return p, ErrNotFound
	}
	return p, err
}

func (s *MongoProducts) FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *MongoProducts) FindBySlug(ctx context.Context, slug string) (models.Product, error) {
	return s.findOne(ctx, bson.D{{Key: "slug", Value: slug}})
}

func (s *MongoProducts) Create(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveStore("mongo", "insert", time.Now())

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, p)
	return translateWriteErr(err)
}

func (s *MongoProducts) Update(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveStore("mongo", "update", time.Now())

	res, err := s.col.ReplaceOne(ctx, bson.D{{Key: "_id", Value: p.ID}}, p)
	if err != nil {
		return translateWriteErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveStore("mongo", "delete", time.Now())

	res, err := s.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoProducts) SlugExists(ctx context.Context, slug string, exclude primitive.ObjectID) (bool, error) {
	defer metrics.ObserveStore("mongo", "lookup", time.Now())

	n, err := s.col.CountDocuments(ctx, bson.D{
		{Key: "slug", Value: slug},
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: exclude}}},
	}, options.Count().SetLimit(1))
	return n > 0, err
}

func (s *MongoProducts) SKUsTaken(ctx context.Context, skus []string, exclude primitive.ObjectID) ([]string, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	defer metrics.ObserveStore("mongo", "lookup", time.Now())

	filter := bson.D{
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: exclude}}},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "sku", Value: bson.D{{Key: "$in", Value: skus}}}},
			bson.D{{Key: "variations.sku", Value: bson.D{{Key: "$in", Value: skus}}}},
		}},
	}
	proj := options.Find().SetProjection(bson.D{{Key: "sku", Value: 1}, {Key: "variations.sku", Value: 1}})

	cur, err := s.col.Find(ctx, filter, proj)
	if err != nil {
		return nil, err
	}
	var hits []models.Product
	if err := cur.All(ctx, &hits); err != nil {
		return nil, err
	}
	return intersectSKUs(skus, hits), nil
}

// EnsureIndexes creates the unique indexes backing slug and SKU uniqueness
// plus the fields used for filtering and sorting.
func (s *MongoProducts) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "variations.sku", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(
				bson.D{{Key: "variations.sku", Value: bson.D{{Key: "$type", Value: "string"}}}},
			),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	})
	return err
}

func translateWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

// intersectSKUs returns the requested skus present on any of products.
func intersectSKUs(want []string, products []models.Product) []string {
	used := make(map[string]struct{})
	for _, p := range products {
		for _, sku := range p.SKUs() {
			used[sku] = struct{}{}
		}
	}
	var out []string
	for _, sku := range want {
		if _, ok := used[sku]; ok {
			out = append(out, sku)
		}
	}
	return out
}
