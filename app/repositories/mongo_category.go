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

// MongoCategories keeps each level in its own collection.
type MongoCategories struct {
	db *mongo.Database
}

func NewMongoCategories(db *mongo.Database) *MongoCategories {
	return &MongoCategories{db: db}
}

var _ CategoryStore = (*MongoCategories)(nil)

func (s *MongoCategories) col(level models.Level) *mongo.Collection {
	return s.db.Collection(level.Collection())
}

// ResolveSlug checks the levels root first and returns the first match.
func (s *MongoCategories) ResolveSlug(ctx context.Context, slug string) (search.CategoryMatch, bool, error) {
	defer metrics.ObserveStore("mongo", "resolve", time.Now())

	for _, level := range models.Levels {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		err := s.col(level).FindOne(ctx, bson.D{{Key: "slug", Value: slug}},
			options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return search.CategoryMatch{}, false, fmt.Errorf("%s: %w", level.Collection(), err)
		}
		return search.CategoryMatch{Level: level, ID: doc.ID}, true, nil
	}
	return search.CategoryMatch{}, false, nil
}

func (s *MongoCategories) FindByID(ctx context.Context, level models.Level, id primitive.ObjectID) (models.Category, error) {
	defer metrics.ObserveStore("mongo", "lookup", time.Now())

	var c models.Category
	err := s.col(level).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return c, ErrNotFound
	}
	return c, err
}

func (s *MongoCategories) FindByIDs(ctx context.Context, level models.Level, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Category, error) {
	out := make(map[primitive.ObjectID]models.Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	defer metrics.ObserveStore("mongo", "lookup", time.Now())

	cur, err := s.col(level).Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", level.Collection(), err)
	}
	var nodes []models.Category
	if err := cur.All(ctx, &nodes); err != nil {
		return nil, err
	}
	for _, c := range nodes {
		out[c.ID] = c
	}
	return out, nil
}

func (s *MongoCategories) List(ctx context.Context, level models.Level) ([]models.Category, error) {
	defer metrics.ObserveStore("mongo", "find", time.Now())

	cur, err := s.col(level).Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []models.Category{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoCategories) Create(ctx context.Context, level models.Level, c *models.Category) error {
	defer metrics.ObserveStore("mongo", "insert", time.Now())

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := s.col(level).InsertOne(ctx, c)
	return translateWriteErr(err)
}

func (s *MongoCategories) Update(ctx context.Context, level models.Level, c *models.Category) error {
	defer metrics.ObserveStore("mongo", "update", time.Now())

	res, err := s.col(level).ReplaceOne(ctx, bson.D{{Key: "_id", Value: c.ID}}, c)
	if err != nil {
		return translateWriteErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoCategories) Delete(ctx context.Context, level models.Level, id primitive.ObjectID) error {
	defer metrics.ObserveStore("mongo", "delete", time.Now())

	res, err := s.col(level).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoCategories) SlugExists(ctx context.Context, level models.Level, slug string, exclude primitive.ObjectID) (bool, error) {
	n, err := s.col(level).CountDocuments(ctx, bson.D{
		{Key: "slug", Value: slug},
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: exclude}}},
	}, options.Count().SetLimit(1))
	return n > 0, err
}

// EnsureIndexes makes slugs unique per level and indexes parent links.
func (s *MongoCategories) EnsureIndexes(ctx context.Context) error {
	for _, level := range models.Levels {
		idx := []mongo.IndexModel{
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		}
		if _, hasParent := level.Parent(); hasParent {
			idx = append(idx, mongo.IndexModel{Keys: bson.D{{Key: "parent", Value: 1}}})
		}
		if _, err := s.col(level).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("%s: %w", level.Collection(), err)
		}
	}
	return nil
}
