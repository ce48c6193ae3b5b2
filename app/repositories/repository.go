// Package repositories holds the catalog stores. Each store has a MongoDB
// driver for production and an in-memory driver for local development and
// tests; both evaluate the same search.Query.
package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/search"
)

var (
	// ErrNotFound is returned when a lookup by id or slug matches nothing.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate key")
)

// ProductStore persists products and executes search queries.
type ProductStore interface {
	// Find returns one page of products matching q, ordered by q.Sort.
	Find(ctx context.Context, q *search.Query) ([]models.Product, error)
	// Count returns the number of products matching q, ignoring the page window.
	Count(ctx context.Context, q *search.Query) (int64, error)

	FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	FindBySlug(ctx context.Context, slug string) (models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// SlugExists reports whether another product (not exclude) uses slug.
	SlugExists(ctx context.Context, slug string, exclude primitive.ObjectID) (bool, error)
	// SKUsTaken returns which of skus are already used as a product or
	// variation SKU by a product other than exclude.
	SKUsTaken(ctx context.Context, skus []string, exclude primitive.ObjectID) ([]string, error)
}

// CategoryStore persists the three category levels.
type CategoryStore interface {
	search.SlugResolver

	FindByID(ctx context.Context, level models.Level, id primitive.ObjectID) (models.Category, error)
	// FindByIDs loads several nodes of one level in a single round trip.
	// Unknown ids are absent from the result.
	FindByIDs(ctx context.Context, level models.Level, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Category, error)
	List(ctx context.Context, level models.Level) ([]models.Category, error)
	Create(ctx context.Context, level models.Level, c *models.Category) error
	Update(ctx context.Context, level models.Level, c *models.Category) error
	Delete(ctx context.Context, level models.Level, id primitive.ObjectID) error
	SlugExists(ctx context.Context, level models.Level, slug string, exclude primitive.ObjectID) (bool, error)
}
