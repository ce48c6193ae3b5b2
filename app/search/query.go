package search

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/models"
)

// CategoryMatch is a resolved category reference.
type CategoryMatch struct {
	Level models.Level
	ID    primitive.ObjectID
}

// SlugResolver looks a category up by slug across all three levels.
type SlugResolver interface {
	ResolveSlug(ctx context.Context, slug string) (CategoryMatch, bool, error)
}

// Query is the structured predicate, ordering and page window for one
// catalog read. A Query with Empty set matches nothing and must not reach
// the store.
type Query struct {
	Text     string
	Category *CategoryMatch
	MinPrice float64
	MaxPrice float64
	InStock  bool
	Tags     []string
	Sort     SortKey
	Skip     int64
	Limit    int64
	Empty    bool
}

// Build translates normalized params into a Query. A category that parses
// as an ObjectID is taken as a top-level category id; anything else is
// resolved as a slug, and a slug that resolves to nothing yields an Empty
// query rather than an error.
func Build(ctx context.Context, p Params, resolver SlugResolver) (*Query, error) {
	q := &Query{
		Text:     p.Q,
		MinPrice: p.MinPrice,
		MaxPrice: p.MaxPrice,
		InStock:  p.InStock,
		Tags:     p.Tags,
		Sort:     p.SortBy,
		Skip:     int64(p.Page-1) * int64(p.Limit),
		Limit:    int64(p.Limit),
	}

	if p.Category == "" {
		return q, nil
	}
	if id, err := primitive.ObjectIDFromHex(p.Category); err == nil {
		q.Category = &CategoryMatch{Level: models.LevelCategory, ID: id}
		return q, nil
	}
	if resolver == nil {
		q.Empty = true
		return q, nil
	}

	match, found, err := resolver.ResolveSlug(ctx, p.Category)
	if err != nil {
		return nil, fmt.Errorf("resolve category %q: %w", p.Category, err)
	}
	if !found {
		q.Empty = true
		return q, nil
	}
	q.Category = &match
	return q, nil
}

// categoryField maps a hierarchy level to the product field referencing it.
func categoryField(l models.Level) string {
	switch l {
	case models.LevelSubCategory:
		return "subCategory"
	case models.LevelChildCategory:
		return "childCategory"
	default:
		return "category"
	}
}

// effectivePriceExpr is the aggregation expression for Price.Effective.
var effectivePriceExpr = bson.D{{Key: "$ifNull", Value: bson.A{"$price.sale", "$price.regular"}}}

// Filter renders the predicate as a MongoDB filter document.
func (q *Query) Filter() bson.D {
	f := bson.D{{Key: "status", Value: models.StatusPublished}}

	if q.Text != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(q.Text), Options: "i"}
		var or bson.A
		for _, field := range textFields {
			or = append(or, bson.D{{Key: field, Value: rx}})
		}
		f = append(f, bson.E{Key: "$or", Value: or})
	}

	if q.Category != nil {
		f = append(f, bson.E{Key: categoryField(q.Category.Level), Value: q.Category.ID})
	}

	f = append(f, bson.E{Key: "$expr", Value: bson.D{{Key: "$and", Value: bson.A{
		bson.D{{Key: "$gte", Value: bson.A{effectivePriceExpr, q.MinPrice}}},
		bson.D{{Key: "$lte", Value: bson.A{effectivePriceExpr, q.MaxPrice}}},
	}}}})

	if q.InStock {
		f = append(f,
			bson.E{Key: "inventory.availability", Value: models.InStock},
			bson.E{Key: "inventory.totalStock", Value: bson.D{{Key: "$gt", Value: 0}}},
		)
	}

	if len(q.Tags) > 0 {
		f = append(f, bson.E{Key: "tags", Value: bson.D{{Key: "$in", Value: q.Tags}}})
	}
	return f
}

var textFields = []string{"name", "slug", "sku", "shortDescription", "description", "brand", "tags"}

// SortStage is the $sort document for the aggregation pipeline. Price keys
// sort on the "effectivePrice" field added by Pipeline. Every ordering ends
// on _id so equal keys still page deterministically.
func (q *Query) SortStage() bson.D {
	var s bson.D
	switch q.Sort {
	case SortPriceLow:
		s = bson.D{{Key: "effectivePrice", Value: 1}}
	case SortPriceHigh:
		s = bson.D{{Key: "effectivePrice", Value: -1}}
	case SortNewest:
		s = bson.D{{Key: "createdAt", Value: -1}}
	case SortOldest:
		s = bson.D{{Key: "createdAt", Value: 1}}
	case SortNameAsc:
		s = bson.D{{Key: "name", Value: 1}}
	case SortNameDesc:
		s = bson.D{{Key: "name", Value: -1}}
	default:
		s = bson.D{{Key: "flags.featured", Value: -1}, {Key: "name", Value: 1}}
	}
	return append(s, bson.E{Key: "_id", Value: 1})
}

// Pipeline is filter, sort and page window as one aggregation.
func (q *Query) Pipeline() []bson.D {
	p := []bson.D{
		{{Key: "$match", Value: q.Filter()}},
		{{Key: "$addFields", Value: bson.D{{Key: "effectivePrice", Value: effectivePriceExpr}}}},
		{{Key: "$sort", Value: q.SortStage()}},
	}
	if q.Skip > 0 {
		p = append(p, bson.D{{Key: "$skip", Value: q.Skip}})
	}
	if q.Limit > 0 {
		p = append(p, bson.D{{Key: "$limit", Value: q.Limit}})
	}
	return p
}

// Matches evaluates the predicate against one product.
func (q *Query) Matches(p models.Product) bool {
	if p.Status != models.StatusPublished {
		return false
	}
	if q.Text != "" && !matchesText(p, q.Text) {
		return false
	}
	if q.Category != nil && !inCategory(p, *q.Category) {
		return false
	}
	if !PriceInRange(p.EffectivePrice(), q.MinPrice, q.MaxPrice) {
		return false
	}
	if q.InStock && !p.Inventory.Purchasable() {
		return false
	}
	if len(q.Tags) > 0 && !anyTag(p.Tags, q.Tags) {
		return false
	}
	return true
}

// PriceInRange is the inclusive effective-price test shared by the query
// predicate and browse refinement.
func PriceInRange(price, lo, hi float64) bool {
	return price >= lo && price <= hi
}

func matchesText(p models.Product, text string) bool {
	needle := strings.ToLower(text)
	for _, field := range []string{p.Name, p.Slug, p.SKU, p.ShortDescription, p.Description, p.Brand} {
		if containsFold(field, needle) {
			return true
		}
	}
	for _, t := range p.Tags {
		if containsFold(t, needle) {
			return true
		}
	}
	return false
}

// containsFold reports whether s contains the already-lowercased needle.
func containsFold(s, needle string) bool {
	return strings.Contains(strings.ToLower(s), needle)
}

func inCategory(p models.Product, c CategoryMatch) bool {
	switch c.Level {
	case models.LevelSubCategory:
		return p.SubCategoryID != nil && *p.SubCategoryID == c.ID
	case models.LevelChildCategory:
		return p.ChildCategoryID != nil && *p.ChildCategoryID == c.ID
	default:
		return p.CategoryID == c.ID
	}
}

func anyTag(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

// Less reports whether a orders before b under the query's sort key. It
// mirrors SortStage.
func (q *Query) Less(a, b models.Product) bool {
	switch q.Sort {
	case SortPriceLow, SortPriceHigh:
		pa, pb := a.EffectivePrice(), b.EffectivePrice()
		if pa != pb {
			if q.Sort == SortPriceLow {
				return pa < pb
			}
			return pa > pb
		}
	case SortNewest, SortOldest:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if q.Sort == SortOldest {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
	case SortNameAsc, SortNameDesc:
		if a.Name != b.Name {
			if q.Sort == SortNameAsc {
				return a.Name < b.Name
			}
			return a.Name > b.Name
		}
	default:
		if a.Flags.Featured != b.Flags.Featured {
			return a.Flags.Featured
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
	}
	return a.ID.Hex() < b.ID.Hex()
}
