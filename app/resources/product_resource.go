// Package resources holds the public JSON shapes of catalog entities.
//
// Identifiers are plain hex strings. Category references are flattened to
// {id, name, slug} and always present as keys: an absent or dangling
// reference encodes as null.
package resources

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/resource"
)

// Ref is a flattened category reference.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type Price struct {
	Regular      float64             `json:"regular"`
	Sale         *float64            `json:"sale"`
	DiscountType models.DiscountType `json:"discountType"`
}

type Inventory struct {
	TotalStock        int                 `json:"totalStock"`
	LowStockThreshold int                 `json:"lowStockThreshold"`
	Availability      models.Availability `json:"availability"`
}

type Variation struct {
	Color    string   `json:"color"`
	Size     string   `json:"size"`
	Material string   `json:"material"`
	Stock    int      `json:"stock"`
	Price    *float64 `json:"price"`
	SKU      string   `json:"sku"`
}

type Images struct {
	Thumbnail string   `json:"thumbnail"`
	Gallery   []string `json:"gallery"`
	Video     string   `json:"video"`
}

// Product is the storefront representation of models.Product.
type Product struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Slug             string        `json:"slug"`
	SKU              string        `json:"sku"`
	Brand            string        `json:"brand"`
	Category         *Ref          `json:"category"`
	SubCategory      *Ref          `json:"subCategory"`
	ChildCategory    *Ref          `json:"childCategory"`
	Price            Price         `json:"price"`
	EffectivePrice   float64       `json:"effectivePrice"`
	Inventory        Inventory     `json:"inventory"`
	Variations       []Variation   `json:"variations"`
	Fabric           string        `json:"fabric"`
	ShortDescription string        `json:"shortDescription"`
	Description      string        `json:"description"`
	WorkType         string        `json:"workType"`
	Fit              string        `json:"fit"`
	WashCare         string        `json:"washCare"`
	Origin           string        `json:"origin"`
	Images           Images        `json:"images"`
	Flags            models.Flags  `json:"flags"`
	Tags             []string      `json:"tags"`
	Status           models.Status `json:"status"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// Refs holds the category nodes referenced by a product set, per level.
type Refs map[models.Level]map[primitive.ObjectID]models.Category

func (r Refs) ref(level models.Level, id *primitive.ObjectID) *Ref {
	if id == nil || id.IsZero() {
		return nil
	}
	c, ok := r[level][*id]
	if !ok {
		return nil
	}
	return &Ref{ID: c.ID.Hex(), Name: c.Name, Slug: c.Slug}
}

// RefLookup is the batched category read LoadRefs needs.
type RefLookup interface {
	FindByIDs(ctx context.Context, level models.Level, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Category, error)
}

// LoadRefs resolves every category reference of products with at most one
// lookup per level.
func LoadRefs(ctx context.Context, lookup RefLookup, products []models.Product) (Refs, error) {
	ids := map[models.Level][]primitive.ObjectID{}
	seen := map[primitive.ObjectID]bool{}
	add := func(level models.Level, id *primitive.ObjectID) {
		if id == nil || id.IsZero() || seen[*id] {
			return
		}
		seen[*id] = true
		ids[level] = append(ids[level], *id)
	}
	for i := range products {
		p := &products[i]
		add(models.LevelCategory, &p.CategoryID)
		add(models.LevelSubCategory, p.SubCategoryID)
		add(models.LevelChildCategory, p.ChildCategoryID)
	}

	refs := Refs{}
	for _, level := range models.Levels {
		if len(ids[level]) == 0 {
			continue
		}
		found, err := lookup.FindByIDs(ctx, level, ids[level])
		if err != nil {
			return nil, fmt.Errorf("load %s refs: %w", level, err)
		}
		refs[level] = found
	}
	return refs, nil
}

// ProductOf formats p, flattening references through refs.
func ProductOf(p models.Product, refs Refs) Product {
	variations := make([]Variation, 0, len(p.Variations))
	for _, v := range p.Variations {
		variations = append(variations, Variation{
			Color: v.Color, Size: v.Size, Material: v.Material,
			Stock: v.Stock, Price: v.Price, SKU: v.SKU,
		})
	}
	return Product{
		ID:            p.ID.Hex(),
		Name:          p.Name,
		Slug:          p.Slug,
		SKU:           p.SKU,
		Brand:         p.Brand,
		Category:      refs.ref(models.LevelCategory, &p.CategoryID),
		SubCategory:   refs.ref(models.LevelSubCategory, p.SubCategoryID),
		ChildCategory: refs.ref(models.LevelChildCategory, p.ChildCategoryID),
		Price: Price{
			Regular:      p.Price.Regular,
			Sale:         p.Price.Sale,
			DiscountType: p.Price.DiscountType,
		},
		EffectivePrice: p.EffectivePrice(),
		Inventory: Inventory{
			TotalStock:        p.Inventory.TotalStock,
			LowStockThreshold: p.Inventory.LowStockThreshold,
			Availability:      p.Inventory.Availability,
		},
		Variations:       variations,
		Fabric:           p.Fabric,
		ShortDescription: p.ShortDescription,
		Description:      p.Description,
		WorkType:         p.WorkType,
		Fit:              p.Fit,
		WashCare:         p.WashCare,
		Origin:           p.Origin,
		Images: Images{
			Thumbnail: p.Images.Thumbnail,
			Gallery:   resource.Strings(p.Images.Gallery),
			Video:     p.Images.Video,
		},
		Flags:     p.Flags,
		Tags:      resource.Strings(p.Tags),
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// Products formats a product set.
func Products(products []models.Product, refs Refs) []Product {
	return resource.Collection(products, func(p models.Product) Product {
		return ProductOf(p, refs)
	})
}
