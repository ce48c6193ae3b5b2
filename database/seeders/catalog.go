// Package seeders loads a sample catalog through the admin services, so
// seeded data obeys the same invariants as API writes. Seeding twice is
// harmless: existing categories are reused and products whose SKU is
// already taken are skipped.
package seeders

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
)

// Summary counts what a run wrote.
type Summary struct {
	Categories int
	Products   int
	Skipped    int
}

type node struct {
	name     string
	children []node
}

var tree = []node{
	{name: "Women", children: []node{
		{name: "Sarees", children: []node{{name: "Silk Sarees"}, {name: "Cotton Sarees"}}},
		{name: "Kurtas", children: []node{{name: "Anarkali"}, {name: "Straight Kurtas"}}},
	}},
	{name: "Men", children: []node{
		{name: "Shirts", children: []node{{name: "Casual Shirts"}}},
		{name: "Kurtas", children: []node{{name: "Festive Kurtas"}}},
	}},
}

func ptr[T any](v T) *T { return &v }

// sample products keyed by the child category name they belong to.
func products() map[string][]services.ProductInput {
	return map[string][]services.ProductInput{
		"Silk Sarees": {
			{
				Name: "Kanjivaram Silk Saree", SKU: "SAR-SLK-001", Brand: "Weaves of India",
				RegularPrice: 12999, SalePrice: ptr(10999.0), DiscountType: "flat",
				Fabric: "Pure Silk", WorkType: "Zari", Origin: "Kanchipuram",
				ShortDescription: "Handwoven Kanjivaram with gold zari border",
				Variations: []services.VariationInput{
					{Color: "Maroon", Size: "Free", Stock: ptr(4), SKU: "SAR-SLK-001-MR"},
					{Color: "Emerald", Size: "Free", Stock: ptr(2), SKU: "SAR-SLK-001-EM"},
				},
				Tags:   []string{"silk", "wedding", "handloom"},
				Flags:  models.Flags{Featured: true, ShowOnHomepage: true},
				Status: "published",
			},
			{
				Name: "Banarasi Silk Saree", SKU: "SAR-SLK-002", Brand: "Kashi Looms",
				RegularPrice: 8999, Fabric: "Silk Blend", WorkType: "Brocade", Origin: "Varanasi",
				ShortDescription: "Banarasi brocade with meenakari pallu",
				Variations: []services.VariationInput{
					{Color: "Red", Size: "Free", Stock: ptr(6), SKU: "SAR-SLK-002-RD"},
				},
				Tags:   []string{"silk", "festive"},
				Flags:  models.Flags{Trending: true},
				Status: "published",
			},
		},
		"Cotton Sarees": {
			{
				Name: "Handloom Cotton Saree", SKU: "SAR-CTN-001", Brand: "Bengal Handloom",
				RegularPrice: 1899, SalePrice: ptr(1499.0), DiscountType: "flat",
				Fabric: "Cotton", Origin: "Shantipur",
				Variations: []services.VariationInput{
					{Color: "White", Size: "Free", Stock: ptr(12), SKU: "SAR-CTN-001-WH"},
					{Color: "Mustard", Size: "Free", Stock: ptr(0), SKU: "SAR-CTN-001-MU"},
				},
				Tags:   []string{"cotton", "daily"},
				Status: "published",
			},
		},
		"Anarkali": {
			{
				Name: "Georgette Anarkali Kurta", SKU: "KUR-ANK-001", Brand: "Rangrez",
				RegularPrice: 3499, Fabric: "Georgette", WorkType: "Embroidered", Fit: "Flared",
				Variations: []services.VariationInput{
					{Color: "Pink", Size: "M", Stock: ptr(3), SKU: "KUR-ANK-001-PK-M"},
					{Color: "Pink", Size: "L", Stock: ptr(5), SKU: "KUR-ANK-001-PK-L"},
				},
				Tags:   []string{"festive", "ethnic"},
				Flags:  models.Flags{WhatsNew: true},
				Status: "published",
			},
		},
		"Straight Kurtas": {
			{
				Name: "Block Print Straight Kurta", SKU: "KUR-STR-001", Brand: "Jaipur Prints",
				RegularPrice: 1299, Fabric: "Cotton", WorkType: "Block Print", Fit: "Straight",
				TotalStock: ptr(0), Availability: "pre_order",
				Tags:   []string{"cotton", "daily"},
				Status: "published",
			},
		},
		"Casual Shirts": {
			{
				Name: "Linen Casual Shirt", SKU: "MSH-CAS-001", Brand: "Coastline",
				RegularPrice: 2199, SalePrice: ptr(1799.0), DiscountType: "flat",
				Fabric: "Linen", Fit: "Regular",
				Variations: []services.VariationInput{
					{Color: "Sky Blue", Size: "M", Stock: ptr(8), SKU: "MSH-CAS-001-SB-M"},
					{Color: "Olive", Size: "L", Stock: ptr(4), SKU: "MSH-CAS-001-OL-L"},
				},
				Tags:   []string{"linen", "summer"},
				Flags:  models.Flags{Recommended: true},
				Status: "published",
			},
		},
		"Festive Kurtas": {
			{
				Name: "Silk Festive Kurta", SKU: "MKU-FES-001", Brand: "Rangrez",
				RegularPrice: 4599, Fabric: "Art Silk", WorkType: "Thread Work",
				Variations: []services.VariationInput{
					{Color: "Gold", Size: "L", Stock: ptr(2), SKU: "MKU-FES-001-GD-L"},
				},
				Tags:   []string{"silk", "festive", "wedding"},
				Status: "draft",
			},
		},
	}
}

// path is the ids of one leaf and its ancestors.
type path struct {
	root, sub, child primitive.ObjectID
}

// Run seeds the category tree sequentially, then the products on a pool
// of workers.
func Run(ctx context.Context, categories *services.CategoryService, catalog *services.CatalogService, workers int) (Summary, error) {
	var sum Summary

	leaves := map[string]path{}
	for _, root := range tree {
		rootCat, created, err := ensure(ctx, categories, models.LevelCategory, root.name, services.Slugify(root.name), "")
		if err != nil {
			return sum, err
		}
		sum.Categories += created
		for _, sub := range root.children {
			subCat, created, err := ensure(ctx, categories, models.LevelSubCategory, sub.name, services.Slugify(root.name+" "+sub.name), rootCat.ID.Hex())
			if err != nil {
				return sum, err
			}
			sum.Categories += created
			for _, child := range sub.children {
				childCat, created, err := ensure(ctx, categories, models.LevelChildCategory, child.name, services.Slugify(child.name), subCat.ID.Hex())
				if err != nil {
					return sum, err
				}
				sum.Categories += created
				leaves[child.name] = path{root: rootCat.ID, sub: subCat.ID, child: childCat.ID}
			}
		}
	}

	type outcome struct{ created, skipped int }
	results := make(chan outcome, 64)

	var jobs []func(context.Context) error
	for leaf, inputs := range products() {
		p := leaves[leaf]
		for _, in := range inputs {
			in := in
			in.Category = p.root.Hex()
			in.SubCategory = p.sub.Hex()
			in.ChildCategory = p.child.Hex()
			in.Thumbnail = fmt.Sprintf("https://cdn.storefront.test/products/%s.jpg", in.SKU)

			jobs = append(jobs, func(ctx context.Context) error {
				_, err := catalog.Create(ctx, in)
				switch {
				case errors.Is(err, services.ErrSKUTaken):
					results <- outcome{skipped: 1}
					return nil
				case err != nil:
					return fmt.Errorf("seed product %s: %w", in.SKU, err)
				}
				results <- outcome{created: 1}
				return nil
			})
		}
	}

	done := make(chan struct{})
	go func() {
		for o := range results {
			sum.Products += o.created
			sum.Skipped += o.skipped
		}
		close(done)
	}()

	err := workerpool.Run(ctx, workers, jobs...)
	close(results)
	<-done

	logger.WithCtx(ctx).Info("catalog seeded",
		"categories", sum.Categories,
		"products", sum.Products,
		"skipped", sum.Skipped,
	)
	return sum, err
}

// ensure returns the category with slug at level, creating it under
// parent when it does not exist yet.
func ensure(ctx context.Context, categories *services.CategoryService, level models.Level, name, slug, parent string) (models.Category, int, error) {
	existing, err := categories.List(ctx, level)
	if err != nil {
		return models.Category{}, 0, err
	}
	for _, c := range existing {
		if c.Slug == slug {
			return c, 0, nil
		}
	}

	c, err := categories.Create(ctx, level, services.CategoryInput{
		Name:   name,
		Slug:   slug,
		Image:  fmt.Sprintf("https://cdn.storefront.test/categories/%s.jpg", slug),
		Parent: parent,
	})
	if err != nil {
		return models.Category{}, 0, fmt.Errorf("seed %s %q: %w", level, name, err)
	}
	return c, 1, nil
}
