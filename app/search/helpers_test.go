package search_test

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/models"
)

var base = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func price(regular float64, sale ...float64) models.Price {
	p := models.Price{Regular: regular, DiscountType: models.DiscountNone}
	if len(sale) > 0 {
		s := sale[0]
		p.Sale = &s
		p.DiscountType = models.DiscountFlat
	}
	return p
}

func product(name string, mods ...func(*models.Product)) models.Product {
	p := models.Product{
		ID:         primitive.NewObjectID(),
		Name:       name,
		Slug:       name,
		SKU:        "SKU-" + name,
		CategoryID: primitive.NewObjectID(),
		Price:      price(1000),
		Inventory:  models.Inventory{TotalStock: 5, Availability: models.InStock},
		Status:     models.StatusPublished,
		CreatedAt:  base,
	}
	for _, m := range mods {
		m(&p)
	}
	return p
}
