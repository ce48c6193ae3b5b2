package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the product lifecycle state. Only StatusPublished products are
// visible to storefront queries.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Availability is the categorical stock state, independent of the count.
type Availability string

const (
	InStock    Availability = "in_stock"
	OutOfStock Availability = "out_of_stock"
	PreOrder   Availability = "pre_order"
)

type DiscountType string

const (
	DiscountNone       DiscountType = "none"
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

// Product is the canonical catalog document.
type Product struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty"           json:"id"`
	Name            string              `bson:"name"                    json:"name"`
	Slug            string              `bson:"slug"                    json:"slug"`
	SKU             string              `bson:"sku"                     json:"sku"`
	Brand           string              `bson:"brand,omitempty"         json:"brand,omitempty"`
	CategoryID      primitive.ObjectID  `bson:"category"                json:"category"`
	SubCategoryID   *primitive.ObjectID `bson:"subCategory,omitempty"   json:"subCategory,omitempty"`
	ChildCategoryID *primitive.ObjectID `bson:"childCategory,omitempty" json:"childCategory,omitempty"`

	Price      Price       `bson:"price"      json:"price"`
	Inventory  Inventory   `bson:"inventory"  json:"inventory"`
	Variations []Variation `bson:"variations" json:"variations"`

	Fabric           string `bson:"fabric,omitempty"           json:"fabric,omitempty"`
	ShortDescription string `bson:"shortDescription,omitempty" json:"shortDescription,omitempty"`
	Description      string `bson:"description,omitempty"      json:"description,omitempty"`
	WorkType         string `bson:"workType,omitempty"         json:"workType,omitempty"`
	Fit              string `bson:"fit,omitempty"              json:"fit,omitempty"`
	WashCare         string `bson:"washCare,omitempty"         json:"washCare,omitempty"`
	Origin           string `bson:"origin,omitempty"           json:"origin,omitempty"`

	Images Images   `bson:"images" json:"images"`
	Flags  Flags    `bson:"flags"  json:"flags"`
	Tags   []string `bson:"tags"   json:"tags"`
	Status Status   `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Price holds the regular price and an optional sale price. A nil Sale is
// stored as null.
type Price struct {
	Regular      float64      `bson:"regular"      json:"regular"`
	Sale         *float64     `bson:"sale"         json:"sale"`
	DiscountType DiscountType `bson:"discountType" json:"discountType"`
}

// Effective is the sale price when one is set, otherwise the regular price.
func (p Price) Effective() float64 {
	if p.Sale != nil {
		return *p.Sale
	}
	return p.Regular
}

type Inventory struct {
	TotalStock        int          `bson:"totalStock"        json:"totalStock"`
	LowStockThreshold int          `bson:"lowStockThreshold" json:"lowStockThreshold"`
	Availability      Availability `bson:"availability"      json:"availability"`
}

// Purchasable reports whether the product may be sold right now: the
// availability flag and the count must both agree.
func (i Inventory) Purchasable() bool {
	return i.Availability == InStock && i.TotalStock > 0
}

// Variation is one color/size/material combination with its own stock and
// SKU. Price overrides the product price when set.
type Variation struct {
	Color    string   `bson:"color"           json:"color"`
	Size     string   `bson:"size"            json:"size"`
	Material string   `bson:"material,omitempty" json:"material,omitempty"`
	Stock    int      `bson:"stock"           json:"stock"`
	Price    *float64 `bson:"price,omitempty" json:"price,omitempty"`
	SKU      string   `bson:"sku"             json:"sku"`
}

type Images struct {
	Thumbnail string   `bson:"thumbnail"       json:"thumbnail"`
	Gallery   []string `bson:"gallery"         json:"gallery"`
	Video     string   `bson:"video,omitempty" json:"video,omitempty"`
}

type Flags struct {
	Featured       bool `bson:"featured"       json:"featured"`
	Trending       bool `bson:"trending"       json:"trending"`
	Recommended    bool `bson:"recommended"    json:"recommended"`
	WhatsNew       bool `bson:"whatsNew"       json:"whatsNew"`
	ShowOnHomepage bool `bson:"showOnHomepage" json:"showOnHomepage"`
}

// EffectivePrice is shorthand for p.Price.Effective().
func (p Product) EffectivePrice() float64 {
	return p.Price.Effective()
}

// SKUs returns the product SKU followed by every variation SKU.
func (p Product) SKUs() []string {
	out := make([]string, 0, len(p.Variations)+1)
	if p.SKU != "" {
		out = append(out, p.SKU)
	}
	for _, v := range p.Variations {
		if v.SKU != "" {
			out = append(out, v.SKU)
		}
	}
	return out
}
