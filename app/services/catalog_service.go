package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/resources"
	"github.com/shashiranjanraj/storefront/pkg/collection"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// VariationInput is one submitted variation row. Rows missing color, size,
// stock or SKU, or with negative stock, are dropped without error.
type VariationInput struct {
	Color    string   `json:"color"`
	Size     string   `json:"size"`
	Material string   `json:"material"`
	Stock    *int     `json:"stock"`
	Price    *float64 `json:"price"`
	SKU      string   `json:"sku"`
}

func (v VariationInput) complete() bool {
	return strings.TrimSpace(v.Color) != "" &&
		strings.TrimSpace(v.Size) != "" &&
		v.Stock != nil && *v.Stock >= 0 &&
		strings.TrimSpace(v.SKU) != ""
}

// ProductInput is the admin create/update payload.
type ProductInput struct {
	Name          string `json:"name"          validate:"required,max=200"`
	Slug          string `json:"slug"          validate:"nullable,alpha_dash,max=200"`
	SKU           string `json:"sku"           validate:"required,max=64"`
	Brand         string `json:"brand"`
	Category      string `json:"category"      validate:"required,objectid"`
	SubCategory   string `json:"subCategory"   validate:"nullable,objectid"`
	ChildCategory string `json:"childCategory" validate:"nullable,objectid"`

	RegularPrice float64  `json:"regularPrice" validate:"required,gt=0"`
	SalePrice    *float64 `json:"salePrice"    validate:"nullable,gte=0"`
	DiscountType string   `json:"discountType" validate:"nullable,in=none,percentage,flat"`

	TotalStock        *int   `json:"totalStock"        validate:"nullable,gte=0"`
	LowStockThreshold int    `json:"lowStockThreshold" validate:"gte=0"`
	Availability      string `json:"availability"      validate:"nullable,in=in_stock,out_of_stock,pre_order"`

	Variations []VariationInput `json:"variations"`

	Fabric           string `json:"fabric"`
	ShortDescription string `json:"shortDescription" validate:"max=500"`
	Description      string `json:"description"`
	WorkType         string `json:"workType"`
	Fit              string `json:"fit"`
	WashCare         string `json:"washCare"`
	Origin           string `json:"origin"`

	Thumbnail string   `json:"thumbnail" validate:"required,url"`
	Gallery   []string `json:"gallery"`
	Video     string   `json:"video"     validate:"nullable,url"`

	Flags  models.Flags `json:"flags"`
	Tags   []string     `json:"tags"`
	Status string       `json:"status" validate:"nullable,in=draft,published,archived"`
}

// CatalogService is the admin write path for products.
type CatalogService struct {
	products   repositories.ProductStore
	categories repositories.CategoryStore
	now        func() time.Time
}

func NewCatalogService(products repositories.ProductStore, categories repositories.CategoryStore) *CatalogService {
	return &CatalogService{products: products, categories: categories, now: time.Now}
}

// Get loads a product by id regardless of status.
func (s *CatalogService) Get(ctx context.Context, id string) (models.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.Product{}, err
	}
	return s.products.FindByID(ctx, oid)
}

// Create validates references and uniqueness, derives stock and persists
// a new product.
func (s *CatalogService) Create(ctx context.Context, in ProductInput) (models.Product, error) {
	p := models.Product{CreatedAt: s.now().UTC()}
	if err := s.apply(ctx, &p, in); err != nil {
		return models.Product{}, err
	}
	if err := s.products.Create(ctx, &p); err != nil {
		return models.Product{}, s.writeErr(err)
	}
	logger.WithCtx(ctx).Info("product created", "id", p.ID.Hex(), "sku", p.SKU, "slug", p.Slug)
	return p, nil
}

// Update replaces the editable fields of an existing product. An empty
// slug keeps the current one.
func (s *CatalogService) Update(ctx context.Context, id string, in ProductInput) (models.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.Product{}, err
	}
	p, err := s.products.FindByID(ctx, oid)
	if err != nil {
		return models.Product{}, err
	}
	if in.Slug == "" {
		in.Slug = p.Slug
	}
	if err := s.apply(ctx, &p, in); err != nil {
		return models.Product{}, err
	}
	if err := s.products.Update(ctx, &p); err != nil {
		return models.Product{}, s.writeErr(err)
	}
	logger.WithCtx(ctx).Info("product updated", "id", p.ID.Hex())
	return p, nil
}

// Delete removes a product permanently.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, oid); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("product deleted", "id", id)
	return nil
}

func (s *CatalogService) apply(ctx context.Context, p *models.Product, in ProductInput) error {
	if err := s.applyCategories(ctx, p, in); err != nil {
		return err
	}

	variations := collection.Filter(in.Variations, VariationInput.complete)
	p.Variations = collection.Map(variations, func(v VariationInput) models.Variation {
		return models.Variation{
			Color:    strings.TrimSpace(v.Color),
			Size:     strings.TrimSpace(v.Size),
			Material: strings.TrimSpace(v.Material),
			Stock:    *v.Stock,
			Price:    v.Price,
			SKU:      strings.TrimSpace(v.SKU),
		}
	})

	p.Name = strings.TrimSpace(in.Name)
	p.SKU = strings.TrimSpace(in.SKU)
	if err := s.checkSKUs(ctx, *p); err != nil {
		return err
	}

	base := Slugify(in.Slug)
	if base == "" {
		base = Slugify(in.Name)
	}
	if base == "" {
		base = fallbackSlug(p.Slug, "product")
	}
	if base != p.Slug {
		slug, err := uniqueSlug(ctx, base, func(ctx context.Context, c string) (bool, error) {
			return s.products.SlugExists(ctx, c, p.ID)
		})
		if err != nil {
			return fmt.Errorf("check slug: %w", err)
		}
		p.Slug = slug
	}

	p.Brand = strings.TrimSpace(in.Brand)
	p.Price = models.Price{Regular: in.RegularPrice, Sale: in.SalePrice, DiscountType: models.DiscountType(in.DiscountType)}
	if p.Price.DiscountType == "" || p.Price.Sale == nil {
		p.Price.DiscountType = models.DiscountNone
	}

	p.Inventory = models.Inventory{
		TotalStock:        totalStock(in.TotalStock, p.Variations),
		LowStockThreshold: in.LowStockThreshold,
		Availability:      models.Availability(in.Availability),
	}
	if p.Inventory.Availability == "" {
		p.Inventory.Availability = models.OutOfStock
		if p.Inventory.TotalStock > 0 {
			p.Inventory.Availability = models.InStock
		}
	}

	p.Fabric = in.Fabric
	p.ShortDescription = in.ShortDescription
	p.Description = in.Description
	p.WorkType = in.WorkType
	p.Fit = in.Fit
	p.WashCare = in.WashCare
	p.Origin = in.Origin
	p.Images = models.Images{Thumbnail: in.Thumbnail, Gallery: in.Gallery, Video: in.Video}
	p.Flags = in.Flags
	p.Tags = collection.Filter(in.Tags, func(t string) bool { return strings.TrimSpace(t) != "" })
	p.Status = models.Status(in.Status)
	if p.Status == "" {
		p.Status = models.StatusDraft
	}
	p.UpdatedAt = s.now().UTC()
	return nil
}

// totalStock is the sum of variation stock when variations exist,
// otherwise the supplied figure.
func totalStock(supplied *int, variations []models.Variation) int {
	if len(variations) > 0 {
		return collection.SumInt(variations, func(v models.Variation) int { return v.Stock })
	}
	if supplied != nil {
		return *supplied
	}
	return 0
}

func (s *CatalogService) checkSKUs(ctx context.Context, p models.Product) error {
	skus := p.SKUs()
	if dup := collection.Duplicates(skus); len(dup) > 0 {
		return fmt.Errorf("%w: %s", ErrSKUTaken, strings.Join(dup, ", "))
	}
	taken, err := s.products.SKUsTaken(ctx, skus, p.ID)
	if err != nil {
		return fmt.Errorf("check skus: %w", err)
	}
	if len(taken) > 0 {
		return fmt.Errorf("%w: %s", ErrSKUTaken, strings.Join(taken, ", "))
	}
	return nil
}

func (s *CatalogService) applyCategories(ctx context.Context, p *models.Product, in ProductInput) error {
	root, err := s.mustExist(ctx, models.LevelCategory, in.Category)
	if err != nil {
		return err
	}
	if root == nil {
		return fmt.Errorf("%w: category is required", ErrParentNotFound)
	}
	sub, err := s.mustExist(ctx, models.LevelSubCategory, in.SubCategory)
	if err != nil {
		return err
	}
	child, err := s.mustExist(ctx, models.LevelChildCategory, in.ChildCategory)
	if err != nil {
		return err
	}

	// The refs must form one path down the hierarchy.
	if sub != nil && !childOf(*sub, root.ID) {
		return fmt.Errorf("%w: subcategory %s is not under category %s", ErrParentNotFound, sub.ID.Hex(), root.ID.Hex())
	}
	if child != nil {
		if sub == nil {
			return fmt.Errorf("%w: childcategory requires a subcategory", ErrParentNotFound)
		}
		if !childOf(*child, sub.ID) {
			return fmt.Errorf("%w: childcategory %s is not under subcategory %s", ErrParentNotFound, child.ID.Hex(), sub.ID.Hex())
		}
	}

	p.CategoryID = root.ID
	p.SubCategoryID = idOf(sub)
	p.ChildCategoryID = idOf(child)
	return nil
}

// mustExist loads an optional category at level. An empty id yields nil.
func (s *CatalogService) mustExist(ctx context.Context, level models.Level, id string) (*models.Category, error) {
	if id == "" {
		return nil, nil
	}
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c, err := s.categories.FindByID(ctx, level, oid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s %s", ErrParentNotFound, level, id)
		}
		return nil, err
	}
	return &c, nil
}

func childOf(c models.Category, parent primitive.ObjectID) bool {
	return c.ParentID != nil && *c.ParentID == parent
}

func idOf(c *models.Category) *primitive.ObjectID {
	if c == nil {
		return nil
	}
	id := c.ID
	return &id
}

// writeErr maps a unique-index violation that slipped past the pre-checks
// (a concurrent writer) onto the SKU conflict.
func (s *CatalogService) writeErr(err error) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return fmt.Errorf("%w: %v", ErrSKUTaken, err)
	}
	return err
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// Resource formats p for the API with its category refs resolved.
func (s *CatalogService) Resource(ctx context.Context, p models.Product) (resources.Product, error) {
	refs, err := resources.LoadRefs(ctx, s.categories, []models.Product{p})
	if err != nil {
		return resources.Product{}, err
	}
	return resources.ProductOf(p, refs), nil
}
