package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/search"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/cache"
)

type fixture struct {
	products   *repositories.MemoryProducts
	categories *repositories.MemoryCategories
	cache      *cache.Memory
	svc        *services.SearchService
	women      models.Category
	sarees     models.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		products:   repositories.NewMemoryProducts(),
		categories: repositories.NewMemoryCategories(),
		cache:      cache.NewMemory(),
	}
	f.women = models.Category{Name: "Women", Slug: "women", Status: models.CategoryActive}
	require.NoError(t, f.categories.Create(ctx, models.LevelCategory, &f.women))
	f.sarees = models.Category{Name: "Sarees", Slug: "sarees", Status: models.CategoryActive, ParentID: &f.women.ID}
	require.NoError(t, f.categories.Create(ctx, models.LevelSubCategory, &f.sarees))

	f.svc = services.NewSearchService(f.products, f.categories, f.cache, time.Minute, 200)
	return f
}

func (f *fixture) add(t *testing.T, name string, regular float64, sale *float64, mods ...func(*models.Product)) models.Product {
	t.Helper()
	p := models.Product{
		Name:          name,
		Slug:          services.Slugify(name),
		SKU:           "SKU-" + services.Slugify(name),
		CategoryID:    f.women.ID,
		SubCategoryID: &f.sarees.ID,
		Price:         models.Price{Regular: regular, Sale: sale},
		Inventory:     models.Inventory{TotalStock: 3, Availability: models.InStock},
		Status:        models.StatusPublished,
		CreatedAt:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, m := range mods {
		m(&p)
	}
	require.NoError(t, f.products.Create(context.Background(), &p))
	return p
}

func ptr(f float64) *float64 { return &f }

func TestSearchSariPriceScenario(t *testing.T) {
	f := newFixture(t)
	f.add(t, "Banarasi Sari", 2000, ptr(1200))
	f.add(t, "Kanjivaram Sari", 4000, ptr(3000))
	f.add(t, "Patola Sari", 12000, ptr(9000))

	p := search.DefaultParams()
	p.Q, p.MinPrice, p.MaxPrice = "sari", 1000, 5000
	p.SortBy, p.Page, p.Limit = search.SortPriceLow, 1, 2

	res, hit, err := f.svc.Search(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, res.Products, 2)
	assert.Equal(t, 1200.0, res.Products[0].EffectivePrice)
	assert.Equal(t, 3000.0, res.Products[1].EffectivePrice)
	assert.Equal(t, search.Pagination{Page: 1, Limit: 2, Total: 2, TotalPages: 1}, res.Pagination)

	require.NotNil(t, res.Products[0].Category)
	assert.Equal(t, "women", res.Products[0].Category.Slug)
	require.NotNil(t, res.Products[0].SubCategory)
	assert.Equal(t, "sarees", res.Products[0].SubCategory.Slug)
	assert.Nil(t, res.Products[0].ChildCategory)
}

func TestSearchUnknownCategoryIsEmptySuccess(t *testing.T) {
	f := newFixture(t)
	f.add(t, "Banarasi Sari", 2000, nil)

	p := search.DefaultParams()
	p.Category = "nonexistent-slug"
	res, _, err := f.svc.Search(context.Background(), p)

	require.NoError(t, err)
	assert.Empty(t, res.Products)
	assert.NotNil(t, res.Products)
	assert.Equal(t, int64(0), res.Pagination.Total)
	assert.False(t, res.Pagination.HasNext)
}

func TestSearchHugePageIsEmptySuccess(t *testing.T) {
	f := newFixture(t)
	f.add(t, "Banarasi Sari", 2000, nil)

	p := search.ParseParams(map[string][]string{"page": {"9223372036854775807"}})
	res, _, err := f.svc.Search(context.Background(), p)

	require.NoError(t, err)
	assert.Empty(t, res.Products)
	assert.NotNil(t, res.Products)
	assert.Equal(t, int64(1), res.Pagination.Total)
	assert.True(t, res.Pagination.HasPrev)
	assert.False(t, res.Pagination.HasNext)
}

func TestSearchBySubCategorySlug(t *testing.T) {
	f := newFixture(t)
	f.add(t, "Banarasi Sari", 2000, nil)
	f.add(t, "Cotton Kurta", 900, nil, func(p *models.Product) { p.SubCategoryID = nil })

	p := search.DefaultParams()
	p.Category = "sarees"
	res, _, err := f.svc.Search(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Banarasi Sari", res.Products[0].Name)
}

func TestSearchIsServedFromCacheWithinTTL(t *testing.T) {
	f := newFixture(t)
	f.add(t, "Banarasi Sari", 2000, ptr(1500))

	p := search.DefaultParams()
	p.Q = "sari"

	first, hit, err := f.svc.Search(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, hit)

	// A write after the first read is not visible until the entry expires.
	f.add(t, "Chanderi Sari", 1800, nil)

	second, hit, err := f.svc.Search(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, hit)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.JSONEq(t, string(a), string(b))
	assert.Equal(t, string(a), string(b))
	assert.Len(t, second.Products, 1)
}

func TestSearchCacheKeyIgnoresTagOrder(t *testing.T) {
	f := newFixture(t)
	f.add(t, "Banarasi Sari", 2000, nil, func(p *models.Product) { p.Tags = []string{"silk", "wedding"} })

	a := search.DefaultParams()
	a.Tags = []string{"wedding", "linen"}
	b := search.DefaultParams()
	b.Tags = []string{"linen", "wedding", "linen"}

	_, hit, err := f.svc.Search(context.Background(), a)
	require.NoError(t, err)
	assert.False(t, hit)
	res, hit, err := f.svc.Search(context.Background(), b)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Len(t, res.Products, 1)
}

func TestSearchTagsOR(t *testing.T) {
	f := newFixture(t)
	f.add(t, "Banarasi Sari", 2000, nil, func(p *models.Product) { p.Tags = []string{"silk", "wedding"} })

	p := search.DefaultParams()
	p.Tags = []string{"wedding", "linen"}
	res, _, err := f.svc.Search(context.Background(), p)
	require.NoError(t, err)
	assert.Len(t, res.Products, 1)

	p.Tags = []string{"linen", "velvet"}
	res, _, err = f.svc.Search(context.Background(), p)
	require.NoError(t, err)
	assert.Empty(t, res.Products)
}

func TestSearchPagesAreDisjoint(t *testing.T) {
	f := newFixture(t)
	for _, n := range []string{"Anarkali", "Bandhani", "Chikankari", "Dhoti", "Ikat"} {
		f.add(t, n, 1000, nil)
	}
	p := search.DefaultParams()
	p.Limit = 2

	ids := map[string]bool{}
	for page := 1; page <= 3; page++ {
		p.Page = page
		res, _, err := f.svc.Search(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, page < 3, res.Pagination.HasNext)
		assert.Equal(t, page > 1, res.Pagination.HasPrev)
		for _, pr := range res.Products {
			assert.False(t, ids[pr.ID])
			ids[pr.ID] = true
		}
	}
	assert.Len(t, ids, 5)
}

func TestSearchInStockExcludesZeroAndUnavailable(t *testing.T) {
	f := newFixture(t)
	f.add(t, "Ready", 1000, nil)
	f.add(t, "Empty Shelf", 1000, nil, func(p *models.Product) { p.Inventory.TotalStock = 0 })
	f.add(t, "Preorder", 1000, nil, func(p *models.Product) { p.Inventory.Availability = models.PreOrder })

	p := search.DefaultParams()
	p.InStock = true
	res, _, err := f.svc.Search(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Ready", res.Products[0].Name)
}

type failingProducts struct {
	repositories.ProductStore
	mock.Mock
}

func (m *failingProducts) Count(ctx context.Context, q *search.Query) (int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(int64), args.Error(1)
}

func (m *failingProducts) Find(ctx context.Context, q *search.Query) ([]models.Product, error) {
	args := m.Called(ctx, q)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Error(1)
}

func TestSearchFailureIsNotCached(t *testing.T) {
	store := &failingProducts{}
	boom := errors.New("server selection timeout")
	store.On("Count", mock.Anything, mock.Anything).Return(int64(0), boom).Twice()

	mem := cache.NewMemory()
	svc := services.NewSearchService(store, repositories.NewMemoryCategories(), mem, time.Minute, 200)

	for i := 0; i < 2; i++ {
		_, hit, err := svc.Search(context.Background(), search.DefaultParams())
		assert.ErrorIs(t, err, boom)
		assert.False(t, hit)
	}
	assert.Zero(t, mem.Len())
	store.AssertNumberOfCalls(t, "Count", 2)
	store.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
}

func TestSearchRecomputesAfterTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mem := cache.NewMemory(cache.WithClock(func() time.Time { return now }))
	products := repositories.NewMemoryProducts()
	svc := services.NewSearchService(products, repositories.NewMemoryCategories(), mem, time.Minute, 200)

	_, hit, err := svc.Search(context.Background(), search.DefaultParams())
	require.NoError(t, err)
	assert.False(t, hit)

	now = now.Add(30 * time.Second)
	_, hit, _ = svc.Search(context.Background(), search.DefaultParams())
	assert.True(t, hit)

	now = now.Add(31 * time.Second)
	_, hit, _ = svc.Search(context.Background(), search.DefaultParams())
	assert.False(t, hit)
}

func TestBrowseRefinesFetchedSet(t *testing.T) {
	f := newFixture(t)
	f.add(t, "Banarasi Silk", 4000, nil, func(p *models.Product) {
		p.Fabric = "Silk"
		p.Variations = []models.Variation{{Color: "Red", Size: "Free", Stock: 1, SKU: "BS-R"}}
	})
	f.add(t, "Cotton Saree", 1200, nil, func(p *models.Product) {
		p.Fabric = "Cotton"
		p.Variations = []models.Variation{{Color: "Indigo", Size: "Free", Stock: 1, SKU: "CS-I"}}
	})
	f.add(t, "Hidden", 1000, nil, func(p *models.Product) { p.Status = models.StatusDraft })

	res, err := f.svc.Browse(context.Background(), "sarees", search.Refinement{Fabric: "silk"})
	require.NoError(t, err)

	assert.Equal(t, "sarees", res.Category.Slug)
	assert.Equal(t, 2, res.Fetched)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Banarasi Silk", res.Products[0].Name)
	assert.Equal(t, []string{"Cotton", "Silk"}, res.Options.Fabrics)
	assert.Equal(t, []string{"Indigo", "Red"}, res.Options.Colors)
}

func TestBrowseUnknownCategory(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Browse(context.Background(), "nope", search.Refinement{})
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = f.svc.Browse(context.Background(), primitive.NewObjectID().Hex(), search.Refinement{})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestProductBySlugHidesUnpublished(t *testing.T) {
	f := newFixture(t)
	f.add(t, "Live", 1000, nil)
	f.add(t, "Draft", 1000, nil, func(p *models.Product) { p.Status = models.StatusDraft })

	got, err := f.svc.ProductBySlug(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, "Live", got.Name)

	_, err = f.svc.ProductBySlug(context.Background(), "draft")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
