package controllers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/app/search"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

type api struct {
	handler    http.Handler
	products   repositories.ProductStore
	categories *repositories.MemoryCategories
	token      string
}

func newAPI(t *testing.T, products repositories.ProductStore) *api {
	t.Helper()
	categories := repositories.NewMemoryCategories()

	r := router.New()
	routes.RegisterAPI(r, routes.Services{
		Search:     services.NewSearchService(products, categories, cache.NewMemory(), time.Minute, 200),
		Catalog:    services.NewCatalogService(products, categories),
		Categories: services.NewCategoryService(categories),
	})

	token, err := auth.GenerateToken("tests", auth.RoleAdmin, time.Hour)
	require.NoError(t, err)
	return &api{handler: r.Handler(), products: products, categories: categories, token: token}
}

func (a *api) do(t *testing.T, method, target, body string, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// data decodes the admin envelope's data field into dest.
func data(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dest), rec.Body.String())
}

// seed builds Women > Sarees through the admin API and returns their ids.
func (a *api) seed(t *testing.T) (women, sarees string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/admin/categories/category", `{"name":"Women"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var w struct{ ID string }
	data(t, rec, &w)

	rec = a.do(t, http.MethodPost, "/api/admin/categories/subcategory", `{"name":"Sarees","parent":"`+w.ID+`"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var s struct{ ID string }
	data(t, rec, &s)
	return w.ID, s.ID
}

func productJSON(name, sku, category, sub string, regular float64, extra string) string {
	b := `{"name":"` + name + `","sku":"` + sku + `","category":"` + category + `","subCategory":"` + sub + `",` +
		`"regularPrice":` + jsonNumber(regular) + `,"thumbnail":"https://cdn.example.com/` + sku + `.jpg","status":"published"`
	if extra != "" {
		b += "," + extra
	}
	return b + "}"
}

func jsonNumber(f float64) string {
	out, _ := json.Marshal(f)
	return string(out)
}

func TestSearchHeadersAndCacheHit(t *testing.T) {
	a := newAPI(t, repositories.NewMemoryProducts())
	women, sarees := a.seed(t)
	rec := a.do(t, http.MethodPost, "/api/admin/products", productJSON("Banarasi Sari", "SAR-1", women, sarees, 2000, `"salePrice":1200`), true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	first := a.do(t, http.MethodGet, "/api/products/search?q=sari&sortBy=price-low", "", false)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, controllers.CacheControl, first.Header().Get("Cache-Control"))

	second := a.do(t, http.MethodGet, "/api/products/search?sortBy=price-low&q=sari", "", false)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	var body struct {
		Products []struct {
			Name           string  `json:"name"`
			EffectivePrice float64 `json:"effectivePrice"`
			Category       *struct {
				Name string `json:"name"`
			} `json:"category"`
			ChildCategory *struct{} `json:"childCategory"`
		} `json:"products"`
		Pagination search.Pagination `json:"pagination"`
		Filters    search.Params     `json:"filters"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &body))
	require.Len(t, body.Products, 1)
	assert.Equal(t, 1200.0, body.Products[0].EffectivePrice)
	require.NotNil(t, body.Products[0].Category)
	assert.Equal(t, "Women", body.Products[0].Category.Name)
	assert.Nil(t, body.Products[0].ChildCategory)
	assert.Equal(t, int64(1), body.Pagination.Total)
	assert.Equal(t, search.SortPriceLow, body.Filters.SortBy)
	assert.Contains(t, first.Body.String(), `"childCategory":null`)
}

type brokenProducts struct {
	repositories.ProductStore
	mock.Mock
}

func (m *brokenProducts) Count(ctx context.Context, q *search.Query) (int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(int64), args.Error(1)
}

func TestSearchFailurePayload(t *testing.T) {
	store := &brokenProducts{}
	store.On("Count", mock.Anything, mock.Anything).Return(int64(0), errors.New("connection refused"))
	a := newAPI(t, store)

	rec := a.do(t, http.MethodGet, "/api/products/search?page=2&limit=500", "", false)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{
		"message": "Failed to search products",
		"error": "count products: connection refused",
		"products": [],
		"pagination": {"page": 2, "limit": 100, "total": 0, "totalPages": 0, "hasNext": false, "hasPrev": false}
	}`, rec.Body.String())
}

func TestSearchUnknownCategoryIsEmpty200(t *testing.T) {
	a := newAPI(t, repositories.NewMemoryProducts())

	rec := a.do(t, http.MethodGet, "/api/products/search?category=nope", "", false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"products":[]`)
	assert.Contains(t, rec.Body.String(), `"total":0`)
}

func TestSearchHugePageIsEmpty200(t *testing.T) {
	a := newAPI(t, repositories.NewMemoryProducts())
	women, sarees := a.seed(t)
	rec := a.do(t, http.MethodPost, "/api/admin/products", productJSON("Banarasi Sari", "SAR-1", women, sarees, 2000, ""), true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/products/search?page=9223372036854775807", "", false)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Products   []json.RawMessage `json:"products"`
		Pagination search.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Products)
	assert.Equal(t, search.MaxPage, body.Pagination.Page)
	assert.Equal(t, int64(1), body.Pagination.Total)
	assert.True(t, body.Pagination.HasPrev)
	assert.False(t, body.Pagination.HasNext)
}

func TestBrowseRefinesAndReportsOptions(t *testing.T) {
	a := newAPI(t, repositories.NewMemoryProducts())
	women, sarees := a.seed(t)
	for _, body := range []string{
		productJSON("Silk Saree", "S-1", women, sarees, 5000, `"fabric":"Pure Silk","variations":[{"color":"Red","size":"Free","stock":2,"sku":"S-1-R"}]`),
		productJSON("Cotton Saree", "C-1", women, sarees, 900, `"fabric":"Cotton","variations":[{"color":"Blue","size":"Free","stock":4,"sku":"C-1-B"}]`),
	} {
		rec := a.do(t, http.MethodPost, "/api/admin/products", body, true)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := a.do(t, http.MethodGet, "/api/categories/sarees/products?fabric=silk", "", false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		Category struct{ Slug string } `json:"category"`
		Products []struct{ Name string } `json:"products"`
		Options  search.Options          `json:"options"`
		Fetched  int                     `json:"fetched"`
		Total    int                     `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "sarees", res.Category.Slug)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Silk Saree", res.Products[0].Name)
	assert.Equal(t, []string{"Blue", "Red"}, res.Options.Colors)
	assert.Equal(t, 2, res.Fetched)
	assert.Equal(t, 1, res.Total)

	rec = a.do(t, http.MethodGet, "/api/categories/nope/products", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductShowHidesDrafts(t *testing.T) {
	a := newAPI(t, repositories.NewMemoryProducts())
	women, sarees := a.seed(t)
	rec := a.do(t, http.MethodPost, "/api/admin/products", productJSON("Draft Saree", "D-1", women, sarees, 100, `"status":"draft"`), true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/products/draft-saree", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRequiresToken(t *testing.T) {
	a := newAPI(t, repositories.NewMemoryProducts())

	rec := a.do(t, http.MethodPost, "/api/admin/categories/category", `{"name":"Women"}`, false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminProductLifecycle(t *testing.T) {
	a := newAPI(t, repositories.NewMemoryProducts())
	women, sarees := a.seed(t)

	rec := a.do(t, http.MethodPost, "/api/admin/products", productJSON("Kanjivaram", "K-1", women, sarees, 4000,
		`"variations":[{"color":"Gold","size":"Free","stock":3,"sku":"K-1-G"},{"color":"Red","size":"Free","stock":2,"sku":"K-1-R"}]`), true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID        string `json:"id"`
		Inventory struct {
			TotalStock int `json:"totalStock"`
		} `json:"inventory"`
	}
	data(t, rec, &created)
	assert.Equal(t, 5, created.Inventory.TotalStock)

	// A variation SKU already used by another product conflicts.
	rec = a.do(t, http.MethodPost, "/api/admin/products", productJSON("Other", "O-1", women, sarees, 10,
		`"variations":[{"color":"Red","size":"Free","stock":1,"sku":"K-1-R"}]`), true)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/api/admin/products", `{"name":""}`, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/admin/products", productJSON("Orphan", "X-1", "65a1f0c2e4b0a1b2c3d4e5f6", sarees, 10, ""), true)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/admin/products/"+created.ID, "", true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodDelete, "/api/admin/products/"+created.ID, "", true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/admin/products/"+created.ID, "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/admin/products/not-an-id", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminCategoryRules(t *testing.T) {
	a := newAPI(t, repositories.NewMemoryProducts())
	women, _ := a.seed(t)

	rec := a.do(t, http.MethodPost, "/api/admin/categories/category", `{"name":"Women"}`, true)
	assert.Equal(t, http.StatusConflict, rec.Code, "slug is unique per level")

	rec = a.do(t, http.MethodPost, "/api/admin/categories/childcategory", `{"name":"Silk","parent":"`+women+`"}`, true)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "a root cannot parent a child category")

	rec = a.do(t, http.MethodGet, "/api/admin/categories/galaxy", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/admin/categories/category", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []struct{ Slug string }
	data(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "women", list[0].Slug)
}

func TestCategoryTree(t *testing.T) {
	a := newAPI(t, repositories.NewMemoryProducts())
	a.seed(t)
	require.NoError(t, a.categories.Create(context.Background(), models.LevelCategory,
		&models.Category{Name: "Hidden", Slug: "hidden", Status: models.CategoryInactive}))

	rec := a.do(t, http.MethodGet, "/api/categories", "", false)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Categories []struct {
			Slug     string `json:"slug"`
			Children []struct {
				Slug string `json:"slug"`
			} `json:"children"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Categories, 1)
	assert.Equal(t, "women", res.Categories[0].Slug)
	require.Len(t, res.Categories[0].Children, 1)
	assert.Equal(t, "sarees", res.Categories[0].Children[0].Slug)
}
