package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/resources"
	"github.com/shashiranjanraj/storefront/app/search"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// CacheControl lets shared caches hold a result page briefly and serve it
// stale while revalidating.
const CacheControl = "public, s-maxage=60, stale-while-revalidate=300"

// searchFailure is the 500 body. It keeps the success shape so storefront
// clients can render an empty grid without special-casing.
type searchFailure struct {
	Message    string              `json:"message"`
	Error      string              `json:"error"`
	Products   []resources.Product `json:"products"`
	Pagination search.Pagination   `json:"pagination"`
}

type SearchController struct {
	service *services.SearchService
}

func NewSearchController(service *services.SearchService) *SearchController {
	return &SearchController{service: service}
}

// Search handles GET /api/products/search.
func (h *SearchController) Search(c *ctx.Context) {
	p := search.ParseParams(c.QueryValues()).Normalize()

	res, hit, err := h.service.Search(c.Context(), p)
	if err != nil {
		logger.WithCtx(c.Context()).Error("search failed",
			"q", p.Q,
			"category", p.Category,
			"page", p.Page,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, searchFailure{
			Message:    "Failed to search products",
			Error:      detail(err),
			Products:   []resources.Product{},
			Pagination: search.EmptyPagination(p.Page, p.Limit),
		})
		return
	}

	if hit {
		c.SetHeader("X-Cache", "HIT")
	} else {
		c.SetHeader("X-Cache", "MISS")
	}
	c.SetHeader("Cache-Control", CacheControl)
	c.JSON(http.StatusOK, res)
}

// Browse handles GET /api/categories/{slug}/products. Refinement params
// (fabric, color, minPrice, maxPrice) narrow the fetched set in memory.
func (h *SearchController) Browse(c *ctx.Context) {
	res, err := h.service.Browse(c.Context(), c.Param("slug"), search.ParseRefinement(c.QueryValues()))
	if errors.Is(err, repositories.ErrNotFound) {
		c.NotFound("Category not found")
		return
	}
	if err != nil {
		logger.WithCtx(c.Context()).Error("browse failed", "slug", c.Param("slug"), "error", err)
		c.Error(http.StatusInternalServerError, detail(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// Show handles GET /api/products/{slug} for published products.
func (h *SearchController) Show(c *ctx.Context) {
	p, err := h.service.ProductBySlug(c.Context(), c.Param("slug"))
	if errors.Is(err, repositories.ErrNotFound) {
		c.NotFound("Product not found")
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, map[string]any{"product": p})
}
