package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/resources"
	"github.com/shashiranjanraj/storefront/app/search"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// Result is one computed search page. It is what the cache stores.
type Result struct {
	Products   []resources.Product `json:"products"`
	Pagination search.Pagination   `json:"pagination"`
	Filters    search.Params       `json:"filters"`
}

// BrowseResult is a category page after refinement.
type BrowseResult struct {
	Category   *resources.Ref      `json:"category"`
	Products   []resources.Product `json:"products"`
	Options    search.Options      `json:"options"`
	Refinement search.Refinement   `json:"refinement"`
	Fetched    int                 `json:"fetched"`
	Total      int                 `json:"total"`
}

// SearchService runs storefront product searches through the result cache.
type SearchService struct {
	products    repositories.ProductStore
	categories  repositories.CategoryStore
	cache       cache.Store
	ttl         time.Duration
	browseLimit int
}

func NewSearchService(products repositories.ProductStore, categories repositories.CategoryStore, store cache.Store, ttl time.Duration, browseLimit int) *SearchService {
	if browseLimit <= 0 {
		browseLimit = 200
	}
	return &SearchService{
		products:    products,
		categories:  categories,
		cache:       store,
		ttl:         ttl,
		browseLimit: browseLimit,
	}
}

// Search returns one page for p and whether it was served from cache.
// Failures are never cached; a store error surfaces unchanged.
func (s *SearchService) Search(ctx context.Context, p search.Params) (Result, bool, error) {
	p = p.Normalize()
	res, hit, err := cache.Remember(ctx, s.cache, p.CacheKey(), s.ttl, func(ctx context.Context) (Result, error) {
		return s.compute(ctx, p)
	})
	if err != nil {
		metrics.SearchFailures.Inc()
		return Result{}, false, err
	}
	return res, hit, nil
}

func (s *SearchService) compute(ctx context.Context, p search.Params) (Result, error) {
	res := Result{Products: []resources.Product{}, Filters: p}

	q, err := search.Build(ctx, p, s.categories)
	if err != nil {
		return res, err
	}
	if q.Empty {
		res.Pagination = search.NewPagination(p.Page, p.Limit, 0)
		return res, nil
	}

	total, err := s.products.Count(ctx, q)
	if err != nil {
		return res, fmt.Errorf("count products: %w", err)
	}
	res.Pagination = search.NewPagination(p.Page, p.Limit, total)

	if total > q.Skip {
		page, err := s.products.Find(ctx, q)
		if err != nil {
			return res, fmt.Errorf("find products: %w", err)
		}
		refs, err := resources.LoadRefs(ctx, s.categories, page)
		if err != nil {
			return res, err
		}
		res.Products = resources.Products(page, refs)
	}

	metrics.SearchResults.Observe(float64(total))
	logger.WithCtx(ctx).Debug("search computed", "q", p.Q, "category", p.Category, "total", total, "page", p.Page)
	return res, nil
}

// Browse fetches a category's products once, derives the refinement options
// from that fetched set and applies r to it. An unknown slug is
// repositories.ErrNotFound.
func (s *SearchService) Browse(ctx context.Context, slug string, r search.Refinement) (BrowseResult, error) {
	p := search.DefaultParams()
	p.Category = slug
	p.Limit = s.browseLimit

	q, err := search.Build(ctx, p, s.categories)
	if err != nil {
		return BrowseResult{}, err
	}
	if q.Empty || q.Category == nil {
		return BrowseResult{}, repositories.ErrNotFound
	}

	node, err := s.categories.FindByID(ctx, q.Category.Level, q.Category.ID)
	if err != nil {
		return BrowseResult{}, err
	}

	fetched, err := s.products.Find(ctx, q)
	if err != nil {
		return BrowseResult{}, fmt.Errorf("fetch category products: %w", err)
	}
	refined := search.Refine(fetched, r)

	refs, err := resources.LoadRefs(ctx, s.categories, refined)
	if err != nil {
		return BrowseResult{}, err
	}

	return BrowseResult{
		Category:   &resources.Ref{ID: node.ID.Hex(), Name: node.Name, Slug: node.Slug},
		Products:   resources.Products(refined, refs),
		Options:    search.OptionsOf(fetched),
		Refinement: r,
		Fetched:    len(fetched),
		Total:      len(refined),
	}, nil
}

// ProductBySlug returns a published product formatted for the storefront.
func (s *SearchService) ProductBySlug(ctx context.Context, slug string) (resources.Product, error) {
	p, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return resources.Product{}, err
	}
	if p.Status != models.StatusPublished {
		return resources.Product{}, repositories.ErrNotFound
	}
	refs, err := resources.LoadRefs(ctx, s.categories, []models.Product{p})
	if err != nil {
		return resources.Product{}, err
	}
	return resources.ProductOf(p, refs), nil
}
