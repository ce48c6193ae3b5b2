package search

import (
	"sort"

	"github.com/shashiranjanraj/storefront/app/models"
)

// Product is the catalog document type the in-memory helpers operate on.
type Product = models.Product

// Pagination is the page envelope returned with every result set.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPagination derives the page count and neighbour flags from the
// current page and the total match count.
func NewPagination(page, limit int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	pages := 0
	if limit > 0 && total > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: pages,
		HasNext:    page < pages,
		HasPrev:    page > 1,
	}
}

// EmptyPagination is the zeroed envelope for a failed request.
func EmptyPagination(page, limit int) Pagination {
	return Pagination{Page: page, Limit: limit}
}

// Apply filters, orders and slices products in memory. It returns the page
// and the total number of matches before slicing.
func Apply(q *Query, products []Product) ([]Product, int64) {
	if q.Empty {
		return []Product{}, 0
	}
	matched := make([]Product, 0, len(products))
	for _, p := range products {
		if q.Matches(p) {
			matched = append(matched, p)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return q.Less(matched[i], matched[j]) })

	total := int64(len(matched))
	start := q.Skip
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	return matched[start:end], total
}
