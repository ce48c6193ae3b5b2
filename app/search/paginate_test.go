package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/search"
)

func TestNewPagination(t *testing.T) {
	cases := []struct {
		name             string
		page, limit      int
		total            int64
		pages            int
		hasNext, hasPrev bool
	}{
		{"empty", 1, 24, 0, 0, false, false},
		{"single page", 1, 24, 10, 1, false, false},
		{"exact fit", 1, 5, 10, 2, true, false},
		{"ceil", 2, 5, 11, 3, true, true},
		{"last page", 3, 5, 11, 3, false, true},
		{"past the end", 9, 5, 11, 3, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := search.NewPagination(tc.page, tc.limit, tc.total)
			assert.Equal(t, tc.pages, p.TotalPages)
			assert.Equal(t, tc.hasNext, p.HasNext)
			assert.Equal(t, tc.hasPrev, p.HasPrev)
			assert.Equal(t, tc.total, p.Total)
		})
	}
}

func TestEmptyPagination(t *testing.T) {
	assert.Equal(t, search.Pagination{Page: 1, Limit: 24}, search.EmptyPagination(1, 24))
}

func TestApplyPagesAreDisjoint(t *testing.T) {
	var catalog []models.Product
	for _, n := range []string{"e", "b", "d", "a", "c", "b"} {
		catalog = append(catalog, product(n))
	}

	p := search.DefaultParams()
	p.SortBy = search.SortNameAsc
	p.Limit = 4

	p.Page = 1
	first, total := search.Apply(build(t, p), catalog)
	p.Page = 2
	second, _ := search.Apply(build(t, p), catalog)

	require.Equal(t, int64(6), total)
	require.Len(t, first, 4)
	require.Len(t, second, 2)

	seen := map[string]bool{}
	for _, pr := range append(first, second...) {
		assert.False(t, seen[pr.ID.Hex()], "duplicate %s", pr.Name)
		seen[pr.ID.Hex()] = true
	}
	assert.Len(t, seen, 6)
	assert.Equal(t, "a", first[0].Name)
	assert.Equal(t, "e", second[1].Name)
}

func TestApplyEmptyQuery(t *testing.T) {
	q := build(t, search.DefaultParams())
	q.Empty = true
	out, total := search.Apply(q, []models.Product{product("a")})
	assert.Empty(t, out)
	assert.Zero(t, total)
}

func TestApplySkipBeyondTotal(t *testing.T) {
	p := search.DefaultParams()
	p.Page = 4
	out, total := search.Apply(build(t, p), []models.Product{product("a")})
	assert.Empty(t, out)
	assert.Equal(t, int64(1), total)
}

func TestApplyNegativeSkipStartsAtFirstMatch(t *testing.T) {
	q := build(t, search.DefaultParams())
	q.Skip = -48
	out, total := search.Apply(q, []models.Product{product("a")})
	require.Len(t, out, 1)
	assert.Equal(t, int64(1), total)
}
