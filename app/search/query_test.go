package search_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/search"
)

type stubResolver struct {
	matches map[string]search.CategoryMatch
	err     error
	calls   int
}

func (s *stubResolver) ResolveSlug(_ context.Context, slug string) (search.CategoryMatch, bool, error) {
	s.calls++
	if s.err != nil {
		return search.CategoryMatch{}, false, s.err
	}
	m, ok := s.matches[slug]
	return m, ok, nil
}

func build(t *testing.T, p search.Params) *search.Query {
	t.Helper()
	q, err := search.Build(context.Background(), p.Normalize(), nil)
	require.NoError(t, err)
	return q
}

func TestBuildUsesObjectIDDirectly(t *testing.T) {
	id := primitive.NewObjectID()
	r := &stubResolver{}
	p := search.DefaultParams()
	p.Category = id.Hex()

	q, err := search.Build(context.Background(), p, r)
	require.NoError(t, err)
	require.NotNil(t, q.Category)
	assert.Equal(t, id, q.Category.ID)
	assert.Equal(t, models.LevelCategory, q.Category.Level)
	assert.Zero(t, r.calls)
}

func TestBuildResolvesSlug(t *testing.T) {
	id := primitive.NewObjectID()
	r := &stubResolver{matches: map[string]search.CategoryMatch{
		"sarees": {Level: models.LevelSubCategory, ID: id},
	}}
	p := search.DefaultParams()
	p.Category = "sarees"

	q, err := search.Build(context.Background(), p, r)
	require.NoError(t, err)
	assert.False(t, q.Empty)
	assert.Equal(t, id, q.Category.ID)
	assert.Equal(t, 1, r.calls)
}

func TestBuildUnknownSlugIsEmptyNotError(t *testing.T) {
	p := search.DefaultParams()
	p.Category = "nonexistent-slug"

	q, err := search.Build(context.Background(), p, &stubResolver{})
	require.NoError(t, err)
	assert.True(t, q.Empty)
}

func TestBuildPropagatesResolverFailure(t *testing.T) {
	boom := errors.New("connection reset")
	p := search.DefaultParams()
	p.Category = "sarees"

	_, err := search.Build(context.Background(), p, &stubResolver{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestBuildPageWindow(t *testing.T) {
	p := search.DefaultParams()
	p.Page, p.Limit = 3, 10
	q := build(t, p)
	assert.Equal(t, int64(20), q.Skip)
	assert.Equal(t, int64(10), q.Limit)
}

func TestMatchesOnlyPublished(t *testing.T) {
	q := build(t, search.DefaultParams())
	assert.True(t, q.Matches(product("a")))
	assert.False(t, q.Matches(product("b", func(p *models.Product) { p.Status = models.StatusDraft })))
	assert.False(t, q.Matches(product("c", func(p *models.Product) { p.Status = models.StatusArchived })))
}

func TestMatchesTextSubstringAcrossFields(t *testing.T) {
	p := search.DefaultParams()
	p.Q = "SARI"
	q := build(t, p)

	assert.True(t, q.Matches(product("Banarasi Sari")))
	assert.True(t, q.Matches(product("sarishop")))
	assert.True(t, q.Matches(product("x", func(p *models.Product) { p.Brand = "Sari House" })))
	assert.True(t, q.Matches(product("y", func(p *models.Product) { p.Tags = []string{"bridal-sari"} })))
	assert.True(t, q.Matches(product("z", func(p *models.Product) { p.Description = "a woven sari" })))
	assert.False(t, q.Matches(product("Kurta")))
}

func TestMatchesTextIsLiteral(t *testing.T) {
	p := search.DefaultParams()
	p.Q = "a.b"
	q := build(t, p)

	assert.True(t, q.Matches(product("a.b set")))
	assert.False(t, q.Matches(product("axb set")))
}

func TestMatchesEffectivePriceInclusive(t *testing.T) {
	p := search.DefaultParams()
	p.MinPrice, p.MaxPrice = 1000, 5000
	q := build(t, p)

	onSale := product("sale", func(p *models.Product) { p.Price = price(9000, 3000) })
	regular := product("reg", func(p *models.Product) { p.Price = price(9000) })
	edgeLow := product("low", func(p *models.Product) { p.Price = price(1000) })
	edgeHigh := product("high", func(p *models.Product) { p.Price = price(6000, 5000) })

	assert.True(t, q.Matches(onSale))
	assert.False(t, q.Matches(regular))
	assert.True(t, q.Matches(edgeLow))
	assert.True(t, q.Matches(edgeHigh))
}

func TestMatchesInStockNeedsBothConditions(t *testing.T) {
	p := search.DefaultParams()
	p.InStock = true
	q := build(t, p)

	assert.True(t, q.Matches(product("ok")))
	assert.False(t, q.Matches(product("zero", func(p *models.Product) { p.Inventory.TotalStock = 0 })))
	assert.False(t, q.Matches(product("flag", func(p *models.Product) { p.Inventory.Availability = models.OutOfStock })))
	assert.False(t, q.Matches(product("pre", func(p *models.Product) { p.Inventory.Availability = models.PreOrder })))
}

func TestMatchesTagsOR(t *testing.T) {
	silk := product("silk", func(p *models.Product) { p.Tags = []string{"silk", "wedding"} })

	p := search.DefaultParams()
	p.Tags = []string{"wedding", "linen"}
	assert.True(t, build(t, p).Matches(silk))

	p.Tags = []string{"linen", "velvet"}
	assert.False(t, build(t, p).Matches(silk))
}

func TestMatchesCategoryLevel(t *testing.T) {
	sub := primitive.NewObjectID()
	inSub := product("in", func(p *models.Product) { p.SubCategoryID = &sub })
	outside := product("out")

	q := build(t, search.DefaultParams())
	q.Category = &search.CategoryMatch{Level: models.LevelSubCategory, ID: sub}

	assert.True(t, q.Matches(inSub))
	assert.False(t, q.Matches(outside))
}

func TestLessRelevanceFeaturedFirstThenName(t *testing.T) {
	q := build(t, search.DefaultParams())
	featured := product("Zari", func(p *models.Product) { p.Flags.Featured = true })
	plain := product("Anarkali")

	assert.True(t, q.Less(featured, plain))
	assert.False(t, q.Less(plain, featured))
	assert.True(t, q.Less(product("Anarkali"), product("Bandhani")))
}

func TestLessPriceUsesEffectivePrice(t *testing.T) {
	p := search.DefaultParams()
	p.SortBy = search.SortPriceLow
	q := build(t, p)

	cheapSale := product("a", func(p *models.Product) { p.Price = price(5000, 1200) })
	regular := product("b", func(p *models.Product) { p.Price = price(3000) })
	assert.True(t, q.Less(cheapSale, regular))

	p.SortBy = search.SortPriceHigh
	q = build(t, p)
	assert.True(t, q.Less(regular, cheapSale))
}

func TestLessTieBreaksOnID(t *testing.T) {
	q := build(t, search.DefaultParams())
	a, b := product("same"), product("same")
	assert.NotEqual(t, q.Less(a, b), q.Less(b, a))
}

func TestFilterDocument(t *testing.T) {
	p := search.DefaultParams()
	p.Q = "silk"
	p.InStock = true
	p.Tags = []string{"wedding"}
	f := build(t, p).Filter()

	m := f.Map()
	assert.Equal(t, models.StatusPublished, m["status"])
	assert.Contains(t, m, "$or")
	assert.Contains(t, m, "$expr")
	assert.Equal(t, models.InStock, m["inventory.availability"])
	assert.Equal(t, bson.D{{Key: "$in", Value: []string{"wedding"}}}, m["tags"])

	or := m["$or"].(bson.A)
	assert.Len(t, or, 7)
	first := or[0].(bson.D)
	assert.Equal(t, primitive.Regex{Pattern: "silk", Options: "i"}, first[0].Value)
}

func TestSortStageEndsOnID(t *testing.T) {
	for _, k := range []search.SortKey{
		search.SortRelevance, search.SortPriceLow, search.SortPriceHigh,
		search.SortNewest, search.SortOldest, search.SortNameAsc, search.SortNameDesc,
	} {
		p := search.DefaultParams()
		p.SortBy = k
		s := build(t, p).SortStage()
		assert.Equal(t, "_id", s[len(s)-1].Key, k)
	}
}

func TestPipelineWindow(t *testing.T) {
	p := search.DefaultParams()
	p.Page, p.Limit = 2, 5
	pipe := build(t, p).Pipeline()

	require.Len(t, pipe, 5)
	assert.Equal(t, "$match", pipe[0][0].Key)
	assert.Equal(t, "$addFields", pipe[1][0].Key)
	assert.Equal(t, "$sort", pipe[2][0].Key)
	assert.Equal(t, bson.D{{Key: "$skip", Value: int64(5)}}, pipe[3])
	assert.Equal(t, bson.D{{Key: "$limit", Value: int64(5)}}, pipe[4])
}
