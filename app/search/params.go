// Package search turns storefront filter inputs into a catalog query.
//
// The same Query drives both store drivers: Filter and SortStage render it
// for MongoDB, Matches and Less evaluate it over in-memory products. Any
// change to filter semantics happens here once.
package search

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// SortKey selects the result ordering.
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
)

func (k SortKey) valid() bool {
	switch k {
	case SortRelevance, SortPriceLow, SortPriceHigh, SortNewest, SortOldest, SortNameAsc, SortNameDesc:
		return true
	}
	return false
}

const (
	DefaultMinPrice = 0
	DefaultMaxPrice = 1e9
	DefaultPage     = 1
	DefaultLimit    = 24
	MaxLimit        = 100

	// MaxPage keeps (Page-1)*Limit well inside int64 for any Limit.
	MaxPage = math.MaxInt32
)

// Params is every recognized search input after normalization. Field order
// is fixed, so its JSON form doubles as the canonical cache key material.
type Params struct {
	Q        string   `json:"q"`
	Category string   `json:"category"`
	MinPrice float64  `json:"minPrice"`
	MaxPrice float64  `json:"maxPrice"`
	SortBy   SortKey  `json:"sortBy"`
	Page     int      `json:"page"`
	Limit    int      `json:"limit"`
	InStock  bool     `json:"inStock"`
	Tags     []string `json:"tags"`
}

// DefaultParams returns the values used when nothing is supplied.
func DefaultParams() Params {
	return Params{
		MinPrice: DefaultMinPrice,
		MaxPrice: DefaultMaxPrice,
		SortBy:   SortRelevance,
		Page:     DefaultPage,
		Limit:    DefaultLimit,
		Tags:     []string{},
	}
}

// ParseParams reads the search inputs from a URL query. It never fails:
// malformed numbers and unknown sort keys fall back to their defaults.
func ParseParams(v url.Values) Params {
	p := DefaultParams()
	p.Q = v.Get("q")
	p.Category = v.Get("category")
	p.MinPrice = parseFloat(v.Get("minPrice"), DefaultMinPrice)
	p.MaxPrice = parseFloat(v.Get("maxPrice"), DefaultMaxPrice)
	p.SortBy = SortKey(v.Get("sortBy"))
	p.Page = parseInt(v.Get("page"), DefaultPage)
	p.Limit = parseInt(v.Get("limit"), DefaultLimit)
	p.InStock = v.Get("inStock") == "true"
	p.Tags = SplitTags(v.Get("tags"))
	return p.Normalize()
}

// Normalize clamps p into its valid domain. It is idempotent.
func (p Params) Normalize() Params {
	p.Q = strings.TrimSpace(p.Q)
	p.Category = strings.TrimSpace(p.Category)
	if !finite(p.MinPrice) {
		p.MinPrice = DefaultMinPrice
	}
	if !finite(p.MaxPrice) {
		p.MaxPrice = DefaultMaxPrice
	}
	if !p.SortBy.valid() {
		p.SortBy = SortRelevance
	}
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	p.Tags = normalizeTags(p.Tags)
	return p
}

// CacheKey is a stable digest of the normalized parameters. Two requests
// that differ only in parameter or tag order share a key.
func (p Params) CacheKey() string {
	n := p.Normalize()
	raw, _ := json.Marshal(n)
	sum := sha256.Sum256(raw)
	return "search:" + hex.EncodeToString(sum[:])
}

// SplitTags splits a comma-separated tag list.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return normalizeTags(strings.Split(s, ","))
}

func normalizeTags(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func parseFloat(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(f) {
		return def
	}
	return f
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
