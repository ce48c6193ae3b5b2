package search

import (
	"net/url"
	"sort"
	"strings"
)

// Refinement is the secondary browse filter applied to an already fetched
// category product set. Unset fields impose no constraint; set fields are
// AND-combined.
type Refinement struct {
	Fabric   string   `json:"fabric"`
	Color    string   `json:"color"`
	MinPrice *float64 `json:"minPrice"`
	MaxPrice *float64 `json:"maxPrice"`
}

// ParseRefinement reads fabric, color, minPrice and maxPrice. Malformed
// prices are treated as unset.
func ParseRefinement(v url.Values) Refinement {
	r := Refinement{
		Fabric: strings.TrimSpace(v.Get("fabric")),
		Color:  strings.TrimSpace(v.Get("color")),
	}
	if s := strings.TrimSpace(v.Get("minPrice")); s != "" {
		if f := parseFloat(s, -1); f >= 0 {
			r.MinPrice = &f
		}
	}
	if s := strings.TrimSpace(v.Get("maxPrice")); s != "" {
		if f := parseFloat(s, -1); f >= 0 {
			r.MaxPrice = &f
		}
	}
	return r
}

// IsZero reports whether r constrains nothing.
func (r Refinement) IsZero() bool {
	return r.Fabric == "" && r.Color == "" && r.MinPrice == nil && r.MaxPrice == nil
}

// Matches reports whether p passes every set refinement.
func (r Refinement) Matches(p Product) bool {
	if r.Fabric != "" && !containsFold(p.Fabric, strings.ToLower(r.Fabric)) {
		return false
	}
	if r.Color != "" && !anyVariationColor(p, strings.ToLower(r.Color)) {
		return false
	}
	lo, hi := float64(DefaultMinPrice), float64(DefaultMaxPrice)
	if r.MinPrice != nil {
		lo = *r.MinPrice
	}
	if r.MaxPrice != nil {
		hi = *r.MaxPrice
	}
	return PriceInRange(p.EffectivePrice(), lo, hi)
}

func anyVariationColor(p Product, needle string) bool {
	for _, v := range p.Variations {
		if containsFold(v.Color, needle) {
			return true
		}
	}
	return false
}

// Refine returns the products passing r, preserving order. It never
// consults the store, so it cannot surface products outside the input.
func Refine(products []Product, r Refinement) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if r.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Options lists the distinct refinement values present in a fetched set.
type Options struct {
	Fabrics []string `json:"fabrics"`
	Colors  []string `json:"colors"`
}

// OptionsOf collects the sorted distinct non-empty fabrics and variation
// colors of products.
func OptionsOf(products []Product) Options {
	fabrics := map[string]struct{}{}
	colors := map[string]struct{}{}
	for _, p := range products {
		if f := strings.TrimSpace(p.Fabric); f != "" {
			fabrics[f] = struct{}{}
		}
		for _, v := range p.Variations {
			if c := strings.TrimSpace(v.Color); c != "" {
				colors[c] = struct{}{}
			}
		}
	}
	return Options{Fabrics: sortedKeys(fabrics), Colors: sortedKeys(colors)}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
