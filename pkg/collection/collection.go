// Package collection provides small generic slice helpers.
//
//	complete := collection.Filter(vs, func(v Variation) bool { return v.SKU != "" })
//	stock := collection.SumInt(complete, func(v Variation) int { return v.Stock })
package collection

// Map transforms each element of s using fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter returns the elements of s for which fn returns true. The result is
// never nil.
func Filter[T any](s []T, fn func(T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// GroupBy buckets s by the key fn returns, preserving order within a bucket.
func GroupBy[T any, K comparable](s []T, fn func(T) K) map[K][]T {
	out := make(map[K][]T)
	for _, v := range s {
		k := fn(v)
		out[k] = append(out[k], v)
	}
	return out
}

// Duplicates returns the values that occur more than once in s, each once,
// in order of their second occurrence.
func Duplicates[T comparable](s []T) []T {
	seen := make(map[T]int, len(s))
	var out []T
	for _, v := range s {
		seen[v]++
		if seen[v] == 2 {
			out = append(out, v)
		}
	}
	return out
}

// SumInt adds up fn over s.
func SumInt[T any](s []T, fn func(T) int) int {
	total := 0
	for _, v := range s {
		total += fn(v)
	}
	return total
}
