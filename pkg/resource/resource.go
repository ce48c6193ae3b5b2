// Package resource converts models into their public JSON shapes.
//
// A transformer is any func(T) R. Collection applies one to a slice and
// never returns nil, so an empty set encodes as [] rather than null:
//
//	out := resource.Collection(products, resources.Product)
package resource

// Collection transforms every item, preserving order.
func Collection[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, it := range items {
		out = append(out, fn(it))
	}
	return out
}

// Strings copies s, turning nil into an empty slice.
func Strings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}
