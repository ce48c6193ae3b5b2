package services

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Slugify lowercases s and collapses every run of non-alphanumerics into a
// single hyphen.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// uniqueSlug returns base, or base plus a short random token when exists
// reports base as taken.
func uniqueSlug(ctx context.Context, base string, exists func(context.Context, string) (bool, error)) (string, error) {
	candidate := base
	for i := 0; i < 5; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + shortToken()
	}
	return base + "-" + uuid.NewString(), nil
}

// fallbackSlug is used when a name has no letters or digits to slugify.
// An existing slug is kept so updates stay addressable.
func fallbackSlug(current, prefix string) string {
	if current != "" {
		return current
	}
	return prefix + "-" + shortToken()
}

func shortToken() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}
