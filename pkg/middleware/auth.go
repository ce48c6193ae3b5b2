package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

type claimsKey struct{}

// RequireRole accepts only requests carrying a bearer token whose role
// matches. A missing or invalid token is a 401, a wrong role a 403.
//
//	admin := r.Group("/api/admin", middleware.RequireRole(auth.RoleAdmin))
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				response.Unauthorized(w)
				return
			}

			claims, err := auth.RequireRole(strings.TrimSpace(token), role)
			if errors.Is(err, auth.ErrForbidden) {
				response.Forbidden(w)
				return
			}
			if err != nil {
				response.Unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}

// ClaimsFromCtx returns the claims stored by RequireRole, or nil.
func ClaimsFromCtx(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return c
}
