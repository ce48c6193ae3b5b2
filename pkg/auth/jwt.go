// Package auth issues and verifies the HS256 bearer tokens that guard the
// admin API.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shashiranjanraj/storefront/config"
)

// RoleAdmin is the only role admitted to /api/admin.
const RoleAdmin = "admin"

// Claims holds the typed JWT payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func secret() []byte {
	return []byte(config.JWTSecret())
}

// GenerateToken signs a token for subject with role, valid for ttl.
func GenerateToken(subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "storefront",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
}

// ValidateToken parses t and checks signature, algorithm and expiry.
func ValidateToken(t string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(t, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return secret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer("storefront"))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// ErrForbidden is returned by RequireRole for a valid token with the wrong role.
var ErrForbidden = errors.New("auth: insufficient role")

// RequireRole validates t and checks its role.
func RequireRole(t, role string) (*Claims, error) {
	claims, err := ValidateToken(t)
	if err != nil {
		return nil, err
	}
	if claims.Role != role {
		return claims, ErrForbidden
	}
	return claims, nil
}
