package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := auth.GenerateToken("ops@storefront", auth.RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := auth.RequireRole(tok, auth.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "ops@storefront", claims.Subject)
}

func TestExpiredAndWrongRole(t *testing.T) {
	expired, err := auth.GenerateToken("ops", auth.RoleAdmin, -time.Minute)
	require.NoError(t, err)
	_, err = auth.ValidateToken(expired)
	assert.Error(t, err)

	viewer, err := auth.GenerateToken("ops", "viewer", time.Hour)
	require.NoError(t, err)
	_, err = auth.RequireRole(viewer, auth.RoleAdmin)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = auth.ValidateToken("not.a.token")
	assert.Error(t, err)
}
