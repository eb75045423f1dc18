package usecase

import (
	"testing"
	"time"

	"docusense-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUsecase(secret string) AuthUsecase {
	return NewAuthUsecase(&config.Config{JWTSecret: secret})
}

func TestTokenRoundTrip(t *testing.T) {
	uc := newTestUsecase("test-secret")

	token, err := uc.GenerateToken("user-1", "tenant-1", []string{"admin", "reader"}, time.Hour)
	require.NoError(t, err)

	claims, err := uc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, []string{"admin", "reader"}, claims.Roles)
	assert.True(t, claims.IsAdmin())
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := newTestUsecase("secret-a")
	verifier := newTestUsecase("secret-b")

	token, err := issuer.GenerateToken("user-1", "tenant-1", nil, time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	uc := newTestUsecase("test-secret")

	token, err := uc.GenerateToken("user-1", "tenant-1", nil, -time.Minute)
	require.NoError(t, err)

	_, err = uc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	uc := newTestUsecase("test-secret")

	_, err := uc.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestValidateTokenRejectsUnsignedAlgorithm(t *testing.T) {
	uc := newTestUsecase("test-secret")

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":   "user-1",
		"roles": []string{"admin"},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = uc.ValidateToken(token)
	assert.Error(t, err)
}

func TestIsAdminDeniesByDefault(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  bool
	}{
		{"no roles", nil, false},
		{"empty roles", []string{}, false},
		{"reader only", []string{"reader"}, false},
		{"admin-ish but not admin", []string{"administrator"}, false},
		{"admin", []string{"admin"}, true},
		{"admin among others", []string{"reader", "admin"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Claims{Roles: tt.roles}
			assert.Equal(t, tt.want, c.IsAdmin())
		})
	}
}
