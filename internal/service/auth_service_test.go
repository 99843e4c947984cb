package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/docflow-api/internal/models"
	"github.com/noah-isme/docflow-api/pkg/config"
)

func signToken(t *testing.T, secret string, claims *models.JWTClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthServiceValidateToken(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{Secret: "test-secret"})
	raw := signToken(t, "test-secret", &models.JWTClaims{
		UserID:     "user-1",
		RealmRoles: map[string][]string{"realm-a": {"user"}},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := svc.ValidateToken(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.True(t, claims.Context().HasRole("realm-a", "user"))
}

func TestAuthServiceRejectsWrongSecret(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{Secret: "test-secret"})
	raw := signToken(t, "other-secret", &models.JWTClaims{UserID: "user-1"})

	_, err := svc.ValidateToken(raw)
	require.Error(t, err)
}

func TestAuthServiceRejectsExpiredToken(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{Secret: "test-secret"})
	raw := signToken(t, "test-secret", &models.JWTClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := svc.ValidateToken(raw)
	require.Error(t, err)
}

func TestAuthServiceRejectsMissingSubject(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{Secret: "test-secret"})
	raw := signToken(t, "test-secret", &models.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := svc.ValidateToken(raw)
	require.Error(t, err)
}
