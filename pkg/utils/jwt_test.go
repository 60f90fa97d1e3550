package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func claimsExpiringIn(ttl time.Duration) Claims {
	return Claims{
		UserID: "42",
		Role:   "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
}

func TestParseJWT(t *testing.T) {
	SetJWTSecret(testSecret)

	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claimsExpiringIn(time.Hour))

	claims, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "customer", claims.Role)
}

func TestParseJWT_Rejects(t *testing.T) {
	SetJWTSecret(testSecret)

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claimsExpiringIn(-time.Minute))

		_, err := ParseJWT(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("token without expiry", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), Claims{UserID: "42", Role: "customer"})

		_, err := ParseJWT(token)
		assert.ErrorIs(t, err, jwt.ErrTokenRequiredClaimMissing)
	})

	t.Run("signed with another key", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte("rotated-secret"), claimsExpiringIn(time.Hour))

		_, err := ParseJWT(token)
		assert.Error(t, err)
	})

	t.Run("unsigned token", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, claimsExpiringIn(time.Hour))

		_, err := ParseJWT(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseJWT("not-a-token")
		assert.Error(t, err)
	})
}

func TestParseJWT_MissingSecret(t *testing.T) {
	SetJWTSecret("")
	defer SetJWTSecret(testSecret)

	_, err := ParseJWT("anything")
	assert.ErrorIs(t, err, ErrMissingSecret)
}
