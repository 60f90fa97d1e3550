// Package jwttest issues tokens the way the identity service does, for tests
// that need to pass through the auth middleware.
package jwttest

import (
	"testing"
	"time"

	"myPharmacyStore/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
)

// Sign returns an HS256 token for the given claims.
func Sign(t testing.TB, secret string, claims utils.Claims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// Token returns a token for userID and role that expires after ttl. A
// negative ttl gives an already expired token.
func Token(t testing.TB, secret, userID, role string, ttl time.Duration) string {
	t.Helper()

	now := time.Now()
	return Sign(t, secret, utils.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
}
