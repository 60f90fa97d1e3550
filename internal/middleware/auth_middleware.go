package middleware

import (
	"net/http"
	"strings"

	"myPharmacyStore/pkg/logger"
	"myPharmacyStore/pkg/utils"

	jsonres "myPharmacyStore/pkg/response"

	"github.com/labstack/echo/v4"
)

const (
	ContextCustomerID = "customer_id"
	ContextRole       = "role"
	ContextToken      = "token"
)

// AuthMiddleware checks the customer's bearer JWT and keeps the raw token so
// it can be forwarded to the pharmacy backend.
func AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Missing authorization header", nil,
				))
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Invalid authorization format", nil,
				))
			}

			tokenString := tokenParts[1]

			claims, err := utils.ParseJWT(tokenString)
			if err != nil {
				logger.Warn("rejected token", "error", err)
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Invalid token", nil,
				))
			}

			if claims.UserID == "" {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Invalid user ID in token", nil,
				))
			}

			c.Set(ContextCustomerID, claims.UserID)
			c.Set(ContextRole, claims.Role)
			c.Set(ContextToken, tokenString)

			return next(c)
		}
	}
}

func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := c.Get(ContextRole)
			roleStr, ok := role.(string)
			if !ok || strings.ToUpper(roleStr) != "ADMIN" {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Admin access required", nil,
				))
			}

			return next(c)
		}
	}
}

func CustomerID(c echo.Context) string {
	id, _ := c.Get(ContextCustomerID).(string)
	return id
}

func Token(c echo.Context) string {
	token, _ := c.Get(ContextToken).(string)
	return token
}
