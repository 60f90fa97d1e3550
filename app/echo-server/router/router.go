package router

import (
	"myPharmacyStore/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupCartRoutes(api *echo.Group, cartHandler *rest.CartHandler, checkoutHandler *rest.CheckoutHandler, authRequired echo.MiddlewareFunc) {
	cart := api.Group("/cart", authRequired)

	cart.GET("", cartHandler.GetCart)
	cart.POST("/items", cartHandler.AddItem)
	cart.POST("/checkout", checkoutHandler.PlaceOrder)
}

func SetupAdminRoutes(api *echo.Group, checkoutHandler *rest.CheckoutHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	admin := api.Group("/admin", authRequired, adminOnly)

	admin.GET("/checkouts", checkoutHandler.ListAttempts)
}
