package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"myPharmacyStore/business/cart"
	"myPharmacyStore/business/checkout"
	"myPharmacyStore/domain"
	"myPharmacyStore/internal/middleware"
	"myPharmacyStore/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	CheckoutHandler struct {
		validate        *validator.Validate
		checkoutService CheckoutService
		timeout         time.Duration
	}

	CheckoutService interface {
		PlaceOrder(ctx context.Context, in checkout.PlaceOrderInput) (domain.Placement, error)
		ListAttempts(ctx context.Context, customerID string, limit int) ([]domain.CheckoutAttempt, error)
	}

	CheckoutInput struct {
		PaymentMethod string `json:"payment_method" validate:"omitempty,oneof=cash card wallet insurance"`
	}
)

func NewCheckoutHandler(checkoutService CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		validate:        validator.New(),
		checkoutService: checkoutService,
		timeout:         30 * time.Second,
	}
}

// PlaceOrder turns the caller's cart into an order. Every failure after the
// cart check is reported with the same message.
func (h *CheckoutHandler) PlaceOrder(c echo.Context) error {
	customerID := middleware.CustomerID(c)

	var request CheckoutInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "Invalid request body"})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate checkout request", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	placement, err := h.checkoutService.PlaceOrder(ctx, checkout.PlaceOrderInput{
		CustomerID:    customerID,
		Token:         middleware.Token(c),
		PaymentMethod: request.PaymentMethod,
	})
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			return c.JSON(http.StatusBadRequest, ResponseError{Message: cart.EmptyCartMessage})
		case errors.Is(err, checkout.ErrMissingCustomer):
			return c.JSON(http.StatusUnauthorized, ResponseError{Message: err.Error()})
		case errors.Is(err, checkout.ErrOrderCreation), errors.Is(err, checkout.ErrPlacementFailed):
			return c.JSON(http.StatusBadGateway, ResponseError{Message: checkout.PlacementFailedMessage})
		}
		logger.Error("Failed to place order", "customer_id", customerID, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: checkout.PlacementFailedMessage})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(placement))
}

func (h *CheckoutHandler) ListAttempts(c echo.Context) error {
	customerID := c.QueryParam("customer_id")

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "limit must be a positive integer"})
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	attempts, err := h.checkoutService.ListAttempts(ctx, customerID, limit)
	if err != nil {
		logger.Error("Failed to list checkout attempts", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "Failed to list checkout attempts"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(attempts))
}
