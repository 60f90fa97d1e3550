package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"myPharmacyStore/business/cart"
	"myPharmacyStore/domain"
	"myPharmacyStore/internal/middleware"
	"myPharmacyStore/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	CartHandler struct {
		validate    *validator.Validate
		cartService CartService
		timeout     time.Duration
	}

	CartService interface {
		GetCart(ctx context.Context, customerID string) (domain.CartView, error)
		AddItem(ctx context.Context, customerID string, item domain.CartItem) (domain.Cart, error)
	}

	CartItemInput struct {
		DrugID   string  `json:"drug_id" validate:"required"`
		BranchID string  `json:"branch_id" validate:"required"`
		Quantity int     `json:"quantity" validate:"required,gt=0"`
		Price    float64 `json:"price" validate:"gte=0"`
	}
)

func NewCartHandler(cartService CartService) *CartHandler {
	return &CartHandler{
		validate:    validator.New(),
		cartService: cartService,
		timeout:     30 * time.Second,
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	customerID := middleware.CustomerID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	view, err := h.cartService.GetCart(ctx, customerID)
	if err != nil {
		logger.Error("Failed to get cart", "customer_id", customerID, "error", err)
		if errors.Is(err, cart.ErrMissingCustomer) {
			return c.JSON(http.StatusUnauthorized, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "Failed to load cart"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(view))
}

func (h *CartHandler) AddItem(c echo.Context) error {
	customerID := middleware.CustomerID(c)

	var request CartItemInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "Invalid request body"})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate cart item", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	updated, err := h.cartService.AddItem(ctx, customerID, domain.CartItem{
		DrugID:   request.DrugID,
		BranchID: request.BranchID,
		Quantity: request.Quantity,
		Price:    request.Price,
	})
	if err != nil {
		logger.Error("Failed to add cart item", "customer_id", customerID, "error", err)
		switch {
		case errors.Is(err, cart.ErrMissingCustomer):
			return c.JSON(http.StatusUnauthorized, ResponseError{Message: err.Error()})
		case errors.Is(err, cart.ErrMissingDrug),
			errors.Is(err, cart.ErrMissingBranch),
			errors.Is(err, cart.ErrInvalidQuantity),
			errors.Is(err, cart.ErrInvalidPrice):
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "Failed to update cart"})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(updated))
}
