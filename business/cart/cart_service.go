package cart

import (
	"context"
	"errors"
	"fmt"

	"myPharmacyStore/domain"
	"myPharmacyStore/pkg/logger"
	"myPharmacyStore/pkg/metrics"
)

const EmptyCartMessage = "Your cart is empty"

var (
	ErrMissingCustomer = errors.New("customer is required")
	ErrMissingDrug     = errors.New("drug id is required")
	ErrMissingBranch   = errors.New("branch id is required")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	ErrInvalidPrice    = errors.New("price cannot be negative")
)

// CartRepository contract interface
type CartRepository interface {
	GetCart(ctx context.Context, customerID string) (domain.Cart, error)
	UpdateCart(ctx context.Context, customerID string, fn func(*domain.Cart) error) (domain.Cart, error)
}

type DrugRepository interface {
	GetDrugDetails(ctx context.Context, drugID string) (domain.DrugDetail, error)
}

type CartService struct {
	cartRepo CartRepository
	drugRepo DrugRepository
}

func NewCartService(cartRepo CartRepository, drugRepo DrugRepository) *CartService {
	return &CartService{
		cartRepo: cartRepo,
		drugRepo: drugRepo,
	}
}

// GetCart renders the customer's cart. An empty cart short-circuits before
// any drug lookup is made.
func (s *CartService) GetCart(ctx context.Context, customerID string) (domain.CartView, error) {
	if customerID == "" {
		return domain.CartView{}, ErrMissingCustomer
	}

	cart, err := s.cartRepo.GetCart(ctx, customerID)
	if err != nil {
		logger.Error("failed to load cart", "customer_id", customerID, "error", err)
		return domain.CartView{}, fmt.Errorf("failed to load cart: %w", err)
	}

	if cart.IsEmpty() {
		return domain.CartView{
			Items:   []domain.CartLine{},
			Empty:   true,
			Message: EmptyCartMessage,
		}, nil
	}

	details := s.ResolveDetails(ctx, cart.Items)

	lines := make([]domain.CartLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		detail := details[item.DrugID]
		lines = append(lines, domain.CartLine{
			CartItem:         item,
			Detail:           detail,
			Subtotal:         item.Subtotal().InexactFloat64(),
			ImagePlaceholder: !detail.HasImage(),
		})
	}

	return domain.CartView{
		Items: lines,
		Total: cart.Total().InexactFloat64(),
	}, nil
}

// ResolveDetails looks up every distinct drug once, in cart order. A failed
// lookup is replaced by the fallback record and not retried.
func (s *CartService) ResolveDetails(ctx context.Context, items []domain.CartItem) map[string]domain.DrugDetail {
	details := make(map[string]domain.DrugDetail, len(items))

	for _, item := range items {
		if _, seen := details[item.DrugID]; seen {
			continue
		}

		detail, err := s.drugRepo.GetDrugDetails(ctx, item.DrugID)
		if err != nil {
			logger.Warn("drug detail lookup failed, using fallback", "drug_id", item.DrugID, "error", err)
			metrics.DetailLookups.WithLabelValues("fallback").Inc()
			details[item.DrugID] = domain.FallbackDrugDetail()
			continue
		}

		metrics.DetailLookups.WithLabelValues("resolved").Inc()
		details[item.DrugID] = detail
	}

	return details
}

// AddItem puts a line into the cart. The same drug from the same branch is
// merged into one line.
func (s *CartService) AddItem(ctx context.Context, customerID string, item domain.CartItem) (domain.Cart, error) {
	if customerID == "" {
		return domain.Cart{}, ErrMissingCustomer
	}

	if item.DrugID == "" {
		return domain.Cart{}, ErrMissingDrug
	}

	if item.BranchID == "" {
		return domain.Cart{}, ErrMissingBranch
	}

	if item.Quantity <= 0 {
		return domain.Cart{}, ErrInvalidQuantity
	}

	if item.Price < 0 {
		return domain.Cart{}, ErrInvalidPrice
	}

	cart, err := s.cartRepo.UpdateCart(ctx, customerID, func(cart *domain.Cart) error {
		cart.Add(item)
		return nil
	})
	if err != nil {
		logger.Error("failed to save cart", "customer_id", customerID, "error", err)
		return domain.Cart{}, fmt.Errorf("failed to save cart: %w", err)
	}

	logger.Info("cart item added", "customer_id", customerID, "drug_id", item.DrugID, "branch_id", item.BranchID)

	return cart, nil
}
