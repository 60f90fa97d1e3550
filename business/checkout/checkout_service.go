package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"myPharmacyStore/domain"
	"myPharmacyStore/pkg/logger"
	"myPharmacyStore/pkg/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// PlacementFailedMessage is the only thing a customer is told when placement
// fails, whatever the stage.
const PlacementFailedMessage = "Failed to place order. Please try again."

var (
	ErrMissingCustomer = errors.New("customer is required")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrOrderCreation   = errors.New("order could not be created")
	ErrPlacementFailed = errors.New("branch request failed")
)

type CartRepository interface {
	GetCart(ctx context.Context, customerID string) (domain.Cart, error)
	UpdateCart(ctx context.Context, customerID string, fn func(*domain.Cart) error) (domain.Cart, error)
}

type OrderRepository interface {
	PlaceOrder(ctx context.Context, token string, draft domain.OrderDraft) (string, error)
	SaveRequest(ctx context.Context, token string, request domain.BranchRequest) error
}

// LedgerRepository stores checkout attempts. Optional.
type LedgerRepository interface {
	CreateAttempt(ctx context.Context, attempt *domain.CheckoutAttempt) error
	ListAttempts(ctx context.Context, customerID string, limit int) ([]domain.CheckoutAttempt, error)
}

type PlaceOrderInput struct {
	CustomerID    string
	Token         string
	PaymentMethod string
}

type CheckoutService struct {
	cartRepo             CartRepository
	orderRepo            OrderRepository
	ledgerRepo           LedgerRepository
	defaultPaymentMethod string
}

func NewCheckoutService(cartRepo CartRepository, orderRepo OrderRepository, ledgerRepo LedgerRepository, defaultPaymentMethod string) *CheckoutService {
	if defaultPaymentMethod == "" {
		defaultPaymentMethod = "cash"
	}

	return &CheckoutService{
		cartRepo:             cartRepo,
		orderRepo:            orderRepo,
		ledgerRepo:           ledgerRepo,
		defaultPaymentMethod: defaultPaymentMethod,
	}
}

// BranchGroup is the slice of a cart routed to one branch.
type BranchGroup struct {
	BranchID string
	Items    []domain.CartItem
}

// PartitionByBranch groups items by branch, keeping the order in which each
// branch first appears in the cart.
func PartitionByBranch(items []domain.CartItem) []BranchGroup {
	index := make(map[string]int)
	var groups []BranchGroup

	for _, item := range items {
		i, ok := index[item.BranchID]
		if !ok {
			i = len(groups)
			index[item.BranchID] = i
			groups = append(groups, BranchGroup{BranchID: item.BranchID})
		}
		groups[i].Items = append(groups[i].Items, item)
	}

	return groups
}

func (g BranchGroup) request(orderID, customerID string) domain.BranchRequest {
	items := make([]domain.RequestItem, 0, len(g.Items))
	for _, item := range g.Items {
		items = append(items, domain.RequestItem{
			DrugID:   item.DrugID,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	return domain.BranchRequest{
		BranchID: g.BranchID,
		OrderID:  orderID,
		Items:    items,
		Status:   domain.RequestStatusPending,
		Customer: customerID,
	}
}

// PlaceOrder creates the order, then sends one request per branch
// concurrently and waits for all of them. The cart is cleared only when
// every branch request succeeded, and then only of the lines that were
// ordered. This is not a transaction: branches that already accepted their
// request stay accepted when a sibling fails.
func (s *CheckoutService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (domain.Placement, error) {
	if in.CustomerID == "" {
		return domain.Placement{}, ErrMissingCustomer
	}

	cart, err := s.cartRepo.GetCart(ctx, in.CustomerID)
	if err != nil {
		logger.Error("failed to load cart for checkout", "customer_id", in.CustomerID, "error", err)
		return domain.Placement{}, fmt.Errorf("failed to load cart: %w", err)
	}

	if cart.IsEmpty() {
		return domain.Placement{}, ErrEmptyCart
	}

	paymentMethod := in.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = s.defaultPaymentMethod
	}

	attempt := &domain.CheckoutAttempt{
		ID:            uuid.NewString(),
		CustomerID:    in.CustomerID,
		TotalPrice:    cart.Total().InexactFloat64(),
		PaymentMethod: paymentMethod,
		CreatedAt:     time.Now(),
	}

	orderID, err := s.orderRepo.PlaceOrder(ctx, in.Token, domain.OrderDraft{
		TotalPrice:    attempt.TotalPrice,
		PaymentMethod: paymentMethod,
		Status:        domain.OrderStatusPending,
	})
	if err != nil {
		logger.Error("failed to create order", "customer_id", in.CustomerID, "attempt_id", attempt.ID, "error", err)
		attempt.Outcome = domain.CheckoutOutcomeOrderFailed
		s.record(ctx, attempt, nil)
		return domain.Placement{}, fmt.Errorf("%w: %v", ErrOrderCreation, err)
	}
	attempt.OrderID = orderID

	groups := PartitionByBranch(cart.Items)
	metrics.BranchFanout.Observe(float64(len(groups)))

	outcomes := make([]domain.BranchOutcome, len(groups))
	var g errgroup.Group
	for i, group := range groups {
		g.Go(func() error {
			outcomes[i] = domain.BranchOutcome{
				BranchID: group.BranchID,
				Items:    len(group.Items),
				Outcome:  domain.BranchOutcomeSent,
			}

			if err := s.orderRepo.SaveRequest(ctx, in.Token, group.request(orderID, in.CustomerID)); err != nil {
				outcomes[i].Outcome = domain.BranchOutcomeFailed
				outcomes[i].Error = err.Error()
				return fmt.Errorf("branch %s: %w", group.BranchID, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("failed to send branch requests", "customer_id", in.CustomerID, "order_id", orderID, "attempt_id", attempt.ID, "error", err)
		attempt.Outcome = domain.CheckoutOutcomeRequestFailed
		s.record(ctx, attempt, outcomes)
		return domain.Placement{}, fmt.Errorf("%w: %v", ErrPlacementFailed, err)
	}

	attempt.Outcome = domain.CheckoutOutcomeSucceeded
	s.record(ctx, attempt, outcomes)

	// The order already exists at this point, so a failed clear is logged
	// rather than reported as a failed checkout.
	_, err = s.cartRepo.UpdateCart(ctx, in.CustomerID, func(stored *domain.Cart) error {
		stored.RemoveOrdered(cart.Items)
		return nil
	})
	if err != nil {
		logger.Error("failed to clear cart after checkout", "customer_id", in.CustomerID, "order_id", orderID, "error", err)
	}

	logger.Info("order placed", "customer_id", in.CustomerID, "order_id", orderID, "branches", len(groups))

	return domain.Placement{
		OrderID:  orderID,
		Redirect: "/orders/" + orderID,
	}, nil
}

func (s *CheckoutService) record(ctx context.Context, attempt *domain.CheckoutAttempt, outcomes []domain.BranchOutcome) {
	metrics.Checkouts.WithLabelValues(attempt.Outcome).Inc()

	if s.ledgerRepo == nil {
		return
	}

	if outcomes == nil {
		outcomes = []domain.BranchOutcome{}
	}
	branches, err := json.Marshal(outcomes)
	if err != nil {
		logger.Error("failed to marshal branch outcomes", "attempt_id", attempt.ID, "error", err)
		return
	}
	attempt.Branches = datatypes.JSON(branches)

	// the customer may already have gone away, the record should still land
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.ledgerRepo.CreateAttempt(ctx, attempt); err != nil {
		logger.Error("failed to record checkout attempt", "attempt_id", attempt.ID, "error", err)
	}
}

// ListAttempts returns recorded checkout attempts for operators.
func (s *CheckoutService) ListAttempts(ctx context.Context, customerID string, limit int) ([]domain.CheckoutAttempt, error) {
	if s.ledgerRepo == nil {
		return []domain.CheckoutAttempt{}, nil
	}

	attempts, err := s.ledgerRepo.ListAttempts(ctx, customerID, limit)
	if err != nil {
		logger.Error("failed to list checkout attempts", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf("failed to list checkout attempts: %w", err)
	}

	return attempts, nil
}
