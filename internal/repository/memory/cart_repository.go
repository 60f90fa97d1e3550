package memory

import (
	"context"
	"sync"

	"myPharmacyStore/domain"
)

// CartRepository keeps carts in process memory. Used when Redis is not
// configured and in tests.
type CartRepository struct {
	mu    sync.RWMutex
	carts map[string][]domain.CartItem
}

func NewCartRepository() *CartRepository {
	return &CartRepository{
		carts: make(map[string][]domain.CartItem),
	}
}

func (r *CartRepository) GetCart(ctx context.Context, customerID string) (domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return domain.Cart{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.carts[customerID]
	cart := domain.Cart{CustomerID: customerID}
	if len(items) > 0 {
		cart.Items = append([]domain.CartItem(nil), items...)
	}

	return cart, nil
}

func (r *CartRepository) SaveCart(ctx context.Context, cart domain.Cart) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[cart.CustomerID] = append([]domain.CartItem(nil), cart.Items...)

	return nil
}

// UpdateCart applies fn to the stored cart under the write lock. Nothing is
// stored when fn fails, and a cart left empty is removed.
func (r *CartRepository) UpdateCart(ctx context.Context, customerID string, fn func(*domain.Cart) error) (domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return domain.Cart{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cart := domain.Cart{CustomerID: customerID}
	if items := r.carts[customerID]; len(items) > 0 {
		cart.Items = append([]domain.CartItem(nil), items...)
	}

	if err := fn(&cart); err != nil {
		return domain.Cart{}, err
	}
	cart.CustomerID = customerID

	if cart.IsEmpty() {
		delete(r.carts, customerID)
		return cart, nil
	}

	r.carts[customerID] = append([]domain.CartItem(nil), cart.Items...)

	return cart, nil
}
