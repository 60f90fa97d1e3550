package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"myPharmacyStore/domain"

	"github.com/redis/go-redis/v9"
)

// maxUpdateRetries bounds how often an update is replayed after a concurrent
// write to the same cart.
const maxUpdateRetries = 10

var ErrCartConflict = errors.New("cart kept changing during update")

type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

// key format: "cart:customer:{customer_id}"
func cartKey(customerID string) string {
	return fmt.Sprintf("cart:customer:%s", customerID)
}

// GetCart returns the stored cart, or an empty one when the session has none.
func (r *CartRepository) GetCart(ctx context.Context, customerID string) (domain.Cart, error) {
	return readCart(ctx, r.client, customerID)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readCart(ctx context.Context, c getter, customerID string) (domain.Cart, error) {
	val, err := c.Get(ctx, cartKey(customerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Cart{CustomerID: customerID}, nil
		}
		return domain.Cart{}, fmt.Errorf("failed to get cart from Redis: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(val), &cart); err != nil {
		return domain.Cart{}, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	cart.CustomerID = customerID

	return cart, nil
}

// SaveCart stores the cart and restarts its TTL.
func (r *CartRepository) SaveCart(ctx context.Context, cart domain.Cart) error {
	jsonData, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	if err := r.client.Set(ctx, cartKey(cart.CustomerID), jsonData, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cart in Redis: %w", err)
	}

	return nil
}

// UpdateCart applies fn to the stored cart inside WATCH/MULTI. When another
// writer touches the cart first the transaction fails and fn is replayed on
// the fresh copy. A cart left empty is deleted.
func (r *CartRepository) UpdateCart(ctx context.Context, customerID string, fn func(*domain.Cart) error) (domain.Cart, error) {
	key := cartKey(customerID)

	var updated domain.Cart
	txf := func(tx *redis.Tx) error {
		cart, err := readCart(ctx, tx, customerID)
		if err != nil {
			return err
		}

		if err := fn(&cart); err != nil {
			return err
		}
		cart.CustomerID = customerID

		var jsonData []byte
		if !cart.IsEmpty() {
			jsonData, err = json.Marshal(cart)
			if err != nil {
				return fmt.Errorf("failed to marshal cart: %w", err)
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if cart.IsEmpty() {
				pipe.Del(ctx, key)
				return nil
			}
			pipe.Set(ctx, key, jsonData, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		updated = cart
		return nil
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return domain.Cart{}, err
	}

	return domain.Cart{}, ErrCartConflict
}
