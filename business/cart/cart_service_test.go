package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"myPharmacyStore/domain"
	"myPharmacyStore/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDrugRepository struct {
	mu      sync.Mutex
	details map[string]domain.DrugDetail
	failing map[string]bool
	calls   map[string]int
}

func newFakeDrugRepository() *fakeDrugRepository {
	return &fakeDrugRepository{
		details: map[string]domain.DrugDetail{
			"d-1": {DrugName: "Paracetamol", Image: "https://cdn/para.png", Category: "Analgesic"},
			"d-2": {DrugName: "Amoxicillin", Category: "Antibiotic"},
			"d-3": {DrugName: "Loratadine", Image: "https://cdn/lora.png", Category: "Antihistamine"},
		},
		failing: map[string]bool{},
		calls:   map[string]int{},
	}
}

func (f *fakeDrugRepository) GetDrugDetails(ctx context.Context, drugID string) (domain.DrugDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[drugID]++
	if f.failing[drugID] {
		return domain.DrugDetail{}, errors.New("backend unavailable")
	}
	detail, ok := f.details[drugID]
	if !ok {
		return domain.DrugDetail{}, errors.New("drug not found")
	}
	return detail, nil
}

func (f *fakeDrugRepository) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

type failingCartRepository struct{}

func (failingCartRepository) GetCart(ctx context.Context, customerID string) (domain.Cart, error) {
	return domain.Cart{}, errors.New("redis down")
}

func (failingCartRepository) UpdateCart(ctx context.Context, customerID string, fn func(*domain.Cart) error) (domain.Cart, error) {
	return domain.Cart{}, errors.New("redis down")
}

// slowCartRepository widens the window between reading and writing a cart.
type slowCartRepository struct {
	*memory.CartRepository
}

func (s slowCartRepository) UpdateCart(ctx context.Context, customerID string, fn func(*domain.Cart) error) (domain.Cart, error) {
	return s.CartRepository.UpdateCart(ctx, customerID, func(cart *domain.Cart) error {
		time.Sleep(time.Millisecond)
		return fn(cart)
	})
}

func seedCart(t *testing.T, repo *memory.CartRepository, customerID string, items ...domain.CartItem) {
	t.Helper()
	require.NoError(t, repo.SaveCart(context.Background(), domain.Cart{CustomerID: customerID, Items: items}))
}

func TestCartService_GetCart_Empty(t *testing.T) {
	drugs := newFakeDrugRepository()
	svc := NewCartService(memory.NewCartRepository(), drugs)

	view, err := svc.GetCart(context.Background(), "42")
	require.NoError(t, err)

	assert.True(t, view.Empty)
	assert.Equal(t, EmptyCartMessage, view.Message)
	assert.NotNil(t, view.Items)
	assert.Empty(t, view.Items)
	assert.Zero(t, drugs.totalCalls(), "empty cart must not hit the backend")
}

func TestCartService_GetCart_OneLookupPerDistinctDrug(t *testing.T) {
	carts := memory.NewCartRepository()
	drugs := newFakeDrugRepository()
	svc := NewCartService(carts, drugs)

	seedCart(t, carts, "42",
		domain.CartItem{DrugID: "d-1", BranchID: "A", Quantity: 2, Price: 1.5},
		domain.CartItem{DrugID: "d-2", BranchID: "A", Quantity: 1, Price: 10},
		domain.CartItem{DrugID: "d-1", BranchID: "B", Quantity: 1, Price: 1.5},
		domain.CartItem{DrugID: "d-3", BranchID: "B", Quantity: 3, Price: 0.1},
	)

	view, err := svc.GetCart(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, view.Items, 4)

	assert.Equal(t, map[string]int{"d-1": 1, "d-2": 1, "d-3": 1}, drugs.calls)

	assert.Equal(t, "Paracetamol", view.Items[0].Detail.DrugName)
	assert.Equal(t, "Paracetamol", view.Items[2].Detail.DrugName)
	assert.Equal(t, 3.0, view.Items[0].Subtotal)
	assert.InDelta(t, 0.3, view.Items[3].Subtotal, 1e-9)
	assert.InDelta(t, 14.8, view.Total, 1e-9)
	assert.False(t, view.Empty)
	assert.Empty(t, view.Message)

	// a second render pass looks everything up again
	_, err = svc.GetCart(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"d-1": 2, "d-2": 2, "d-3": 2}, drugs.calls)
}

func TestCartService_GetCart_FallbackOnLookupFailure(t *testing.T) {
	carts := memory.NewCartRepository()
	drugs := newFakeDrugRepository()
	drugs.failing["d-2"] = true
	svc := NewCartService(carts, drugs)

	seedCart(t, carts, "42",
		domain.CartItem{DrugID: "d-2", BranchID: "A", Quantity: 1, Price: 10},
		domain.CartItem{DrugID: "d-2", BranchID: "B", Quantity: 1, Price: 10},
		domain.CartItem{DrugID: "missing", BranchID: "A", Quantity: 1, Price: 5},
	)

	view, err := svc.GetCart(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, view.Items, 3)

	for _, line := range view.Items {
		assert.Equal(t, domain.UnknownDrugName, line.Detail.DrugName)
		assert.Equal(t, domain.UnknownDrugCategory, line.Detail.Category)
		assert.True(t, line.ImagePlaceholder)
	}
	assert.Equal(t, 1, drugs.calls["d-2"], "failed lookups are not retried within a pass")
}

func TestCartService_GetCart_ImagePlaceholder(t *testing.T) {
	carts := memory.NewCartRepository()
	svc := NewCartService(carts, newFakeDrugRepository())

	seedCart(t, carts, "42",
		domain.CartItem{DrugID: "d-1", BranchID: "A", Quantity: 1, Price: 1},
		domain.CartItem{DrugID: "d-2", BranchID: "A", Quantity: 1, Price: 1},
	)

	view, err := svc.GetCart(context.Background(), "42")
	require.NoError(t, err)

	assert.False(t, view.Items[0].ImagePlaceholder)
	assert.True(t, view.Items[1].ImagePlaceholder)
}

func TestCartService_GetCart_Errors(t *testing.T) {
	svc := NewCartService(failingCartRepository{}, newFakeDrugRepository())

	_, err := svc.GetCart(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingCustomer)

	_, err = svc.GetCart(context.Background(), "42")
	assert.Error(t, err)
}

func TestCartService_AddItem(t *testing.T) {
	tests := []struct {
		name    string
		item    domain.CartItem
		wantErr error
	}{
		{name: "valid", item: domain.CartItem{DrugID: "d-1", BranchID: "A", Quantity: 1, Price: 2}},
		{name: "free sample", item: domain.CartItem{DrugID: "d-1", BranchID: "A", Quantity: 1, Price: 0}},
		{name: "missing drug", item: domain.CartItem{BranchID: "A", Quantity: 1}, wantErr: ErrMissingDrug},
		{name: "missing branch", item: domain.CartItem{DrugID: "d-1", Quantity: 1}, wantErr: ErrMissingBranch},
		{name: "zero quantity", item: domain.CartItem{DrugID: "d-1", BranchID: "A"}, wantErr: ErrInvalidQuantity},
		{name: "negative price", item: domain.CartItem{DrugID: "d-1", BranchID: "A", Quantity: 1, Price: -1}, wantErr: ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCartService(memory.NewCartRepository(), newFakeDrugRepository())

			cart, err := svc.AddItem(context.Background(), "42", tt.item)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []domain.CartItem{tt.item}, cart.Items)
		})
	}
}

func TestCartService_AddItem_MergesSameDrugAndBranch(t *testing.T) {
	carts := memory.NewCartRepository()
	svc := NewCartService(carts, newFakeDrugRepository())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "42", domain.CartItem{DrugID: "d-1", BranchID: "A", Quantity: 1, Price: 2})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "42", domain.CartItem{DrugID: "d-1", BranchID: "B", Quantity: 1, Price: 2})
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, "42", domain.CartItem{DrugID: "d-1", BranchID: "A", Quantity: 2, Price: 2.5})
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, domain.CartItem{DrugID: "d-1", BranchID: "A", Quantity: 3, Price: 2.5}, cart.Items[0])
	assert.Equal(t, "B", cart.Items[1].BranchID)

	stored, err := carts.GetCart(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, cart.Items, stored.Items)
}

func TestCartService_AddItem_ConcurrentAddsAreKept(t *testing.T) {
	carts := memory.NewCartRepository()
	svc := NewCartService(slowCartRepository{carts}, newFakeDrugRepository())
	ctx := context.Background()

	const adds = 50
	var wg sync.WaitGroup
	for i := 0; i < adds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, "42", domain.CartItem{DrugID: fmt.Sprintf("d-%d", i), BranchID: "A", Quantity: 1, Price: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := carts.GetCart(ctx, "42")
	require.NoError(t, err)
	assert.Len(t, stored.Items, adds)
}

func TestCartService_AddItem_StorageFailure(t *testing.T) {
	svc := NewCartService(failingCartRepository{}, newFakeDrugRepository())

	_, err := svc.AddItem(context.Background(), "42", domain.CartItem{DrugID: "d-1", BranchID: "A", Quantity: 1})
	assert.Error(t, err)

	_, err = svc.AddItem(context.Background(), "", domain.CartItem{DrugID: "d-1", BranchID: "A", Quantity: 1})
	assert.ErrorIs(t, err, ErrMissingCustomer)
}
