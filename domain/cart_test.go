package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCart_Total(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{DrugID: "d-1", BranchID: "A", Quantity: 3, Price: 0.1},
		{DrugID: "d-2", BranchID: "B", Quantity: 1, Price: 0.2},
	}}

	assert.False(t, cart.IsEmpty())
	assert.Equal(t, "0.5", cart.Total().String())
	assert.True(t, Cart{}.IsEmpty())
	assert.True(t, Cart{}.Total().IsZero())
}

func TestFallbackDrugDetail(t *testing.T) {
	detail := FallbackDrugDetail()

	assert.Equal(t, "Unknown Drug", detail.DrugName)
	assert.Equal(t, "Unknown", detail.Category)
	assert.False(t, detail.HasImage())
}

func TestCart_Add(t *testing.T) {
	var cart Cart
	cart.Add(CartItem{DrugID: "d-1", BranchID: "A", Quantity: 1, Price: 2})
	cart.Add(CartItem{DrugID: "d-1", BranchID: "B", Quantity: 1, Price: 2})
	cart.Add(CartItem{DrugID: "d-1", BranchID: "A", Quantity: 2, Price: 2.5})

	assert.Equal(t, []CartItem{
		{DrugID: "d-1", BranchID: "A", Quantity: 3, Price: 2.5},
		{DrugID: "d-1", BranchID: "B", Quantity: 1, Price: 2},
	}, cart.Items)
}

func TestCart_RemoveOrdered(t *testing.T) {
	ordered := []CartItem{
		{DrugID: "d-1", BranchID: "A", Quantity: 2, Price: 1},
		{DrugID: "d-2", BranchID: "B", Quantity: 1, Price: 3},
	}

	tests := []struct {
		name     string
		stored   []CartItem
		expected []CartItem
	}{
		{
			name:     "exactly what was ordered",
			stored:   append([]CartItem(nil), ordered...),
			expected: nil,
		},
		{
			name: "line added after the snapshot",
			stored: []CartItem{
				{DrugID: "d-1", BranchID: "A", Quantity: 2, Price: 1},
				{DrugID: "d-2", BranchID: "B", Quantity: 1, Price: 3},
				{DrugID: "late", BranchID: "C", Quantity: 1, Price: 4},
			},
			expected: []CartItem{{DrugID: "late", BranchID: "C", Quantity: 1, Price: 4}},
		},
		{
			name: "line topped up after the snapshot",
			stored: []CartItem{
				{DrugID: "d-1", BranchID: "A", Quantity: 5, Price: 1},
				{DrugID: "d-2", BranchID: "B", Quantity: 1, Price: 3},
			},
			expected: []CartItem{{DrugID: "d-1", BranchID: "A", Quantity: 3, Price: 1}},
		},
		{
			name:     "cart already emptied elsewhere",
			stored:   nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := Cart{CustomerID: "42", Items: tt.stored}
			cart.RemoveOrdered(ordered)
			assert.Equal(t, tt.expected, cart.Items)
		})
	}
}
