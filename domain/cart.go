package domain

import "github.com/shopspring/decimal"

// CartItem is one line of a customer's cart, as placed by the product pages.
type CartItem struct {
	DrugID   string  `json:"drugId"`
	BranchID string  `json:"branchId"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Subtotal is price times quantity, computed in decimal so sums of many
// lines do not drift.
func (i CartItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	CustomerID string     `json:"customerId"`
	Items      []CartItem `json:"items"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Add puts an item into the cart. The same drug from the same branch is
// merged into one line carrying the latest price.
func (c *Cart) Add(item CartItem) {
	for i := range c.Items {
		if c.Items[i].DrugID == item.DrugID && c.Items[i].BranchID == item.BranchID {
			c.Items[i].Quantity += item.Quantity
			c.Items[i].Price = item.Price
			return
		}
	}
	c.Items = append(c.Items, item)
}

type lineKey struct {
	drugID   string
	branchID string
}

// RemoveOrdered takes the ordered quantities out of the cart. Lines added or
// topped up after the order snapshot keep whatever was not ordered.
func (c *Cart) RemoveOrdered(ordered []CartItem) {
	pending := make(map[lineKey]int, len(ordered))
	for _, item := range ordered {
		pending[lineKey{item.DrugID, item.BranchID}] += item.Quantity
	}

	kept := c.Items[:0]
	for _, item := range c.Items {
		key := lineKey{item.DrugID, item.BranchID}
		if n := pending[key]; n > 0 {
			taken := min(n, item.Quantity)
			pending[key] -= taken
			item.Quantity -= taken
		}
		if item.Quantity > 0 {
			kept = append(kept, item)
		}
	}

	if len(kept) == 0 {
		c.Items = nil
		return
	}
	c.Items = kept
}

// CartLine is a cart item enriched with the drug metadata used to render it.
type CartLine struct {
	CartItem
	Detail           DrugDetail `json:"detail"`
	Subtotal         float64    `json:"subtotal"`
	ImagePlaceholder bool       `json:"imagePlaceholder"`
}

type CartView struct {
	Items   []CartLine `json:"items"`
	Total   float64    `json:"total"`
	Empty   bool       `json:"empty"`
	Message string     `json:"message,omitempty"`
}
