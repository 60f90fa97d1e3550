package domain

const (
	OrderStatusPending   = "pending"
	RequestStatusPending = "pending"
)

// OrderDraft is everything the storefront sends when creating an order. The
// backend owns the rest of the record.
type OrderDraft struct {
	TotalPrice    float64 `json:"totalPrice"`
	PaymentMethod string  `json:"paymentMethod"`
	Status        string  `json:"status"`
}

// BranchRequest is the fulfillment record routed to a single branch.
type BranchRequest struct {
	BranchID string        `json:"branchId"`
	OrderID  string        `json:"orderId"`
	Items    []RequestItem `json:"items"`
	Status   string        `json:"status"`
	Customer string        `json:"customer"`
}

type RequestItem struct {
	DrugID   string  `json:"drugId"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Placement is the result of a successful checkout.
type Placement struct {
	OrderID  string `json:"order_id"`
	Redirect string `json:"redirect"`
}
