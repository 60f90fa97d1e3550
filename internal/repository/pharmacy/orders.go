package pharmacy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"myPharmacyStore/domain"
)

var ErrMissingOrderID = errors.New("pharmacy backend returned an order without id")

type placedOrder struct {
	ID json.RawMessage `json:"id"`
}

// PlaceOrder creates the order and returns the backend's identifier. The id
// may come back as a string or a number, both are returned as text.
func (r *PharmacyRepository) PlaceOrder(ctx context.Context, token string, draft domain.OrderDraft) (string, error) {
	var placed placedOrder
	if err := r.do(ctx, "place_order", http.MethodPost, "/api/orders/place/order", token, draft, &placed); err != nil {
		return "", err
	}

	id := normalizeID(placed.ID)
	if id == "" {
		return "", ErrMissingOrderID
	}

	return id, nil
}

func (r *PharmacyRepository) SaveRequest(ctx context.Context, token string, request domain.BranchRequest) error {
	return r.do(ctx, "save_request", http.MethodPost, "/api/requests/save", token, request, nil)
}

func normalizeID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	return ""
}
