package postgres

import (
	"context"

	"myPharmacyStore/domain"

	"gorm.io/gorm"
)

const defaultAttemptLimit = 50

type CheckoutRepository struct {
	DB *gorm.DB
}

func NewCheckoutRepository(db *gorm.DB) *CheckoutRepository {
	return &CheckoutRepository{
		DB: db,
	}
}

func (r *CheckoutRepository) CreateAttempt(ctx context.Context, attempt *domain.CheckoutAttempt) error {
	return r.DB.WithContext(ctx).Create(attempt).Error
}

// ListAttempts returns the newest attempts first. An empty customerID lists
// every customer.
func (r *CheckoutRepository) ListAttempts(ctx context.Context, customerID string, limit int) ([]domain.CheckoutAttempt, error) {
	if limit <= 0 {
		limit = defaultAttemptLimit
	}

	query := r.DB.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}

	var attempts []domain.CheckoutAttempt
	if err := query.Find(&attempts).Error; err != nil {
		return nil, err
	}

	return attempts, nil
}
