package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	CheckoutOutcomeSucceeded     = "SUCCEEDED"
	CheckoutOutcomeOrderFailed   = "ORDER_FAILED"
	CheckoutOutcomeRequestFailed = "REQUEST_FAILED"

	BranchOutcomeSent   = "SENT"
	BranchOutcomeFailed = "FAILED"
)

// CREATE TABLE public.checkout_attempts (
//     id              UUID PRIMARY KEY,
//     customer_id     TEXT NOT NULL,
//     order_id        TEXT,
//     total_price     NUMERIC,
//     payment_method  TEXT,
//     outcome         TEXT,
//     branches        JSONB,
//     created_at      TIMESTAMPTZ DEFAULT NOW()
// );

// CheckoutAttempt records one press of "place order" and what each branch
// received, so operators can see partial failures.
type CheckoutAttempt struct {
	ID            string         `gorm:"primaryKey;type:uuid"`
	CustomerID    string         `gorm:"column:customer_id;type:text;not null"`
	OrderID       string         `gorm:"column:order_id;type:text"`
	TotalPrice    float64        `gorm:"column:total_price;type:numeric"`
	PaymentMethod string         `gorm:"column:payment_method;type:text"`
	Outcome       string         `gorm:"column:outcome;type:text"`
	Branches      datatypes.JSON `gorm:"column:branches;type:jsonb"`
	CreatedAt     time.Time      `gorm:"column:created_at"`
}

func (CheckoutAttempt) TableName() string {
	return "checkout_attempts"
}

type BranchOutcome struct {
	BranchID string `json:"branch_id"`
	Items    int    `json:"items"`
	Outcome  string `json:"outcome"`
	Error    string `json:"error,omitempty"`
}
