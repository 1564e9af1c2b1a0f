package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusComplete PaymentStatus = "complete"
	PaymentStatusFailed   PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusComplete, PaymentStatusFailed:
		return true
	}
	return false
}

// Order is immutable once committed, except for PaymentStatus which later
// stages of the pipeline may flip. A committed order always carries at
// least one item.
type Order struct {
	ID            string        `json:"id"`
	CustomerID    string        `json:"customer_id"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PlacedAt      time.Time     `json:"placed_at"`
	Items         []OrderItem   `json:"items"`
}

// OrderItem freezes the catalog price at conversion time. Later catalog
// price changes must never reach back into UnitPrice.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
