package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the mutable pre-purchase accumulator. Its id is an opaque
// single-use token: once the cart is converted into an order the id is
// permanently unresolvable.
type Cart struct {
	ID         string          `json:"id"`
	CreatedAt  time.Time       `json:"created_at"`
	Items      []CartItem      `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// CartItem is unique per (cart, product); adding the same product again
// merges quantities instead of creating a second line.
type CartItem struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	Title      string          `json:"title,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}
