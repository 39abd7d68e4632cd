package domain

import "github.com/shopspring/decimal"

// Cart line limits enforced at checkout.
const (
	MaxCartLines    = 20
	MaxLineQuantity = 10
)

type CartItem struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal // price at the time the item was added
}

// Cart is owned by exactly one buyer. Checkout clears it, it is never
// deleted.
type Cart struct {
	UserID string
	Items  []CartItem
	Total  decimal.Decimal
}
