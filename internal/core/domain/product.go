package domain

import "github.com/shopspring/decimal"

// LowStockThreshold is the quantity at or below which the seller gets a
// replenishment notification. Evaluated once, at the inventory write site.
const LowStockThreshold = 5

type Product struct {
	ID       string
	Title    string
	Price    decimal.Decimal
	Quantity int
	SellerID string
}

func (p Product) LowStock() bool {
	return p.Quantity <= LowStockThreshold
}
