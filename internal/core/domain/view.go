package domain

import "github.com/shopspring/decimal"

// Read-side projections. These join live catalog data at read time and stay
// separate from the Order aggregate so presentation never leaks into the
// write path.

type ProductView struct {
	ID      string
	Title   string
	Price   decimal.Decimal
	Deleted bool
}

// DeletedProductView stands in for a line whose product no longer exists.
func DeletedProductView() ProductView {
	return ProductView{Title: "Deleted Product", Price: decimal.Zero, Deleted: true}
}

type OrderItemView struct {
	Product  ProductView
	Quantity int
	Price    decimal.Decimal
}

type OrderView struct {
	Order Order
	Items []OrderItemView
}

type OrderStats struct {
	Total     int
	Completed int
	Pending   int
	Cancelled int
}
