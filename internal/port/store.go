package port

import (
	"context"

	"github.com/shoply/backend/internal/core/domain"
)

// Store is the transactional document store backing orders, products and
// carts. Correctness of checkout and cancellation rests entirely on the
// isolation of the transactions it hands out.
type Store interface {
	// BeginTx opens a transaction. The caller must Commit or Rollback.
	BeginTx(ctx context.Context) (Tx, error)

	// GetOrderView returns the read-side projection of one order, with live
	// catalog data joined in. Returns a not-found error for unknown IDs.
	GetOrderView(ctx context.Context, orderID string) (*domain.OrderView, error)

	// OrderSellers returns the distinct sellers represented in the order's
	// line items.
	OrderSellers(ctx context.Context, orderID string) ([]string, error)

	ListOrdersByBuyer(ctx context.Context, buyerID string) ([]domain.OrderView, error)
	// ListOrdersBySeller returns non-cancelled orders containing at least one
	// of the seller's products.
	ListOrdersBySeller(ctx context.Context, sellerID string) ([]domain.OrderView, error)
	ListAllOrders(ctx context.Context) ([]domain.OrderView, error)
	OrderStats(ctx context.Context, buyerID string) (*domain.OrderStats, error)
	SetTrackingNumber(ctx context.Context, orderID, trackingNumber string) error
}

// Tx scopes every read-check-write sequence of the checkout and transition
// paths. Reserve and release execute inside it so they commit or roll back
// atomically with the order write.
type Tx interface {
	// ProductsForUpdate loads and locks the given products for the lifetime
	// of the transaction. Missing IDs are simply absent from the result.
	ProductsForUpdate(ctx context.Context, productIDs []string) ([]domain.Product, error)

	// ReserveStock decrements quantity, failing with a conflict if fewer
	// than qty units are available.
	ReserveStock(ctx context.Context, productID string, qty int) error

	// ReleaseStock increments quantity unconditionally.
	ReleaseStock(ctx context.Context, productID string, qty int) error

	InsertOrder(ctx context.Context, order *domain.Order) error

	// OrderForUpdate loads and locks an order with its items and history.
	OrderForUpdate(ctx context.Context, orderID string) (*domain.Order, error)

	// UpdateOrderStatus writes the new status and appends the history entry.
	UpdateOrderStatus(ctx context.Context, orderID string, change domain.StatusChange) error

	// ClearCart empties the buyer's cart without deleting it.
	ClearCart(ctx context.Context, buyerID string) error

	Commit() error
	Rollback() error
}
