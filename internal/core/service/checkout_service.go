package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shoply/backend/internal/core/domain"
	"github.com/shoply/backend/internal/port"
)

// totalTolerance absorbs rounding differences between the client total and
// the server-side recomputation. Anything beyond it is treated as tampering
// or a stale price.
var totalTolerance = decimal.RequireFromString("0.01")

// CheckoutService turns a cart-derived item list into an order. The whole
// read-check-decrement-write sequence runs inside one store transaction, so
// concurrent checkouts against the same product serialize on the store and
// the loser gets a stock conflict instead of corrupting the ledger.
type CheckoutService struct {
	store         port.Store
	notifications *NotificationService
}

func NewCheckoutService(store port.Store, notifications *NotificationService) *CheckoutService {
	return &CheckoutService{store: store, notifications: notifications}
}

type CheckoutItem struct {
	ProductID string
	Quantity  int
}

type CheckoutInput struct {
	BuyerID         string
	Items           []CheckoutItem
	ShippingAddress domain.ShippingAddress
	TotalAmount     decimal.Decimal
	PaymentMethod   string
	CardNumber      string
}

// CreateOrder validates the request, reserves stock, persists the order with
// frozen prices and clears the buyer's cart, all atomically. Notifications go
// out only after the transaction committed and never fail the order.
func (s *CheckoutService) CreateOrder(ctx context.Context, in CheckoutInput) (*domain.Order, error) {
	method, err := validateCheckout(in)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, domain.Internal("failed to open transaction", err)
	}
	defer tx.Rollback()

	productIDs := distinctProductIDs(in.Items)
	products, err := tx.ProductsForUpdate(ctx, productIDs)
	if err != nil {
		return nil, domain.Internal("failed to load products", err)
	}
	if len(products) != len(productIDs) {
		return nil, domain.NotFound("some products no longer exist")
	}

	byID := make(map[string]domain.Product, len(products))
	remaining := make(map[string]int, len(products))
	for _, p := range products {
		byID[p.ID] = p
		remaining[p.ID] = p.Quantity
	}

	calculated := decimal.Zero
	orderItems := make([]domain.OrderItem, 0, len(in.Items))
	for _, line := range in.Items {
		p := byID[line.ProductID]
		if remaining[p.ID] < line.Quantity {
			return nil, domain.InsufficientStock(p.ID, p.Title, remaining[p.ID])
		}
		remaining[p.ID] -= line.Quantity

		calculated = calculated.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		orderItems = append(orderItems, domain.OrderItem{
			ProductID: p.ID,
			Quantity:  line.Quantity,
			Price:     p.Price,
		})
	}

	if calculated.Sub(in.TotalAmount).Abs().GreaterThan(totalTolerance) {
		return nil, domain.Validation("total amount mismatch: calculated %s, received %s",
			calculated.StringFixed(2), in.TotalAmount.StringFixed(2))
	}

	for _, line := range in.Items {
		if err := tx.ReserveStock(ctx, line.ProductID, line.Quantity); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:              uuid.NewString(),
		BuyerID:         in.BuyerID,
		Items:           orderItems,
		ShippingAddress: in.ShippingAddress,
		TotalAmount:     calculated,
		PaymentMethod:   method,
		PaymentStatus:   domain.PaymentCompleted,
		Status:          domain.StatusProcessing,
		StatusHistory: []domain.StatusChange{
			{Status: domain.StatusProcessing, ChangedAt: now, ChangedBy: in.BuyerID},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := tx.InsertOrder(ctx, order); err != nil {
		return nil, domain.Internal("failed to persist order", err)
	}
	if err := tx.ClearCart(ctx, in.BuyerID); err != nil {
		return nil, domain.Internal("failed to clear cart", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, domain.Internal("failed to commit order", err)
	}

	slog.InfoContext(ctx, "order created",
		"order_id", order.ID, "buyer_id", in.BuyerID, "total", calculated.StringFixed(2))

	s.fanOutCreated(context.WithoutCancel(ctx), order, byID, remaining)
	return order, nil
}

// fanOutCreated notifies the buyer, every distinct seller among the purchased
// items, and sellers whose stock dropped to the low-stock threshold.
func (s *CheckoutService) fanOutCreated(ctx context.Context, order *domain.Order, products map[string]domain.Product, remaining map[string]int) {
	s.notifications.Notify(ctx, NotifyInput{
		RecipientID: order.BuyerID,
		Type:        domain.NotifyOrder,
		Message:     "Your order has been placed and is being processed",
		RelatedID:   order.ID,
	})

	notifiedSellers := make(map[string]struct{})
	for _, item := range order.Items {
		p := products[item.ProductID]
		if _, ok := notifiedSellers[p.SellerID]; ok {
			continue
		}
		notifiedSellers[p.SellerID] = struct{}{}
		s.notifications.Notify(ctx, NotifyInput{
			RecipientID: p.SellerID,
			Type:        domain.NotifyOrder,
			Message:     "You have a new order for your products",
			RelatedID:   order.ID,
		})
	}

	for id, left := range remaining {
		if left > domain.LowStockThreshold {
			continue
		}
		p := products[id]
		s.notifications.Notify(ctx, NotifyInput{
			RecipientID: p.SellerID,
			Type:        domain.NotifyProduct,
			Message:     fmt.Sprintf("Product %q is low in stock (only %d left)", p.Title, left),
			RelatedID:   p.ID,
			Priority:    domain.PriorityHigh,
		})
	}
}

func validateCheckout(in CheckoutInput) (domain.PaymentMethod, error) {
	method, err := domain.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return "", err
	}
	if method == domain.PaymentCreditCard && !domain.ValidCardNumber(in.CardNumber) {
		return "", domain.Validation("invalid card number: must be 13-19 digits")
	}
	if err := in.ShippingAddress.Validate(); err != nil {
		return "", err
	}

	if len(in.Items) == 0 {
		return "", domain.Validation("order must contain at least one item")
	}
	if len(in.Items) > domain.MaxCartLines {
		return "", domain.Validation("order cannot contain more than %d line items", domain.MaxCartLines)
	}
	for _, line := range in.Items {
		if line.ProductID == "" {
			return "", domain.Validation("item product id is required")
		}
		if line.Quantity < 1 || line.Quantity > domain.MaxLineQuantity {
			return "", domain.Validation("item quantity must be between 1 and %d", domain.MaxLineQuantity)
		}
	}
	return method, nil
}

func distinctProductIDs(items []CheckoutItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}
