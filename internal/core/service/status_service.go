package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shoply/backend/internal/core/domain"
	"github.com/shoply/backend/internal/port"
)

// StatusService is the single authority over order status transitions. It
// enforces the role table, keeps terminal states immutable, and restores
// stock inside the same transaction whenever an order moves to Cancelled.
type StatusService struct {
	store         port.Store
	notifications *NotificationService
}

func NewStatusService(store port.Store, notifications *NotificationService) *StatusService {
	return &StatusService{store: store, notifications: notifications}
}

// UpdateStatus moves an order to the requested status on behalf of actor.
//
// Buyers never write status directly (they go through CancelOrder). Sellers
// may only move their own Processing orders to Shipped. Admins may perform
// any transition out of a non-terminal state.
func (s *StatusService) UpdateStatus(ctx context.Context, actor domain.Actor, orderID, status string) (*domain.Order, error) {
	next, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, domain.Internal("failed to open transaction", err)
	}
	defer tx.Rollback()

	order, err := tx.OrderForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, domain.Conflict("order is %s and can no longer change status", order.Status)
	}

	products, err := tx.ProductsForUpdate(ctx, order.ProductIDs())
	if err != nil {
		return nil, domain.Internal("failed to load order products", err)
	}

	switch actor.Role {
	case domain.RoleAdmin:
		// unrestricted
	case domain.RoleSeller:
		if order.Status != domain.StatusProcessing || next != domain.StatusShipped {
			return nil, domain.Unauthorized("sellers can only move Processing orders to Shipped")
		}
		if !sellerRepresented(products, actor.ID) {
			return nil, domain.Unauthorized("order contains none of your products")
		}
	default:
		return nil, domain.Unauthorized("not authorized to update order status")
	}

	if next == domain.StatusCancelled {
		if err := releaseOrderStock(ctx, tx, order); err != nil {
			return nil, err
		}
	}

	change := domain.StatusChange{Status: next, ChangedAt: time.Now().UTC(), ChangedBy: actor.ID}
	if err := tx.UpdateOrderStatus(ctx, orderID, change); err != nil {
		return nil, domain.Internal("failed to update order status", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, domain.Internal("failed to commit status change", err)
	}

	applyChange(order, change)
	slog.InfoContext(ctx, "order status updated",
		"order_id", order.ID, "status", next, "actor_id", actor.ID, "role", actor.Role)

	s.fanOutTransition(context.WithoutCancel(ctx), order, products)
	return order, nil
}

// CancelOrder is the ownership-scoped cancel entry point for orders that are
// currently Processing or Shipped. Repeating it on an already cancelled order
// reports not-found, so inventory is never credited twice.
func (s *StatusService) CancelOrder(ctx context.Context, actor domain.Actor, orderID string) (*domain.Order, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, domain.Internal("failed to open transaction", err)
	}
	defer tx.Rollback()

	order, err := tx.OrderForUpdate(ctx, orderID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, domain.NotFound("order not found or cannot be cancelled")
		}
		return nil, err
	}
	if !order.Cancellable() {
		return nil, domain.NotFound("order not found or cannot be cancelled")
	}

	products, err := tx.ProductsForUpdate(ctx, order.ProductIDs())
	if err != nil {
		return nil, domain.Internal("failed to load order products", err)
	}

	switch actor.Role {
	case domain.RoleAdmin:
		// unrestricted
	case domain.RoleBuyer:
		if order.BuyerID != actor.ID {
			return nil, domain.Unauthorized("you do not have permission to cancel this order")
		}
	case domain.RoleSeller:
		if !sellerRepresented(products, actor.ID) {
			return nil, domain.Unauthorized("you do not have permission to cancel this order")
		}
	default:
		return nil, domain.Unauthorized("you do not have permission to cancel this order")
	}

	if err := releaseOrderStock(ctx, tx, order); err != nil {
		return nil, err
	}

	change := domain.StatusChange{Status: domain.StatusCancelled, ChangedAt: time.Now().UTC(), ChangedBy: actor.ID}
	if err := tx.UpdateOrderStatus(ctx, orderID, change); err != nil {
		return nil, domain.Internal("failed to cancel order", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, domain.Internal("failed to commit cancellation", err)
	}

	applyChange(order, change)
	slog.InfoContext(ctx, "order cancelled", "order_id", order.ID, "actor_id", actor.ID, "role", actor.Role)

	s.fanOutTransition(context.WithoutCancel(ctx), order, products)
	return order, nil
}

// SetTrackingNumber attaches a shipment tracking number to an order.
func (s *StatusService) SetTrackingNumber(ctx context.Context, actor domain.Actor, orderID, trackingNumber string) error {
	if actor.Role != domain.RoleSeller && actor.Role != domain.RoleAdmin {
		return domain.Unauthorized("not authorized to set tracking numbers")
	}
	if trackingNumber == "" {
		return domain.Validation("tracking number is required")
	}
	return s.store.SetTrackingNumber(ctx, orderID, trackingNumber)
}

// fanOutTransition notifies the buyer about every committed transition, and
// the order's sellers when the new status is Processing or Delivered.
func (s *StatusService) fanOutTransition(ctx context.Context, order *domain.Order, products []domain.Product) {
	s.notifications.Notify(ctx, NotifyInput{
		RecipientID: order.BuyerID,
		Type:        domain.NotifyOrder,
		Message:     fmt.Sprintf("Your order is now %s", order.Status),
		RelatedID:   order.ID,
	})

	if order.Status != domain.StatusProcessing && order.Status != domain.StatusDelivered {
		return
	}
	notified := make(map[string]struct{})
	for _, p := range products {
		if _, ok := notified[p.SellerID]; ok {
			continue
		}
		notified[p.SellerID] = struct{}{}
		s.notifications.Notify(ctx, NotifyInput{
			RecipientID: p.SellerID,
			Type:        domain.NotifyOrder,
			Message:     fmt.Sprintf("An order with your products is now %s", order.Status),
			RelatedID:   order.ID,
		})
	}
}

// releaseOrderStock returns every reserved unit to the ledger, the exact
// inverse of the checkout-time decrement.
func releaseOrderStock(ctx context.Context, tx port.Tx, order *domain.Order) error {
	for _, item := range order.Items {
		if err := tx.ReleaseStock(ctx, item.ProductID, item.Quantity); err != nil {
			return domain.Internal("failed to restore stock", err)
		}
	}
	return nil
}

func sellerRepresented(products []domain.Product, sellerID string) bool {
	for _, p := range products {
		if p.SellerID == sellerID {
			return true
		}
	}
	return false
}

func applyChange(order *domain.Order, change domain.StatusChange) {
	order.Status = change.Status
	order.StatusHistory = append(order.StatusHistory, change)
	order.UpdatedAt = change.ChangedAt
}
