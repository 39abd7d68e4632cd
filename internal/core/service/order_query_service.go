package service

import (
	"context"

	"github.com/shoply/backend/internal/core/domain"
	"github.com/shoply/backend/internal/port"
)

// OrderQueryService serves the read side: denormalized order views joined
// with live catalog data. It never mutates the aggregate.
type OrderQueryService struct {
	store port.Store
}

func NewOrderQueryService(store port.Store) *OrderQueryService {
	return &OrderQueryService{store: store}
}

func (s *OrderQueryService) MyOrders(ctx context.Context, buyerID string) ([]domain.OrderView, error) {
	views, err := s.store.ListOrdersByBuyer(ctx, buyerID)
	if err != nil {
		return nil, domain.Internal("failed to list orders", err)
	}
	return views, nil
}

func (s *OrderQueryService) SellerOrders(ctx context.Context, sellerID string) ([]domain.OrderView, error) {
	views, err := s.store.ListOrdersBySeller(ctx, sellerID)
	if err != nil {
		return nil, domain.Internal("failed to list seller orders", err)
	}
	return views, nil
}

func (s *OrderQueryService) AllOrders(ctx context.Context, actor domain.Actor) ([]domain.OrderView, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.Unauthorized("not authorized to list all orders")
	}
	views, err := s.store.ListAllOrders(ctx)
	if err != nil {
		return nil, domain.Internal("failed to list orders", err)
	}
	return views, nil
}

// OrderDetails returns one order view, scoped by ownership: buyers see their
// own orders, sellers see orders containing their products, admins see all.
func (s *OrderQueryService) OrderDetails(ctx context.Context, actor domain.Actor, orderID string) (*domain.OrderView, error) {
	view, err := s.store.GetOrderView(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case domain.RoleAdmin:
		return view, nil
	case domain.RoleBuyer:
		if view.Order.BuyerID != actor.ID {
			return nil, domain.Unauthorized("not authorized to view this order")
		}
		return view, nil
	case domain.RoleSeller:
		sellers, err := s.store.OrderSellers(ctx, orderID)
		if err != nil {
			return nil, domain.Internal("failed to resolve order sellers", err)
		}
		for _, id := range sellers {
			if id == actor.ID {
				return view, nil
			}
		}
	}
	return nil, domain.Unauthorized("not authorized to view this order")
}

func (s *OrderQueryService) MyStats(ctx context.Context, buyerID string) (*domain.OrderStats, error) {
	stats, err := s.store.OrderStats(ctx, buyerID)
	if err != nil {
		return nil, domain.Internal("failed to compute order stats", err)
	}
	return stats, nil
}
