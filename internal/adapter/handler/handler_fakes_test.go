package handler

import (
	"context"

	"github.com/shoply/backend/internal/core/domain"
	"github.com/shoply/backend/internal/port"
)

// fakeStore is a minimal single-threaded port.Store for handler tests. The
// service-level tests own transactional edge cases; here the store only has
// to move data in and out of the HTTP layer.
type fakeStore struct {
	products map[string]*domain.Product
	orders   map[string]*domain.Order
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: make(map[string]*domain.Product),
		orders:   make(map[string]*domain.Order),
	}
}

func (s *fakeStore) BeginTx(ctx context.Context) (port.Tx, error) {
	return &fakeTx{store: s}, nil
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) Commit() error   { return nil }
func (t *fakeTx) Rollback() error { return nil }

func (t *fakeTx) ProductsForUpdate(ctx context.Context, productIDs []string) ([]domain.Product, error) {
	var products []domain.Product
	for _, id := range productIDs {
		if p, ok := t.store.products[id]; ok {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (t *fakeTx) ReserveStock(ctx context.Context, productID string, qty int) error {
	p, ok := t.store.products[productID]
	if !ok {
		return domain.NotFound("product not found")
	}
	if p.Quantity < qty {
		return domain.InsufficientStock(p.ID, p.Title, p.Quantity)
	}
	p.Quantity -= qty
	return nil
}

func (t *fakeTx) ReleaseStock(ctx context.Context, productID string, qty int) error {
	if p, ok := t.store.products[productID]; ok {
		p.Quantity += qty
	}
	return nil
}

func (t *fakeTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	cp := *order
	t.store.orders[order.ID] = &cp
	return nil
}

func (t *fakeTx) OrderForUpdate(ctx context.Context, orderID string) (*domain.Order, error) {
	o, ok := t.store.orders[orderID]
	if !ok {
		return nil, domain.NotFound("order not found")
	}
	cp := *o
	return &cp, nil
}

func (t *fakeTx) UpdateOrderStatus(ctx context.Context, orderID string, change domain.StatusChange) error {
	o, ok := t.store.orders[orderID]
	if !ok {
		return domain.NotFound("order not found")
	}
	o.Status = change.Status
	o.StatusHistory = append(o.StatusHistory, change)
	return nil
}

func (t *fakeTx) ClearCart(ctx context.Context, buyerID string) error { return nil }

func (s *fakeStore) GetOrderView(ctx context.Context, orderID string) (*domain.OrderView, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return nil, domain.NotFound("order not found")
	}
	view := domain.OrderView{Order: *o}
	for _, it := range o.Items {
		iv := domain.OrderItemView{Quantity: it.Quantity, Price: it.Price}
		if p, ok := s.products[it.ProductID]; ok {
			iv.Product = domain.ProductView{ID: p.ID, Title: p.Title, Price: p.Price}
		} else {
			iv.Product = domain.DeletedProductView()
		}
		view.Items = append(view.Items, iv)
	}
	return &view, nil
}

func (s *fakeStore) OrderSellers(ctx context.Context, orderID string) ([]string, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return nil, domain.NotFound("order not found")
	}
	var sellers []string
	seen := make(map[string]struct{})
	for _, it := range o.Items {
		if p, ok := s.products[it.ProductID]; ok {
			if _, dup := seen[p.SellerID]; !dup {
				seen[p.SellerID] = struct{}{}
				sellers = append(sellers, p.SellerID)
			}
		}
	}
	return sellers, nil
}

func (s *fakeStore) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]domain.OrderView, error) {
	var views []domain.OrderView
	for id, o := range s.orders {
		if o.BuyerID == buyerID {
			v, _ := s.GetOrderView(ctx, id)
			views = append(views, *v)
		}
	}
	return views, nil
}

func (s *fakeStore) ListOrdersBySeller(ctx context.Context, sellerID string) ([]domain.OrderView, error) {
	var views []domain.OrderView
	for id, o := range s.orders {
		if o.Status == domain.StatusCancelled {
			continue
		}
		sellers, _ := s.OrderSellers(ctx, id)
		for _, sid := range sellers {
			if sid == sellerID {
				v, _ := s.GetOrderView(ctx, id)
				views = append(views, *v)
				break
			}
		}
	}
	return views, nil
}

func (s *fakeStore) ListAllOrders(ctx context.Context) ([]domain.OrderView, error) {
	var views []domain.OrderView
	for id := range s.orders {
		v, _ := s.GetOrderView(ctx, id)
		views = append(views, *v)
	}
	return views, nil
}

func (s *fakeStore) OrderStats(ctx context.Context, buyerID string) (*domain.OrderStats, error) {
	var stats domain.OrderStats
	for _, o := range s.orders {
		if o.BuyerID != buyerID {
			continue
		}
		stats.Total++
		switch o.Status {
		case domain.StatusDelivered:
			stats.Completed++
		case domain.StatusProcessing:
			stats.Pending++
		case domain.StatusCancelled:
			stats.Cancelled++
		}
	}
	return &stats, nil
}

func (s *fakeStore) SetTrackingNumber(ctx context.Context, orderID, trackingNumber string) error {
	o, ok := s.orders[orderID]
	if !ok {
		return domain.NotFound("order not found")
	}
	o.TrackingNumber = trackingNumber
	return nil
}

type fakeNotificationStore struct {
	rows []*domain.Notification
}

func (s *fakeNotificationStore) InsertNotification(ctx context.Context, n *domain.Notification) error {
	cp := *n
	s.rows = append(s.rows, &cp)
	return nil
}

func (s *fakeNotificationStore) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	for i := len(s.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if s.rows[i].RecipientID == recipientID {
			out = append(out, *s.rows[i])
		}
	}
	return out, nil
}

func (s *fakeNotificationStore) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	count := 0
	for _, n := range s.rows {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *fakeNotificationStore) MarkRead(ctx context.Context, notificationID, recipientID string) error {
	for _, n := range s.rows {
		if n.ID == notificationID && n.RecipientID == recipientID {
			n.Read = true
			return nil
		}
	}
	return domain.NotFound("notification not found")
}

func (s *fakeNotificationStore) MarkAllRead(ctx context.Context, recipientID string) error {
	for _, n := range s.rows {
		if n.RecipientID == recipientID {
			n.Read = true
		}
	}
	return nil
}

type fakeCache struct{}

func (fakeCache) GetUnreadCount(ctx context.Context, userID string) (int, bool, error) {
	return 0, false, nil
}
func (fakeCache) SetUnreadCount(ctx context.Context, userID string, count int) error { return nil }
func (fakeCache) InvalidateUnreadCount(ctx context.Context, userID string) error     { return nil }

type fakeNotifier struct{}

func (fakeNotifier) Publish(ctx context.Context, recipientID string, event domain.NotificationEvent) error {
	return nil
}
