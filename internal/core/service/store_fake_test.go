package service

import (
	"context"
	"sort"
	"sync"

	"github.com/shoply/backend/internal/core/domain"
	"github.com/shoply/backend/internal/port"
)

// memStore is an in-memory port.Store. One mutex is held from BeginTx until
// Commit/Rollback, which serializes transactions the way the real store's
// row locks do, and a rollback journal undoes uncommitted writes.
type memStore struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	orders   map[string]*domain.Order
	carts    map[string]*domain.Cart
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[string]*domain.Product),
		orders:   make(map[string]*domain.Order),
		carts:    make(map[string]*domain.Cart),
	}
}

func (s *memStore) addProduct(p domain.Product) {
	cp := p
	s.products[p.ID] = &cp
}

func (s *memStore) addCart(c domain.Cart) {
	cp := c
	s.carts[c.UserID] = &cp
}

func (s *memStore) productQuantity(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		return p.Quantity
	}
	return -1
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) BeginTx(ctx context.Context) (port.Tx, error) {
	s.mu.Lock()
	return &memTx{store: s}, nil
}

type memTx struct {
	store  *memStore
	undo   []func()
	closed bool
}

func (t *memTx) Commit() error {
	t.closed = true
	t.store.mu.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.closed {
		return nil
	}
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.closed = true
	t.store.mu.Unlock()
	return nil
}

func (t *memTx) ProductsForUpdate(ctx context.Context, productIDs []string) ([]domain.Product, error) {
	var products []domain.Product
	for _, id := range productIDs {
		if p, ok := t.store.products[id]; ok {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (t *memTx) ReserveStock(ctx context.Context, productID string, qty int) error {
	p, ok := t.store.products[productID]
	if !ok {
		return domain.NotFound("product not found")
	}
	if p.Quantity < qty {
		return domain.InsufficientStock(p.ID, p.Title, p.Quantity)
	}
	p.Quantity -= qty
	t.undo = append(t.undo, func() { p.Quantity += qty })
	return nil
}

func (t *memTx) ReleaseStock(ctx context.Context, productID string, qty int) error {
	p, ok := t.store.products[productID]
	if !ok {
		return domain.NotFound("product not found")
	}
	p.Quantity += qty
	t.undo = append(t.undo, func() { p.Quantity -= qty })
	return nil
}

func (t *memTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	cp := cloneOrder(order)
	t.store.orders[order.ID] = cp
	t.undo = append(t.undo, func() { delete(t.store.orders, order.ID) })
	return nil
}

func (t *memTx) OrderForUpdate(ctx context.Context, orderID string) (*domain.Order, error) {
	o, ok := t.store.orders[orderID]
	if !ok {
		return nil, domain.NotFound("order not found")
	}
	return cloneOrder(o), nil
}

func (t *memTx) UpdateOrderStatus(ctx context.Context, orderID string, change domain.StatusChange) error {
	o, ok := t.store.orders[orderID]
	if !ok {
		return domain.NotFound("order not found")
	}
	prev := o.Status
	o.Status = change.Status
	o.StatusHistory = append(o.StatusHistory, change)
	o.UpdatedAt = change.ChangedAt
	t.undo = append(t.undo, func() {
		o.Status = prev
		o.StatusHistory = o.StatusHistory[:len(o.StatusHistory)-1]
	})
	return nil
}

func (t *memTx) ClearCart(ctx context.Context, buyerID string) error {
	c, ok := t.store.carts[buyerID]
	if !ok {
		return nil
	}
	prevItems, prevTotal := c.Items, c.Total
	c.Items = nil
	c.Total = c.Total.Sub(c.Total)
	t.undo = append(t.undo, func() {
		c.Items = prevItems
		c.Total = prevTotal
	})
	return nil
}

func (s *memStore) GetOrderView(ctx context.Context, orderID string) (*domain.OrderView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, domain.NotFound("order not found")
	}
	view := s.buildView(o)
	return &view, nil
}

func (s *memStore) OrderSellers(ctx context.Context, orderID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, domain.NotFound("order not found")
	}
	seen := make(map[string]struct{})
	var sellers []string
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

func (s *memStore) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]domain.OrderView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var views []domain.OrderView
	for _, o := range s.orders {
		if o.BuyerID == buyerID {
			views = append(views, s.buildView(o))
		}
	}
	sortViews(views)
	return views, nil
}

func (s *memStore) ListOrdersBySeller(ctx context.Context, sellerID string) ([]domain.OrderView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var views []domain.OrderView
	for _, o := range s.orders {
		if o.Status == domain.StatusCancelled {
			continue
		}
		for _, it := range o.Items {
			if p, ok := s.products[it.ProductID]; ok && p.SellerID == sellerID {
				views = append(views, s.buildView(o))
				break
			}
		}
	}
	sortViews(views)
	return views, nil
}

func (s *memStore) ListAllOrders(ctx context.Context) ([]domain.OrderView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var views []domain.OrderView
	for _, o := range s.orders {
		views = append(views, s.buildView(o))
	}
	sortViews(views)
	return views, nil
}

func (s *memStore) OrderStats(ctx context.Context, buyerID string) (*domain.OrderStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
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

func (s *memStore) SetTrackingNumber(ctx context.Context, orderID, trackingNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return domain.NotFound("order not found")
	}
	o.TrackingNumber = trackingNumber
	return nil
}

func (s *memStore) buildView(o *domain.Order) domain.OrderView {
	view := domain.OrderView{Order: *cloneOrder(o)}
	for _, it := range o.Items {
		iv := domain.OrderItemView{Quantity: it.Quantity, Price: it.Price}
		if p, ok := s.products[it.ProductID]; ok {
			iv.Product = domain.ProductView{ID: p.ID, Title: p.Title, Price: p.Price}
		} else {
			iv.Product = domain.DeletedProductView()
			iv.Product.ID = it.ProductID
		}
		view.Items = append(view.Items, iv)
	}
	return view
}

func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	cp.StatusHistory = append([]domain.StatusChange(nil), o.StatusHistory...)
	return &cp
}

func sortViews(views []domain.OrderView) {
	sort.Slice(views, func(i, j int) bool {
		return views[i].Order.CreatedAt.After(views[j].Order.CreatedAt)
	})
}

// memNotificationStore is an in-memory port.NotificationStore.
type memNotificationStore struct {
	mu        sync.Mutex
	rows      []*domain.Notification
	insertErr error
}

func (s *memNotificationStore) InsertNotification(ctx context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	cp := *n
	s.rows = append(s.rows, &cp)
	return nil
}

func (s *memNotificationStore) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Notification
	for i := len(s.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if s.rows[i].RecipientID == recipientID {
			out = append(out, *s.rows[i])
		}
	}
	return out, nil
}

func (s *memNotificationStore) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.rows {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *memNotificationStore) MarkRead(ctx context.Context, notificationID, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.rows {
		if n.ID == notificationID && n.RecipientID == recipientID {
			n.Read = true
			return nil
		}
	}
	return domain.NotFound("notification not found")
}

func (s *memNotificationStore) MarkAllRead(ctx context.Context, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.rows {
		if n.RecipientID == recipientID {
			n.Read = true
		}
	}
	return nil
}

func (s *memNotificationStore) byRecipient(recipientID string) []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Notification
	for _, n := range s.rows {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	return out
}

// memCache is an in-memory port.UnreadCountCache.
type memCache struct {
	mu     sync.Mutex
	counts map[string]int
}

func newMemCache() *memCache {
	return &memCache{counts: make(map[string]int)}
}

func (c *memCache) GetUnreadCount(ctx context.Context, userID string) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	count, ok := c.counts[userID]
	return count, ok, nil
}

func (c *memCache) SetUnreadCount(ctx context.Context, userID string, count int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[userID] = count
	return nil
}

func (c *memCache) InvalidateUnreadCount(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, userID)
	return nil
}

// memNotifier records published events; err makes every publish fail.
type memNotifier struct {
	mu     sync.Mutex
	events map[string][]domain.NotificationEvent
	err    error
}

func newMemNotifier() *memNotifier {
	return &memNotifier{events: make(map[string][]domain.NotificationEvent)}
}

func (n *memNotifier) Publish(ctx context.Context, recipientID string, event domain.NotificationEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.events[recipientID] = append(n.events[recipientID], event)
	return nil
}

func (n *memNotifier) published(recipientID string) []domain.NotificationEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.NotificationEvent(nil), n.events[recipientID]...)
}
