package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shoply/backend/internal/core/domain"
)

// Read-side queries. Orders are joined with live product data; lines whose
// product was deleted render as a placeholder instead of breaking the view.

func (m *MySQLAdapter) GetOrderView(ctx context.Context, orderID string) (*domain.OrderView, error) {
	views, err := m.queryOrderViews(ctx, `WHERE o.id = ?`, orderID)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, domain.NotFound("order not found")
	}
	return &views[0], nil
}

func (m *MySQLAdapter) OrderSellers(ctx context.Context, orderID string) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT DISTINCT p.seller_id
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ?`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order sellers: %w", err)
	}
	defer rows.Close()

	var sellers []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan seller id: %w", err)
		}
		sellers = append(sellers, id)
	}
	return sellers, rows.Err()
}

func (m *MySQLAdapter) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]domain.OrderView, error) {
	return m.queryOrderViews(ctx, `WHERE o.buyer_id = ? ORDER BY o.created_at DESC`, buyerID)
}

func (m *MySQLAdapter) ListOrdersBySeller(ctx context.Context, sellerID string) ([]domain.OrderView, error) {
	return m.queryOrderViews(ctx, `
		WHERE o.status <> 'Cancelled' AND o.id IN (
			SELECT DISTINCT oi.order_id
			FROM order_items oi JOIN products p ON p.id = oi.product_id
			WHERE p.seller_id = ?
		)
		ORDER BY o.created_at DESC`, sellerID)
}

func (m *MySQLAdapter) ListAllOrders(ctx context.Context) ([]domain.OrderView, error) {
	return m.queryOrderViews(ctx, `ORDER BY o.created_at DESC`)
}

func (m *MySQLAdapter) OrderStats(ctx context.Context, buyerID string) (*domain.OrderStats, error) {
	var stats domain.OrderStats
	err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(status = 'Delivered'), 0),
			COALESCE(SUM(status = 'Processing'), 0),
			COALESCE(SUM(status = 'Cancelled'), 0)
		FROM orders WHERE buyer_id = ?`, buyerID,
	).Scan(&stats.Total, &stats.Completed, &stats.Pending, &stats.Cancelled)
	if err != nil {
		return nil, fmt.Errorf("select order stats: %w", err)
	}
	return &stats, nil
}

func (m *MySQLAdapter) SetTrackingNumber(ctx context.Context, orderID, trackingNumber string) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE orders SET tracking_number = ?, updated_at = NOW() WHERE id = ?`,
		trackingNumber, orderID,
	)
	if err != nil {
		return fmt.Errorf("set tracking number: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.NotFound("order not found")
	}
	return nil
}

func (m *MySQLAdapter) queryOrderViews(ctx context.Context, clause string, args ...any) ([]domain.OrderView, error) {
	query := `
		SELECT o.id, o.buyer_id, o.ship_address, o.ship_city, o.ship_postal_code, o.ship_phone,
			o.total_amount, o.payment_method, o.payment_status, o.status,
			COALESCE(o.tracking_number, ''), o.created_at, o.updated_at
		FROM orders o ` + clause

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var views []domain.OrderView
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.BuyerID, &o.ShippingAddress.Address, &o.ShippingAddress.City,
			&o.ShippingAddress.PostalCode, &o.ShippingAddress.Phone,
			&o.TotalAmount, &o.PaymentMethod, &o.PaymentStatus, &o.Status, &o.TrackingNumber,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		views = append(views, domain.OrderView{Order: o})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range views {
		items, err := m.queryOrderItemViews(ctx, views[i].Order.ID)
		if err != nil {
			return nil, err
		}
		views[i].Items = items
		for _, it := range items {
			views[i].Order.Items = append(views[i].Order.Items, domain.OrderItem{
				ProductID: it.Product.ID,
				Quantity:  it.Quantity,
				Price:     it.Price,
			})
		}
	}
	return views, nil
}

func (m *MySQLAdapter) queryOrderItemViews(ctx context.Context, orderID string) ([]domain.OrderItemView, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT oi.product_id, oi.quantity, oi.price, p.id, p.title, p.price
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ?`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order item views: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItemView
	for rows.Next() {
		var (
			item         domain.OrderItemView
			productID    string
			liveID       sql.NullString
			liveTitle    sql.NullString
			livePriceRaw sql.NullString
		)
		if err := rows.Scan(&productID, &item.Quantity, &item.Price, &liveID, &liveTitle, &livePriceRaw); err != nil {
			return nil, fmt.Errorf("scan order item view: %w", err)
		}
		if liveID.Valid {
			item.Product = domain.ProductView{ID: liveID.String, Title: liveTitle.String}
			if livePriceRaw.Valid {
				price, err := decimal.NewFromString(livePriceRaw.String)
				if err != nil {
					return nil, fmt.Errorf("parse product price: %w", err)
				}
				item.Product.Price = price
			}
		} else {
			item.Product = domain.DeletedProductView()
			item.Product.ID = productID
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
