package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shoply/backend/internal/core/domain"
	"github.com/shoply/backend/internal/port"
)

// MySQLAdapter implements port.Store and port.NotificationStore over InnoDB.
// Row locks taken by SELECT ... FOR UPDATE plus the conditional decrement
// give the read-check-decrement sequence its isolation.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) BeginTx(ctx context.Context) (port.Tx, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &mysqlTx{tx: tx}, nil
}

type mysqlTx struct {
	tx   *sql.Tx
	done bool
}

func (t *mysqlTx) Commit() error {
	t.done = true
	return t.tx.Commit()
}

func (t *mysqlTx) Rollback() error {
	if t.done {
		return nil
	}
	return t.tx.Rollback()
}

func (t *mysqlTx) ProductsForUpdate(ctx context.Context, productIDs []string) ([]domain.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, title, price, quantity, seller_id
		FROM products WHERE id IN (%s) FOR UPDATE`, placeholders(len(productIDs)))

	rows, err := t.tx.QueryContext(ctx, query, stringArgs(productIDs)...)
	if err != nil {
		return nil, fmt.Errorf("select products for update: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Price, &p.Quantity, &p.SellerID); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (t *mysqlTx) ReserveStock(ctx context.Context, productID string, qty int) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE products
		SET quantity = quantity - ?, updated_at = NOW()
		WHERE id = ? AND quantity >= ?`,
		qty, productID, qty,
	)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.Conflict("insufficient stock for product %s", productID)
	}
	return nil
}

func (t *mysqlTx) ReleaseStock(ctx context.Context, productID string, qty int) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE products
		SET quantity = quantity + ?, updated_at = NOW()
		WHERE id = ?`,
		qty, productID,
	)
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}
	return nil
}

func (t *mysqlTx) InsertOrder(ctx context.Context, o *domain.Order) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO orders (id, buyer_id, ship_address, ship_city, ship_postal_code, ship_phone,
			total_amount, payment_method, payment_status, status, tracking_number, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.BuyerID, o.ShippingAddress.Address, o.ShippingAddress.City,
		o.ShippingAddress.PostalCode, o.ShippingAddress.Phone,
		o.TotalAmount, o.PaymentMethod, o.PaymentStatus, o.Status, o.TrackingNumber,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range o.Items {
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES (?, ?, ?, ?)`,
			o.ID, item.ProductID, item.Quantity, item.Price,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	for _, change := range o.StatusHistory {
		if err := t.insertStatusChange(ctx, o.ID, change); err != nil {
			return err
		}
	}
	return nil
}

func (t *mysqlTx) OrderForUpdate(ctx context.Context, orderID string) (*domain.Order, error) {
	var o domain.Order
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, buyer_id, ship_address, ship_city, ship_postal_code, ship_phone,
			total_amount, payment_method, payment_status, status, COALESCE(tracking_number, ''),
			created_at, updated_at
		FROM orders WHERE id = ? FOR UPDATE`, orderID,
	).Scan(&o.ID, &o.BuyerID, &o.ShippingAddress.Address, &o.ShippingAddress.City,
		&o.ShippingAddress.PostalCode, &o.ShippingAddress.Phone,
		&o.TotalAmount, &o.PaymentMethod, &o.PaymentStatus, &o.Status, &o.TrackingNumber,
		&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("select order for update: %w", err)
	}

	rows, err := t.tx.QueryContext(ctx, `
		SELECT product_id, quantity, price FROM order_items WHERE order_id = ?`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	history, err := t.tx.QueryContext(ctx, `
		SELECT status, changed_at, changed_by
		FROM order_status_history WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select status history: %w", err)
	}
	defer history.Close()
	for history.Next() {
		var change domain.StatusChange
		if err := history.Scan(&change.Status, &change.ChangedAt, &change.ChangedBy); err != nil {
			return nil, fmt.Errorf("scan status change: %w", err)
		}
		o.StatusHistory = append(o.StatusHistory, change)
	}
	return &o, history.Err()
}

func (t *mysqlTx) UpdateOrderStatus(ctx context.Context, orderID string, change domain.StatusChange) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		change.Status, change.ChangedAt, orderID,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.NotFound("order not found")
	}
	return t.insertStatusChange(ctx, orderID, change)
}

func (t *mysqlTx) insertStatusChange(ctx context.Context, orderID string, change domain.StatusChange) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO order_status_history (order_id, status, changed_at, changed_by)
		VALUES (?, ?, ?, ?)`,
		orderID, change.Status, change.ChangedAt, change.ChangedBy,
	)
	if err != nil {
		return fmt.Errorf("insert status change: %w", err)
	}
	return nil
}

func (t *mysqlTx) ClearCart(ctx context.Context, buyerID string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, buyerID); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx, `UPDATE carts SET total = 0 WHERE user_id = ?`, buyerID); err != nil {
		return fmt.Errorf("reset cart total: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
