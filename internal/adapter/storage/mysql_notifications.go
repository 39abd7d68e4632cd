package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shoply/backend/internal/core/domain"
)

// Notification persistence. Writes happen outside the order transaction, so
// a failure here never rolls back a committed order.

func (m *MySQLAdapter) InsertNotification(ctx context.Context, n *domain.Notification) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, type, message, is_read, related_id, priority, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.RecipientID, n.Type, n.Message, n.Read, nullable(n.RelatedID), n.Priority, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, recipient_id, type, message, is_read, COALESCE(related_id, ''), priority, created_at
		FROM notifications
		WHERE recipient_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("select notifications: %w", err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Type, &n.Message, &n.Read,
			&n.RelatedID, &n.Priority, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (m *MySQLAdapter) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = FALSE`,
		recipientID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (m *MySQLAdapter) MarkRead(ctx context.Context, notificationID, recipientID string) error {
	// RowsAffected is 0 both for a missing row and for an already-read one,
	// so existence is checked separately to keep marking idempotent.
	var exists int
	err := m.db.QueryRowContext(ctx, `
		SELECT 1 FROM notifications WHERE id = ? AND recipient_id = ?`,
		notificationID, recipientID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound("notification not found")
	}
	if err != nil {
		return fmt.Errorf("find notification: %w", err)
	}

	_, err = m.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE id = ? AND recipient_id = ?`,
		notificationID, recipientID,
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) MarkAllRead(ctx context.Context, recipientID string) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE recipient_id = ? AND is_read = FALSE`,
		recipientID,
	)
	if err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
