package port

import (
	"context"

	"github.com/shoply/backend/internal/core/domain"
)

// NotificationStore persists notifications outside the order transaction.
// The checkout path only writes here after its transaction committed.
type NotificationStore interface {
	InsertNotification(ctx context.Context, n *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, recipientID string) (int, error)
	// MarkRead is recipient-scoped: a user can only mark their own rows.
	MarkRead(ctx context.Context, notificationID, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) error
}
