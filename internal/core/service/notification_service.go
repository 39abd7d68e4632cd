package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shoply/backend/internal/core/domain"
	"github.com/shoply/backend/internal/port"
)

const notificationListLimit = 50

// NotificationService persists notifications and pushes them to the
// recipient's realtime channel. The whole path is best-effort: it runs only
// after the triggering transaction committed and its failures are logged,
// never propagated.
type NotificationService struct {
	store    port.NotificationStore
	cache    port.UnreadCountCache
	notifier port.Notifier
}

func NewNotificationService(store port.NotificationStore, cache port.UnreadCountCache, notifier port.Notifier) *NotificationService {
	return &NotificationService{store: store, cache: cache, notifier: notifier}
}

type NotifyInput struct {
	RecipientID string
	Type        domain.NotificationType
	Message     string
	RelatedID   string
	Priority    domain.NotificationPriority
}

// Notify creates the notification record and publishes it together with the
// recipient's current unread count. It never returns an error.
func (s *NotificationService) Notify(ctx context.Context, in NotifyInput) {
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}

	n := &domain.Notification{
		ID:          uuid.NewString(),
		RecipientID: in.RecipientID,
		Type:        in.Type,
		Message:     in.Message,
		RelatedID:   in.RelatedID,
		Priority:    priority,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.InsertNotification(ctx, n); err != nil {
		slog.ErrorContext(ctx, "failed to persist notification",
			"recipient_id", in.RecipientID, "type", in.Type, "error", err)
		return
	}

	if err := s.cache.InvalidateUnreadCount(ctx, in.RecipientID); err != nil {
		slog.WarnContext(ctx, "failed to invalidate unread count cache",
			"recipient_id", in.RecipientID, "error", err)
	}

	unread, err := s.unreadCount(ctx, in.RecipientID)
	if err != nil {
		slog.WarnContext(ctx, "failed to load unread count",
			"recipient_id", in.RecipientID, "error", err)
	}

	event := domain.NotificationEvent{Notification: *n, UnreadCount: unread}
	if err := s.notifier.Publish(ctx, in.RecipientID, event); err != nil {
		slog.ErrorContext(ctx, "failed to publish notification event",
			"recipient_id", in.RecipientID, "notification_id", n.ID, "error", err)
	}
}

// List returns the recipient's newest notifications and their unread count.
func (s *NotificationService) List(ctx context.Context, userID string) ([]domain.Notification, int, error) {
	notifications, err := s.store.ListByRecipient(ctx, userID, notificationListLimit)
	if err != nil {
		return nil, 0, domain.Internal("failed to list notifications", err)
	}
	unread, err := s.unreadCount(ctx, userID)
	if err != nil {
		return nil, 0, domain.Internal("failed to count unread notifications", err)
	}
	return notifications, unread, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := s.store.MarkRead(ctx, notificationID, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.store.MarkAllRead(ctx, userID); err != nil {
		return domain.Internal("failed to mark notifications read", err)
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *NotificationService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.InvalidateUnreadCount(ctx, userID); err != nil {
		slog.WarnContext(ctx, "failed to invalidate unread count cache",
			"recipient_id", userID, "error", err)
	}
}

func (s *NotificationService) unreadCount(ctx context.Context, userID string) (int, error) {
	if count, ok, err := s.cache.GetUnreadCount(ctx, userID); err == nil && ok {
		return count, nil
	} else if err != nil {
		slog.WarnContext(ctx, "unread count cache read failed", "recipient_id", userID, "error", err)
	}

	count, err := s.store.UnreadCount(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.cache.SetUnreadCount(ctx, userID, count); err != nil {
		slog.WarnContext(ctx, "unread count cache write failed", "recipient_id", userID, "error", err)
	}
	return count, nil
}
