package port

import (
	"context"

	"github.com/shoply/backend/internal/core/domain"
)

// Notifier pushes an event to a recipient's realtime channel. Publishing to
// a recipient with no connected channel is a harmless no-op. Callers treat
// failures as best-effort and only log them.
type Notifier interface {
	Publish(ctx context.Context, recipientID string, event domain.NotificationEvent) error
}
