package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shoply/backend/internal/core/domain"
)

const channelPrefix = "notifications:"

// RedisNotifier publishes notification events to a per-user pub/sub channel.
// A recipient with no subscribed connection simply receives nothing, which is
// exactly the contract: publishing to a disconnected user is a no-op.
type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) Publish(ctx context.Context, recipientID string, event domain.NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}
	if err := n.client.Publish(ctx, channelPrefix+recipientID, payload).Err(); err != nil {
		return fmt.Errorf("publish notification event: %w", err)
	}
	return nil
}

// Channel returns the pub/sub channel name for a recipient, for use by the
// realtime delivery edge.
func Channel(recipientID string) string {
	return channelPrefix + recipientID
}
