package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	unreadKeyPrefix = "unread:"
	unreadKeyTTL    = 5 * time.Minute
)

// RedisAdapter implements port.UnreadCountCache. The unread count is a pure
// cache: MySQL stays authoritative and every write path invalidates the key.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) GetUnreadCount(ctx context.Context, userID string) (int, bool, error) {
	count, err := r.client.Get(ctx, unreadKeyPrefix+userID).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

func (r *RedisAdapter) SetUnreadCount(ctx context.Context, userID string, count int) error {
	return r.client.Set(ctx, unreadKeyPrefix+userID, count, unreadKeyTTL).Err()
}

func (r *RedisAdapter) InvalidateUnreadCount(ctx context.Context, userID string) error {
	return r.client.Del(ctx, unreadKeyPrefix+userID).Err()
}
