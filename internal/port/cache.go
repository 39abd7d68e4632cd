package port

import "context"

// UnreadCountCache is a cache-aside layer over the unread notification count
// so every realtime push does not hit the store.
type UnreadCountCache interface {
	// GetUnreadCount returns (count, true) on a hit.
	GetUnreadCount(ctx context.Context, userID string) (int, bool, error)
	SetUnreadCount(ctx context.Context, userID string, count int) error
	InvalidateUnreadCount(ctx context.Context, userID string) error
}
