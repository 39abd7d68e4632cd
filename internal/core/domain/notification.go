package domain

import "time"

type NotificationType string

const (
	NotifyOrder            NotificationType = "order"
	NotifyProduct          NotificationType = "product"
	NotifyProductAvailable NotificationType = "product-available"
	NotifySystem           NotificationType = "system"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
)

type Notification struct {
	ID          string
	RecipientID string
	Type        NotificationType
	Message     string
	Read        bool
	RelatedID   string
	Priority    NotificationPriority
	CreatedAt   time.Time
}

// NotificationEvent is the payload pushed to a recipient's realtime channel.
type NotificationEvent struct {
	Notification Notification `json:"notification"`
	UnreadCount  int          `json:"unreadCount"`
}
