package database

import (
	"time"
)

// NotificationRecord is one successful delivery of a notification on one
// channel.
type NotificationRecord struct {
	ID             int64     `json:"id"`
	NotificationID string    `json:"notification_id"`
	Channel        string    `json:"channel"`
	Title          string    `json:"title"`
	LinkText       string    `json:"link_text,omitempty"`
	LinkURL        string    `json:"link_url,omitempty"`
	FeedURL        string    `json:"feed_url,omitempty"`
	IsError        bool      `json:"is_error"`
	CreatedAt      time.Time `json:"created_at"`
	DeliveredAt    time.Time `json:"delivered_at"`
}
