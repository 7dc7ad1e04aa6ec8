// Package notify delivers keyword matches and feed outages to the configured
// channels.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	ChannelTypeWindow  = "window_notification"
	ChannelTypeDiscord = "discord_webhook"
)

type Notification struct {
	ID        string
	Title     string
	LinkText  string
	LinkURL   string
	FeedURL   string
	IsError   bool
	CreatedAt time.Time
}

func NewNotification(title, linkText, linkURL, feedURL string) Notification {
	return Notification{
		ID:        uuid.NewString(),
		Title:     title,
		LinkText:  linkText,
		LinkURL:   linkURL,
		FeedURL:   feedURL,
		CreatedAt: time.Now().UTC(),
	}
}

func NewErrorNotification(message, feedURL string) Notification {
	n := NewNotification(message, "", "", feedURL)
	n.IsError = true
	return n
}

// Channel is one configured delivery mechanism.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, n Notification) error
}

// Journal keeps a record of delivered notifications.
type Journal interface {
	Record(ctx context.Context, n Notification, channel string) error
}

// DeliveryError is a failed delivery on a single channel.
type DeliveryError struct {
	Channel    string
	StatusCode int
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s delivery failed with HTTP %d: %v", e.Channel, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s delivery failed: %v", e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
