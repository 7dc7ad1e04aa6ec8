package database

import (
	"context"

	"github.com/lysyi3m/courtrss/app/notify"
)

type NotificationRepository interface {
	Record(ctx context.Context, n notify.Notification, channel string) error
	List(ctx context.Context, limit int) ([]NotificationRecord, error)
	Count(ctx context.Context) (int, error)
}
