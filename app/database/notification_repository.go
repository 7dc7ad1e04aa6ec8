package database

import (
	"context"
	"fmt"
	"time"

	"github.com/lysyi3m/courtrss/app/notify"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

var (
	_ NotificationRepository = (*NotificationRepo)(nil)
	_ notify.Journal         = (*NotificationRepo)(nil)
)

type NotificationRepo struct {
	db  *DB
	now func() time.Time
}

func NewNotificationRepository(db *DB) *NotificationRepo {
	return &NotificationRepo{db: db, now: time.Now}
}

func (r *NotificationRepo) Record(ctx context.Context, n notify.Notification, channel string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (notification_id, channel, title, link_text, link_url, feed_url, is_error, created_at, delivered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, channel, n.Title, n.LinkText, n.LinkURL, n.FeedURL, n.IsError,
		n.CreatedAt.UTC().Format(time.RFC3339Nano), r.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}

// List returns the most recent deliveries, newest first.
func (r *NotificationRepo) List(ctx context.Context, limit int) ([]NotificationRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, notification_id, channel, title, link_text, link_url, feed_url, is_error, created_at, delivered_at
		FROM notifications
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var records []NotificationRecord
	for rows.Next() {
		var rec NotificationRecord
		var createdAt, deliveredAt string

		if err := rows.Scan(&rec.ID, &rec.NotificationID, &rec.Channel, &rec.Title, &rec.LinkText,
			&rec.LinkURL, &rec.FeedURL, &rec.IsError, &createdAt, &deliveredAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if rec.DeliveredAt, err = time.Parse(time.RFC3339Nano, deliveredAt); err != nil {
			return nil, fmt.Errorf("failed to parse delivered_at: %w", err)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return records, nil
}

func (r *NotificationRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}
