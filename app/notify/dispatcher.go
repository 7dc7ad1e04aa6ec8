package notify

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/courtrss/app/metrics"
)

type Dispatcher struct {
	channels []Channel
	journal  Journal
}

// NewDispatcher builds a dispatcher over channels. journal may be nil.
func NewDispatcher(channels []Channel, journal Journal) *Dispatcher {
	return &Dispatcher{
		channels: channels,
		journal:  journal,
	}
}

// Notify sends a keyword match to every channel. linkText and linkURL may be
// empty. It returns the number of channels that accepted the notification.
func (d *Dispatcher) Notify(ctx context.Context, title, linkText, linkURL, feedURL string) int {
	return d.dispatch(ctx, NewNotification(title, linkText, linkURL, feedURL))
}

// NotifyError reports a feed outage through the same channels as matches.
func (d *Dispatcher) NotifyError(ctx context.Context, message, feedURL string) int {
	return d.dispatch(ctx, NewErrorNotification(message, feedURL))
}

func (d *Dispatcher) dispatch(ctx context.Context, n Notification) int {
	delivered := 0

	for _, channel := range d.channels {
		if err := channel.Deliver(ctx, n); err != nil {
			metrics.Deliveries.WithLabelValues(channel.Name(), "failed").Inc()
			slog.Error("Notification delivery failed",
				"channel", channel.Name(),
				"notification_id", n.ID,
				"title", n.Title,
				"error", err)
			continue
		}

		delivered++
		metrics.Deliveries.WithLabelValues(channel.Name(), "delivered").Inc()

		if d.journal != nil {
			if err := d.journal.Record(ctx, n, channel.Name()); err != nil {
				slog.Warn("Failed to record notification", "channel", channel.Name(), "notification_id", n.ID, "error", err)
			}
		}
	}

	slog.Debug("Notification dispatched",
		"notification_id", n.ID,
		"title", n.Title,
		"error", n.IsError,
		"delivered", delivered,
		"channels", len(d.channels))

	return delivered
}
