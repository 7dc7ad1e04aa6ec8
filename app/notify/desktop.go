package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/lysyi3m/courtrss/app/metrics"
)

const DefaultAlertQueueSize = 32

var (
	ErrAlertQueueFull = errors.New("alert queue is full")
	ErrChannelStopped = errors.New("channel is stopped")
)

// Renderer shows one alert and returns once the user has dismissed it or ctx
// is cancelled.
type Renderer interface {
	Render(ctx context.Context, alert Notification) error
}

// DesktopChannel hands alerts to a single UI worker through a bounded queue,
// so a modal alert never holds up the poller that produced it.
type DesktopChannel struct {
	renderer Renderer
	queue    chan Notification
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu      sync.Mutex
	started bool
}

var _ Channel = (*DesktopChannel)(nil)

func NewDesktopChannel(renderer Renderer, queueSize int) *DesktopChannel {
	if queueSize <= 0 {
		queueSize = DefaultAlertQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &DesktopChannel{
		renderer: renderer,
		queue:    make(chan Notification, queueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (c *DesktopChannel) Name() string {
	return ChannelTypeWindow
}

func (c *DesktopChannel) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started || c.ctx.Err() != nil {
		return
	}
	c.started = true

	c.wg.Add(1)
	go c.worker()
}

// Stop cancels the alert on screen, waits for the UI worker to exit and drops
// anything still queued.
func (c *DesktopChannel) Stop() {
	c.mu.Lock()
	c.cancel()
	c.mu.Unlock()

	c.wg.Wait()

	dropped := 0
	for {
		select {
		case <-c.queue:
			metrics.AlertQueueDepth.Dec()
			dropped++
		default:
			if dropped > 0 {
				slog.Warn("Dropped queued desktop alerts on shutdown", "count", dropped)
			}
			return
		}
	}
}

func (c *DesktopChannel) Deliver(ctx context.Context, n Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx.Err() != nil {
		return ErrChannelStopped
	}

	select {
	case c.queue <- n:
		metrics.AlertQueueDepth.Inc()
		return nil
	default:
		return ErrAlertQueueFull
	}
}

func (c *DesktopChannel) worker() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		case alert := <-c.queue:
			metrics.AlertQueueDepth.Dec()
			if err := c.renderer.Render(c.ctx, alert); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("Failed to render desktop alert", "notification_id", alert.ID, "title", alert.Title, "error", err)
			}
		}
	}
}
