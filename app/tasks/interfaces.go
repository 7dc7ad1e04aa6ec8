package tasks

import "context"

// Notifier receives keyword matches and feed outages from poll tasks.
// notify.Dispatcher is the production implementation.
type Notifier interface {
	Notify(ctx context.Context, title, linkText, linkURL, feedURL string) int
	NotifyError(ctx context.Context, message, feedURL string) int
}

// SchedulerInterface is the poll loop as seen by the entry point and the
// status API.
type SchedulerInterface interface {
	Run(ctx context.Context) error
	Sweep(ctx context.Context) SweepReport
	Stats() Stats
}
