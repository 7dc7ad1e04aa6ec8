package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/courtrss/app/dedup"
	"github.com/lysyi3m/courtrss/app/feed"
	"github.com/lysyi3m/courtrss/app/metrics"
)

const (
	DefaultInterval    = 60 * time.Second
	DefaultWorkerLimit = 5
)

type State string

const (
	StateIdle     State = "idle"
	StateSweeping State = "sweeping"
	StateSleeping State = "sleeping"
)

type SweepReport struct {
	Feeds      int
	Failed     int
	Entries    int
	Matched    int
	Duplicates int
	Notified   int
	Duration   time.Duration
}

type Stats struct {
	State              State      `json:"state"`
	Feeds              int        `json:"feeds"`
	Keywords           []string   `json:"keywords"`
	Sweeps             int        `json:"sweeps"`
	LastSweepStartedAt *time.Time `json:"last_sweep_started_at,omitempty"`
	LastSweepDuration  string     `json:"last_sweep_duration"`
	Failures           int        `json:"failures"`
	Notifications      int        `json:"notifications"`
	DedupKeys          int        `json:"dedup_keys"`
}

var _ SchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	sources     []feed.Source
	fetcher     feed.EntryFetcher
	retry       *feed.RetryPolicy
	matcher     *feed.Matcher
	store       *dedup.Store
	notifier    Notifier
	interval    time.Duration
	workerCount int

	// wait sleeps between sweeps; swapped out in tests.
	wait func(ctx context.Context, d time.Duration) error

	mu    sync.RWMutex
	state State
	stats Stats
}

// NewScheduler builds the poll loop. A workerCount of zero or less means one
// worker per feed, capped at DefaultWorkerLimit.
func NewScheduler(sources []feed.Source, fetcher feed.EntryFetcher, retry *feed.RetryPolicy,
	matcher *feed.Matcher, store *dedup.Store, notifier Notifier, interval time.Duration, workerCount int) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if workerCount <= 0 {
		workerCount = min(len(sources), DefaultWorkerLimit)
	}
	workerCount = max(workerCount, 1)

	return &Scheduler{
		sources:     sources,
		fetcher:     fetcher,
		retry:       retry,
		matcher:     matcher,
		store:       store,
		notifier:    notifier,
		interval:    interval,
		workerCount: workerCount,
		wait:        sleep,
		state:       StateIdle,
	}
}

// Run sweeps every feed, sleeps for the interval and repeats until ctx is
// cancelled. It always returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("Scheduler started",
		"feeds", len(s.sources),
		"keywords", len(s.matcher.Keywords()),
		"interval", s.interval.String(),
		"workers", s.workerCount)

	defer s.setState(StateIdle)

	for {
		s.Sweep(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.setState(StateSleeping)
		if err := s.wait(ctx, s.interval); err != nil {
			return err
		}
	}
}

// Sweep polls every feed once on the worker pool and returns when all of them
// have finished, successfully or not.
func (s *Scheduler) Sweep(ctx context.Context) SweepReport {
	startedAt := time.Now()
	s.beginSweep(startedAt)

	taskQueue := make(chan *PollFeedTask, len(s.sources))
	pending := make([]*PollFeedTask, 0, len(s.sources))
	for _, source := range s.sources {
		task := NewPollFeedTask(source, s.fetcher, s.retry, s.matcher, s.store, s.notifier)
		pending = append(pending, task)
		taskQueue <- task
	}
	close(taskQueue)

	var wg sync.WaitGroup
	for i := 0; i < s.workerCount; i++ {
		wg.Add(1)
		go s.worker(ctx, i, taskQueue, &wg)
	}
	wg.Wait()

	report := SweepReport{Feeds: len(pending), Duration: time.Since(startedAt)}
	for _, task := range pending {
		result := task.Result()
		if result.Failed {
			report.Failed++
		}
		report.Entries += result.Entries
		report.Matched += result.Matched
		report.Duplicates += result.Duplicates
		report.Notified += result.Notified
	}

	metrics.SweepDuration.Observe(report.Duration.Seconds())
	s.endSweep(report)

	slog.Info("Sweep completed",
		"feeds", report.Feeds,
		"failed", report.Failed,
		"entries", report.Entries,
		"matched", report.Matched,
		"duplicates", report.Duplicates,
		"notified", report.Notified,
		"duration", report.Duration)

	return report
}

func (s *Scheduler) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := s.stats
	stats.State = s.state
	stats.Feeds = len(s.sources)
	stats.Keywords = s.matcher.Keywords()
	stats.DedupKeys = s.store.Len()
	return stats
}

func (s *Scheduler) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Scheduler) worker(ctx context.Context, id int, taskQueue <-chan *PollFeedTask, wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range taskQueue {
		if ctx.Err() != nil {
			return
		}
		s.executeTask(ctx, id, task)
	}
}

func (s *Scheduler) executeTask(ctx context.Context, workerID int, task TaskInterface) {
	task.Start()

	if err := task.Execute(ctx); err != nil {
		if ctx.Err() != nil {
			slog.Debug("Task cancelled", "worker_id", workerID, "type", string(task.GetType()), "feed", task.GetFeedURL())
			return
		}
		slog.Error("Worker task execution failed",
			"worker_id", workerID,
			"type", string(task.GetType()),
			"id", task.GetID(),
			"feed", task.GetFeedURL(),
			"duration", task.GetDuration(),
			"error", err)
	}
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *Scheduler) beginSweep(startedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateSweeping
	s.stats.LastSweepStartedAt = &startedAt
}

func (s *Scheduler) endSweep(report SweepReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Sweeps++
	s.stats.Failures += report.Failed
	s.stats.Notifications += report.Notified
	s.stats.LastSweepDuration = report.Duration.String()
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
