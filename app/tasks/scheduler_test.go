package tasks

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/courtrss/app/dedup"
	"github.com/lysyi3m/courtrss/app/feed"
)

type fakeFetcher struct {
	mu      sync.Mutex
	entries map[string][]feed.Entry
	errs    map[string]error
	calls   map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		entries: make(map[string][]feed.Entry),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]feed.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	return f.entries[url], nil
}

func (f *fakeFetcher) Calls(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

type sentNotification struct {
	title    string
	linkText string
	linkURL  string
	feedURL  string
	isError  bool
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(ctx context.Context, title, linkText, linkURL, feedURL string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{title: title, linkText: linkText, linkURL: linkURL, feedURL: feedURL})
	return 1
}

func (n *recordingNotifier) NotifyError(ctx context.Context, message, feedURL string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{title: message, feedURL: feedURL, isError: true})
	return 1
}

func (n *recordingNotifier) Sent() []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotification(nil), n.sent...)
}

const rulingSummary = `<p>[Case 12-345] <a href="https://court.example/rulings/12-345">Read the ruling</a></p>`

func newTestScheduler(urls []string, keywords []string, fetcher feed.EntryFetcher, notifier Notifier, retries int) *Scheduler {
	sources := make([]feed.Source, 0, len(urls))
	for _, url := range urls {
		sources = append(sources, feed.Source{URL: url})
	}
	return NewScheduler(sources, fetcher, feed.NewRetryPolicy(retries, 0), feed.NewMatcher(keywords),
		dedup.NewStore(), notifier, time.Minute, 0)
}

func TestScheduler_Sweep_NotifiesOnceAcrossSweeps(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.entries["https://court.example/rss"] = []feed.Entry{
		{Title: "New Ruling Issued", Summary: rulingSummary},
		{Title: "Court closed on Monday", Summary: "<p>Holiday schedule</p>"},
	}
	notifier := &recordingNotifier{}
	s := newTestScheduler([]string{"https://court.example/rss"}, []string{"ruling"}, fetcher, notifier, 3)

	report := s.Sweep(context.Background())
	if report.Notified != 1 {
		t.Errorf("Expected 1 notification in first sweep, got %d", report.Notified)
	}
	if report.Matched != 1 {
		t.Errorf("Expected 1 matched entry, got %d", report.Matched)
	}

	sent := notifier.Sent()
	if len(sent) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(sent))
	}
	want := sentNotification{
		title:    "New Ruling Issued",
		linkText: "Case 12-345",
		linkURL:  "https://court.example/rulings/12-345",
		feedURL:  "https://court.example/rss",
	}
	if sent[0] != want {
		t.Errorf("Expected %+v, got %+v", want, sent[0])
	}

	report = s.Sweep(context.Background())
	if report.Notified != 0 {
		t.Errorf("Expected 0 notifications in second sweep, got %d", report.Notified)
	}
	if report.Duplicates != 1 {
		t.Errorf("Expected 1 duplicate in second sweep, got %d", report.Duplicates)
	}
	if len(notifier.Sent()) != 1 {
		t.Errorf("Expected no new notifications, got %d total", len(notifier.Sent()))
	}
}

func TestScheduler_Sweep_SameLinkAcrossFeedsNotifiesOnce(t *testing.T) {
	fetcher := newFakeFetcher()
	urls := []string{"https://a.example/rss", "https://b.example/rss", "https://c.example/rss"}
	for _, url := range urls {
		fetcher.entries[url] = []feed.Entry{{Title: "New Ruling Issued", Summary: rulingSummary}}
	}
	notifier := &recordingNotifier{}
	s := newTestScheduler(urls, []string{"ruling"}, fetcher, notifier, 0)

	report := s.Sweep(context.Background())
	if report.Notified != 1 {
		t.Errorf("Expected 1 notification, got %d", report.Notified)
	}
	if report.Duplicates != 2 {
		t.Errorf("Expected 2 duplicates, got %d", report.Duplicates)
	}
}

func TestScheduler_Sweep_FailingFeedDoesNotAbortSweep(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.errs["https://down.example/rss"] = &feed.FetchError{
		URL:        "https://down.example/rss",
		StatusCode: http.StatusInternalServerError,
		Err:        errors.New("500 Internal Server Error"),
	}
	fetcher.entries["https://court.example/rss"] = []feed.Entry{{Title: "New Ruling Issued", Summary: rulingSummary}}
	notifier := &recordingNotifier{}
	s := newTestScheduler([]string{"https://down.example/rss", "https://court.example/rss"}, []string{"ruling"}, fetcher, notifier, 3)

	report := s.Sweep(context.Background())
	if report.Failed != 1 {
		t.Errorf("Expected 1 failed feed, got %d", report.Failed)
	}
	if report.Notified != 1 {
		t.Errorf("Expected 1 notification, got %d", report.Notified)
	}
	if calls := fetcher.Calls("https://down.example/rss"); calls != 4 {
		t.Errorf("Expected 4 fetch attempts for failing feed, got %d", calls)
	}

	var errorNotifications []sentNotification
	for _, n := range notifier.Sent() {
		if n.isError {
			errorNotifications = append(errorNotifications, n)
		}
	}
	if len(errorNotifications) != 1 {
		t.Fatalf("Expected 1 error notification, got %d", len(errorNotifications))
	}
	want := "Failed to fetch feed from https://down.example/rss after 4 attempts"
	if errorNotifications[0].title != want {
		t.Errorf("Expected %q, got %q", want, errorNotifications[0].title)
	}

	stats := s.Stats()
	if stats.Failures != 1 {
		t.Errorf("Expected 1 failure in stats, got %d", stats.Failures)
	}
}

type timedNotifier struct {
	recordingNotifier
	mu      sync.Mutex
	matched time.Time
}

func (n *timedNotifier) Notify(ctx context.Context, title, linkText, linkURL, feedURL string) int {
	n.mu.Lock()
	if n.matched.IsZero() {
		n.matched = time.Now()
	}
	n.mu.Unlock()
	return n.recordingNotifier.Notify(ctx, title, linkText, linkURL, feedURL)
}

func (n *timedNotifier) Matched() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.matched
}

func TestScheduler_Sweep_RetrySleepDoesNotDelayOtherFeeds(t *testing.T) {
	const retryInterval = 300 * time.Millisecond

	fetcher := newFakeFetcher()
	fetcher.errs["https://down.example/rss"] = &feed.FetchError{
		URL:        "https://down.example/rss",
		StatusCode: http.StatusServiceUnavailable,
		Err:        errors.New("503 Service Unavailable"),
	}
	fetcher.entries["https://court.example/rss"] = []feed.Entry{{Title: "New Ruling Issued", Summary: rulingSummary}}
	notifier := &timedNotifier{}

	sources := []feed.Source{{URL: "https://down.example/rss"}, {URL: "https://court.example/rss"}}
	s := NewScheduler(sources, fetcher, feed.NewRetryPolicy(2, retryInterval), feed.NewMatcher([]string{"ruling"}),
		dedup.NewStore(), notifier, time.Minute, 0)

	start := time.Now()
	report := s.Sweep(context.Background())
	elapsed := time.Since(start)

	if report.Failed != 1 || report.Notified != 1 {
		t.Fatalf("Expected 1 failed feed and 1 notification, got %+v", report)
	}
	if elapsed < 2*retryInterval {
		t.Errorf("Expected the sweep to wait for both retry sleeps, took %s", elapsed)
	}
	matchedAfter := notifier.Matched().Sub(start)
	if matchedAfter >= retryInterval {
		t.Errorf("Expected the healthy feed to notify before the first retry sleep ended, took %s", matchedAfter)
	}
	if calls := fetcher.Calls("https://down.example/rss"); calls != 3 {
		t.Errorf("Expected 3 fetch attempts for failing feed, got %d", calls)
	}
}

func TestScheduler_Sweep_RetriesResetEverySweep(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.errs["https://down.example/rss"] = &feed.FetchError{URL: "https://down.example/rss", StatusCode: http.StatusNotFound, Err: errors.New("404 Not Found")}
	notifier := &recordingNotifier{}
	s := newTestScheduler([]string{"https://down.example/rss"}, []string{"ruling"}, fetcher, notifier, 1)

	s.Sweep(context.Background())
	s.Sweep(context.Background())

	if calls := fetcher.Calls("https://down.example/rss"); calls != 4 {
		t.Errorf("Expected 2 attempts per sweep, got %d total", calls)
	}
	if got := len(notifier.Sent()); got != 2 {
		t.Errorf("Expected an error notification per sweep, got %d", got)
	}
}

func TestScheduler_Sweep_NoKeywordsNeverNotifies(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.entries["https://court.example/rss"] = []feed.Entry{{Title: "New Ruling Issued", Summary: rulingSummary}}
	notifier := &recordingNotifier{}
	s := newTestScheduler([]string{"https://court.example/rss"}, nil, fetcher, notifier, 0)

	report := s.Sweep(context.Background())
	if report.Notified != 0 || len(notifier.Sent()) != 0 {
		t.Errorf("Expected no notifications without keywords, got %d", report.Notified)
	}
}

func TestScheduler_Sweep_MissingLinkUsesFallbackKey(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.entries["https://court.example/rss"] = []feed.Entry{
		{Title: "Ruling A", Summary: "no link here"},
		{Title: "Ruling B", Summary: "no link here either"},
	}
	notifier := &recordingNotifier{}
	s := newTestScheduler([]string{"https://court.example/rss"}, []string{"ruling"}, fetcher, notifier, 0)

	if report := s.Sweep(context.Background()); report.Notified != 2 {
		t.Errorf("Expected distinct entries without links to notify separately, got %d", report.Notified)
	}
	if report := s.Sweep(context.Background()); report.Notified != 0 {
		t.Errorf("Expected fallback keys to suppress repeats, got %d", report.Notified)
	}
}

func TestScheduler_Run_SleepsBetweenSweepsUntilCancelled(t *testing.T) {
	fetcher := newFakeFetcher()
	notifier := &recordingNotifier{}
	s := newTestScheduler([]string{"https://court.example/rss"}, []string{"ruling"}, fetcher, notifier, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var waits []time.Duration
	var statesDuringWait []State
	s.wait = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		statesDuringWait = append(statesDuringWait, s.State())
		if len(waits) == 2 {
			cancel()
			return ctx.Err()
		}
		return nil
	}

	err := s.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(waits) != 2 {
		t.Fatalf("Expected 2 waits, got %d", len(waits))
	}
	for i, d := range waits {
		if d != time.Minute {
			t.Errorf("Expected wait %d to be 1m, got %s", i, d)
		}
		if statesDuringWait[i] != StateSleeping {
			t.Errorf("Expected state %s during wait, got %s", StateSleeping, statesDuringWait[i])
		}
	}
	if sweeps := s.Stats().Sweeps; sweeps != 2 {
		t.Errorf("Expected 2 sweeps, got %d", sweeps)
	}
	if fetcher.Calls("https://court.example/rss") != 2 {
		t.Errorf("Expected one fetch per sweep, got %d", fetcher.Calls("https://court.example/rss"))
	}
	if s.State() != StateIdle {
		t.Errorf("Expected state %s after Run returns, got %s", StateIdle, s.State())
	}
}

func TestScheduler_Run_CancelledBeforeStart(t *testing.T) {
	fetcher := newFakeFetcher()
	s := newTestScheduler([]string{"https://court.example/rss"}, []string{"ruling"}, fetcher, &recordingNotifier{}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if fetcher.Calls("https://court.example/rss") != 0 {
		t.Errorf("Expected no fetches after cancellation")
	}
}

func TestScheduler_WorkerCountDefaults(t *testing.T) {
	urls := make([]string, 8)
	for i := range urls {
		urls[i] = "https://court.example/rss/" + strings.Repeat("x", i+1)
	}
	s := newTestScheduler(urls, []string{"ruling"}, newFakeFetcher(), &recordingNotifier{}, 0)
	if s.workerCount != DefaultWorkerLimit {
		t.Errorf("Expected %d workers, got %d", DefaultWorkerLimit, s.workerCount)
	}

	s = newTestScheduler(urls[:2], []string{"ruling"}, newFakeFetcher(), &recordingNotifier{}, 0)
	if s.workerCount != 2 {
		t.Errorf("Expected 2 workers, got %d", s.workerCount)
	}
}

func TestSleep_ReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Errorf("Expected sleep to return promptly on cancel")
	}
}
