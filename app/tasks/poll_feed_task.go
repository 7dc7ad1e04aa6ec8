package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/courtrss/app/dedup"
	"github.com/lysyi3m/courtrss/app/feed"
	"github.com/lysyi3m/courtrss/app/metrics"
)

type PollResult struct {
	Attempts   int
	Entries    int
	Matched    int
	Duplicates int
	Notified   int
	Failed     bool
}

// PollFeedTask runs one feed through fetch, match, dedup and notify.
type PollFeedTask struct {
	Task
	Source   feed.Source
	fetcher  feed.EntryFetcher
	retry    *feed.RetryPolicy
	matcher  *feed.Matcher
	store    *dedup.Store
	notifier Notifier
	result   PollResult
}

func NewPollFeedTask(source feed.Source, fetcher feed.EntryFetcher, retry *feed.RetryPolicy, matcher *feed.Matcher, store *dedup.Store, notifier Notifier) *PollFeedTask {
	return &PollFeedTask{
		Task:     NewTask(TaskTypePollFeed, source.URL),
		Source:   source,
		fetcher:  fetcher,
		retry:    retry,
		matcher:  matcher,
		store:    store,
		notifier: notifier,
	}
}

func (t *PollFeedTask) Result() PollResult {
	return t.result
}

func (t *PollFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	url := t.Source.URL

	entries, attempts, err := t.retry.Fetch(ctx, t.fetcher, url)
	t.result.Attempts = attempts
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		t.result.Failed = true
		n := attempts
		var exhausted *feed.ExhaustedError
		if errors.As(err, &exhausted) {
			n = exhausted.Attempts
		}
		t.notifier.NotifyError(ctx, fmt.Sprintf("Failed to fetch feed from %s after %d attempts", url, n), url)
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	t.result.Entries = len(entries)

	for _, entry := range entries {
		keyword, ok := t.matcher.MatchedKeyword(entry)
		if !ok {
			continue
		}
		t.result.Matched++

		link := feed.ExtractLink(entry.Summary)
		key := dedup.Key(link.URL, url, entry.Title)

		if !t.store.CheckAndMark(key) {
			t.result.Duplicates++
			metrics.DuplicatesSkipped.Inc()
			continue
		}

		metrics.EntriesMatched.WithLabelValues(url).Inc()
		slog.Debug("Keyword matched", "feed", url, "keyword", keyword, "title", entry.Title, "link", link.URL)

		t.notifier.Notify(ctx, entry.Title, link.Text, link.URL, url)
		t.result.Notified++
	}

	slog.Info("Task completed",
		"type", "PolledFeed",
		"feed", url,
		"duration", t.GetDuration(),
		"attempts", t.result.Attempts,
		"total", t.result.Entries,
		"matched", t.result.Matched,
		"duplicates", t.result.Duplicates,
		"notified", t.result.Notified)

	return nil
}
