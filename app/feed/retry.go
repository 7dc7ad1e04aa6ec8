package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lysyi3m/courtrss/app/metrics"
)

// ExhaustedError reports a feed that kept failing after every allowed attempt.
type ExhaustedError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed to fetch feed from %s after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// RetryPolicy retries transient fetch failures with a fixed delay. Retries
// counts the attempts made after the first one.
type RetryPolicy struct {
	Retries  int
	Interval time.Duration

	// newTimer overrides the sleep between attempts. Nil uses a real timer.
	newTimer func() backoff.Timer
}

func NewRetryPolicy(retries int, interval time.Duration) *RetryPolicy {
	return &RetryPolicy{
		Retries:  max(retries, 0),
		Interval: interval,
	}
}

// Fetch calls fetcher until it succeeds, fails permanently, or runs out of
// retries. It returns the number of attempts made.
func (p *RetryPolicy) Fetch(ctx context.Context, fetcher EntryFetcher, url string) ([]Entry, int, error) {
	var entries []Entry
	attempts := 0

	operation := func() error {
		attempts++
		metrics.FetchAttempts.WithLabelValues(url).Inc()

		result, err := fetcher.Fetch(ctx, url)
		if err != nil {
			if !IsTransient(err) {
				return backoff.Permanent(err)
			}
			return err
		}

		entries = result
		return nil
	}

	notify := func(err error, delay time.Duration) {
		metrics.FetchRetries.WithLabelValues(url).Inc()
		slog.Warn("Feed fetch failed, retrying",
			"url", url,
			"attempt", attempts,
			"retries", p.Retries,
			"delay", delay.String(),
			"error", err)
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Interval), uint64(p.Retries)),
		ctx)

	var timer backoff.Timer
	if p.newTimer != nil {
		timer = p.newTimer()
	}

	if err := backoff.RetryNotifyWithTimer(operation, b, notify, timer); err != nil {
		if IsTransient(err) {
			metrics.FetchFailures.WithLabelValues(url).Inc()
			return nil, attempts, &ExhaustedError{URL: url, Attempts: attempts, Err: err}
		}
		return nil, attempts, err
	}

	return entries, attempts, nil
}
