package feed

import "context"

// EntryFetcher retrieves the entries of a single feed URL.
type EntryFetcher interface {
	Fetch(ctx context.Context, url string) ([]Entry, error)
}

var _ EntryFetcher = (*Fetcher)(nil)
